package rag

import (
	"fmt"
	"strings"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
)

func TestConversations_appendAndHistory(t *testing.T) {
	conv := NewConversations(20)
	id := conv.NewID()
	if !strings.HasPrefix(id, "conv_") {
		t.Fatalf("unexpected conversation id %q", id)
	}

	conv.Append(id, "first question", "first answer")
	conv.Append(id, "second question", "second answer")

	history := conv.History(id)
	if len(history) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(history))
	}
	if history[0].Role != models.RoleUser || history[0].Content != "first question" {
		t.Fatalf("unexpected first message %+v", history[0])
	}
	if history[3].Role != models.RoleAssistant || history[3].Content != "second answer" {
		t.Fatalf("unexpected last message %+v", history[3])
	}
}

func TestConversations_trimsToCap(t *testing.T) {
	conv := NewConversations(6)
	for i := 0; i < 10; i++ {
		conv.Append("conv_abc123def456", fmt.Sprintf("question %d", i), fmt.Sprintf("answer %d", i))
	}

	history := conv.History("conv_abc123def456")
	if len(history) != 6 {
		t.Fatalf("expected 6 messages after trimming, got %d", len(history))
	}
	if history[0].Content != "question 7" {
		t.Fatalf("expected oldest kept message to be question 7, got %q", history[0].Content)
	}
	if history[5].Content != "answer 9" {
		t.Fatalf("expected newest message to be answer 9, got %q", history[5].Content)
	}
}

func TestConversations_defaultCap(t *testing.T) {
	conv := NewConversations(0)
	for i := 0; i < 15; i++ {
		conv.Append("conv_abc123def456", fmt.Sprintf("question %d", i), fmt.Sprintf("answer %d", i))
	}
	if got := len(conv.History("conv_abc123def456")); got != 20 {
		t.Fatalf("expected default cap of 20 messages, got %d", got)
	}
}

func TestConversations_unknownID(t *testing.T) {
	conv := NewConversations(20)
	if got := conv.History("conv_doesnotexist"); len(got) != 0 {
		t.Fatalf("expected empty history, got %d messages", len(got))
	}
}

func TestConversations_historyIsCopy(t *testing.T) {
	conv := NewConversations(20)
	conv.Append("conv_abc123def456", "question", "answer")

	history := conv.History("conv_abc123def456")
	history[0].Content = "mutated"

	if got := conv.History("conv_abc123def456")[0].Content; got != "question" {
		t.Fatalf("stored history changed through returned copy: %q", got)
	}
}

func TestConversations_count(t *testing.T) {
	conv := NewConversations(20)
	if conv.Count() != 0 {
		t.Fatalf("expected 0 conversations, got %d", conv.Count())
	}
	conv.Append("conv_aaa111bbb222", "q", "a")
	conv.Append("conv_ccc333ddd444", "q", "a")
	conv.Append("conv_aaa111bbb222", "q2", "a2")
	if conv.Count() != 2 {
		t.Fatalf("expected 2 conversations, got %d", conv.Count())
	}
}
