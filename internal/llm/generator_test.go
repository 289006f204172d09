package llm

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/kotae/internal/observability"
)

type fakeClient struct {
	completion *Completion
	err        error
	messages   [][]Message
	opts       []Options
}

func (f *fakeClient) Chat(_ context.Context, messages []Message, opts Options) (*Completion, error) {
	f.messages = append(f.messages, messages)
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return nil, f.err
	}
	return f.completion, nil
}

func (f *fakeClient) ChatStream(context.Context, []Message, Options) (<-chan string, <-chan error) {
	contentCh := make(chan string)
	errCh := make(chan error)
	close(contentCh)
	close(errCh)
	return contentCh, errCh
}

func (f *fakeClient) ModelName() string { return "test-model" }

func testGenerator(t *testing.T, client Client) (*Generator, *observability.Store) {
	t.Helper()
	store, err := observability.NewStore(filepath.Join(t.TempDir(), "obs.db"), 0.00059, 0.00079)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return NewGenerator(client, store), store
}

func TestGenerateAnswer(t *testing.T) {
	client := &fakeClient{completion: &Completion{
		Text: "The answer.", PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150,
	}}
	gen, store := testGenerator(t, client)
	ctx := context.Background()

	history := []Message{
		{Role: RoleUser, Content: "earlier question"},
		{Role: RoleAssistant, Content: "earlier answer"},
	}
	result, err := gen.GenerateAnswer(ctx, "What is the procedure?", "relevant chunk text",
		history, "conv_1", map[string]interface{}{"chunks_used": 2})
	if err != nil {
		t.Fatal(err)
	}
	if result.Answer != "The answer." {
		t.Errorf("answer = %q", result.Answer)
	}
	if result.TotalTokens != 150 {
		t.Errorf("total tokens = %d", result.TotalTokens)
	}
	if result.CostUSD != store.CostUSD(100, 50) {
		t.Errorf("cost = %v", result.CostUSD)
	}
	if result.PromptTemplateKey != RAGPromptTemplateKey || result.PromptTemplateVersion != 1 {
		t.Errorf("template = %s v%d", result.PromptTemplateKey, result.PromptTemplateVersion)
	}

	if len(client.messages) != 1 {
		t.Fatalf("chat calls = %d", len(client.messages))
	}
	sent := client.messages[0]
	if len(sent) != 4 {
		t.Fatalf("message count = %d, want system + 2 history + question", len(sent))
	}
	if sent[0].Role != RoleSystem {
		t.Errorf("first role = %s", sent[0].Role)
	}
	if !strings.Contains(sent[0].Content, "relevant chunk text") {
		t.Error("system prompt should embed the context")
	}
	if strings.Contains(sent[0].Content, "{context}") {
		t.Error("placeholder should be substituted")
	}
	if sent[3].Role != RoleUser || sent[3].Content != "What is the procedure?" {
		t.Errorf("last message = %+v", sent[3])
	}

	logs, err := store.RecentLogs(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 log row, got %d", len(logs))
	}
	if logs[0].RequestType != "rag_answer" || !logs[0].Success {
		t.Errorf("log = %+v", logs[0])
	}
	if logs[0].TotalTokens != 150 || logs[0].ConversationID != "conv_1" {
		t.Errorf("log = %+v", logs[0])
	}
}

func TestGenerateAnswer_seedsTemplateOnFirstUse(t *testing.T) {
	client := &fakeClient{completion: &Completion{Text: "ok"}}
	gen, store := testGenerator(t, client)
	ctx := context.Background()

	if _, err := gen.GenerateAnswer(ctx, "q?", "ctx", nil, "", nil); err != nil {
		t.Fatal(err)
	}
	tpl, err := store.ActiveTemplate(ctx, RAGPromptTemplateKey)
	if err != nil {
		t.Fatal(err)
	}
	if tpl == nil || tpl.Version != 1 {
		t.Fatalf("template not seeded: %+v", tpl)
	}
}

func TestGenerateAnswer_usesActiveTemplate(t *testing.T) {
	client := &fakeClient{completion: &Completion{Text: "ok"}}
	gen, store := testGenerator(t, client)
	ctx := context.Background()

	if err := gen.EnsureDefaultTemplate(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateVersion(ctx, RAGPromptTemplateKey,
		"Custom prompt: {context}", "experiment", true); err != nil {
		t.Fatal(err)
	}

	result, err := gen.GenerateAnswer(ctx, "q?", "the facts", nil, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.PromptTemplateVersion != 2 {
		t.Errorf("version = %d, want 2", result.PromptTemplateVersion)
	}
	if client.messages[0][0].Content != "Custom prompt: the facts" {
		t.Errorf("system prompt = %q", client.messages[0][0].Content)
	}
}

func TestGenerateAnswer_failureIsLoggedAndReturned(t *testing.T) {
	client := &fakeClient{err: errors.New("rate limited")}
	gen, store := testGenerator(t, client)
	ctx := context.Background()

	_, err := gen.GenerateAnswer(ctx, "q?", "ctx", nil, "conv_9", nil)
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("err = %v", err)
	}

	logs, err := store.RecentLogs(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 log row, got %d", len(logs))
	}
	entry := logs[0]
	if entry.Success {
		t.Error("failure should be logged as unsuccessful")
	}
	if entry.TotalTokens != 0 {
		t.Errorf("failed call tokens = %d, want 0", entry.TotalTokens)
	}
	if !strings.Contains(entry.ErrorMessage, "rate limited") {
		t.Errorf("error message = %q", entry.ErrorMessage)
	}
}

func TestEnsureDefaultTemplate_idempotent(t *testing.T) {
	gen, store := testGenerator(t, &fakeClient{completion: &Completion{Text: "ok"}})
	ctx := context.Background()

	if err := gen.EnsureDefaultTemplate(ctx); err != nil {
		t.Fatal(err)
	}
	if err := gen.EnsureDefaultTemplate(ctx); err != nil {
		t.Fatal(err)
	}
	all, err := store.Templates(ctx, RAGPromptTemplateKey)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 template version, got %d", len(all))
	}
}

func TestProbe(t *testing.T) {
	client := &fakeClient{completion: &Completion{Text: "Hello!"}}
	gen, _ := testGenerator(t, client)

	if !gen.Probe(context.Background()) {
		t.Error("probe should succeed")
	}
	sent := client.messages[0]
	if len(sent) != 1 || sent[0].Content != "Hello" {
		t.Errorf("probe message = %+v", sent)
	}
	if client.opts[0].MaxTokens != 10 {
		t.Errorf("probe max_tokens = %d", client.opts[0].MaxTokens)
	}

	failing := &fakeClient{err: errors.New("down")}
	gen, _ = testGenerator(t, failing)
	if gen.Probe(context.Background()) {
		t.Error("probe should fail when the API errors")
	}
}

func TestSummarize(t *testing.T) {
	client := &fakeClient{completion: &Completion{Text: "A short summary."}}
	gen, _ := testGenerator(t, client)

	text := strings.Repeat("a", 4100) + "END"
	summary, err := gen.Summarize(context.Background(), text)
	if err != nil {
		t.Fatal(err)
	}
	if summary != "A short summary." {
		t.Errorf("summary = %q", summary)
	}
	prompt := client.messages[0][0].Content
	if !strings.Contains(prompt, "Summarize the following text") {
		t.Errorf("prompt = %q", prompt)
	}
	if strings.Contains(prompt, "END") {
		t.Error("input should be capped at 4000 characters")
	}
	if client.opts[0].Temperature != 0.3 || client.opts[0].MaxTokens != 300 {
		t.Errorf("opts = %+v", client.opts[0])
	}
}
