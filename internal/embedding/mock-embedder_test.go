package embedding

import (
	"context"
	"math"
	"testing"
)

func l2Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestMockEmbedder_deterministic(t *testing.T) {
	e := NewMockEmbedder(8)
	a, err := e.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embeddings differ at %d: %v vs %v", i, a[i], b[i])
		}
	}
	if len(a) != 8 {
		t.Errorf("len = %d, want 8", len(a))
	}
	if norm := l2Norm(a); math.Abs(norm-1) > 1e-5 {
		t.Errorf("norm = %f, want 1", norm)
	}
}

func TestMockEmbedder_emptyTextZeroVector(t *testing.T) {
	e := NewMockEmbedder(4)
	for _, text := range []string{"", "   ", "\n\t"} {
		emb, err := e.Embed(context.Background(), text)
		if err != nil {
			t.Fatal(err)
		}
		if len(emb) != 4 {
			t.Fatalf("len = %d", len(emb))
		}
		for i, v := range emb {
			if v != 0 {
				t.Errorf("text %q: emb[%d] = %f, want 0", text, i, v)
			}
		}
	}
}

func TestMockEmbedder_batchMatchesSingle(t *testing.T) {
	e := NewMockEmbedder(6)
	texts := []string{"one", "two", ""}
	batch, err := e.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch) != 3 {
		t.Fatalf("len(batch) = %d", len(batch))
	}
	for i, text := range texts {
		single, err := e.Embed(context.Background(), text)
		if err != nil {
			t.Fatal(err)
		}
		for j := range single {
			if batch[i][j] != single[j] {
				t.Fatalf("batch[%d] differs from single embed of %q", i, text)
			}
		}
	}
}

func TestMockEmbedder_defaultDimensions(t *testing.T) {
	e := NewMockEmbedder(0)
	if e.Dimensions() != 384 {
		t.Errorf("Dimensions = %d, want 384", e.Dimensions())
	}
}
