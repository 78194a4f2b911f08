package embeddings

import (
	"context"
	"testing"
)

func TestNewGoogleEmbedder_InvalidDimension(t *testing.T) {
	for _, dim := range []int{0, -1} {
		if _, err := NewGoogleEmbedder(context.Background(), "gemini-embedding-001", "key", dim); err == nil {
			t.Errorf("NewGoogleEmbedder(dim=%d) expected error", dim)
		}
	}
}

func TestGoogleEmbedder_Dimension(t *testing.T) {
	e, err := NewGoogleEmbedder(context.Background(), "gemini-embedding-001", "key", 768)
	if err != nil {
		t.Fatalf("NewGoogleEmbedder() error = %v", err)
	}
	if got := e.Dimension(); got != 768 {
		t.Errorf("Dimension() = %d, want 768", got)
	}
	if e.EmbeddingFunc() == nil {
		t.Error("EmbeddingFunc() returned nil")
	}
}
