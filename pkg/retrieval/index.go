// Package retrieval embeds chunks into a vector store and answers top-k similarity queries.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mikeboe/doc-analyst/pkg/splitter"
	"github.com/mikeboe/doc-analyst/pkg/vectorstore"
)

// ErrUnavailable is returned when the embedding capability or the vector store fails.
var ErrUnavailable = errors.New("retrieval unavailable")

// Embedder turns text into fixed-length vectors.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Hit is a retrieved chunk with its similarity score.
type Hit struct {
	Chunk splitter.Chunk
	Score float64
}

// Index pairs an embedder with the store holding the current corpus vectors.
type Index struct {
	embedder Embedder
	store    vectorstore.Store
	logger   *slog.Logger
}

func NewIndex(embedder Embedder, store vectorstore.Store, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{embedder: embedder, store: store, logger: logger}
}

// Build embeds every chunk and then replaces the stored corpus. The store is not touched
// when embedding fails.
func (ix *Index) Build(ctx context.Context, chunks []splitter.Chunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("no chunks to index")
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := ix.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("%w: failed to generate embeddings: %v", ErrUnavailable, err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: got %d embeddings for %d chunks", ErrUnavailable, len(vectors), len(chunks))
	}

	docs := make([]vectorstore.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = vectorstore.Document{
			Position:  c.Position,
			Content:   c.Content,
			Embedding: vectors[i],
		}
	}

	if err := ix.store.Replace(ctx, docs); err != nil {
		return fmt.Errorf("%w: failed to store embeddings: %v", ErrUnavailable, err)
	}

	ix.logger.Info("Index rebuilt", "chunks", len(chunks))
	return nil
}

// Query returns the k chunks most similar to text, highest score first.
func (ix *Index) Query(ctx context.Context, text string, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	queryEmbedding, err := ix.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to generate query embedding: %v", ErrUnavailable, err)
	}

	results, err := ix.store.SimilaritySearch(ctx, queryEmbedding, k)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to search: %v", ErrUnavailable, err)
	}

	hits := make([]Hit, len(results))
	for i, r := range results {
		hits[i] = Hit{
			Chunk: splitter.Chunk{Position: r.Document.Position, Content: r.Document.Content},
			Score: r.Score,
		}
	}
	return hits, nil
}

// Restore loads the chunks of a previously persisted corpus. It returns nil when the
// store holds nothing.
func (ix *Index) Restore(ctx context.Context) ([]splitter.Chunk, error) {
	docs, err := ix.store.Documents(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load stored corpus: %v", ErrUnavailable, err)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	chunks := make([]splitter.Chunk, len(docs))
	for i, d := range docs {
		if d.Position != i {
			return nil, fmt.Errorf("stored corpus has a gap at position %d", i)
		}
		chunks[i] = splitter.Chunk{Position: d.Position, Content: d.Content}
	}
	return chunks, nil
}
