package vectorstore

import "context"

// Document represents a chunk with its embedding
type Document struct {
	ID        string                 `json:"id"`
	Position  int                    `json:"position"`
	Content   string                 `json:"content"`
	Metadata  map[string]interface{} `json:"metadata"`
	Embedding []float32              `json:"embedding,omitempty"`
}

// SimilaritySearchResult represents a search result with score
type SimilaritySearchResult struct {
	Document Document
	Score    float64
}

// Store is a vector index holding exactly one corpus at a time.
type Store interface {
	// Replace discards every stored document and stores docs in their place.
	Replace(ctx context.Context, docs []Document) error
	// SimilaritySearch returns at most topK documents, most similar first.
	SimilaritySearch(ctx context.Context, queryEmbedding []float32, topK int) ([]SimilaritySearchResult, error)
	// Documents returns every stored document ordered by position.
	Documents(ctx context.Context) ([]Document, error)
}
