package research

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mikeboe/doc-analyst/pkg/extract"
	"github.com/mikeboe/doc-analyst/pkg/retrieval"
	"github.com/mikeboe/doc-analyst/pkg/splitter"
)

// Messages returned as text results.
const (
	MsgUnsupportedType = "Unsupported file type."
	MsgEmptyDocument   = "The document is empty."
	MsgIngested        = "Document ingested and ready for analysis."
	MsgNoCorpus        = "No document has been ingested yet."
)

const (
	DefaultTopK           = 4
	DefaultMapConcurrency = 4
	// DefaultMaxReduceInput bounds, in runes, the text of a single reduce call.
	DefaultMaxReduceInput = 12000
)

// Config holds runtime configuration of an Agent.
type Config struct {
	TopK           int
	MapConcurrency int
	MaxReduceInput int
}

func DefaultConfig() Config {
	return Config{
		TopK:           DefaultTopK,
		MapConcurrency: DefaultMapConcurrency,
		MaxReduceInput: DefaultMaxReduceInput,
	}
}

func (c Config) withDefaults() Config {
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}
	if c.MapConcurrency <= 0 {
		c.MapConcurrency = DefaultMapConcurrency
	}
	if c.MaxReduceInput <= 0 {
		c.MaxReduceInput = DefaultMaxReduceInput
	}
	return c
}

// Result is the response of every agent operation.
type Result struct {
	Type    string   `json:"type"`
	Message string   `json:"message"`
	Sources []Source `json:"sources,omitempty"`
}

// Source is a retrieved chunk backing an answer.
type Source struct {
	Position int     `json:"position"`
	Score    float64 `json:"score"`
	Content  string  `json:"content"`
}

func textResult(msg string) Result {
	return Result{Type: "text", Message: msg}
}

// Corpus is the chunked form of the most recently ingested document.
type Corpus struct {
	ID        uuid.UUID
	Chunks    []splitter.Chunk
	CreatedAt time.Time
}

func newCorpus(chunks []splitter.Chunk) *Corpus {
	return &Corpus{ID: uuid.New(), Chunks: chunks, CreatedAt: time.Now()}
}

// Extractor turns tagged bytes into text.
type Extractor interface {
	Supports(tag extract.TypeTag) bool
	Extract(ctx context.Context, data []byte, tag extract.TypeTag) (string, error)
}

// Index stores chunk embeddings for the current corpus.
type Index interface {
	Build(ctx context.Context, chunks []splitter.Chunk) error
	Query(ctx context.Context, text string, k int) ([]retrieval.Hit, error)
	Restore(ctx context.Context) ([]splitter.Chunk, error)
}
