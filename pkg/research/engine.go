// Package research implements the document research agent: ingestion of a single
// document and the summary, abstract, keyword and question strategies over it.
package research

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/mikeboe/doc-analyst/pkg/classify"
	"github.com/mikeboe/doc-analyst/pkg/extract"
	"github.com/mikeboe/doc-analyst/pkg/llm"
	"github.com/mikeboe/doc-analyst/pkg/splitter"
)

// Agent owns one corpus. Agents share no state with each other.
type Agent struct {
	Config   Config
	Logger   *slog.Logger
	LLM      llm.Generator
	Intents  *classify.Classifier[classify.Intent]
	Index    Index
	Extract  Extractor
	Splitter *splitter.WindowSplitter

	// OnIngest is called after a corpus has been swapped in.
	OnIngest func(corpus Corpus)

	ingestMu sync.Mutex
	mu       sync.RWMutex
	corpus   *Corpus
}

func NewAgent(cfg Config, gen llm.Generator, index Index, extractor Extractor, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		Config:   cfg.withDefaults(),
		Logger:   logger,
		LLM:      gen,
		Intents:  classify.NewIntentClassifier(gen, logger),
		Index:    index,
		Extract:  extractor,
		Splitter: splitter.NewDefault(),
	}
}

// Corpus returns the current corpus, or nil before the first ingestion.
func (a *Agent) Corpus() *Corpus {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.corpus
}

// Ingest extracts, chunks and indexes a document, replacing the current corpus.
// The previous corpus stays in place on every path that does not end in MsgIngested.
func (a *Agent) Ingest(ctx context.Context, data []byte, tag extract.TypeTag) (Result, error) {
	if !a.Extract.Supports(tag) {
		a.Logger.Warn("Unsupported file type", "type", string(tag))
		return textResult(MsgUnsupportedType), nil
	}

	text, err := a.Extract.Extract(ctx, data, tag)
	if err != nil {
		return Result{}, fmt.Errorf("failed to extract document: %w", err)
	}

	if strings.TrimSpace(text) == "" {
		a.Logger.Info("Document is empty", "type", string(tag))
		return textResult(MsgEmptyDocument), nil
	}

	chunks := a.Splitter.Split(text)

	a.ingestMu.Lock()
	defer a.ingestMu.Unlock()

	// Queries hold the read lock, so the index and the corpus change together.
	a.mu.Lock()
	if err := a.Index.Build(ctx, chunks); err != nil {
		a.mu.Unlock()
		return Result{}, fmt.Errorf("failed to index document: %w", err)
	}
	corpus := newCorpus(chunks)
	a.corpus = corpus
	a.mu.Unlock()

	a.Logger.Info("Document ingested", "corpus", corpus.ID, "type", string(tag), "chunks", len(chunks))
	if a.OnIngest != nil {
		a.OnIngest(*corpus)
	}
	return textResult(MsgIngested), nil
}

// Restore reopens a corpus persisted by a previous process. It is a no-op when the
// index holds nothing.
func (a *Agent) Restore(ctx context.Context) error {
	chunks, err := a.Index.Restore(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore corpus: %w", err)
	}
	if len(chunks) == 0 {
		return nil
	}

	a.mu.Lock()
	a.corpus = newCorpus(chunks)
	a.mu.Unlock()

	a.Logger.Info("Restored corpus", "chunks", len(chunks))
	return nil
}

// HandleQuery classifies query and runs the matching strategy.
func (a *Agent) HandleQuery(ctx context.Context, query string) (Result, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.corpus == nil {
		return textResult(MsgNoCorpus), nil
	}

	intent := a.Intents.Classify(ctx, query)
	a.Logger.Info("Classified research query", "query", query, "category", string(intent))

	switch intent {
	case classify.IntentSummary:
		return a.summarize(ctx, a.corpus)
	case classify.IntentKeywords:
		return a.extractKeywords(ctx, a.corpus)
	case classify.IntentAbstract:
		return a.summarizeAbstract(ctx, a.corpus)
	default:
		return a.answerQuestion(ctx, a.corpus, query)
	}
}

// Search returns the k chunks of the current corpus most similar to query, without
// generating an answer. A non-positive k uses Config.TopK.
func (a *Agent) Search(ctx context.Context, query string, k int) (Result, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if empty(a.corpus) {
		return textResult(MsgNoCorpus), nil
	}
	if k <= 0 {
		k = a.Config.TopK
	}

	hits, err := a.Index.Query(ctx, query, k)
	if err != nil {
		return Result{}, fmt.Errorf("failed to search document: %w", err)
	}

	sources := make([]Source, len(hits))
	for i, h := range hits {
		sources[i] = Source{Position: h.Chunk.Position, Score: h.Score, Content: h.Chunk.Content}
	}
	return Result{Type: "text", Message: fmt.Sprintf("%d results", len(sources)), Sources: sources}, nil
}
