// Package app wires configuration into the agents shared by the binaries.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mikeboe/doc-analyst/pkg/clients"
	"github.com/mikeboe/doc-analyst/pkg/config"
	"github.com/mikeboe/doc-analyst/pkg/database"
	"github.com/mikeboe/doc-analyst/pkg/embeddings"
	"github.com/mikeboe/doc-analyst/pkg/extract"
	"github.com/mikeboe/doc-analyst/pkg/llm"
	"github.com/mikeboe/doc-analyst/pkg/orchestrator"
	"github.com/mikeboe/doc-analyst/pkg/research"
	"github.com/mikeboe/doc-analyst/pkg/retrieval"
	"github.com/mikeboe/doc-analyst/pkg/vectorstore"
)

type App struct {
	Config       *config.Config
	Logger       *slog.Logger
	Agent        *research.Agent
	Orchestrator *orchestrator.Orchestrator
	Index        *retrieval.Index

	closers []func()
}

// NewLogger returns a text logger writing to w at the named level.
func NewLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// ParseLevel maps debug, info, warn and error to slog levels. Unknown names are info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// New builds the generator, index, extractors and agents described by cfg and
// restores a persisted corpus when there is one.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{Config: cfg, Logger: logger}
	warnMissingTools(cfg, logger, extract.CheckAvailable)

	gen, err := NewGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewGoogleEmbedder(ctx, cfg.EmbeddingModel, cfg.GoogleApiKey, cfg.EmbeddingDim)
	if err != nil {
		return nil, fmt.Errorf("failed to init embedder: %w", err)
	}

	store, err := a.newStore(ctx, embedder)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Index = retrieval.NewIndex(embedder, store, logger)
	a.Orchestrator = orchestrator.New(gen, logger)
	a.Agent = research.NewAgent(research.Config{
		TopK:           cfg.TopK,
		MapConcurrency: cfg.MapConcurrency,
	}, gen, a.Index, extract.NewDefaultRegistry(NewPDFExtractor(cfg)), logger)

	if err := a.Agent.Restore(ctx); err != nil {
		logger.Warn("Could not restore previous corpus", "error", err)
	}

	return a, nil
}

// warnMissingTools logs when the configured PDF extractor cannot run. Startup
// continues so that DOCX uploads still work.
func warnMissingTools(cfg *config.Config, logger *slog.Logger, check func() error) {
	if cfg.PDFExtractor != config.PDFExtractorPDFToText {
		return
	}
	if err := check(); err != nil {
		logger.Warn("pdftotext not found on PATH; PDF uploads will fail until poppler-utils is installed", "error", err)
	}
}

// NewGenerator returns the generator for cfg.LLMProvider.
func NewGenerator(ctx context.Context, cfg *config.Config) (llm.Generator, error) {
	model := clients.ModelType(cfg.FastModel)

	switch cfg.LLMProvider {
	case config.ProviderGenAI:
		if model == "" {
			model = clients.DefaultModel
		}
		gen, err := llm.NewGenAIGenerator(ctx, cfg.GoogleApiKey, string(model))
		if err != nil {
			return nil, fmt.Errorf("failed to init LLM: %w", err)
		}
		return gen, nil
	case config.ProviderGoogleAI:
		m, err := clients.GoogleAI(ctx, cfg.GoogleApiKey, model)
		if err != nil {
			return nil, fmt.Errorf("failed to init LLM: %w", err)
		}
		return llm.NewLangChainGenerator(m), nil
	case config.ProviderAnthropic:
		m, err := clients.Anthropic(cfg.AnthropicApiKey, model)
		if err != nil {
			return nil, fmt.Errorf("failed to init LLM: %w", err)
		}
		return llm.NewLangChainGenerator(m), nil
	case config.ProviderGroq:
		m, err := clients.Groq(cfg.GroqApiKey, model)
		if err != nil {
			return nil, fmt.Errorf("failed to init LLM: %w", err)
		}
		return llm.NewLangChainGenerator(m), nil
	}
	return nil, fmt.Errorf("unknown llm provider: %q", cfg.LLMProvider)
}

// NewPDFExtractor returns the PDF extractor selected by cfg.PDFExtractor.
func NewPDFExtractor(cfg *config.Config) extract.Extractor {
	if cfg.PDFExtractor == config.PDFExtractorMistral {
		return extract.NewMistralOCRExtractor(cfg.MistralApiKey)
	}
	return extract.NewPDFToTextExtractor()
}

func (a *App) newStore(ctx context.Context, embedder *embeddings.GoogleEmbedder) (vectorstore.Store, error) {
	cfg := a.Config

	if cfg.VectorStore == config.VectorStorePGVector {
		db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)

		store, err := vectorstore.NewPGVectorStore(db, cfg.CollectionName)
		if err != nil {
			return nil, fmt.Errorf("invalid collection name: %w", err)
		}
		return store, nil
	}

	store, err := vectorstore.NewChromemStore(cfg.VectorStorePath, cfg.CollectionName)
	if err != nil {
		return nil, err
	}
	store.SetEmbeddingFunc(embedder.EmbeddingFunc())
	return store, nil
}

// Close releases database connections.
func (a *App) Close() {
	for _, c := range a.closers {
		c()
	}
	a.closers = nil
}
