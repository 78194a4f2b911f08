package app

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikeboe/doc-analyst/pkg/config"
	"github.com/mikeboe/doc-analyst/pkg/extract"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn")

	logger.Info("hidden")
	logger.Warn("shown", "query", "q")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "query=q")
}

func TestNewGenerator_MissingKeys(t *testing.T) {
	for _, provider := range []string{config.ProviderGoogleAI, config.ProviderAnthropic, config.ProviderGroq, config.ProviderGenAI} {
		t.Run(provider, func(t *testing.T) {
			_, err := NewGenerator(context.Background(), &config.Config{LLMProvider: provider})
			assert.Error(t, err)
		})
	}

	_, err := NewGenerator(context.Background(), &config.Config{LLMProvider: "local"})
	assert.Error(t, err)
}

func TestNewPDFExtractor(t *testing.T) {
	_, ok := NewPDFExtractor(&config.Config{PDFExtractor: config.PDFExtractorMistral}).(*extract.MistralOCRExtractor)
	assert.True(t, ok)

	_, ok = NewPDFExtractor(&config.Config{PDFExtractor: config.PDFExtractorPDFToText}).(*extract.PDFToTextExtractor)
	assert.True(t, ok)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Load()
	cfg.VectorStore = "faiss"

	a, err := New(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Nil(t, a)
}

func TestNew_MissingGoogleKey(t *testing.T) {
	cfg := config.Load()
	cfg.LLMProvider = config.ProviderGroq
	cfg.GroqApiKey = "groq-key"
	cfg.GoogleApiKey = ""

	a, err := New(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_API_KEY")
	assert.Nil(t, a)
}

func TestWarnMissingTools(t *testing.T) {
	tests := []struct {
		name      string
		extractor string
		check     error
		wantWarn  bool
	}{
		{"pdftotext missing", config.PDFExtractorPDFToText, extract.ErrPDFToolNotFound, true},
		{"pdftotext present", config.PDFExtractorPDFToText, nil, false},
		{"mistral ignores pdftotext", config.PDFExtractorMistral, extract.ErrPDFToolNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			calls := 0
			warnMissingTools(&config.Config{PDFExtractor: tt.extractor}, NewLogger(&buf, "info"), func() error {
				calls++
				return tt.check
			})

			if tt.wantWarn {
				assert.Contains(t, buf.String(), "pdftotext not found")
				assert.Contains(t, buf.String(), extract.ErrPDFToolNotFound.Error())
			} else {
				assert.Empty(t, buf.String())
			}
			if tt.extractor == config.PDFExtractorMistral {
				assert.Zero(t, calls)
			}
		})
	}
}
