package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"LLM_PROVIDER", "VECTOR_STORE", "TOP_K", "MAP_CONCURRENCY", "PDF_EXTRACTOR"} {
		t.Setenv(key, "")
	}
	t.Setenv("GOOGLE_API_KEY", "key")

	cfg := Load()
	assert.Equal(t, ProviderGroq, cfg.LLMProvider)
	assert.Equal(t, VectorStoreChromem, cfg.VectorStore)
	assert.Equal(t, PDFExtractorPDFToText, cfg.PDFExtractor)
	assert.Equal(t, 4, cfg.TopK)
	assert.Equal(t, 4, cfg.MapConcurrency)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "genai")
	t.Setenv("TOP_K", "7")
	t.Setenv("MAP_CONCURRENCY", "not-a-number")

	cfg := Load()
	assert.Equal(t, ProviderGenAI, cfg.LLMProvider)
	assert.Equal(t, 7, cfg.TopK)
	assert.Equal(t, 4, cfg.MapConcurrency)
}

func TestLoadFile(t *testing.T) {
	t.Setenv("TOP_K", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vector_store: pgvector\ndatabase_url: postgres://localhost/db\ntop_k: 2\n"), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, VectorStorePGVector, cfg.VectorStore)
	assert.Equal(t, "postgres://localhost/db", cfg.DatabaseURL)
	assert.Equal(t, 2, cfg.TopK)
	assert.Equal(t, "document_chunks", cfg.CollectionName)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"Defaults", func(c *Config) {}, false},
		{"Missing google key", func(c *Config) { c.GoogleApiKey = "" }, true},
		{"Missing google key with another provider", func(c *Config) { c.LLMProvider = ProviderAnthropic; c.GoogleApiKey = "" }, true},
		{"Unknown provider", func(c *Config) { c.LLMProvider = "openai" }, true},
		{"Unknown store", func(c *Config) { c.VectorStore = "qdrant" }, true},
		{"PGVector without URL", func(c *Config) { c.VectorStore = VectorStorePGVector; c.DatabaseURL = "" }, true},
		{"PGVector with URL", func(c *Config) { c.VectorStore = VectorStorePGVector; c.DatabaseURL = "postgres://x" }, false},
		{"Mistral without key", func(c *Config) { c.PDFExtractor = PDFExtractorMistral; c.MistralApiKey = "" }, true},
		{"Unknown extractor", func(c *Config) { c.PDFExtractor = "ocr" }, true},
		{"Zero top k", func(c *Config) { c.TopK = 0 }, true},
		{"Zero concurrency", func(c *Config) { c.MapConcurrency = 0 }, true},
		{"Zero dimension", func(c *Config) { c.EmbeddingDim = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				LLMProvider:    ProviderGroq,
				GoogleApiKey:   "key",
				VectorStore:    VectorStoreChromem,
				PDFExtractor:   PDFExtractorPDFToText,
				TopK:           4,
				MapConcurrency: 4,
				EmbeddingDim:   768,
			}
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}
