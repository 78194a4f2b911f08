package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Supported LLM providers.
const (
	ProviderGoogleAI  = "googleai"
	ProviderAnthropic = "anthropic"
	ProviderGroq      = "groq"
	ProviderGenAI     = "genai"
)

// Supported vector store backends.
const (
	VectorStoreChromem  = "chromem"
	VectorStorePGVector = "pgvector"
)

// Supported PDF extractors.
const (
	PDFExtractorPDFToText = "pdftotext"
	PDFExtractorMistral   = "mistral"
)

type Config struct {
	LLMProvider     string `yaml:"llm_provider"`
	GoogleApiKey    string `yaml:"google_api_key"`
	AnthropicApiKey string `yaml:"anthropic_api_key"`
	GroqApiKey      string `yaml:"groq_api_key"`
	MistralApiKey   string `yaml:"mistral_api_key"`
	FastModel       string `yaml:"fast_model"`
	EmbeddingModel  string `yaml:"embedding_model"`
	EmbeddingDim    int    `yaml:"embedding_dim"`
	VectorStore     string `yaml:"vector_store"`
	VectorStorePath string `yaml:"vector_store_path"`
	DatabaseURL     string `yaml:"database_url"`
	CollectionName  string `yaml:"collection_name"`
	PDFExtractor    string `yaml:"pdf_extractor"`
	TopK            int    `yaml:"top_k"`
	MapConcurrency  int    `yaml:"map_concurrency"`
	Port            string `yaml:"port"`
	LogLevel        string `yaml:"log_level"`
}

// Load reads the configuration from the environment. Callers load .env beforehand.
func Load() *Config {
	return &Config{
		LLMProvider:     getEnv("LLM_PROVIDER", ProviderGroq),
		GoogleApiKey:    getEnv("GOOGLE_API_KEY", ""),
		AnthropicApiKey: getEnv("ANTHROPIC_API_KEY", ""),
		GroqApiKey:      getEnv("GROQ_API_KEY", ""),
		MistralApiKey:   getEnv("MISTRAL_API_KEY", ""),
		FastModel:       getEnv("FAST_MODEL", ""),
		EmbeddingModel:  getEnv("EMBEDDING_MODEL", "gemini-embedding-001"),
		EmbeddingDim:    getEnvAsInt("EMBEDDING_DIM", 768),
		VectorStore:     getEnv("VECTOR_STORE", VectorStoreChromem),
		VectorStorePath: getEnv("VECTOR_STORE_PATH", "data/vector_store"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		CollectionName:  getEnv("COLLECTION_NAME", "document_chunks"),
		PDFExtractor:    getEnv("PDF_EXTRACTOR", PDFExtractorPDFToText),
		TopK:            getEnvAsInt("TOP_K", 4),
		MapConcurrency:  getEnvAsInt("MAP_CONCURRENCY", 4),
		Port:            getEnv("PORT", "8000"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
}

// LoadFile reads the environment and then overlays the fields present in a YAML file.
func LoadFile(path string) (*Config, error) {
	cfg := Load()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Validate reports unknown providers, backends and out-of-range numbers.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderGoogleAI, ProviderAnthropic, ProviderGroq, ProviderGenAI:
	default:
		return fmt.Errorf("unknown llm provider: %q", c.LLMProvider)
	}

	// every provider embeds with Gemini
	if c.GoogleApiKey == "" {
		return fmt.Errorf("GOOGLE_API_KEY is required for embeddings")
	}

	switch c.VectorStore {
	case VectorStoreChromem:
	case VectorStorePGVector:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s vector store", VectorStorePGVector)
		}
	default:
		return fmt.Errorf("unknown vector store: %q", c.VectorStore)
	}

	switch c.PDFExtractor {
	case PDFExtractorPDFToText:
	case PDFExtractorMistral:
		if c.MistralApiKey == "" {
			return fmt.Errorf("MISTRAL_API_KEY is required for the %s pdf extractor", PDFExtractorMistral)
		}
	default:
		return fmt.Errorf("unknown pdf extractor: %q", c.PDFExtractor)
	}

	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.TopK)
	}
	if c.MapConcurrency <= 0 {
		return fmt.Errorf("map_concurrency must be positive, got %d", c.MapConcurrency)
	}
	if c.EmbeddingDim <= 0 {
		return fmt.Errorf("embedding_dim must be positive, got %d", c.EmbeddingDim)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
