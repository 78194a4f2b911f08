package clients

import (
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	Claude35Haiku ModelType = "claude-3-5-haiku-20241022"
	Claude4Sonnet ModelType = "claude-sonnet-4-20250514"

	// Llama31Instant is served by Groq and is the default model of the hosted deployment.
	Llama31Instant ModelType = "llama-3.1-8b-instant"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// Anthropic creates a langchaingo Claude model. An empty model selects Claude35Haiku.
func Anthropic(apiKey string, model ModelType) (llms.Model, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is not set")
	}
	if model == "" {
		model = Claude35Haiku
	}

	llm, err := anthropic.New(anthropic.WithToken(apiKey), anthropic.WithModel(string(model)))
	if err != nil {
		return nil, fmt.Errorf("failed to create anthropic client: %w", err)
	}
	return llm, nil
}

// Groq creates a model served by Groq's OpenAI compatible endpoint.
// An empty model selects Llama31Instant.
func Groq(apiKey string, model ModelType) (llms.Model, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY is not set")
	}
	if model == "" {
		model = Llama31Instant
	}

	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(string(model)),
		openai.WithBaseURL(groqBaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create groq client: %w", err)
	}
	return llm, nil
}
