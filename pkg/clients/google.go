package clients

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// ModelType is an enum for the available hosted models.
type ModelType string

const (
	// DefaultModel is the default Google model to use if none is specified
	DefaultModel ModelType = "gemini-2.0-flash"
	ProModel     ModelType = "gemini-2.5-pro"
)

// GoogleAI creates a langchaingo Gemini model. An empty model selects DefaultModel.
func GoogleAI(ctx context.Context, apiKey string, model ModelType) (llms.Model, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY is not set")
	}
	if model == "" {
		model = DefaultModel
	}

	// See https://ai.google.dev/gemini-api/docs/models/gemini for possible models
	llm, err := googleai.New(ctx, googleai.WithAPIKey(apiKey), googleai.WithDefaultModel(string(model)))
	if err != nil {
		return nil, fmt.Errorf("failed to create google ai client: %w", err)
	}

	return llm, nil
}
