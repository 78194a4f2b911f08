package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

var _ Generator = (*GenAIGenerator)(nil)

// GenAIGenerator calls Gemini directly and uses its native response schema support.
type GenAIGenerator struct {
	client *genai.Client
	model  string
}

func NewGenAIGenerator(ctx context.Context, apiKey, model string) (*GenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIGenerator{client: client, model: model}, nil
}

func (g *GenAIGenerator) Generate(ctx context.Context, systemPrompt, input string) (string, error) {
	return g.generate(ctx, input, g.config(systemPrompt))
}

func (g *GenAIGenerator) GenerateStructured(ctx context.Context, systemPrompt, input string, schema Schema, out any) error {
	cfg := g.config(systemPrompt)
	cfg.ResponseMIMEType = "application/json"
	cfg.ResponseSchema = schema.GenAI()

	content, err := g.generate(ctx, input, cfg)
	if err != nil {
		return err
	}
	return schema.Decode(content, out)
}

func (g *GenAIGenerator) config(systemPrompt string) *genai.GenerateContentConfig {
	temperature := float32(0)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
		Temperature:       &temperature,
	}
}

func (g *GenAIGenerator) generate(ctx context.Context, input string, cfg *genai.GenerateContentConfig) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: input}}},
	}, cfg)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: model returned no candidates", ErrGeneration)
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}
