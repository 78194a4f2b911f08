package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
)

var _ Generator = (*LangChainGenerator)(nil)

// LangChainGenerator runs generations through a langchaingo model at temperature 0.
type LangChainGenerator struct {
	model llms.Model
}

func NewLangChainGenerator(model llms.Model) *LangChainGenerator {
	return &LangChainGenerator{model: model}
}

func (g *LangChainGenerator) Generate(ctx context.Context, systemPrompt, input string) (string, error) {
	return g.generate(ctx, systemPrompt, input, llms.WithTemperature(0))
}

// GenerateStructured embeds the schema in the system prompt, requests JSON mode and
// validates the result.
func (g *LangChainGenerator) GenerateStructured(ctx context.Context, systemPrompt, input string, schema Schema, out any) error {
	content, err := g.generate(ctx, systemPrompt+"\n\n"+schema.Instructions(), input,
		llms.WithTemperature(0),
		llms.WithJSONMode(),
	)
	if err != nil {
		return err
	}
	return schema.Decode(content, out)
}

func (g *LangChainGenerator) generate(ctx context.Context, systemPrompt, input string, options ...llms.CallOption) (string, error) {
	resp, err := g.model.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, input),
	}, options...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: llm returned no choices", ErrGeneration)
	}

	return resp.Choices[0].Content, nil
}
