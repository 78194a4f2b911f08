package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// fakeModel records the last call and answers with a fixed response.
type fakeModel struct {
	response string
	choices  bool
	err      error

	messages []llms.MessageContent
	options  llms.CallOptions
}

func (m *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	m.options = llms.CallOptions{}
	for _, opt := range options {
		opt(&m.options)
	}
	if m.err != nil {
		return nil, m.err
	}
	if !m.choices {
		return &llms.ContentResponse{}, nil
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.response}}}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func textOf(t *testing.T, msg llms.MessageContent) string {
	t.Helper()
	require.Len(t, msg.Parts, 1)
	part, ok := msg.Parts[0].(llms.TextContent)
	require.True(t, ok)
	return part.Text
}

func TestLangChainGenerator_Generate(t *testing.T) {
	model := &fakeModel{response: "a summary", choices: true}
	gen := NewLangChainGenerator(model)

	got, err := gen.Generate(context.Background(), "You are a summarizer.", "Text: hello")
	require.NoError(t, err)
	assert.Equal(t, "a summary", got)

	require.Len(t, model.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, "You are a summarizer.", textOf(t, model.messages[0]))
	assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[1].Role)
	assert.Equal(t, "Text: hello", textOf(t, model.messages[1]))
	assert.False(t, model.options.JSONMode)
}

func TestLangChainGenerator_GenerateErrors(t *testing.T) {
	gen := NewLangChainGenerator(&fakeModel{err: errors.New("rate limited")})
	_, err := gen.Generate(context.Background(), "s", "i")
	assert.ErrorIs(t, err, ErrGeneration)

	gen = NewLangChainGenerator(&fakeModel{})
	_, err = gen.Generate(context.Background(), "s", "i")
	assert.ErrorIs(t, err, ErrGeneration)
}

func TestLangChainGenerator_GenerateStructured(t *testing.T) {
	model := &fakeModel{response: `{"destination": "data"}`, choices: true}
	gen := NewLangChainGenerator(model)

	var out struct {
		Destination string `json:"destination"`
	}
	require.NoError(t, gen.GenerateStructured(context.Background(), "Route it.", "plot revenue", routeSchema, &out))
	assert.Equal(t, "data", out.Destination)
	assert.True(t, model.options.JSONMode)
	assert.Contains(t, textOf(t, model.messages[0]), `"destination"`)
	assert.Contains(t, textOf(t, model.messages[0]), "Route it.")
}

func TestLangChainGenerator_GenerateStructuredViolation(t *testing.T) {
	gen := NewLangChainGenerator(&fakeModel{response: `{"destination": "elsewhere"}`, choices: true})

	var out struct {
		Destination string `json:"destination"`
	}
	err := gen.GenerateStructured(context.Background(), "Route it.", "q", routeSchema, &out)
	assert.ErrorIs(t, err, ErrSchemaViolation)
}
