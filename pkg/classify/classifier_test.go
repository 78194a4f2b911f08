package classify

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikeboe/doc-analyst/pkg/llm"
)

type color string

const (
	red  color = "red"
	blue color = "blue"
)

// stubGenerator answers structured calls with a fixed raw JSON document.
type stubGenerator struct {
	raw   string
	err   error
	input string
	calls int
}

func (s *stubGenerator) Generate(context.Context, string, string) (string, error) {
	return "", errors.New("not used")
}

func (s *stubGenerator) GenerateStructured(_ context.Context, _ string, input string, schema llm.Schema, out any) error {
	s.calls++
	s.input = input
	if s.err != nil {
		return s.err
	}
	return schema.Decode(s.raw, out)
}

func newColorClassifier(t *testing.T, gen llm.Generator) *Classifier[color] {
	t.Helper()
	c, err := New(gen, Options[color]{
		Name:          "Color",
		Labels:        []color{red, blue},
		Fallback:      blue,
		SystemPrompt:  "Pick a color.",
		HumanTemplate: "Classify: {query}",
		Field:         "color",
	})
	require.NoError(t, err)
	return c
}

func TestClassifier_Decide(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		err          error
		want         color
		wantFallback bool
	}{
		{"Valid label", `{"color": "red"}`, nil, red, false},
		{"Valid fallback label", `{"color": "blue"}`, nil, blue, false},
		{"Unknown label", `{"color": "green"}`, nil, blue, true},
		{"Malformed output", `red`, nil, blue, true},
		{"Generator error", "", fmt.Errorf("%w: timeout", llm.ErrGeneration), blue, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{raw: tt.raw, err: tt.err}
			d := newColorClassifier(t, gen).Decide(context.Background(), "a rose")

			assert.Equal(t, tt.want, d.Label)
			assert.Equal(t, tt.wantFallback, d.Fallback)
			if tt.wantFallback {
				assert.Error(t, d.Err)
			} else {
				assert.NoError(t, d.Err)
			}
			assert.Equal(t, "Classify: a rose", gen.input)
			assert.Equal(t, 1, gen.calls)
		})
	}
}

func TestClassifier_Classify(t *testing.T) {
	c := newColorClassifier(t, &stubGenerator{raw: `{"color": "red"}`})
	assert.Equal(t, red, c.Classify(context.Background(), "a rose"))
	assert.Equal(t, []color{red, blue}, c.Labels())
}

func TestNew_InvalidOptions(t *testing.T) {
	gen := &stubGenerator{}

	_, err := New(gen, Options[color]{Name: "Empty", Fallback: red, Field: "color"})
	assert.Error(t, err)

	_, err = New(gen, Options[color]{Name: "Fallback", Labels: []color{red}, Fallback: blue, Field: "color"})
	assert.Error(t, err)

	_, err = New(gen, Options[color]{Name: "Field", Labels: []color{red}, Fallback: red})
	assert.Error(t, err)
}
