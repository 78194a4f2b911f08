// Package llm defines the generation capabilities used by the agents and their
// langchaingo and genai implementations.
package llm

import (
	"context"
	"errors"
)

var (
	// ErrGeneration wraps any failure of the underlying model call.
	ErrGeneration = errors.New("generation failed")
	// ErrSchemaViolation is returned when structured output does not satisfy its schema.
	ErrSchemaViolation = errors.New("output does not match schema")
)

// Generator is a text generation capability.
type Generator interface {
	// Generate returns free text for a system prompt and a single user turn.
	Generate(ctx context.Context, systemPrompt, input string) (string, error)
	// GenerateStructured decodes output satisfying schema into out, or fails with
	// ErrGeneration / ErrSchemaViolation.
	GenerateStructured(ctx context.Context, systemPrompt, input string, schema Schema, out any) error
}
