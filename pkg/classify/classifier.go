// Package classify maps free-text queries onto closed label sets with a structured
// generation. Classification fails open: any error yields the fallback label.
package classify

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/mikeboe/doc-analyst/pkg/llm"
)

// Options configures a Classifier.
type Options[L ~string] struct {
	Name             string
	Labels           []L
	Fallback         L
	SystemPrompt     string
	HumanTemplate    string // must contain {query}
	Field            string
	FieldDescription string
	Logger           *slog.Logger
}

// Decision is the outcome of a classification.
type Decision[L ~string] struct {
	Label    L
	Fallback bool
	Err      error
}

type Classifier[L ~string] struct {
	gen    llm.Generator
	opts   Options[L]
	schema llm.Schema
	logger *slog.Logger
}

func New[L ~string](gen llm.Generator, opts Options[L]) (*Classifier[L], error) {
	if len(opts.Labels) == 0 {
		return nil, fmt.Errorf("classifier %s has no labels", opts.Name)
	}
	if !slices.Contains(opts.Labels, opts.Fallback) {
		return nil, fmt.Errorf("classifier %s fallback %q is not a label", opts.Name, opts.Fallback)
	}
	if opts.Field == "" {
		return nil, fmt.Errorf("classifier %s has no field name", opts.Name)
	}

	labels := make([]string, len(opts.Labels))
	for i, l := range opts.Labels {
		labels[i] = string(l)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Classifier[L]{
		gen:    gen,
		opts:   opts,
		schema: llm.EnumSchema(opts.Name, opts.SystemPrompt, opts.Field, opts.FieldDescription, labels),
		logger: logger,
	}, nil
}

// Labels returns the closed label set.
func (c *Classifier[L]) Labels() []L {
	return slices.Clone(c.opts.Labels)
}

// Classify returns the label for query, or the fallback label on any failure.
func (c *Classifier[L]) Classify(ctx context.Context, query string) L {
	return c.Decide(ctx, query).Label
}

// Decide is Classify that also reports whether the fallback was used and why.
func (c *Classifier[L]) Decide(ctx context.Context, query string) Decision[L] {
	input := strings.ReplaceAll(c.opts.HumanTemplate, "{query}", query)

	out := map[string]any{}
	if err := c.gen.GenerateStructured(ctx, c.opts.SystemPrompt, input, c.schema, &out); err != nil {
		c.logger.Warn("Classification failed, using fallback",
			"classifier", c.opts.Name,
			"fallback", string(c.opts.Fallback),
			"error", err,
		)
		return Decision[L]{Label: c.opts.Fallback, Fallback: true, Err: err}
	}

	value, _ := out[c.opts.Field].(string)
	label := L(value)
	if !slices.Contains(c.opts.Labels, label) {
		err := fmt.Errorf("%w: label %q is not one of %v", llm.ErrSchemaViolation, label, c.opts.Labels)
		c.logger.Warn("Classification returned unknown label, using fallback",
			"classifier", c.opts.Name,
			"fallback", string(c.opts.Fallback),
			"error", err,
		)
		return Decision[L]{Label: c.opts.Fallback, Fallback: true, Err: err}
	}

	return Decision[L]{Label: label}
}
