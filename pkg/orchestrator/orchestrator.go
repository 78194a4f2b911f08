// Package orchestrator routes user queries to the data agent or the research agent.
package orchestrator

import (
	"context"
	"log/slog"

	"github.com/mikeboe/doc-analyst/pkg/classify"
	"github.com/mikeboe/doc-analyst/pkg/llm"
)

type Route string

const (
	RouteData     Route = "data"
	RouteResearch Route = "research"
)

const systemPrompt = `You are an expert at routing a user query to a 'data' agent or a 'research' agent based on the query.

- The 'data' agent handles queries about analyzing numerical or categorical data from tables (like CSVs). This includes calculations, trends, plotting, sales figures, revenue, etc.
- The 'research' agent handles queries about understanding, summarizing, or finding information within text documents (like PDFs).

You must route the user's query to either the 'data' or 'research' agent.
`

type Orchestrator struct {
	classifier *classify.Classifier[Route]
	logger     *slog.Logger
}

func New(gen llm.Generator, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}

	c, err := classify.New(gen, classify.Options[Route]{
		Name:             "RouteQuery",
		Labels:           []Route{RouteData, RouteResearch},
		Fallback:         RouteResearch,
		SystemPrompt:     systemPrompt,
		HumanTemplate:    "Route the following user query: {query}",
		Field:            "destination",
		FieldDescription: "The destination agent, must be one of 'data' or 'research'.",
		Logger:           logger,
	})
	if err != nil {
		panic(err)
	}

	return &Orchestrator{classifier: c, logger: logger}
}

// RouteQuery picks the destination agent for query. It never fails: any
// classification problem routes to research.
func (o *Orchestrator) RouteQuery(ctx context.Context, query string) Route {
	d := o.classifier.Decide(ctx, query)
	o.logger.Info("Routed query", "query", query, "destination", string(d.Label), "fallback", d.Fallback)
	return d.Label
}
