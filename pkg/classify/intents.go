package classify

import (
	"log/slog"

	"github.com/mikeboe/doc-analyst/pkg/llm"
)

// Intent is the kind of research request a query expresses.
type Intent string

const (
	IntentSummary  Intent = "summary"
	IntentKeywords Intent = "keywords"
	IntentAbstract Intent = "abstract"
	IntentQuestion Intent = "question"
)

const intentSystemPrompt = `You are an expert at classifying a user's query for a research agent.
Classify the query into one of the following categories:
- 'summary': If the user asks for a summary, overview, or main points of the entire document.
- 'abstract': If the user specifically asks for the abstract.
- 'keywords': If the user asks for keywords or key terms.
- 'question': If the user is asking a specific question about the document's content. This is a fallback if no other category matches.
`

// NewIntentClassifier returns the research sub-router. Unclassifiable queries are
// treated as questions.
func NewIntentClassifier(gen llm.Generator, logger *slog.Logger) *Classifier[Intent] {
	c, err := New(gen, Options[Intent]{
		Name:             "ResearchQueryType",
		Labels:           []Intent{IntentSummary, IntentKeywords, IntentAbstract, IntentQuestion},
		Fallback:         IntentQuestion,
		SystemPrompt:     intentSystemPrompt,
		HumanTemplate:    "Classify the following user query: {query}",
		Field:            "category",
		FieldDescription: "The type of query, must be one of 'summary', 'keywords', 'abstract', or 'question'.",
		Logger:           logger,
	})
	if err != nil {
		panic(err)
	}
	return c
}
