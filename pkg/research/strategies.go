package research

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/mikeboe/doc-analyst/pkg/llm"
	"github.com/mikeboe/doc-analyst/pkg/retrieval"
	"github.com/mikeboe/doc-analyst/pkg/splitter"
)

const (
	abstractSystemPrompt = "You are an expert summarizer. Provide a detailed summary of the abstract from the following text."
	keywordsSystemPrompt = "You are an expert at extracting keywords from a research paper."
	summarySystemPrompt  = "You are a helpful assistant that writes concise summaries."
	answerSystemPrompt   = "You are a helpful assistant that answers questions about a document."

	summaryPrompt = "Write a concise summary of the following:\n\n\"%s\"\n\nCONCISE SUMMARY:"
	answerPrompt  = "Use the following pieces of context to answer the question at the end. " +
		"If you don't know the answer, just say that you don't know, don't try to make up an answer.\n\n" +
		"%s\n\nQuestion: %s\nHelpful Answer:"

	// keywordChunks is the number of leading chunks keywords are extracted from.
	keywordChunks = 4
)

var keywordsSchema = llm.StringListSchema(
	"Keywords",
	"A list of important keywords extracted from a document.",
	"keywords",
	"A list of 5-10 of the most important keywords and terms from the text.",
)

// Summarize runs the map-reduce summary over the current corpus.
func (a *Agent) Summarize(ctx context.Context) (Result, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.summarize(ctx, a.corpus)
}

// SummarizeAbstract summarizes the first chunk of the current corpus.
func (a *Agent) SummarizeAbstract(ctx context.Context) (Result, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.summarizeAbstract(ctx, a.corpus)
}

// ExtractKeywords lists the key terms of the opening chunks of the current corpus.
func (a *Agent) ExtractKeywords(ctx context.Context) (Result, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.extractKeywords(ctx, a.corpus)
}

// AnswerQuestion answers question from the chunks most similar to it.
func (a *Agent) AnswerQuestion(ctx context.Context, question string) (Result, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.answerQuestion(ctx, a.corpus, question)
}

func empty(c *Corpus) bool {
	return c == nil || len(c.Chunks) == 0
}

func (a *Agent) summarize(ctx context.Context, c *Corpus) (Result, error) {
	if empty(c) {
		return textResult(MsgNoCorpus), nil
	}
	a.Logger.Info("Starting map stage", "chunks", len(c.Chunks), "concurrency", a.Config.MapConcurrency)

	partials, err := a.mapChunks(ctx, c.Chunks)
	if err != nil {
		return Result{}, err
	}

	summary, err := a.reduce(ctx, partials)
	if err != nil {
		return Result{}, err
	}
	return textResult(summary), nil
}

// mapChunks summarizes every chunk independently. Results are stored by position.
func (a *Agent) mapChunks(ctx context.Context, chunks []splitter.Chunk) ([]string, error) {
	partials := make([]string, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.Config.MapConcurrency)

	for i, chunk := range chunks {
		g.Go(func() error {
			out, err := a.LLM.Generate(gctx, summarySystemPrompt, fmt.Sprintf(summaryPrompt, chunk.Content))
			if err != nil {
				return fmt.Errorf("failed to summarize chunk %d: %w", chunk.Position, err)
			}
			partials[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return partials, nil
}

// reduce combines partial summaries in order. Inputs longer than MaxReduceInput are
// first collapsed group by group until they fit.
func (a *Agent) reduce(ctx context.Context, partials []string) (string, error) {
	if len(partials) == 1 {
		return partials[0], nil
	}

	for len(partials) > 1 && utf8.RuneCountInString(strings.Join(partials, "\n\n")) > a.Config.MaxReduceInput {
		groups := groupByLength(partials, a.Config.MaxReduceInput)
		if len(groups) == len(partials) {
			break
		}
		a.Logger.Info("Collapsing partial summaries", "partials", len(partials), "groups", len(groups))

		collapsed := make([]string, len(groups))
		for i, group := range groups {
			if len(group) == 1 {
				collapsed[i] = group[0]
				continue
			}
			out, err := a.combine(ctx, group)
			if err != nil {
				return "", err
			}
			collapsed[i] = out
		}
		partials = collapsed
	}

	if len(partials) == 1 {
		return partials[0], nil
	}
	return a.combine(ctx, partials)
}

func (a *Agent) combine(ctx context.Context, partials []string) (string, error) {
	out, err := a.LLM.Generate(ctx, summarySystemPrompt, fmt.Sprintf(summaryPrompt, strings.Join(partials, "\n\n")))
	if err != nil {
		return "", fmt.Errorf("failed to combine summaries: %w", err)
	}
	return out, nil
}

// groupByLength splits texts into consecutive groups whose joined length stays within
// limit runes. A text longer than limit forms its own group.
func groupByLength(texts []string, limit int) [][]string {
	var groups [][]string
	var current []string
	size := 0

	for _, t := range texts {
		n := utf8.RuneCountInString(t)
		sep := 0
		if len(current) > 0 {
			sep = 2
		}
		if len(current) > 0 && size+sep+n > limit {
			groups = append(groups, current)
			current, size, sep = nil, 0, 0
		}
		current = append(current, t)
		size += sep + n
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

func (a *Agent) summarizeAbstract(ctx context.Context, c *Corpus) (Result, error) {
	if empty(c) {
		return textResult(MsgNoCorpus), nil
	}

	out, err := a.LLM.Generate(ctx, abstractSystemPrompt, "Text: "+c.Chunks[0].Content)
	if err != nil {
		return Result{}, fmt.Errorf("failed to summarize abstract: %w", err)
	}
	return textResult(out), nil
}

func (a *Agent) extractKeywords(ctx context.Context, c *Corpus) (Result, error) {
	if empty(c) {
		return textResult(MsgNoCorpus), nil
	}

	head := c.Chunks[:min(keywordChunks, len(c.Chunks))]
	parts := make([]string, len(head))
	for i, chunk := range head {
		parts[i] = chunk.Content
	}

	var out struct {
		Keywords []string `json:"keywords"`
	}
	input := "Extract the most important keywords from the following text: " + strings.Join(parts, " ")
	if err := a.LLM.GenerateStructured(ctx, keywordsSystemPrompt, input, keywordsSchema, &out); err != nil {
		return Result{}, fmt.Errorf("failed to extract keywords: %w", err)
	}
	if len(out.Keywords) == 0 {
		return Result{}, fmt.Errorf("failed to extract keywords: %w: empty keyword list", llm.ErrSchemaViolation)
	}

	return textResult(strings.Join(out.Keywords, ", ")), nil
}

func (a *Agent) answerQuestion(ctx context.Context, c *Corpus, question string) (Result, error) {
	if empty(c) {
		return textResult(MsgNoCorpus), nil
	}

	hits, err := a.Index.Query(ctx, question, a.Config.TopK)
	if err != nil {
		return Result{}, fmt.Errorf("failed to retrieve context: %w", err)
	}
	if len(hits) == 0 {
		return Result{}, fmt.Errorf("failed to retrieve context: %w: no chunks indexed for the current document", retrieval.ErrUnavailable)
	}

	contexts := make([]string, len(hits))
	sources := make([]Source, len(hits))
	for i, h := range hits {
		contexts[i] = h.Chunk.Content
		sources[i] = Source{Position: h.Chunk.Position, Score: h.Score, Content: h.Chunk.Content}
	}

	out, err := a.LLM.Generate(ctx, answerSystemPrompt, fmt.Sprintf(answerPrompt, strings.Join(contexts, "\n\n"), question))
	if err != nil {
		return Result{}, fmt.Errorf("failed to answer question: %w", err)
	}

	a.Logger.Info("Answered question", "question", question, "sources", len(sources))
	return Result{Type: "text", Message: out, Sources: sources}, nil
}
