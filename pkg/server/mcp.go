package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is the MCP server version.
const Version = "0.1.0"

const defaultSearchTopK = 5

type AnalyzeInput struct {
	Query string `json:"query" jsonschema:"the question or instruction about the ingested document"`
}

type AnalyzeOutput struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query"`
	TopK  int    `json:"topK,omitempty" jsonschema:"number of results to return (default 5)"`
}

type SearchOutput struct {
	Results string `json:"results"`
	Count   int    `json:"count"`
}

// NewMCPServer exposes the research agent as MCP tools.
func (h *Handler) NewMCPServer() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "doc-analyst", Version: Version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_document",
		Description: "Summarize, extract keywords or the abstract from, or answer a question about the ingested document.",
	}, h.handleAnalyze)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_document",
		Description: "Search the ingested document using semantic search.",
	}, h.handleSearch)

	return server
}

// MCPHandler serves the MCP tools over streamable HTTP.
func (h *Handler) MCPHandler() http.Handler {
	server := h.NewMCPServer()
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}

func (h *Handler) handleAnalyze(ctx context.Context, _ *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, AnalyzeOutput, error) {
	res, err := h.Research.HandleQuery(ctx, input.Query)
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}
	return nil, AnalyzeOutput{Type: res.Type, Message: res.Message}, nil
}

func (h *Handler) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	topK := input.TopK
	if topK <= 0 {
		topK = defaultSearchTopK
	}

	h.Logger.Info("Search document", "query", input.Query, "topK", topK)

	res, err := h.Research.Search(ctx, input.Query, topK)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	if len(res.Sources) == 0 {
		return nil, SearchOutput{Results: res.Message}, nil
	}

	formatted := make([]string, len(res.Sources))
	for i, src := range res.Sources {
		formatted[i] = fmt.Sprintf("[Position]: %d\n[Score]: %.4f\n[Content]: %s", src.Position, src.Score, src.Content)
	}

	return nil, SearchOutput{Results: strings.Join(formatted, "\n\n"), Count: len(res.Sources)}, nil
}
