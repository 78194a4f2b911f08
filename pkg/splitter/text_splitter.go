package splitter

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

const (
	// DefaultChunkSize is the default window size in runes.
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is the default number of runes shared by consecutive chunks.
	DefaultChunkOverlap = 100
)

var _ textsplitter.TextSplitter = (*WindowSplitter)(nil)

// Chunk is an immutable slice of a document with its position in document order.
type Chunk struct {
	Position int    `json:"position"`
	Content  string `json:"content"`
}

// WindowSplitter splits text into fixed-size overlapping windows.
// Sizes are measured in runes, so multi-byte characters are never cut.
type WindowSplitter struct {
	chunkSize    int
	chunkOverlap int
}

// New creates a window splitter. The overlap must be smaller than the chunk size.
func New(chunkSize, chunkOverlap int) (*WindowSplitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", chunkSize, chunkOverlap)
	}
	return &WindowSplitter{chunkSize: chunkSize, chunkOverlap: chunkOverlap}, nil
}

// NewDefault creates a window splitter with DefaultChunkSize and DefaultChunkOverlap.
func NewDefault() *WindowSplitter {
	return &WindowSplitter{chunkSize: DefaultChunkSize, chunkOverlap: DefaultChunkOverlap}
}

// ChunkSize returns the window size in runes.
func (ws *WindowSplitter) ChunkSize() int { return ws.chunkSize }

// ChunkOverlap returns the overlap in runes.
func (ws *WindowSplitter) ChunkOverlap() int { return ws.chunkOverlap }

// Split returns the minimal sequence of windows covering text. Window i starts at
// i*(size-overlap); the last window is the first one reaching the end of text.
func (ws *WindowSplitter) Split(text string) []Chunk {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := ws.chunkSize - ws.chunkOverlap
	chunks := make([]Chunk, 0, len(runes)/step+1)

	for start := 0; ; start += step {
		end := start + ws.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, Chunk{
			Position: len(chunks),
			Content:  string(runes[start:end]),
		})
		if end == len(runes) {
			break
		}
	}

	return chunks
}

// SplitText splits text into chunk contents. It satisfies textsplitter.TextSplitter.
func (ws *WindowSplitter) SplitText(text string) ([]string, error) {
	chunks := ws.Split(text)
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Content
	}
	return out, nil
}

// Join reverses Split: it concatenates chunks dropping the leading overlap of every
// chunk after the first.
func Join(chunks []Chunk, overlap int) string {
	var sb strings.Builder
	for i, c := range chunks {
		if i == 0 {
			sb.WriteString(c.Content)
			continue
		}
		runes := []rune(c.Content)
		if overlap < len(runes) {
			sb.WriteString(string(runes[overlap:]))
		}
	}
	return sb.String()
}
