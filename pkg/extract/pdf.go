package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found: install poppler (brew install poppler / apt install poppler-utils)")

// CommandRunner runs an external command and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil && stderr.Len() > 0 {
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, err
}

var _ Extractor = (*PDFToTextExtractor)(nil)

// PDFToTextExtractor extracts PDF text with poppler's pdftotext.
type PDFToTextExtractor struct {
	runner   CommandRunner
	lookPath func(string) (string, error)
}

func NewPDFToTextExtractor() *PDFToTextExtractor {
	return &PDFToTextExtractor{runner: execRunner{}, lookPath: exec.LookPath}
}

// NewPDFToTextExtractorWithRunner uses runner instead of executing pdftotext.
func NewPDFToTextExtractorWithRunner(runner CommandRunner) *PDFToTextExtractor {
	return &PDFToTextExtractor{
		runner:   runner,
		lookPath: func(file string) (string, error) { return file, nil },
	}
}

// CheckAvailable reports whether pdftotext is on PATH.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

func (p *PDFToTextExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	if _, err := p.lookPath("pdftotext"); err != nil {
		return "", ErrPDFToolNotFound
	}

	tmp, err := os.CreateTemp("", "doc-analyst-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}

	out, err := p.runner.Run(ctx, "pdftotext", "-layout", tmp.Name(), "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}
	return string(out), nil
}
