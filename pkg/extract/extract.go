// Package extract turns uploaded document bytes into plain text.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedType is returned for type tags without an extractor.
var ErrUnsupportedType = errors.New("unsupported file type")

// TypeTag identifies a document format.
type TypeTag string

const (
	TypePDF  TypeTag = "pdf"
	TypeDOCX TypeTag = "docx"
)

// ParseTypeTag normalises a tag or file extension such as "PDF" or ".docx".
func ParseTypeTag(s string) (TypeTag, error) {
	tag := TypeTag(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	switch tag {
	case TypePDF, TypeDOCX:
		return tag, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedType, s)
}

// TypeFromFilename returns the tag implied by a file name's extension.
func TypeFromFilename(name string) (TypeTag, error) {
	return ParseTypeTag(filepath.Ext(name))
}

// Extractor converts raw bytes of one format to text.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// Registry dispatches extraction by type tag.
type Registry struct {
	extractors map[TypeTag]Extractor
}

func NewRegistry() *Registry {
	return &Registry{extractors: make(map[TypeTag]Extractor)}
}

// NewDefaultRegistry registers the docx extractor and the given pdf extractor.
func NewDefaultRegistry(pdf Extractor) *Registry {
	r := NewRegistry()
	r.Register(TypeDOCX, NewDocxExtractor())
	r.Register(TypePDF, pdf)
	return r
}

func (r *Registry) Register(tag TypeTag, e Extractor) {
	r.extractors[tag] = e
}

// Supports reports whether tag has an extractor.
func (r *Registry) Supports(tag TypeTag) bool {
	_, ok := r.extractors[tag]
	return ok
}

// Extract runs the extractor registered for tag.
func (r *Registry) Extract(ctx context.Context, data []byte, tag TypeTag) (string, error) {
	e, ok := r.extractors[tag]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, tag)
	}

	text, err := e.Extract(ctx, data)
	if err != nil {
		return "", fmt.Errorf("failed to extract %s: %w", tag, err)
	}
	return text, nil
}
