package server

import (
	"context"

	"github.com/mikeboe/doc-analyst/pkg/research"
)

// DataAgent analyzes structured data files such as CSV and Excel sheets.
type DataAgent interface {
	Ingest(ctx context.Context, data []byte, fileName string) (research.Result, error)
	HandleQuery(ctx context.Context, query string) (research.Result, error)
}

// IsDataFile reports whether ext names a structured data format.
func IsDataFile(ext string) bool {
	switch ext {
	case "csv", "xlsx":
		return true
	}
	return false
}

const msgDataUnavailable = "Data analysis is not available on this server."

// UnavailableDataAgent answers every request with a notice that data analysis is
// not configured.
type UnavailableDataAgent struct{}

func (UnavailableDataAgent) Ingest(context.Context, []byte, string) (research.Result, error) {
	return research.Result{Type: "text", Message: msgDataUnavailable}, nil
}

func (UnavailableDataAgent) HandleQuery(context.Context, string) (research.Result, error) {
	return research.Result{Type: "text", Message: msgDataUnavailable}, nil
}
