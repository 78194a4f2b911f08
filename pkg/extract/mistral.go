package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	mistralOCRURL   = "https://api.mistral.ai/v1/ocr"
	mistralOCRModel = "mistral-ocr-latest"
)

type ocrPage struct {
	Index    int    `json:"index"`
	Markdown string `json:"markdown"`
}

type ocrResponse struct {
	Pages []ocrPage `json:"pages"`
}

var _ Extractor = (*MistralOCRExtractor)(nil)

// MistralOCRExtractor extracts PDF text with the Mistral OCR API.
type MistralOCRExtractor struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewMistralOCRExtractor(apiKey string) *MistralOCRExtractor {
	return &MistralOCRExtractor{
		apiKey:  apiKey,
		baseURL: mistralOCRURL,
		client:  &http.Client{Timeout: 2 * time.Minute},
	}
}

// WithBaseURL points the extractor at another OCR endpoint.
func (m *MistralOCRExtractor) WithBaseURL(url string) *MistralOCRExtractor {
	m.baseURL = url
	return m
}

func (m *MistralOCRExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	if m.apiKey == "" {
		return "", fmt.Errorf("MISTRAL_API_KEY is not set")
	}

	reqBody := map[string]interface{}{
		"model": mistralOCRModel,
		"document": map[string]string{
			"type":         "document_url",
			"document_url": "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(data),
		},
		"include_image_base64": false,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make API request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status: %s, body: %s", resp.Status, string(body))
	}

	var ocr ocrResponse
	if err := json.Unmarshal(body, &ocr); err != nil {
		return "", fmt.Errorf("failed to unmarshal OCR response: %w", err)
	}

	pages := make([]string, 0, len(ocr.Pages))
	for _, page := range ocr.Pages {
		pages = append(pages, page.Markdown)
	}
	return strings.Join(pages, "\n\n"), nil
}
