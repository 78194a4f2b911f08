package extract

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMistralOCRExtractor(t *testing.T) {
	var got struct {
		Model    string            `json:"model"`
		Document map[string]string `json:"document"`
	}
	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pages":[{"index":0,"markdown":"# Title"},{"index":1,"markdown":"Body"}]}`))
	}))
	defer srv.Close()

	text, err := NewMistralOCRExtractor("secret").WithBaseURL(srv.URL).Extract(context.Background(), []byte("%PDF"))
	require.NoError(t, err)

	assert.Equal(t, "# Title\n\nBody", text)
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, mistralOCRModel, got.Model)
	assert.Equal(t, "document_url", got.Document["type"])
	assert.Equal(t, "data:application/pdf;base64,"+base64.StdEncoding.EncodeToString([]byte("%PDF")), got.Document["document_url"])
}

func TestMistralOCRExtractor_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewMistralOCRExtractor("secret").WithBaseURL(srv.URL).Extract(context.Background(), []byte("%PDF"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")

	_, err = NewMistralOCRExtractor("").Extract(context.Background(), []byte("%PDF"))
	assert.Error(t, err)
}
