package embeddings

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// embeddingServer fakes an OpenAI-compatible /embeddings endpoint that
// returns a fixed-width vector per input string.
func embeddingServer(t *testing.T, dim int, delay time.Duration) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}

		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		type datum struct {
			Embedding []float64 `json:"embedding"`
			Index     int       `json:"index"`
			Object    string    `json:"object"`
		}
		data := make([]datum, len(req.Input))
		for i := range req.Input {
			vec := make([]float64, dim)
			// Distinguishable per-input vectors.
			vec[0] = float64(i + 1)
			data[i] = datum{Embedding: vec, Index: i, Object: "embedding"}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
			"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
}

func newTestProvider(t *testing.T, baseURL string, timeout time.Duration) *OpenAIProvider {
	t.Helper()
	p, err := NewOpenAIProvider(Config{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Model:   "text-embedding-3-small",
		Timeout: timeout,
	}, nil)
	require.NoError(t, err)
	return p
}

func TestNewOpenAIProvider_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "missing api key", cfg: Config{Model: "m", Timeout: time.Second}},
		{name: "missing model", cfg: Config{APIKey: "k", Timeout: time.Second}},
		{name: "zero timeout", cfg: Config{APIKey: "k", Model: "m"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOpenAIProvider(tt.cfg, nil)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestOpenAIProvider_EmbedQuery(t *testing.T) {
	srv := embeddingServer(t, 1536, 0)
	defer srv.Close()

	p := newTestProvider(t, srv.URL, 5*time.Second)

	vec, err := p.EmbedQuery(context.Background(), "I like concise replies")
	require.NoError(t, err)
	assert.Len(t, vec, 1536)
	assert.Equal(t, float32(1), vec[0])
}

func TestOpenAIProvider_EmbedDocuments(t *testing.T) {
	srv := embeddingServer(t, 8, 0)
	defer srv.Close()

	p := newTestProvider(t, srv.URL, 5*time.Second)

	vectors, err := p.EmbedDocuments(context.Background(), []string{"first", "second", "third"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	// Order preserved.
	assert.Equal(t, float32(1), vectors[0][0])
	assert.Equal(t, float32(2), vectors[1][0])
	assert.Equal(t, float32(3), vectors[2][0])
}

func TestOpenAIProvider_EmptyInput(t *testing.T) {
	// No server: empty input must fail before any network call.
	p := newTestProvider(t, "http://127.0.0.1:0", time.Second)

	_, err := p.EmbedDocuments(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = p.EmbedDocuments(context.Background(), []string{"ok", "   "})
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestOpenAIProvider_Timeout(t *testing.T) {
	srv := embeddingServer(t, 8, 2*time.Second)
	defer srv.Close()

	p := newTestProvider(t, srv.URL, 50*time.Millisecond)

	_, err := p.EmbedQuery(context.Background(), "slow")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestOpenAIProvider_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error": {"message": "boom"}}`)
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL, time.Second)

	_, err := p.EmbedQuery(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestOpenAIProvider_Dimension(t *testing.T) {
	tests := []struct {
		model string
		want  int
	}{
		{model: "text-embedding-3-small", want: 1536},
		{model: "text-embedding-ada-002", want: 1536},
		{model: "text-embedding-3-large", want: 3072},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			p, err := NewOpenAIProvider(Config{
				APIKey:  "k",
				Model:   tt.model,
				Timeout: time.Second,
			}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Dimension())
		})
	}
}
