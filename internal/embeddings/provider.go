// Package embeddings converts text into dense vectors via an external
// OpenAI-compatible API.
package embeddings

import (
	"context"
	"errors"
)

// Sentinel errors for embedding operations.
var (
	// ErrEmptyInput indicates the caller passed no text to embed.
	ErrEmptyInput = errors.New("empty input")
	// ErrInvalidConfig indicates the provider config is unusable.
	ErrInvalidConfig = errors.New("invalid embeddings config")
	// ErrEmbeddingFailed indicates the upstream API rejected or failed
	// the request for a non-timeout reason.
	ErrEmbeddingFailed = errors.New("embedding request failed")
	// ErrTimeout indicates the upstream API did not answer within the
	// configured deadline. Callers own the retry policy; the provider
	// never retries on its own.
	ErrTimeout = errors.New("embedding request timed out")
)

// Provider generates embeddings for queries and documents.
type Provider interface {
	// EmbedQuery embeds a single query string.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	// EmbedDocuments embeds a batch of documents in one request,
	// returning one vector per input in the same order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	// Dimension reports the width of the vectors this provider emits.
	Dimension() int
}
