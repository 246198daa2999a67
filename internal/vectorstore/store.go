// Package vectorstore provides the memory record backends.
//
// Two implementations share one contract: a durable Postgres store
// using pgvector, and a volatile in-memory store built on chromem-go.
// Callers never branch on which one they hold.
package vectorstore

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for store operations.
var (
	// ErrUnavailable indicates the backend could not be reached or
	// failed mid-operation. Distinct from an empty result set, which
	// is a successful search.
	ErrUnavailable = errors.New("vector store unavailable")
	// ErrInvalidConfig indicates the store config is unusable.
	ErrInvalidConfig = errors.New("invalid vector store config")
	// ErrEmptyContent indicates a record with no content was submitted.
	ErrEmptyContent = errors.New("empty record content")
	// ErrInvalidRecord indicates a record or query that violates the
	// store contract: missing user, missing or mis-sized embedding,
	// non-positive limit.
	ErrInvalidRecord = errors.New("invalid record")
)

// Record is a single memory owned by a user.
type Record struct {
	// ID uniquely identifies the record. Assigned by Store when empty.
	ID string
	// UserID scopes the record. Searches never cross user boundaries.
	UserID string
	// Content is the memorized text.
	Content string
	// Category classifies the memory (preference, health, ...).
	Category string
	// CreatedAt is the persistence timestamp. Assigned by Store when zero.
	CreatedAt time.Time
	// Embedding is the precomputed dense vector for Content.
	Embedding []float32
}

// SearchResult pairs a record with its similarity to the query.
type SearchResult struct {
	Record
	// Score is cosine similarity in [0, 1], higher is closer.
	Score float32
}

// Store persists memory records and retrieves them by vector similarity.
//
// Search results are ordered by Score descending; records with equal
// scores are ordered newest first. A search with no matches returns an
// empty slice and a nil error.
type Store interface {
	// Store persists one record and returns its ID.
	Store(ctx context.Context, rec Record) (string, error)
	// Search returns up to limit records for userID, closest first.
	Search(ctx context.Context, queryEmbedding []float32, userID string, limit int) ([]SearchResult, error)
	// Close releases backend resources. Idempotent.
	Close() error
}
