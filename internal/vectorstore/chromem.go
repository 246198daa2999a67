package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// timeNow is a variable for testing purposes.
var timeNow = time.Now

var chromemTracer = otel.Tracer("memu.vectorstore.chromem")

const chromemCollection = "memories"

// ChromemStore implements Store with an in-process chromem-go database.
//
// Contents live for the process lifetime only; a restart starts empty.
// All vectors are precomputed by the caller, so the collection's
// embedding function is never invoked on the happy path.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	logger     *zap.Logger

	// mu guards userDocs. chromem caps nResults at the collection's
	// matching document count, so we track per-user counts ourselves
	// to always pass a valid value.
	mu       sync.Mutex
	userDocs map[string]int
}

var _ Store = (*ChromemStore)(nil)

// NewChromemStore creates an empty in-memory store.
func NewChromemStore(logger *zap.Logger) (*ChromemStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db := chromem.NewDB()
	collection, err := db.CreateCollection(chromemCollection, nil, rejectEmbedding)
	if err != nil {
		return nil, fmt.Errorf("%w: creating collection: %v", ErrUnavailable, err)
	}

	logger.Info("in-memory store initialized",
		zap.String("collection", chromemCollection))

	return &ChromemStore{
		db:         db,
		collection: collection,
		logger:     logger,
		userDocs:   make(map[string]int),
	}, nil
}

// rejectEmbedding is the collection embedding function. Every record
// arrives with a precomputed vector, so being asked to embed means a
// bug upstream.
func rejectEmbedding(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("precomputed embeddings required")
}

// Store persists one record and returns its ID.
func (s *ChromemStore) Store(ctx context.Context, rec Record) (string, error) {
	ctx, span := chromemTracer.Start(ctx, "ChromemStore.Store")
	defer span.End()

	if rec.Content == "" {
		return "", ErrEmptyContent
	}
	if rec.UserID == "" {
		return "", fmt.Errorf("%w: user ID is required", ErrInvalidRecord)
	}
	if len(rec.Embedding) == 0 {
		return "", fmt.Errorf("%w: record %q has no embedding", ErrInvalidRecord, rec.ID)
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = timeNow().UTC()
	}

	doc := chromem.Document{
		ID:      rec.ID,
		Content: rec.Content,
		Metadata: map[string]string{
			"user_id":    rec.UserID,
			"category":   rec.Category,
			"created_at": rec.CreatedAt.Format(time.RFC3339Nano),
		},
		Embedding: rec.Embedding,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.collection.AddDocuments(ctx, []chromem.Document{doc}, 1); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("%w: adding document: %v", ErrUnavailable, err)
	}
	s.userDocs[rec.UserID]++

	span.SetAttributes(attribute.String("record_id", rec.ID))
	s.logger.Debug("stored record",
		zap.String("id", rec.ID),
		zap.String("category", rec.Category))
	return rec.ID, nil
}

// Search returns up to limit records for userID, closest first.
func (s *ChromemStore) Search(ctx context.Context, queryEmbedding []float32, userID string, limit int) ([]SearchResult, error) {
	ctx, span := chromemTracer.Start(ctx, "ChromemStore.Search")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.Int("limit", limit),
	)

	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidRecord, limit)
	}
	if len(queryEmbedding) == 0 {
		return nil, fmt.Errorf("%w: query embedding cannot be empty", ErrInvalidRecord)
	}

	s.mu.Lock()
	count := s.userDocs[userID]
	s.mu.Unlock()

	if count == 0 {
		return []SearchResult{}, nil
	}

	// Fetch every record the user owns so ties can be broken on
	// recency before truncating to limit.
	results, err := s.collection.QueryEmbedding(ctx, queryEmbedding, count,
		map[string]string{"user_id": userID}, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: querying collection: %v", ErrUnavailable, err)
	}

	searchResults := make([]SearchResult, 0, len(results))
	for _, r := range results {
		createdAt, err := time.Parse(time.RFC3339Nano, r.Metadata["created_at"])
		if err != nil {
			s.logger.Warn("record has malformed created_at",
				zap.String("id", r.ID), zap.Error(err))
		}
		searchResults = append(searchResults, SearchResult{
			Record: Record{
				ID:        r.ID,
				UserID:    userID,
				Content:   r.Content,
				Category:  r.Metadata["category"],
				CreatedAt: createdAt,
			},
			Score: r.Similarity,
		})
	}

	// Score descending, newest first among equals.
	sort.SliceStable(searchResults, func(i, j int) bool {
		if searchResults[i].Score != searchResults[j].Score {
			return searchResults[i].Score > searchResults[j].Score
		}
		return searchResults[i].CreatedAt.After(searchResults[j].CreatedAt)
	})

	if len(searchResults) > limit {
		searchResults = searchResults[:limit]
	}

	span.SetAttributes(attribute.Int("results", len(searchResults)))
	return searchResults, nil
}

// Close releases resources. The in-memory store has none, but the
// contract requires idempotent teardown.
func (s *ChromemStore) Close() error {
	return nil
}
