// Package memu implements the long-term memory service: memorize text
// into a vector backend and retrieve it by semantic similarity.
package memu

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Charpup/openclaw-memu-skill/internal/config"
	"github.com/Charpup/openclaw-memu-skill/internal/embeddings"
	"github.com/Charpup/openclaw-memu-skill/internal/logging"
	"github.com/Charpup/openclaw-memu-skill/internal/trigger"
	"github.com/Charpup/openclaw-memu-skill/internal/vectorstore"
	"go.uber.org/zap"
)

// DefaultUserID scopes memories when the caller does not name a user.
const DefaultUserID = "default"

// Service coordinates the trigger engine, the embedding provider and
// the vector store behind the two public operations.
type Service struct {
	store    vectorstore.Store
	embedder embeddings.Provider
	engine   *trigger.Engine
	cache    *retrieveCache
	logger   *zap.Logger
	metrics  *serviceMetrics

	defaultLimit int

	closeOnce sync.Once
	closeErr  error
}

// NewService wires a service from an already-validated config snapshot.
//
// The store connection is the only IO performed here; a failure
// surfaces as ErrBackendUnavailable and leaves nothing to clean up.
func NewService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrConfigInvalid)
	}
	if err := cfg.Validate(); err != nil {
		return nil, classify(err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger.Debug("embedding credentials resolved",
		logging.RedactedString("api_key", cfg.Embedding.APIKey),
		zap.String("base_url", cfg.Embedding.BaseURL))

	embedder, err := embeddings.NewOpenAIProvider(embeddings.Config{
		APIKey:  cfg.Embedding.APIKey,
		BaseURL: cfg.Embedding.BaseURL,
		Model:   cfg.Embedding.Model,
		Timeout: cfg.Embedding.Timeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	return newService(ctx, cfg, vectorstoreFactory(cfg, embedder.Dimension()), embedder, logger)
}

// vectorstoreFactory defers store construction so tests can inject a
// store without a live backend.
func vectorstoreFactory(cfg *config.Config, dim int) func(context.Context, *zap.Logger) (vectorstore.Store, error) {
	return func(ctx context.Context, logger *zap.Logger) (vectorstore.Store, error) {
		return vectorstore.NewStore(ctx, cfg, dim, logger)
	}
}

func newService(
	ctx context.Context,
	cfg *config.Config,
	makeStore func(context.Context, *zap.Logger) (vectorstore.Store, error),
	embedder embeddings.Provider,
	logger *zap.Logger,
) (*Service, error) {
	store, err := makeStore(ctx, logger)
	if err != nil {
		return nil, classify(err)
	}

	cache, err := newRetrieveCache(cfg.Retrieve.CacheTTL)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	logger.Info("memory service ready",
		zap.String("provider", cfg.Store.Provider),
		zap.String("model", cfg.Embedding.Model))

	return &Service{
		store:        store,
		embedder:     embedder,
		engine:       trigger.MustNew(),
		cache:        cache,
		logger:       logger.Named("memu"),
		metrics:      newServiceMetrics(),
		defaultLimit: cfg.Retrieve.DefaultLimit,
	}, nil
}

// Memorize stores content for userID.
//
// In auto mode the trigger engine decides: unmatched content is
// skipped without touching the embedding API or the store, and the
// result reports Stored false. Explicit mode always stores; content
// that matches no rule is filed under the important category.
func (s *Service) Memorize(ctx context.Context, content, userID string, auto bool) (MemorizeResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return MemorizeResult{}, fmt.Errorf("%w: content cannot be empty", ErrValidation)
	}
	if userID == "" {
		userID = DefaultUserID
	}

	match := s.engine.Evaluate(content)
	category := match.Category
	if auto && !match.Matched {
		s.logger.Debug("auto memorize skipped, no trigger matched",
			zap.String("user_id", userID))
		s.metrics.recordMemorize(ctx, "", false)
		return MemorizeResult{Stored: false}, nil
	}
	if !match.Matched {
		category = trigger.CategoryImportant
	}

	// Auto mode persists the captured fragment the rule extracted.
	// Explicit mode persists the full text as submitted; the rule
	// match only enriches the category.
	text := content
	if auto && match.Content != "" {
		text = match.Content
	}

	vec, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return MemorizeResult{}, classify(err)
	}

	id, err := s.store.Store(ctx, vectorstore.Record{
		UserID:    userID,
		Content:   text,
		Category:  string(category),
		Embedding: vec,
	})
	if err != nil {
		return MemorizeResult{}, classify(err)
	}

	s.cache.invalidate(userID)
	s.metrics.recordMemorize(ctx, string(category), true)
	s.logger.Info("memorized",
		zap.String("id", id),
		zap.String("user_id", userID),
		zap.String("category", string(category)),
		zap.Bool("auto", auto))

	return MemorizeResult{ID: id, Stored: true, Category: string(category)}, nil
}

// Retrieve returns up to limit memories for userID ranked by semantic
// similarity to query. limit <= 0 is a validation error; entry points
// apply the configured default before calling.
func (s *Service) Retrieve(ctx context.Context, query, userID string, limit int) ([]RetrieveResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query cannot be empty", ErrValidation)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrValidation, limit)
	}
	if userID == "" {
		userID = DefaultUserID
	}

	start := time.Now()
	if cached, ok := s.cache.get(userID, query, limit); ok {
		s.metrics.recordRetrieve(ctx, time.Since(start).Seconds(), true)
		s.logger.Debug("retrieve served from cache",
			zap.String("user_id", userID),
			zap.Int("results", len(cached)))
		return cached, nil
	}

	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, classify(err)
	}

	found, err := s.store.Search(ctx, vec, userID, limit)
	if err != nil {
		return nil, classify(err)
	}

	results := make([]RetrieveResult, len(found))
	for i, r := range found {
		results[i] = RetrieveResult{
			Content:  r.Content,
			Category: r.Category,
			Score:    r.Score,
		}
	}

	s.cache.set(userID, query, limit, results)
	s.metrics.recordRetrieve(ctx, time.Since(start).Seconds(), false)
	s.logger.Info("retrieved",
		zap.String("user_id", userID),
		zap.Int("limit", limit),
		zap.Int("results", len(results)))
	return results, nil
}

// DefaultLimit reports the configured result count for callers that
// did not supply one.
func (s *Service) DefaultLimit() int {
	return s.defaultLimit
}

// Close releases the store connection and the cache. Idempotent;
// calls after the first return the first call's error.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		s.cache.close()
		s.closeErr = s.store.Close()
		s.logger.Info("memory service closed")
		_ = logging.Sync(s.logger)
	})
	return s.closeErr
}
