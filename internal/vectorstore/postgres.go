package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var pgTracer = otel.Tracer("memu.vectorstore.postgres")

// PostgresConfig holds connection settings for the durable store.
type PostgresConfig struct {
	// DSN is the connection string. Required.
	DSN string
	// VectorSize is the embedding dimension, fixed at table creation.
	VectorSize int
	// Pool settings. Zero values keep the driver defaults.
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Validate validates the configuration.
func (c *PostgresConfig) Validate() error {
	if c.DSN == "" {
		return fmt.Errorf("%w: DSN is required", ErrInvalidConfig)
	}
	if c.VectorSize <= 0 {
		return fmt.Errorf("%w: vector size must be positive", ErrInvalidConfig)
	}
	return nil
}

// PostgresStore implements Store on PostgreSQL with the pgvector
// extension. Records survive process restarts.
type PostgresStore struct {
	db     *sqlx.DB
	logger *zap.Logger
	dim    int
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects to PostgreSQL and prepares the schema.
//
// The schema bootstrap is idempotent. A connection or bootstrap
// failure surfaces as ErrUnavailable so callers can distinguish an
// unreachable backend from bad configuration.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig, logger *zap.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to postgres: %v", ErrUnavailable, err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	s := &PostgresStore{db: db, logger: logger, dim: cfg.VectorSize}
	if err := s.bootstrap(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: preparing schema: %v", ErrUnavailable, err)
	}

	logger.Info("postgres store initialized",
		zap.Int("vector_size", cfg.VectorSize))
	return s, nil
}

// bootstrap applies the schema. All statements use IF NOT EXISTS.
func (s *PostgresStore) bootstrap(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS memories (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			content TEXT NOT NULL,
			category TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			embedding vector(%d) NOT NULL
		)`, s.dim),
		`CREATE INDEX IF NOT EXISTS idx_memories_user_id ON memories (user_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Store persists one record and returns its ID.
func (s *PostgresStore) Store(ctx context.Context, rec Record) (string, error) {
	ctx, span := pgTracer.Start(ctx, "PostgresStore.Store")
	defer span.End()

	if rec.Content == "" {
		return "", ErrEmptyContent
	}
	if rec.UserID == "" {
		return "", fmt.Errorf("%w: user ID is required", ErrInvalidRecord)
	}
	if len(rec.Embedding) != s.dim {
		return "", fmt.Errorf("%w: embedding has %d dimensions, store expects %d",
			ErrInvalidRecord, len(rec.Embedding), s.dim)
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = timeNow().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memories (id, user_id, content, category, created_at, embedding)
		 VALUES ($1, $2, $3, $4, $5, $6::vector)`,
		rec.ID, rec.UserID, rec.Content, rec.Category, rec.CreatedAt,
		vectorLiteral(rec.Embedding))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("%w: inserting record: %v", ErrUnavailable, err)
	}

	span.SetAttributes(attribute.String("record_id", rec.ID))
	s.logger.Debug("stored record",
		zap.String("id", rec.ID),
		zap.String("category", rec.Category))
	return rec.ID, nil
}

// searchRow maps the search query result columns.
type searchRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Content   string    `db:"content"`
	Category  string    `db:"category"`
	CreatedAt time.Time `db:"created_at"`
	Score     float32   `db:"score"`
}

// Search returns up to limit records for userID, closest first.
func (s *PostgresStore) Search(ctx context.Context, queryEmbedding []float32, userID string, limit int) ([]SearchResult, error) {
	ctx, span := pgTracer.Start(ctx, "PostgresStore.Search")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.Int("limit", limit),
	)

	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidRecord, limit)
	}
	if len(queryEmbedding) != s.dim {
		return nil, fmt.Errorf("%w: query embedding has %d dimensions, store expects %d",
			ErrInvalidRecord, len(queryEmbedding), s.dim)
	}

	// <=> is pgvector cosine distance; 1 - distance gives similarity.
	// Ties on distance fall back to recency.
	var rows []searchRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, user_id, content, category, created_at,
		        1 - (embedding <=> $1::vector) AS score
		 FROM memories
		 WHERE user_id = $2
		 ORDER BY embedding <=> $1::vector ASC, created_at DESC
		 LIMIT $3`,
		vectorLiteral(queryEmbedding), userID, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: searching records: %v", ErrUnavailable, err)
	}

	results := make([]SearchResult, len(rows))
	for i, r := range rows {
		results[i] = SearchResult{
			Record: Record{
				ID:        r.ID,
				UserID:    r.UserID,
				Content:   r.Content,
				Category:  r.Category,
				CreatedAt: r.CreatedAt,
			},
			Score: r.Score,
		}
	}

	span.SetAttributes(attribute.Int("results", len(results)))
	return results, nil
}

// Close closes the connection pool. Idempotent.
func (s *PostgresStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("closing postgres store: %w", err)
	}
	return nil
}

// vectorLiteral renders a float32 slice in pgvector's text format,
// e.g. [0.1,0.2,0.3].
func vectorLiteral(vec []float32) string {
	var b strings.Builder
	b.Grow(len(vec)*10 + 2)
	b.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
