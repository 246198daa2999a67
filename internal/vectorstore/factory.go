package vectorstore

import (
	"context"
	"fmt"

	"github.com/Charpup/openclaw-memu-skill/internal/config"
	"go.uber.org/zap"
)

// NewStore constructs the backend named by the config snapshot.
//
// Provider selection already happened at config load time; this switch
// only maps the resolved name to a constructor.
func NewStore(ctx context.Context, cfg *config.Config, vectorSize int, logger *zap.Logger) (Store, error) {
	switch cfg.Store.Provider {
	case config.ProviderPostgres:
		if logger != nil {
			logger.Info("connecting to postgres", zap.String("dsn", cfg.RedactedDSN()))
		}
		return NewPostgresStore(ctx, PostgresConfig{
			DSN:             cfg.Postgres.DSN,
			VectorSize:      vectorSize,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		}, logger)
	case config.ProviderMemory:
		return NewChromemStore(logger)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Store.Provider)
	}
}
