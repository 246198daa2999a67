package vectorstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPostgresConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     PostgresConfig
		wantErr bool
	}{
		{
			name: "valid",
			cfg:  PostgresConfig{DSN: "postgres://localhost/memu", VectorSize: 1536},
		},
		{
			name:    "missing DSN",
			cfg:     PostgresConfig{VectorSize: 1536},
			wantErr: true,
		},
		{
			name:    "zero vector size",
			cfg:     PostgresConfig{DSN: "postgres://localhost/memu"},
			wantErr: true,
		},
		{
			name:    "negative vector size",
			cfg:     PostgresConfig{DSN: "postgres://localhost/memu", VectorSize: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPostgresConfig_PoolDefaults(t *testing.T) {
	// Zero pool values are accepted; the driver keeps its defaults.
	cfg := PostgresConfig{DSN: "postgres://localhost/memu", VectorSize: 8}
	assert.NoError(t, cfg.Validate())
	assert.Zero(t, cfg.MaxOpenConns)
	assert.Zero(t, cfg.ConnMaxLifetime)

	cfg.ConnMaxLifetime = 5 * time.Minute
	assert.NoError(t, cfg.Validate())
}

func TestVectorLiteral(t *testing.T) {
	tests := []struct {
		name string
		vec  []float32
		want string
	}{
		{name: "empty", vec: nil, want: "[]"},
		{name: "single", vec: []float32{0.5}, want: "[0.5]"},
		{name: "several", vec: []float32{1, -0.25, 0}, want: "[1,-0.25,0]"},
		{name: "precision kept", vec: []float32{0.123456}, want: "[0.123456]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, vectorLiteral(tt.vec))
		})
	}
}
