package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable the loader reads so ambient shell
// state cannot leak into a test. t.Setenv restores the originals.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MEMU_EMBEDDING_API_KEY",
		"MEMU_EMBEDDING_BASE_URL",
		"MEMU_EMBEDDING_MODEL",
		"MEMU_EMBEDDING_TIMEOUT",
		"MEMU_LLM_API_KEY",
		"MEMU_STORE_PROVIDER",
		"MEMU_POSTGRES_DSN",
		"MEMU_LOG_LEVEL",
		"MEMU_RETRIEVE_CACHE_TTL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_MissingRequiredKeys(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingConfig)
	// Both missing keys reported in a single pass.
	assert.Contains(t, err.Error(), "MEMU_EMBEDDING_API_KEY")
	assert.Contains(t, err.Error(), "MEMU_LLM_API_KEY")
}

func TestLoad_DefaultsApplied(t *testing.T) {
	clearEnv(t)
	t.Setenv("MEMU_EMBEDDING_API_KEY", "embed-key")
	t.Setenv("MEMU_LLM_API_KEY", "llm-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "embed-key", cfg.Embedding.APIKey)
	assert.Equal(t, "https://api.apiyi.com/v1", cfg.Embedding.BaseURL)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedding.Model)
	assert.Equal(t, 30*time.Second, cfg.Embedding.Timeout)
	assert.Equal(t, 5, cfg.Retrieve.DefaultLimit)
	assert.Equal(t, 5*time.Minute, cfg.Retrieve.CacheTTL)
}

func TestLoad_ProviderSelection(t *testing.T) {
	t.Run("defaults to memory without DSN", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MEMU_EMBEDDING_API_KEY", "k")
		t.Setenv("MEMU_LLM_API_KEY", "k")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, ProviderMemory, cfg.Store.Provider)
	})

	t.Run("DSN selects postgres", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MEMU_EMBEDDING_API_KEY", "k")
		t.Setenv("MEMU_LLM_API_KEY", "k")
		t.Setenv("MEMU_POSTGRES_DSN", "postgres://u:p@db:5432/memu")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, ProviderPostgres, cfg.Store.Provider)
		assert.Equal(t, "postgres://u:p@db:5432/memu", cfg.Postgres.DSN)
	})

	t.Run("explicit postgres gets default DSN", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MEMU_EMBEDDING_API_KEY", "k")
		t.Setenv("MEMU_LLM_API_KEY", "k")
		t.Setenv("MEMU_STORE_PROVIDER", "postgres")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, ProviderPostgres, cfg.Store.Provider)
		assert.Equal(t, DefaultPostgresDSN, cfg.Postgres.DSN)
	})

	t.Run("explicit memory ignores DSN", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MEMU_EMBEDDING_API_KEY", "k")
		t.Setenv("MEMU_LLM_API_KEY", "k")
		t.Setenv("MEMU_STORE_PROVIDER", "memory")
		t.Setenv("MEMU_POSTGRES_DSN", "postgres://u:p@db:5432/memu")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, ProviderMemory, cfg.Store.Provider)
	})

	t.Run("unknown provider rejected", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MEMU_EMBEDDING_API_KEY", "k")
		t.Setenv("MEMU_LLM_API_KEY", "k")
		t.Setenv("MEMU_STORE_PROVIDER", "redis")

		_, err := Load()
		assert.ErrorContains(t, err, "unsupported store provider")
	})
}

func TestLoadWithFile(t *testing.T) {
	t.Run("file values loaded", func(t *testing.T) {
		clearEnv(t)
		path := writeConfigFile(t, `
embedding:
  api_key: file-embed-key
  model: text-embedding-3-large
llm:
  api_key: file-llm-key
retrieve:
  default_limit: 10
`)

		cfg, err := LoadWithFile(path)
		require.NoError(t, err)
		assert.Equal(t, "file-embed-key", cfg.Embedding.APIKey)
		assert.Equal(t, "text-embedding-3-large", cfg.Embedding.Model)
		assert.Equal(t, 10, cfg.Retrieve.DefaultLimit)
	})

	t.Run("env overrides file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MEMU_EMBEDDING_API_KEY", "env-key")
		path := writeConfigFile(t, `
embedding:
  api_key: file-key
llm:
  api_key: llm-key
`)

		cfg, err := LoadWithFile(path)
		require.NoError(t, err)
		assert.Equal(t, "env-key", cfg.Embedding.APIKey)
	})

	t.Run("missing file is not an error", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MEMU_EMBEDDING_API_KEY", "k")
		t.Setenv("MEMU_LLM_API_KEY", "k")

		cfg, err := LoadWithFile(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "k", cfg.Embedding.APIKey)
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		clearEnv(t)
		path := writeConfigFile(t, "embedding: [not: valid: yaml")

		_, err := LoadWithFile(path)
		assert.ErrorContains(t, err, "failed to load config file")
	})
}

func TestLoad_DurationFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("MEMU_EMBEDDING_API_KEY", "k")
	t.Setenv("MEMU_LLM_API_KEY", "k")
	t.Setenv("MEMU_EMBEDDING_TIMEOUT", "10s")
	t.Setenv("MEMU_RETRIEVE_CACHE_TTL", "1m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.Embedding.Timeout)
	assert.Equal(t, time.Minute, cfg.Retrieve.CacheTTL)
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
