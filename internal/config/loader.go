package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const maxConfigFileSize = 1024 * 1024 // 1MB

// envPrefix is the prefix shared by every environment variable this
// skill reads.
const envPrefix = "MEMU_"

// Load loads configuration from environment variables with defaults.
// Equivalent to LoadWithFile("").
func Load() (*Config, error) {
	return LoadWithFile("")
}

// LoadWithFile loads configuration from an optional YAML file, then
// overrides with environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (MEMU_EMBEDDING_API_KEY, MEMU_POSTGRES_DSN, ...)
//  2. YAML config file (when configPath is non-empty and the file exists)
//  3. Hardcoded defaults
//
// Environment variables drop the MEMU_ prefix and map the first
// underscore to a section separator:
//
//	MEMU_EMBEDDING_API_KEY -> embedding.api_key
//	MEMU_POSTGRES_DSN      -> postgres.dsn
//	MEMU_STORE_PROVIDER    -> store.provider
//
// The returned snapshot is validated; a snapshot that fails validation
// is never returned.
func LoadWithFile(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		content, err := readConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		if content != nil {
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		// MEMU_EMBEDDING_API_KEY -> embedding.api_key: lowercase, strip
		// the prefix, split on the first underscore only (section.field
		// pattern; field names keep their underscores).
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	// Provider selection happens here, once: an explicitly configured
	// DSN selects the durable store, otherwise the volatile one. The
	// factory never re-branches on this per call.
	if cfg.Store.Provider == "" {
		if cfg.Postgres.DSN != "" {
			cfg.Store.Provider = ProviderPostgres
		} else {
			cfg.Store.Provider = ProviderMemory
		}
	}
	if cfg.Store.Provider == ProviderPostgres && cfg.Postgres.DSN == "" {
		cfg.Postgres.DSN = DefaultPostgresDSN
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// readConfigFile reads the YAML file at path. A missing file is not an
// error (the file layer is optional); an unreadable or oversized file is.
func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}
