// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backend names accepted by StorageType.
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Config holds every tunable of the server process.
type Config struct {
	// ListenAddr is the TCP address the game server binds.
	ListenAddr string `env:"WORDCHAIN_LISTEN_ADDR" envDefault:":8080"`

	// StorageType selects the persistence backend: memory, redis or sqlite.
	StorageType string `env:"WORDCHAIN_STORAGE" envDefault:"memory"`
	RedisURL    string `env:"WORDCHAIN_REDIS_URL" envDefault:"redis://localhost:6379"`
	SQLitePath  string `env:"WORDCHAIN_SQLITE_PATH" envDefault:"wordchain.db"`

	// DictionaryPath points at a newline-separated word list. When the
	// file is missing the dictionary is loaded from storage instead.
	DictionaryPath string `env:"WORDCHAIN_DICTIONARY_PATH" envDefault:"data/words.txt"`

	// MaxClients caps concurrent connections; MaxSessions caps
	// concurrent matches.
	MaxClients  int `env:"WORDCHAIN_MAX_CLIENTS" envDefault:"20"`
	MaxSessions int `env:"WORDCHAIN_MAX_SESSIONS" envDefault:"10"`

	// Match rules.
	TurnTimeLimit      time.Duration `env:"WORDCHAIN_TURN_TIME_LIMIT" envDefault:"30s"`
	MaxAttemptsPerTurn int           `env:"WORDCHAIN_MAX_ATTEMPTS" envDefault:"3"`
	ChainMode          string        `env:"WORDCHAIN_CHAIN_MODE" envDefault:"character"`
	RequiredTokens     int           `env:"WORDCHAIN_REQUIRED_TOKENS" envDefault:"0"`

	// LogLevel is a slog level name: debug, info, warn or error.
	LogLevel string `env:"WORDCHAIN_LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	switch c.StorageType {
	case StorageMemory, StorageRedis, StorageSQLite:
	default:
		return fmt.Errorf("unknown storage type %q", c.StorageType)
	}
	switch c.ChainMode {
	case "character", "token":
	default:
		return fmt.Errorf("unknown chain mode %q", c.ChainMode)
	}
	if c.MaxClients <= 0 {
		return fmt.Errorf("max clients must be positive, got %d", c.MaxClients)
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("max sessions must be positive, got %d", c.MaxSessions)
	}
	if c.TurnTimeLimit <= 0 {
		return fmt.Errorf("turn time limit must be positive, got %s", c.TurnTimeLimit)
	}
	if c.MaxAttemptsPerTurn <= 0 {
		return fmt.Errorf("max attempts must be positive, got %d", c.MaxAttemptsPerTurn)
	}
	return nil
}
