package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, StorageMemory, cfg.StorageType)
	assert.Equal(t, 20, cfg.MaxClients)
	assert.Equal(t, 30*time.Second, cfg.TurnTimeLimit)
	assert.Equal(t, "character", cfg.ChainMode)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("WORDCHAIN_LISTEN_ADDR", ":9999")
	t.Setenv("WORDCHAIN_STORAGE", "sqlite")
	t.Setenv("WORDCHAIN_SQLITE_PATH", "/tmp/test.db")
	t.Setenv("WORDCHAIN_TURN_TIME_LIMIT", "45s")
	t.Setenv("WORDCHAIN_CHAIN_MODE", "token")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, StorageSQLite, cfg.StorageType)
	assert.Equal(t, "/tmp/test.db", cfg.SQLitePath)
	assert.Equal(t, 45*time.Second, cfg.TurnTimeLimit)
	assert.Equal(t, "token", cfg.ChainMode)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad storage", func(c *Config) { c.StorageType = "postgres" }},
		{"bad chain mode", func(c *Config) { c.ChainMode = "syllable" }},
		{"zero clients", func(c *Config) { c.MaxClients = 0 }},
		{"zero sessions", func(c *Config) { c.MaxSessions = 0 }},
		{"zero time limit", func(c *Config) { c.TurnTimeLimit = 0 }},
		{"zero attempts", func(c *Config) { c.MaxAttemptsPerTurn = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
