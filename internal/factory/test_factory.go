package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/hmngo/wordchain/internal/config"
	"github.com/hmngo/wordchain/internal/dependencies/mocks"
	"github.com/hmngo/wordchain/internal/services/game"
	"github.com/hmngo/wordchain/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	cfg := &config.Config{
		ListenAddr:  "127.0.0.1:0",
		MaxClients:  8,
		MaxSessions: 4,
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	app := newWithDependencies(store, mockClock, mockRandom, cfg, game.DefaultRules(), logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// LoadTestDictionary loads a small chainable word list for testing
func (t *TestApp) LoadTestDictionary() error {
	return t.DictionaryService.LoadWords([]string{
		"apple", "elephant", "tiger", "rose", "eagle", "echo",
		"orange", "emu", "umbrella", "anchor", "rhino", "otter",
		"banana", "nest", "tomato",
	})
}
