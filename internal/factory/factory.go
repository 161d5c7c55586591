// Package factory wires storage, services and the server front end into
// a runnable application.
package factory

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/hmngo/wordchain/internal/config"
	"github.com/hmngo/wordchain/internal/dependencies/clock"
	"github.com/hmngo/wordchain/internal/dependencies/random"
	"github.com/hmngo/wordchain/internal/registry"
	"github.com/hmngo/wordchain/internal/server"
	"github.com/hmngo/wordchain/internal/services/account"
	"github.com/hmngo/wordchain/internal/services/dictionary"
	"github.com/hmngo/wordchain/internal/services/game"
	"github.com/hmngo/wordchain/internal/services/history"
	"github.com/hmngo/wordchain/internal/storage"
	"github.com/hmngo/wordchain/internal/storage/memory"
	redisstorage "github.com/hmngo/wordchain/internal/storage/redis"
	sqlitestorage "github.com/hmngo/wordchain/internal/storage/sqlite"
)

// App contains all wired application components
type App struct {
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	DictionaryService *dictionary.Service
	AccountService    *account.Service
	HistoryService    *history.Service
	SessionStore      *game.Store
	Engine            *game.Engine
	Broker            *game.Broker

	// Front end
	Registry   *registry.Registry
	Dispatcher *server.Dispatcher
	Server     *server.Server

	logger *slog.Logger
}

// New creates an application with all dependencies wired from config.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	switch cfg.StorageType {
	case config.StorageMemory:
		store = memory.New()
	case config.StorageRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		redisStore, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		store = redisStore
	case config.StorageSQLite:
		sqliteStore, err := sqlitestorage.New(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite database: %w", err)
		}
		store = sqliteStore
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}

	rules := game.DefaultRules()
	rules.TurnTimeLimit = cfg.TurnTimeLimit
	rules.MaxAttemptsPerTurn = cfg.MaxAttemptsPerTurn
	rules.ChainMode = game.ChainMode(cfg.ChainMode)
	rules.RequiredTokens = cfg.RequiredTokens

	app := newWithDependencies(store, clock.New(), random.New(), cfg, rules, logger)

	if err := app.loadDictionary(cfg); err != nil {
		return nil, err
	}

	return app, nil
}

// loadDictionary loads the word list from the configured file, falling
// back to whatever storage already holds when the file is unavailable.
func (a *App) loadDictionary(cfg *config.Config) error {
	ctx := context.Background()

	if cfg.DictionaryPath != "" {
		err := a.DictionaryService.LoadFromFile(ctx, cfg.DictionaryPath)
		if err == nil {
			return nil
		}
		a.logger.Warn("could not load dictionary file, falling back to storage",
			slog.String("path", cfg.DictionaryPath),
			slog.String("error", err.Error()),
		)
	}

	if err := a.DictionaryService.LoadFromStorage(ctx); err != nil {
		return fmt.Errorf("loading dictionary from storage: %w", err)
	}
	return nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	cfg *config.Config,
	rules game.Rules,
	logger *slog.Logger,
) *App {
	dictService := dictionary.New(store, rnd)
	accountService := account.New(store, logger)
	historyService := history.New(store, logger)

	sessionStore := game.NewStore(cfg.MaxSessions)
	engine := game.NewEngine(sessionStore, dictService, accountService, historyService, clk, rnd, logger, rules)

	reg := registry.New(cfg.MaxClients)
	broker := game.NewBroker(reg, sessionStore, clk)

	dispatcher := server.NewDispatcher(accountService, engine, broker, historyService, reg, logger)
	srv := server.New(cfg.ListenAddr, dispatcher, logger)

	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		DictionaryService: dictService,
		AccountService:    accountService,
		HistoryService:    historyService,
		SessionStore:      sessionStore,
		Engine:            engine,
		Broker:            broker,
		Registry:          reg,
		Dispatcher:        dispatcher,
		Server:            srv,
		logger:            logger,
	}
}
