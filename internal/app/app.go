package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-manager/internal/config"
	"github.com/gokatarajesh/quiz-manager/internal/editor"
	"github.com/gokatarajesh/quiz-manager/internal/logging"
	"github.com/gokatarajesh/quiz-manager/internal/quiz"
	"github.com/gokatarajesh/quiz-manager/internal/server"
	"github.com/gokatarajesh/quiz-manager/internal/session"
	"github.com/gokatarajesh/quiz-manager/internal/store"
	"github.com/gokatarajesh/quiz-manager/internal/store/file"
	"github.com/gokatarajesh/quiz-manager/internal/store/memory"
	redisstore "github.com/gokatarajesh/quiz-manager/internal/store/redis"
	"github.com/gokatarajesh/quiz-manager/internal/store/sqlstore"
	"github.com/gokatarajesh/quiz-manager/internal/taker"
)

// Application aggregates shared infrastructure (store, sessions, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	kv       store.KV
	redis    *redis.Client
	sessions *session.MemoryStore
	http     *http.Server

	bgCancels []context.CancelFunc
}

// New bootstraps the logger, store backend, quiz mirror, sessions and HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Str("store", cfg.Store.Driver).Str("sessions", cfg.Session.Driver).Msg("starting application bootstrap")

	var redisClient *redis.Client
	if cfg.NeedsRedis() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			_ = redisClient.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
	}

	kv, err := openKV(ctx, cfg, redisClient)
	if err != nil {
		closeRedis(redisClient)
		return nil, err
	}

	seed, err := quiz.LoadSeed(cfg.Store.SeedFile)
	if err != nil {
		_ = kv.Close()
		closeRedis(redisClient)
		return nil, fmt.Errorf("load seed: %w", err)
	}

	keys := quiz.Keys{Active: cfg.Store.ActiveKey, Archive: cfg.Store.ArchiveKey}
	adapter := store.NewAdapter(kv, logger, store.AdapterOptions{SeedKey: keys.Active, Seed: seed})
	repo := quiz.NewRepository(adapter, logger, quiz.RepositoryOptions{Keys: keys})
	if err := repo.LoadAll(ctx); err != nil {
		_ = kv.Close()
		closeRedis(redisClient)
		return nil, err
	}
	quizSvc := quiz.NewService(repo, quiz.NewArchive(adapter, keys), logger)

	var (
		sessions    session.Store
		memSessions *session.MemoryStore
	)
	if cfg.Session.Driver == "redis" {
		sessions = session.NewRedisStore(redisClient, cfg.Session.TTL)
	} else {
		memSessions = session.NewMemoryStore(cfg.Session.TTL, logger)
		sessions = memSessions
	}

	takes := taker.NewManager(sessions, repo, logger)
	editors := editor.NewManager(sessions, quizSvc, logger)

	apiServer := server.NewHTTPServer(cfg, logger, server.Handlers{
		Views:   server.NewViews(quizSvc, takes, editors, logger),
		Quizzes: quiz.NewHTTPHandlers(quizSvc, logger),
		Editor:  editor.NewHTTPHandlers(editors, logger),
		Takes:   taker.NewHTTPHandlers(takes, logger),
	})

	return &Application{
		cfg:       cfg,
		logger:    logger,
		kv:        kv,
		redis:     redisClient,
		sessions:  memSessions,
		http:      apiServer,
		bgCancels: make([]context.CancelFunc, 0, 1),
	}, nil
}

func openKV(ctx context.Context, cfg *config.App, client *redis.Client) (store.KV, error) {
	switch cfg.Store.Driver {
	case "memory":
		return memory.New(), nil
	case "file":
		kv, err := file.New(cfg.Store.Dir)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		return kv, nil
	case "redis":
		return redisstore.New(client, cfg.Store.KeyPrefix), nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Store.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
		return sqlstore.Open(ctx, sqlstore.SQLite, cfg.Store.SQLitePath)
	case "postgres":
		return sqlstore.Open(ctx, sqlstore.Postgres, cfg.Postgres.DSN())
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func closeRedis(client *redis.Client) {
	if client != nil {
		_ = client.Close()
	}
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}

	if err := a.kv.Close(); err != nil {
		a.logger.Error().Err(err).Msg("store shutdown error")
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error().Err(err).Msg("redis shutdown error")
		}
	}

	a.logger.Info().Msg("shutdown complete")
	return runErr
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.sessions != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.sessions.Run(bgCtx, a.cfg.Session.SweepInterval); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Warn().Err(err).Msg("session sweeper stopped")
			}
		}()
	}
}
