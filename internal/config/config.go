package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"quiz-manager"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Store    Store
	Postgres Postgres
	Redis    Redis
	Session  Session
}

// Store selects the quiz persistence backend.
type Store struct {
	Driver     string `env:"STORE_DRIVER" envDefault:"file"`
	Dir        string `env:"STORE_DIR" envDefault:"data"`
	ActiveKey  string `env:"STORE_ACTIVE_KEY" envDefault:"quizzes"`
	ArchiveKey string `env:"STORE_ARCHIVE_KEY" envDefault:"deletedQuizzes"`
	KeyPrefix  string `env:"STORE_KEY_PREFIX" envDefault:"quizstore"`
	SeedFile   string `env:"SEED_FILE" envDefault:""`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"data/quizzes.db"`
}

// Postgres captures connection info for the SQL database. Only read when
// STORE_DRIVER=postgres.
type Postgres struct {
	Host     string `env:"PG_HOST" envDefault:"localhost"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER" envDefault:""`
	Password string `env:"PG_PASSWORD" envDefault:""`
	Database string `env:"PG_DATABASE" envDefault:""`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
}

// DSN renders a key/value connection string for the pgx driver.
func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// Redis holds store and session cache configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Session configures where editor and taker sessions are parked.
type Session struct {
	Driver        string        `env:"SESSION_DRIVER" envDefault:"memory"`
	TTL           time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"5m"`
}

// NeedsRedis reports whether any configured component talks to Redis.
func (a *App) NeedsRedis() bool {
	return a.Store.Driver == "redis" || a.Session.Driver == "redis"
}

// Validate rejects unknown drivers and missing Postgres credentials.
func (a *App) Validate() error {
	switch a.Store.Driver {
	case "memory", "file", "redis", "sqlite":
	case "postgres":
		if a.Postgres.User == "" || a.Postgres.Database == "" {
			return fmt.Errorf("PG_USER and PG_DATABASE are required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", a.Store.Driver)
	}
	switch a.Session.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown SESSION_DRIVER %q", a.Session.Driver)
	}
	return nil
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
