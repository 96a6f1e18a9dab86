package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gokatarajesh/quiz-manager/internal/config"
	"github.com/gokatarajesh/quiz-manager/internal/store/sqlstore"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, or status")
		driver  = flag.String("driver", "", "Database driver: postgres or sqlite (defaults to STORE_DRIVER)")
	)
	flag.Parse()

	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load("configs/.env")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if *driver == "" {
		*driver = cfg.Store.Driver
	}

	var (
		dialect sqlstore.Dialect
		dsn     string
	)
	switch *driver {
	case "postgres":
		dialect, dsn = sqlstore.Postgres, cfg.Postgres.DSN()
	case "sqlite":
		dialect, dsn = sqlstore.SQLite, cfg.Store.SQLitePath
	default:
		log.Fatal().Str("driver", *driver).Msg("migrations only apply to the postgres and sqlite stores")
	}

	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		log.Fatal().Err(err).Str("driver", *driver).Msg("failed to open database connection")
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	log.Info().Str("driver", *driver).Str("command", *command).Msg("connected to database")

	if err := sqlstore.Migrate(db, dialect, *command); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	log.Info().Str("command", *command).Msg("migration command completed")
}
