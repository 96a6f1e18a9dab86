package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/gokatarajesh/quiz-manager/internal/store"
)

//go:embed migrations/*.sql
var Migrations embed.FS

const table = "kv_entries"

// Dialect describes one supported SQL engine.
type Dialect struct {
	Driver      string
	Goose       string
	Placeholder sq.PlaceholderFormat
}

var (
	Postgres = Dialect{Driver: "pgx", Goose: "postgres", Placeholder: sq.Dollar}
	SQLite   = Dialect{Driver: "sqlite3", Goose: "sqlite3", Placeholder: sq.Question}
)

// KV stores collections as rows of a single key/value table.
type KV struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

var _ store.KV = (*KV)(nil)

// Open connects, verifies the connection and applies pending migrations.
func Open(ctx context.Context, dialect Dialect, dsn string) (*KV, error) {
	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect.Driver, err)
	}
	if dialect.Driver == SQLite.Driver {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect.Driver, err)
	}
	if err := Migrate(db, dialect, "up"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &KV{db: db, dialect: dialect, now: time.Now}, nil
}

// Migrate runs a goose command (up, down, status) against the embedded migrations.
func Migrate(db *sql.DB, dialect Dialect, command string) error {
	goose.SetBaseFS(Migrations)
	goose.SetTableName("goose_db_version")
	if err := goose.SetDialect(dialect.Goose); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	var err error
	switch command {
	case "up":
		err = goose.Up(db, "migrations")
	case "down":
		err = goose.Down(db, "migrations")
	case "status":
		err = goose.Status(db, "migrations")
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", command, err)
	}
	return nil
}

func (s *KV) builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(s.dialect.Placeholder)
}

func (s *KV) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := s.builder().Select("value").From(table).
		Where(sq.Eq{"entry_key": key}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var value string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

// Set upserts the whole value; the last writer wins.
func (s *KV) Set(ctx context.Context, key string, value []byte) error {
	query, args, err := s.builder().Insert(table).
		Columns("entry_key", "value", "updated_at").
		Values(key, string(value), s.now().UnixMilli()).
		Suffix("ON CONFLICT (entry_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *KV) Close() error {
	return s.db.Close()
}
