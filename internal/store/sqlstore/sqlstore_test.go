package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/quiz-manager/internal/store"
)

func openSQLite(t *testing.T) *KV {
	t.Helper()
	kv, err := Open(context.Background(), SQLite, filepath.Join(t.TempDir(), "quizzes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestKV_SQLiteGetSet(t *testing.T) {
	kv := openSQLite(t)
	ctx := context.Background()

	_, err := kv.Get(ctx, "quizzes")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, kv.Set(ctx, "quizzes", []byte(`[{"id":1}]`)))
	kv.now = func() time.Time { return time.UnixMilli(42) }
	require.NoError(t, kv.Set(ctx, "quizzes", []byte(`[]`)))

	got, err := kv.Get(ctx, "quizzes")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	var rows int
	var updatedAt int64
	require.NoError(t, kv.db.QueryRowContext(ctx, "SELECT COUNT(*), MAX(updated_at) FROM kv_entries").Scan(&rows, &updatedAt))
	assert.Equal(t, 1, rows)
	assert.Equal(t, int64(42), updatedAt)
}

func TestMigrate_StatusAndDown(t *testing.T) {
	kv := openSQLite(t)

	require.NoError(t, Migrate(kv.db, SQLite, "status"))
	require.NoError(t, Migrate(kv.db, SQLite, "down"))

	_, err := kv.Get(context.Background(), "quizzes")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrNotFound)

	assert.Error(t, Migrate(kv.db, SQLite, "sideways"))
}

func TestBuilderPlaceholders(t *testing.T) {
	pg := &KV{dialect: Postgres}
	query, _, err := pg.builder().Select("value").From(table).Where("entry_key = ?", "k").ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "$1")

	lite := &KV{dialect: SQLite}
	query, _, err = lite.builder().Select("value").From(table).Where("entry_key = ?", "k").ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "?")
}
