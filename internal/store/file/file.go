package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/gokatarajesh/quiz-manager/internal/store"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// KV stores one document per key inside a directory.
type KV struct {
	mu  sync.Mutex
	dir string
}

var _ store.KV = (*KV)(nil)

// New creates dir if needed.
func New(dir string) (*KV, error) {
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &KV{dir: dir}, nil
}

func (f *KV) path(key string) string {
	return filepath.Join(f.dir, unsafeChars.ReplaceAllString(key, "_")+".json")
}

func (f *KV) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, store.ErrNotFound
	}
	return data, err
}

// Set writes through a temp file and rename so readers never see a partial document.
func (f *KV) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path(key))
}

func (f *KV) Close() error { return nil }
