package memory

import (
	"context"
	"sync"

	"github.com/gokatarajesh/quiz-manager/internal/store"
)

// KV keeps values in process memory.
type KV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ store.KV = (*KV)(nil)

func New() *KV {
	return &KV{data: make(map[string][]byte)}
}

func (m *KV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *KV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *KV) Close() error { return nil }
