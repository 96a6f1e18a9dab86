package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Kinds of parked state machines.
const (
	KindEditor = "editor"
	KindTake   = "take"
)

const defaultTTL = 2 * time.Hour

// ErrNotFound is returned by callers when an id has no live session.
var ErrNotFound = errors.New("session not found")

// Store parks JSON snapshots of editor and taker state between requests.
type Store interface {
	Save(ctx context.Context, kind, id string, v any) error
	Load(ctx context.Context, kind, id string, v any) (bool, error)
	Delete(ctx context.Context, kind, id string) error
}

type entry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory with a sliding TTL.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
	logger  zerolog.Logger
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(ttl time.Duration, logger zerolog.Logger) *MemoryStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &MemoryStore{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
		logger:  logger.With().Str("component", "session_memory").Logger(),
	}
}

func key(kind, id string) string {
	return fmt.Sprintf("session:%s:%s", kind, id)
}

func (m *MemoryStore) Save(_ context.Context, kind, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key(kind, id)] = entry{data: data, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Load(_ context.Context, kind, id string, v any) (bool, error) {
	m.mu.Lock()
	e, ok := m.entries[key(kind, id)]
	if ok && m.now().After(e.expiresAt) {
		delete(m.entries, key(kind, id))
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(e.data, v); err != nil {
		return false, fmt.Errorf("unmarshal session: %w", err)
	}
	return true, nil
}

func (m *MemoryStore) Delete(_ context.Context, kind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key(kind, id))
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
			removed++
		}
	}
	return removed
}

// Run sweeps on every interval until ctx is cancelled.
func (m *MemoryStore) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.Debug().Int("removed", n).Msg("expired sessions swept")
			}
		}
	}
}
