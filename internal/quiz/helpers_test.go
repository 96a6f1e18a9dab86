package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memStore keeps serialized collections so tests can compare stored bytes.
type memStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	failSave map[string]error
	saves    map[string]int
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}, failSave: map[string]error{}, saves: map[string]int{}}
}

func (s *memStore) Load(_ context.Context, key string) ([]Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.data[key]
	if !ok {
		return []Quiz{}, nil
	}
	var out []Quiz
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *memStore) Save(_ context.Context, key string, quizzes []Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failSave[key]; err != nil {
		return err
	}
	raw, err := json.Marshal(quizzes)
	if err != nil {
		return err
	}
	s.data[key] = raw
	s.saves[key]++
	return nil
}

func (s *memStore) put(t *testing.T, key string, quizzes []Quiz) {
	t.Helper()
	raw, err := json.Marshal(quizzes)
	require.NoError(t, err)
	s.data[key] = raw
}

func (s *memStore) raw(key string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key]
}

func (s *memStore) saveCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves[key]
}

// mockStore is used where a test only needs to assert calls or inject errors.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) Load(ctx context.Context, key string) ([]Quiz, error) {
	args := m.Called(ctx, key)
	quizzes, _ := args.Get(0).([]Quiz)
	return quizzes, args.Error(1)
}

func (m *mockStore) Save(ctx context.Context, key string, quizzes []Quiz) error {
	return m.Called(ctx, key, quizzes).Error(0)
}

var errBackend = errors.New("backend unavailable")

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func sampleQuiz(name string, n int) Quiz {
	q := Quiz{Name: name}
	for i := 1; i <= n; i++ {
		q.Questions = append(q.Questions, Question{
			ID:       json.RawMessage(fmt.Sprint(i)),
			Question: fmt.Sprintf("%s Q%d", name, i),
			Answer:   fmt.Sprintf("%s A%d", name, i),
		})
	}
	return q
}

func newLoadedRepo(t *testing.T, store Store, now func() time.Time) *Repository {
	t.Helper()
	repo := NewRepository(store, zerolog.Nop(), RepositoryOptions{Now: now})
	require.NoError(t, repo.LoadAll(context.Background()))
	return repo
}
