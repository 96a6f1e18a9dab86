package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/quiz-manager/internal/quiz"
	"github.com/gokatarajesh/quiz-manager/internal/store"
	"github.com/gokatarajesh/quiz-manager/internal/store/memory"
)

type mockKV struct {
	mock.Mock
}

func (m *mockKV) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *mockKV) Set(ctx context.Context, key string, value []byte) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *mockKV) Close() error { return nil }

func seedQuizzes() []quiz.Quiz {
	return []quiz.Quiz{{ID: 1, Name: "Seeded", Questions: []quiz.Question{{Question: "q", Answer: "a"}}}}
}

func TestAdapter_SeedsActiveKeyOnFirstLoad(t *testing.T) {
	kv := memory.New()
	adapter := store.NewAdapter(kv, zerolog.Nop(), store.AdapterOptions{Seed: seedQuizzes()})

	got, err := adapter.Load(context.Background(), quiz.DefaultActiveKey)
	require.NoError(t, err)
	assert.Equal(t, seedQuizzes(), got)

	raw, err := kv.Get(context.Background(), quiz.DefaultActiveKey)
	require.NoError(t, err, "seed must be persisted immediately")
	var stored []quiz.Quiz
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, seedQuizzes(), stored)
}

func TestAdapter_DoesNotReseedEmptyCollection(t *testing.T) {
	kv := memory.New()
	require.NoError(t, kv.Set(context.Background(), quiz.DefaultActiveKey, []byte(`[]`)))
	adapter := store.NewAdapter(kv, zerolog.Nop(), store.AdapterOptions{Seed: seedQuizzes()})

	got, err := adapter.Load(context.Background(), quiz.DefaultActiveKey)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAdapter_AbsentArchiveIsEmpty(t *testing.T) {
	kv := memory.New()
	adapter := store.NewAdapter(kv, zerolog.Nop(), store.AdapterOptions{Seed: seedQuizzes()})

	got, err := adapter.Load(context.Background(), quiz.DefaultArchiveKey)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	_, err = kv.Get(context.Background(), quiz.DefaultArchiveKey)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAdapter_MalformedDataIsEmpty(t *testing.T) {
	kv := memory.New()
	require.NoError(t, kv.Set(context.Background(), quiz.DefaultActiveKey, []byte(`{not json`)))
	adapter := store.NewAdapter(kv, zerolog.Nop(), store.AdapterOptions{Seed: seedQuizzes()})

	got, err := adapter.Load(context.Background(), quiz.DefaultActiveKey)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAdapter_BackendErrorsAreWrapped(t *testing.T) {
	boom := errors.New("disk on fire")
	kv := new(mockKV)
	kv.On("Get", mock.Anything, "quizzes").Return(nil, boom)
	kv.On("Set", mock.Anything, "quizzes", mock.Anything).Return(boom)
	adapter := store.NewAdapter(kv, zerolog.Nop(), store.AdapterOptions{})

	_, err := adapter.Load(context.Background(), "quizzes")
	assert.ErrorIs(t, err, boom)

	err = adapter.Save(context.Background(), "quizzes", nil)
	assert.ErrorIs(t, err, boom)
	kv.AssertExpectations(t)
}

func TestAdapter_SaveNilWritesEmptyArray(t *testing.T) {
	kv := memory.New()
	adapter := store.NewAdapter(kv, zerolog.Nop(), store.AdapterOptions{})

	require.NoError(t, adapter.Save(context.Background(), "deletedQuizzes", nil))
	raw, err := kv.Get(context.Background(), "deletedQuizzes")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestMemoryKV_ReturnsCopies(t *testing.T) {
	kv := memory.New()
	value := []byte("abc")
	require.NoError(t, kv.Set(context.Background(), "k", value))
	value[0] = 'x'

	got, err := kv.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}
