package quiz

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRepository_CreateAssignsUniqueMonotonicIDs(t *testing.T) {
	store := newMemStore()
	repo := newLoadedRepo(t, store, fixedClock(1_000))

	ctx := context.Background()
	seen := map[int64]bool{}
	var last int64
	for i := 0; i < 5; i++ {
		created, err := repo.Create(ctx, sampleQuiz("Same", 5))
		require.NoError(t, err)
		assert.False(t, seen[created.ID], "duplicate id %d", created.ID)
		assert.Greater(t, created.ID, last)
		seen[created.ID] = true
		last = created.ID
	}
	assert.Len(t, repo.List(), 5)
	assert.Equal(t, int64(1_000), repo.List()[0].ID)
}

func TestRepository_IDsStayAboveArchivedIDs(t *testing.T) {
	store := newMemStore()
	archived := sampleQuiz("Old", 5)
	archived.ID = 9_000
	store.put(t, DefaultArchiveKey, []Quiz{archived})

	repo := newLoadedRepo(t, store, fixedClock(1_000))
	created, err := repo.Create(context.Background(), sampleQuiz("New", 5))
	require.NoError(t, err)
	assert.Equal(t, int64(9_001), created.ID)
}

func TestRepository_CreatePersistsFullCollection(t *testing.T) {
	store := newMemStore()
	repo := newLoadedRepo(t, store, fixedClock(1_000))

	_, err := repo.Create(context.Background(), sampleQuiz("One", 5))
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), sampleQuiz("Two", 5))
	require.NoError(t, err)

	var stored []Quiz
	require.NoError(t, json.Unmarshal(store.raw(DefaultActiveKey), &stored))
	require.Len(t, stored, 2)
	assert.Equal(t, "One", stored[0].Name)
	assert.Equal(t, "Two", stored[1].Name)
}

func TestRepository_UpdateReplacesOnlyMatchingQuiz(t *testing.T) {
	store := newMemStore()
	a, b := sampleQuiz("A", 5), sampleQuiz("B", 5)
	a.ID, b.ID = 1, 2
	store.put(t, DefaultActiveKey, []Quiz{a, b})
	repo := newLoadedRepo(t, store, nil)
	before := store.raw(DefaultActiveKey)

	edited := b.Clone()
	edited.Name = "B2"
	edited.Questions = edited.Questions[:1]
	updated, err := repo.Update(context.Background(), edited)
	require.NoError(t, err)
	assert.True(t, updated)

	list := repo.List()
	require.Len(t, list, 2)
	assert.Equal(t, a, list[0])
	assert.Equal(t, "B2", list[1].Name)
	assert.Len(t, list[1].Questions, 1)
	assert.NotEqual(t, before, store.raw(DefaultActiveKey))
}

func TestRepository_UpdateWithoutMatchIsNoOp(t *testing.T) {
	store := newMemStore()
	a := sampleQuiz("A", 5)
	a.ID = 1
	store.put(t, DefaultActiveKey, []Quiz{a})
	repo := newLoadedRepo(t, store, nil)

	ghost := sampleQuiz("Ghost", 5)
	ghost.ID = 42
	updated, err := repo.Update(context.Background(), ghost)
	require.NoError(t, err)
	assert.False(t, updated)
	assert.Equal(t, 0, store.saveCount(DefaultActiveKey))
	assert.Equal(t, []Quiz{a}, repo.List())
}

func TestRepository_FailedSaveLeavesMirrorUnchanged(t *testing.T) {
	store := newMemStore()
	repo := newLoadedRepo(t, store, fixedClock(1_000))
	store.failSave[DefaultActiveKey] = errBackend

	_, err := repo.Create(context.Background(), sampleQuiz("A", 5))
	assert.ErrorIs(t, err, errBackend)
	assert.Empty(t, repo.List())
}

func TestRepository_ReadsReturnCopies(t *testing.T) {
	store := newMemStore()
	a := sampleQuiz("A", 5)
	a.ID = 1
	store.put(t, DefaultActiveKey, []Quiz{a})
	repo := newLoadedRepo(t, store, nil)

	got, err := repo.Get(1)
	require.NoError(t, err)
	got.Questions[0].Question = "mutated"

	again, err := repo.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "A Q1", again.Questions[0].Question)
}

func TestRepository_ResolveByName(t *testing.T) {
	store := newMemStore()
	older, newer, other := sampleQuiz("Dup", 5), sampleQuiz("Dup", 6), sampleQuiz("Other", 5)
	older.ID, newer.ID, other.ID = 10, 20, 30
	store.put(t, DefaultActiveKey, []Quiz{newer, older, other})
	repo := newLoadedRepo(t, store, nil)

	res, err := repo.ResolveByName("Dup")
	require.NoError(t, err)
	assert.Equal(t, int64(20), res.Quiz.ID)
	assert.Equal(t, 2, res.Matches)
	assert.True(t, res.Ambiguous())

	res, err = repo.ResolveByName("Other")
	require.NoError(t, err)
	assert.False(t, res.Ambiguous())

	_, err = repo.ResolveByName("dup")
	assert.ErrorIs(t, err, ErrQuizNotFound)
}

func TestRepository_RemoveUnknownID(t *testing.T) {
	repo := newLoadedRepo(t, newMemStore(), nil)
	_, err := repo.Remove(context.Background(), 7)
	assert.ErrorIs(t, err, ErrQuizNotFound)
}

func TestRepository_MutationsRequireLoad(t *testing.T) {
	repo := NewRepository(newMemStore(), zerolog.Nop(), RepositoryOptions{})
	_, err := repo.Create(context.Background(), sampleQuiz("A", 5))
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestRepository_LoadAllPropagatesBackendErrors(t *testing.T) {
	store := new(mockStore)
	store.On("Load", mock.Anything, DefaultActiveKey).Return(nil, errBackend)

	repo := NewRepository(store, zerolog.Nop(), RepositoryOptions{})
	err := repo.LoadAll(context.Background())
	assert.ErrorIs(t, err, errBackend)
	store.AssertExpectations(t)
}

func TestRepository_CustomKeys(t *testing.T) {
	store := new(mockStore)
	store.On("Load", mock.Anything, "active").Return([]Quiz{}, nil)
	store.On("Load", mock.Anything, "bin").Return([]Quiz{}, nil)
	store.On("Save", mock.Anything, "active", mock.Anything).Return(nil)

	repo := NewRepository(store, zerolog.Nop(), RepositoryOptions{Keys: Keys{Active: "active", Archive: "bin"}, Now: fixedClock(5)})
	require.NoError(t, repo.LoadAll(context.Background()))
	_, err := repo.Create(context.Background(), sampleQuiz("A", 5))
	require.NoError(t, err)
	store.AssertExpectations(t)
}
