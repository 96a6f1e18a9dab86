package taker

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/quiz-manager/internal/quiz"
	"github.com/gokatarajesh/quiz-manager/internal/session"
	httperrors "github.com/gokatarajesh/quiz-manager/pkg/http/errors"
)

type fakeFinder map[string]quiz.Resolution

func (f fakeFinder) ResolveByName(name string) (quiz.Resolution, error) {
	res, ok := f[name]
	if !ok {
		return quiz.Resolution{}, quiz.ErrQuizNotFound
	}
	return res, nil
}

func newTestManager() (*Manager, *session.MemoryStore) {
	store := session.NewMemoryStore(0, zerolog.Nop())
	finder := fakeFinder{
		"Capitals": {Quiz: threeQuestions(), Matches: 2},
		"Empty":    {Quiz: quiz.Quiz{ID: 9, Name: "Empty"}, Matches: 1},
	}
	return NewManager(store, finder, zerolog.Nop()), store
}

func TestManager_StartUnknownCreatesNothing(t *testing.T) {
	m, store := newTestManager()
	m.newID = func() string { return "fixed" }

	_, _, _, err := m.Start(context.Background(), "Nope")
	assert.ErrorIs(t, err, quiz.ErrQuizNotFound)
	assert.Zero(t, store.Sweep())

	_, err = m.Load(context.Background(), "fixed")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestManager_ApplyPersistsBetweenCalls(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	id, _, res, err := m.Start(ctx, "Capitals")
	require.NoError(t, err)
	assert.True(t, res.Ambiguous())

	_, err = m.Apply(ctx, id, ActionAnswer, "Paris")
	require.NoError(t, err)
	_, err = m.Apply(ctx, id, ActionNext, "")
	require.NoError(t, err)

	loaded, err := m.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Index())
	assert.Equal(t, map[string]string{"1": "Paris"}, loaded.Answers())
}

func TestManager_RefusedActionLeavesSessionUnchanged(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()
	id, _, _, err := m.Start(ctx, "Capitals")
	require.NoError(t, err)

	_, err = m.Apply(ctx, id, ActionToggle, "")
	require.NoError(t, err)
	tk, err := m.Apply(ctx, id, ActionAnswer, "Paris")
	assert.ErrorIs(t, err, ErrAnswerHidden)
	require.NotNil(t, tk)
	assert.Empty(t, tk.Answers())

	_, err = m.Apply(ctx, id, Action("skip"), "")
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestManager_FinishDropsSession(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()
	id, _, _, err := m.Start(ctx, "Capitals")
	require.NoError(t, err)

	tk, err := m.Apply(ctx, id, ActionFinish, "")
	require.NoError(t, err)
	assert.Equal(t, PhaseFinished, tk.Phase())

	_, err = m.Load(ctx, id)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func newTakeAPI(t *testing.T) *http.ServeMux {
	t.Helper()
	m, _ := newTestManager()
	h := NewHTTPHandlers(m, zerolog.Nop())
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/takes", h.Start)
	mux.HandleFunc("GET /v1/takes/{sid}", h.Get)
	mux.HandleFunc("POST /v1/takes/{sid}/{action}", h.Act)
	return mux
}

func call(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func TestHTTP_TakeToResults(t *testing.T) {
	mux := newTakeAPI(t)

	rec := call(t, mux, http.MethodPost, "/v1/takes", StartRequest{Quiz: "Capitals"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var started TakeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&started))
	assert.True(t, started.Ambiguous)
	assert.Equal(t, 2, started.Matches)
	assert.Equal(t, "France?", started.View.Question)

	base := "/v1/takes/" + started.SessionID
	for _, answer := range []string{"Paris", "Madrid", "Rome"} {
		require.Equal(t, http.StatusOK, call(t, mux, http.MethodPost, base+"/answer", ActionRequest{Value: answer}).Code)
		require.Equal(t, http.StatusOK, call(t, mux, http.MethodPost, base+"/next", nil).Code)
	}

	rec = call(t, mux, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var done TakeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&done))
	assert.True(t, done.Ambiguous, "the match count is kept with the session")
	assert.True(t, done.View.Ambiguous)
	assert.Equal(t, PhaseResults, done.View.Phase)
	require.NotNil(t, done.View.Result)
	assert.Equal(t, 3, done.View.Result.Score)
	assert.True(t, done.View.Result.Passed)

	assert.Equal(t, http.StatusConflict, call(t, mux, http.MethodPost, base+"/next", nil).Code)
	assert.Equal(t, http.StatusOK, call(t, mux, http.MethodPost, base+"/finish", nil).Code)
	assert.Equal(t, http.StatusNotFound, call(t, mux, http.MethodGet, base, nil).Code)
}

func TestHTTP_StartErrors(t *testing.T) {
	mux := newTakeAPI(t)

	rec := call(t, mux, http.MethodPost, "/v1/takes", StartRequest{Quiz: "Nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body httperrors.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, httperrors.ErrCodeQuizNotFound, body.Error)

	assert.Equal(t, http.StatusBadRequest, call(t, mux, http.MethodPost, "/v1/takes", StartRequest{Quiz: " "}).Code)
	assert.Equal(t, http.StatusConflict, call(t, mux, http.MethodPost, "/v1/takes", StartRequest{Quiz: "Empty"}).Code)
	assert.Equal(t, http.StatusNotFound, call(t, mux, http.MethodGet, "/v1/takes/missing", nil).Code)
}

func TestManager_ApplyStepsRecordsAnswerBeforeMoving(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()
	id, _, _, err := m.Start(ctx, "Capitals")
	require.NoError(t, err)

	tk, err := m.ApplySteps(ctx, id, Step{Action: ActionAnswer, Value: "Paris"}, Step{Action: ActionNext})
	require.NoError(t, err)
	assert.Equal(t, 1, tk.Index())

	loaded, err := m.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1": "Paris"}, loaded.Answers())
	assert.Equal(t, 2, loaded.Matches())
	assert.True(t, loaded.View().Ambiguous)
}

func TestManager_ApplyStepsWritesNothingWhenRefused(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()
	id, _, _, err := m.Start(ctx, "Capitals")
	require.NoError(t, err)

	_, err = m.ApplySteps(ctx, id, Step{Action: ActionNext}, Step{Action: Action("jump")})
	assert.ErrorIs(t, err, ErrUnknownAction)

	loaded, err := m.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Index())
}
