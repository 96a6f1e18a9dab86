package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondNotFound(rec, ErrCodeQuizNotFound, "Quiz not found.")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, ErrCodeQuizNotFound, body.Error)
	assert.Equal(t, "Quiz not found.", body.Message)
	assert.Empty(t, body.Problems)
}

func TestRespondProblems(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondProblems(rec, ErrCodeSaveDisabled, "quiz cannot be saved yet", []FieldProblem{
		{Field: "name", Message: "Quiz name is required."},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Problems, 1)
	assert.Equal(t, "name", body.Problems[0].Field)
}
