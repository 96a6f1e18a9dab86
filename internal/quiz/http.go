package quiz

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-manager/internal/logging"
	httperrors "github.com/gokatarajesh/quiz-manager/pkg/http/errors"
)

// HTTPHandlers exposes the quiz collections as JSON.
type HTTPHandlers struct {
	service *Service
	logger  zerolog.Logger
}

func NewHTTPHandlers(service *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		logger:  logger.With().Str("component", "quiz_http").Logger(),
	}
}

// Summary is the list-view projection of a quiz.
type Summary struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Questions int    `json:"questions"`
}

func summarize(quizzes []Quiz) []Summary {
	out := make([]Summary, len(quizzes))
	for i, q := range quizzes {
		out[i] = Summary{ID: q.ID, Name: q.Name, Questions: len(q.Questions)}
	}
	return out
}

// List handles GET /v1/quizzes
func (h *HTTPHandlers) List(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"quizzes": summarize(h.service.Repository().List()),
	})
}

// Get handles GET /v1/quizzes/{id}
func (h *HTTPHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := quizID(w, r)
	if !ok {
		return
	}
	q, err := h.service.Get(id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, q)
}

// Delete handles DELETE /v1/quizzes/{id}?confirm=true
func (h *HTTPHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := quizID(w, r)
	if !ok {
		return
	}
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

	removed, err := h.service.Delete(r.Context(), id, confirmed)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"archived": removed,
	})
}

// Archive handles GET /v1/archive
func (h *HTTPHandlers) Archive(w http.ResponseWriter, r *http.Request) {
	archived, err := h.service.Archive().List(r.Context())
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"quizzes": archived,
	})
}

func quizID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeInvalidRequest, "quiz id must be an integer", "id")
		return 0, false
	}
	return id, true
}

func (h *HTTPHandlers) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrQuizNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeQuizNotFound, "Quiz not found.")
	case errors.Is(err, ErrConfirmationRequired):
		httperrors.RespondErrorWithDetails(w, http.StatusPreconditionRequired, httperrors.ErrCodeConfirmationRequired,
			"Are you sure you want to delete this quiz?", map[string]interface{}{"confirm": "repeat the request with ?confirm=true"})
	case errors.Is(err, ErrNotLoaded):
		httperrors.RespondError(w, http.StatusServiceUnavailable, httperrors.ErrCodeServiceUnavailable, err.Error())
	default:
		l := logging.ForRequest(r.Context(), "quiz_http", h.logger)
		l.Error().Err(err).Msg("quiz request failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeStorageFailed, "failed to access quiz storage")
	}
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}
