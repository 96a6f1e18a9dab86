package taker

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-manager/internal/logging"
	"github.com/gokatarajesh/quiz-manager/internal/quiz"
	"github.com/gokatarajesh/quiz-manager/internal/session"
	httperrors "github.com/gokatarajesh/quiz-manager/pkg/http/errors"
)

// HTTPHandlers exposes the JSON taking API.
type HTTPHandlers struct {
	manager *Manager
	logger  zerolog.Logger
}

func NewHTTPHandlers(manager *Manager, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		manager: manager,
		logger:  logger.With().Str("component", "taker_http").Logger(),
	}
}

// StartRequest names the quiz to take.
type StartRequest struct {
	Quiz string `json:"quiz"`
}

// ActionRequest carries the answer for the answer action.
type ActionRequest struct {
	Value string `json:"value"`
}

// TakeResponse is returned by every taking endpoint.
type TakeResponse struct {
	SessionID string `json:"session_id"`
	Ambiguous bool   `json:"ambiguous,omitempty"`
	Matches   int    `json:"matches,omitempty"`
	View      View   `json:"view"`
}

func takeResponse(id string, t *Taker) TakeResponse {
	return TakeResponse{
		SessionID: id,
		Ambiguous: t.Ambiguous(),
		Matches:   t.Matches(),
		View:      t.View(),
	}
}

// Start handles POST /v1/takes
func (h *HTTPHandlers) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if quiz.Blank(req.Quiz) {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "quiz name is required", "quiz")
		return
	}

	id, t, _, err := h.manager.Start(r.Context(), req.Quiz)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, takeResponse(id, t))
}

// Get handles GET /v1/takes/{sid}
func (h *HTTPHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("sid")
	t, err := h.manager.Load(r.Context(), id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, takeResponse(id, t))
}

// Act handles POST /v1/takes/{sid}/{action}
func (h *HTTPHandlers) Act(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("sid")
	action := Action(r.PathValue("action"))

	var req ActionRequest
	if action == ActionAnswer {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
			return
		}
	}

	t, err := h.manager.Apply(r.Context(), id, action, req.Value)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, takeResponse(id, t))
}

func (h *HTTPHandlers) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, quiz.ErrQuizNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeQuizNotFound, "Quiz not found.")
	case errors.Is(err, session.ErrNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "Quiz session not found or expired.")
	case errors.Is(err, ErrNoQuestions):
		httperrors.RespondConflict(w, httperrors.ErrCodeNoQuestions, err.Error())
	case errors.Is(err, ErrAnswerHidden):
		httperrors.RespondConflict(w, httperrors.ErrCodeAnswerHidden, err.Error())
	case errors.Is(err, ErrNotAnswering), errors.Is(err, ErrFinished):
		httperrors.RespondConflict(w, httperrors.ErrCodeInvalidState, err.Error())
	case errors.Is(err, ErrUnknownAction):
		httperrors.RespondNotFound(w, httperrors.ErrCodeUnknownAction, err.Error())
	default:
		l := logging.ForRequest(r.Context(), "taker_http", h.logger)
		l.Error().Err(err).Msg("take request failed")
		httperrors.RespondInternalError(w, "failed to process quiz session")
	}
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}
