package editor

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-manager/internal/logging"
	"github.com/gokatarajesh/quiz-manager/internal/quiz"
	"github.com/gokatarajesh/quiz-manager/internal/session"
	httperrors "github.com/gokatarajesh/quiz-manager/pkg/http/errors"
)

// HTTPHandlers exposes the JSON editor API.
type HTTPHandlers struct {
	manager *Manager
	logger  zerolog.Logger
}

func NewHTTPHandlers(manager *Manager, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		manager: manager,
		logger:  logger.With().Str("component", "editor_http").Logger(),
	}
}

// OpenRequest selects create or edit mode.
type OpenRequest struct {
	Mode   quiz.Mode `json:"mode"`
	QuizID int64     `json:"quiz_id"`
}

// NameRequest sets the quiz name.
type NameRequest struct {
	Name string `json:"name"`
}

// FieldRequest edits one draft field.
type FieldRequest struct {
	Field Field  `json:"field"`
	Value string `json:"value"`
}

// ToggleRequest flips one reuse candidate.
type ToggleRequest struct {
	Key string `json:"key"`
}

// Response is returned by every editor endpoint.
type Response struct {
	SessionID  string          `json:"session_id"`
	Mode       quiz.Mode       `json:"mode"`
	Phase      Phase           `json:"phase"`
	Name       string          `json:"name"`
	Drafts     []quiz.Question `json:"drafts"`
	CanSave    bool            `json:"can_save"`
	Problems   []quiz.Problem  `json:"problems"`
	Candidates []Candidate     `json:"candidates,omitempty"`
	Selected   []string        `json:"selected,omitempty"`
	Added      int             `json:"added,omitempty"`
	Saved      *quiz.Quiz      `json:"saved,omitempty"`
}

func newResponse(id string, e *Editor) Response {
	problems := e.Validate()
	if problems == nil {
		problems = []quiz.Problem{}
	}
	return Response{
		SessionID:  id,
		Mode:       e.Mode(),
		Phase:      e.Phase(),
		Name:       e.Name(),
		Drafts:     e.Drafts(),
		CanSave:    e.CanSave(),
		Problems:   problems,
		Candidates: e.Candidates(),
		Selected:   e.Selection(),
	}
}

// Open handles POST /v1/editor
func (h *HTTPHandlers) Open(w http.ResponseWriter, r *http.Request) {
	var req OpenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.Mode == "" {
		req.Mode = quiz.ModeCreate
	}
	if req.Mode != quiz.ModeCreate && req.Mode != quiz.ModeEdit {
		httperrors.RespondValidationError(w, httperrors.ErrCodeInvalidRequest, "mode must be create or edit", "mode")
		return
	}

	id, e, err := h.manager.Open(r.Context(), req.Mode, req.QuizID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, newResponse(id, e))
}

// Get handles GET /v1/editor/{sid}
func (h *HTTPHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("sid")
	e, err := h.manager.Load(r.Context(), id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, newResponse(id, e))
}

// SetName handles PUT /v1/editor/{sid}/name
func (h *HTTPHandlers) SetName(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	h.apply(w, r, func(e *Editor) error { return e.SetName(req.Name) })
}

// AddDraft handles POST /v1/editor/{sid}/drafts
func (h *HTTPHandlers) AddDraft(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(e *Editor) error { return e.AddDraft() })
}

// SetField handles PATCH /v1/editor/{sid}/drafts/{pos}
func (h *HTTPHandlers) SetField(w http.ResponseWriter, r *http.Request) {
	pos, ok := draftPosition(w, r)
	if !ok {
		return
	}
	var req FieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	h.apply(w, r, func(e *Editor) error { return e.SetField(pos, req.Field, req.Value) })
}

// RemoveDraft handles DELETE /v1/editor/{sid}/drafts/{pos}
func (h *HTTPHandlers) RemoveDraft(w http.ResponseWriter, r *http.Request) {
	pos, ok := draftPosition(w, r)
	if !ok {
		return
	}
	h.apply(w, r, func(e *Editor) error { return e.RemoveDraft(pos) })
}

// OpenReuse handles POST /v1/editor/{sid}/reuse
func (h *HTTPHandlers) OpenReuse(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("sid")
	e, err := h.manager.OpenReuse(r.Context(), id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, newResponse(id, e))
}

// ToggleCandidate handles POST /v1/editor/{sid}/reuse/toggle
func (h *HTTPHandlers) ToggleCandidate(w http.ResponseWriter, r *http.Request) {
	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	h.apply(w, r, func(e *Editor) error { return e.ToggleCandidate(req.Key) })
}

// ConfirmReuse handles POST /v1/editor/{sid}/reuse/confirm
func (h *HTTPHandlers) ConfirmReuse(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("sid")
	var added int
	e, err := h.manager.Apply(r.Context(), id, func(e *Editor) error {
		n, err := e.ConfirmReuse()
		added = n
		return err
	})
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	resp := newResponse(id, e)
	resp.Added = added
	h.respondJSON(w, http.StatusOK, resp)
}

// CancelReuse handles DELETE /v1/editor/{sid}/reuse
func (h *HTTPHandlers) CancelReuse(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(e *Editor) error { return e.CancelReuse() })
}

// Save handles POST /v1/editor/{sid}/save
func (h *HTTPHandlers) Save(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("sid")
	saved, e, err := h.manager.Save(r.Context(), id)
	if errors.Is(err, ErrSaveDisabled) {
		httperrors.RespondProblems(w, httperrors.ErrCodeSaveDisabled, err.Error(), toFieldProblems(e.Validate()))
		return
	}
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	resp := newResponse(id, e)
	resp.Saved = &saved
	h.respondJSON(w, http.StatusOK, resp)
}

// Close handles DELETE /v1/editor/{sid}
func (h *HTTPHandlers) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Discard(r.Context(), r.PathValue("sid")); err != nil {
		h.respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandlers) apply(w http.ResponseWriter, r *http.Request, fn func(*Editor) error) {
	id := r.PathValue("sid")
	e, err := h.manager.Apply(r.Context(), id, fn)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, newResponse(id, e))
}

func draftPosition(w http.ResponseWriter, r *http.Request) (int, bool) {
	pos, err := strconv.Atoi(r.PathValue("pos"))
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeInvalidRequest, "draft position must be an integer", "pos")
		return 0, false
	}
	return pos, true
}

func toFieldProblems(problems []quiz.Problem) []httperrors.FieldProblem {
	out := make([]httperrors.FieldProblem, len(problems))
	for i, p := range problems {
		out[i] = httperrors.FieldProblem{Field: p.Field, Message: p.Message}
	}
	return out
}

func (h *HTTPHandlers) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "Editor session not found or expired.")
	case errors.Is(err, quiz.ErrQuizNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeQuizNotFound, "Quiz not found.")
	case errors.Is(err, ErrDraftOutOfRange):
		httperrors.RespondNotFound(w, httperrors.ErrCodeDraftNotFound, err.Error())
	case errors.Is(err, ErrUnknownField):
		httperrors.RespondValidationError(w, httperrors.ErrCodeInvalidRequest, err.Error(), "field")
	case errors.Is(err, ErrReuseUnavailable):
		httperrors.RespondConflict(w, httperrors.ErrCodeReuseUnavailable, err.Error())
	case errors.Is(err, ErrUnknownCandidate):
		httperrors.RespondNotFound(w, httperrors.ErrCodeUnknownCandidate, err.Error())
	case errors.Is(err, ErrNothingSelected):
		httperrors.RespondConflict(w, httperrors.ErrCodeNothingSelected, err.Error())
	case errors.Is(err, ErrNotReviewing), errors.Is(err, ErrClosed):
		httperrors.RespondConflict(w, httperrors.ErrCodeInvalidState, err.Error())
	default:
		l := logging.ForRequest(r.Context(), "editor_http", h.logger)
		l.Error().Err(err).Msg("editor request failed")
		httperrors.RespondInternalError(w, "failed to process editor session")
	}
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}
