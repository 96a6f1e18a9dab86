package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-manager/internal/config"
	"github.com/gokatarajesh/quiz-manager/internal/editor"
	"github.com/gokatarajesh/quiz-manager/internal/logging"
	"github.com/gokatarajesh/quiz-manager/internal/quiz"
	"github.com/gokatarajesh/quiz-manager/internal/taker"
)

// Handlers groups every route handler the server mounts.
type Handlers struct {
	Views   *Views
	Quizzes *quiz.HTTPHandlers
	Editor  *editor.HTTPHandlers
	Takes   *taker.HTTPHandlers
}

// NewRouter mounts the HTML views, the JSON API, health and metrics.
func NewRouter(logger zerolog.Logger, h Handlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /", h.Views.List)
	mux.HandleFunc("GET /quiz-taker", h.Views.Take)
	mux.HandleFunc("POST /quiz-taker", h.Views.Act)
	mux.HandleFunc("POST /quizzes/new", h.Views.NewQuiz)
	mux.HandleFunc("POST /quizzes/{id}/edit", h.Views.EditQuiz)
	mux.HandleFunc("GET /quizzes/{id}/delete", h.Views.ConfirmDelete)
	mux.HandleFunc("POST /quizzes/{id}/delete", h.Views.DeleteQuiz)
	mux.HandleFunc("GET /editor", h.Views.Editor)
	mux.HandleFunc("POST /editor", h.Views.EditorAct)

	mux.HandleFunc("GET /v1/quizzes", h.Quizzes.List)
	mux.HandleFunc("GET /v1/quizzes/{id}", h.Quizzes.Get)
	mux.HandleFunc("DELETE /v1/quizzes/{id}", h.Quizzes.Delete)
	mux.HandleFunc("GET /v1/archive", h.Quizzes.Archive)

	mux.HandleFunc("POST /v1/editor", h.Editor.Open)
	mux.HandleFunc("GET /v1/editor/{sid}", h.Editor.Get)
	mux.HandleFunc("DELETE /v1/editor/{sid}", h.Editor.Close)
	mux.HandleFunc("PUT /v1/editor/{sid}/name", h.Editor.SetName)
	mux.HandleFunc("POST /v1/editor/{sid}/drafts", h.Editor.AddDraft)
	mux.HandleFunc("PATCH /v1/editor/{sid}/drafts/{pos}", h.Editor.SetField)
	mux.HandleFunc("DELETE /v1/editor/{sid}/drafts/{pos}", h.Editor.RemoveDraft)
	mux.HandleFunc("POST /v1/editor/{sid}/reuse", h.Editor.OpenReuse)
	mux.HandleFunc("DELETE /v1/editor/{sid}/reuse", h.Editor.CancelReuse)
	mux.HandleFunc("POST /v1/editor/{sid}/reuse/toggle", h.Editor.ToggleCandidate)
	mux.HandleFunc("POST /v1/editor/{sid}/reuse/confirm", h.Editor.ConfirmReuse)
	mux.HandleFunc("POST /v1/editor/{sid}/save", h.Editor.Save)

	mux.HandleFunc("POST /v1/takes", h.Takes.Start)
	mux.HandleFunc("GET /v1/takes/{sid}", h.Takes.Get)
	mux.HandleFunc("POST /v1/takes/{sid}/{action}", h.Takes.Act)

	return logging.Middleware(logger, mux)
}

// NewHTTPServer wraps the router in an http.Server bound to the configured address.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, h Handlers) *http.Server {
	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: NewRouter(logger, h),
	}
}
