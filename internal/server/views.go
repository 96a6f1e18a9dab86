package server

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-manager/internal/editor"
	"github.com/gokatarajesh/quiz-manager/internal/logging"
	"github.com/gokatarajesh/quiz-manager/internal/quiz"
	"github.com/gokatarajesh/quiz-manager/internal/session"
	"github.com/gokatarajesh/quiz-manager/internal/taker"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

func pageTemplate(name string) *template.Template {
	return template.Must(template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html"))
}

var (
	listTemplate    = pageTemplate("list")
	takerTemplate   = pageTemplate("taker")
	editorTemplate  = pageTemplate("editor")
	confirmTemplate = pageTemplate("confirm")
	messageTemplate = pageTemplate("message")
)

// Views renders the HTML pages: the quiz list with its management forms, the
// editor and the taking view.
type Views struct {
	quizzes *quiz.Service
	takes   *taker.Manager
	editors *editor.Manager
	logger  zerolog.Logger
}

func NewViews(quizzes *quiz.Service, takes *taker.Manager, editors *editor.Manager, logger zerolog.Logger) *Views {
	return &Views{
		quizzes: quizzes,
		takes:   takes,
		editors: editors,
		logger:  logger.With().Str("component", "views").Logger(),
	}
}

type listPage struct {
	Title   string
	Quizzes []quiz.Summary
}

type takerPage struct {
	Title     string
	SessionID string
	Error     string
	View      taker.View
}

type messagePage struct {
	Title   string
	Message string
}

// List handles GET /
func (v *Views) List(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	quizzes := v.quizzes.Repository().List()
	page := listPage{Title: "Quizzes", Quizzes: make([]quiz.Summary, len(quizzes))}
	for i, q := range quizzes {
		page.Quizzes[i] = quiz.Summary{ID: q.ID, Name: q.Name, Questions: len(q.Questions)}
	}
	v.render(w, r, http.StatusOK, listTemplate, page)
}

// Take handles GET /quiz-taker?quiz=<name>[&session=<id>]. Without a session it
// resolves the name, parks a new taker and redirects to the session URL.
func (v *Views) Take(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	name := query.Get("quiz")

	if sid := query.Get("session"); sid != "" {
		t, err := v.takes.Load(r.Context(), sid)
		if err != nil {
			v.renderErr(w, r, err)
			return
		}
		v.render(w, r, http.StatusOK, takerTemplate, takerPage{
			Title:     t.Quiz().Name,
			SessionID: sid,
			View:      t.View(),
		})
		return
	}

	sid, _, _, err := v.takes.Start(r.Context(), name)
	if err != nil {
		v.renderErr(w, r, err)
		return
	}
	target := url.Values{"quiz": {name}, "session": {sid}}
	http.Redirect(w, r, "/quiz-taker?"+target.Encode(), http.StatusSeeOther)
}

// Act handles POST /quiz-taker with form fields session, quiz, action and value.
// Navigation and toggle buttons share a form with the answer input, so a value
// that comes along with them is recorded first.
func (v *Views) Act(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	sid := r.PostForm.Get("session")
	name := r.PostForm.Get("quiz")
	action := taker.Action(r.PostForm.Get("action"))

	steps := []taker.Step{{Action: action, Value: r.PostForm.Get("value")}}
	if values, ok := r.PostForm["value"]; ok && carriesAnswer(action) {
		steps = append([]taker.Step{{Action: taker.ActionAnswer, Value: values[0]}}, steps...)
	}

	t, err := v.takes.ApplySteps(r.Context(), sid, steps...)
	if err != nil {
		if t == nil {
			v.renderErr(w, r, err)
			return
		}
		v.render(w, r, http.StatusConflict, takerTemplate, takerPage{
			Title:     t.Quiz().Name,
			SessionID: sid,
			Error:     err.Error(),
			View:      t.View(),
		})
		return
	}

	if t.Phase() == taker.PhaseFinished {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	target := url.Values{"quiz": {name}, "session": {sid}}
	http.Redirect(w, r, "/quiz-taker?"+target.Encode(), http.StatusSeeOther)
}

func carriesAnswer(action taker.Action) bool {
	switch action {
	case taker.ActionNext, taker.ActionPrevious, taker.ActionToggle:
		return true
	}
	return false
}

func (v *Views) renderErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, quiz.ErrQuizNotFound):
		v.message(w, r, http.StatusNotFound, "Quiz not found", "Quiz not found.")
	case errors.Is(err, session.ErrNotFound):
		v.message(w, r, http.StatusNotFound, "Session expired", "This session has expired.")
	case errors.Is(err, taker.ErrNoQuestions):
		v.message(w, r, http.StatusConflict, "Empty quiz", "This quiz has no questions.")
	default:
		l := logging.ForRequest(r.Context(), "views", v.logger)
		l.Error().Err(err).Msg("view request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (v *Views) message(w http.ResponseWriter, r *http.Request, status int, title, text string) {
	v.render(w, r, status, messageTemplate, messagePage{Title: title, Message: text})
}

func (v *Views) render(w http.ResponseWriter, r *http.Request, status int, tmpl *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		l := logging.ForRequest(r.Context(), "views", v.logger)
		l.Error().Err(err).Msg("template render failed")
	}
}
