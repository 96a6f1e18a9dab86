package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gokatarajesh/quiz-manager/internal/editor"
	"github.com/gokatarajesh/quiz-manager/internal/quiz"
)

var errUnknownEditorAction = errors.New("unknown editor action")

type draftRow struct {
	Index    int
	Question string
	Answer   string
}

type editorPage struct {
	Title      string
	SessionID  string
	Error      string
	Mode       quiz.Mode
	Phase      editor.Phase
	Name       string
	Drafts     []draftRow
	CanSave    bool
	Problems   []quiz.Problem
	Candidates []editor.Candidate
	Selected   int
}

type confirmPage struct {
	Title string
	Quiz  quiz.Summary
}

func newEditorPage(sid string, e *editor.Editor) editorPage {
	p := editorPage{
		Title:      "Create quiz",
		SessionID:  sid,
		Mode:       e.Mode(),
		Phase:      e.Phase(),
		Name:       e.Name(),
		CanSave:    e.CanSave(),
		Problems:   e.Validate(),
		Candidates: e.Candidates(),
		Selected:   len(e.Selection()),
	}
	if p.Mode == quiz.ModeEdit {
		p.Title = "Edit quiz"
	}
	for i, d := range e.Drafts() {
		p.Drafts = append(p.Drafts, draftRow{Index: i, Question: d.Question, Answer: d.Answer})
	}
	return p
}

// NewQuiz handles POST /quizzes/new by opening a create editor.
func (v *Views) NewQuiz(w http.ResponseWriter, r *http.Request) {
	sid, _, err := v.editors.Open(r.Context(), quiz.ModeCreate, 0)
	if err != nil {
		v.renderErr(w, r, err)
		return
	}
	redirectEditor(w, r, sid)
}

// EditQuiz handles POST /quizzes/{id}/edit by opening an editor on a copy of the quiz.
func (v *Views) EditQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := v.quizID(w, r)
	if !ok {
		return
	}
	sid, _, err := v.editors.Open(r.Context(), quiz.ModeEdit, id)
	if err != nil {
		v.renderErr(w, r, err)
		return
	}
	redirectEditor(w, r, sid)
}

// ConfirmDelete handles GET /quizzes/{id}/delete and asks before anything is removed.
func (v *Views) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := v.quizID(w, r)
	if !ok {
		return
	}
	q, err := v.quizzes.Get(id)
	if err != nil {
		v.renderErr(w, r, err)
		return
	}
	v.render(w, r, http.StatusOK, confirmTemplate, confirmPage{
		Title: "Delete " + q.Name,
		Quiz:  quiz.Summary{ID: q.ID, Name: q.Name, Questions: len(q.Questions)},
	})
}

// DeleteQuiz handles POST /quizzes/{id}/delete. Only a form carrying confirm=yes
// deletes; anything else is sent back to the confirmation page.
func (v *Views) DeleteQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := v.quizID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	_, err := v.quizzes.Delete(r.Context(), id, r.PostForm.Get("confirm") == "yes")
	switch {
	case errors.Is(err, quiz.ErrConfirmationRequired):
		http.Redirect(w, r, fmt.Sprintf("/quizzes/%d/delete", id), http.StatusSeeOther)
	case err != nil:
		v.renderErr(w, r, err)
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// Editor handles GET /editor?session=<id>.
func (v *Views) Editor(w http.ResponseWriter, r *http.Request) {
	sid := r.URL.Query().Get("session")
	e, err := v.editors.Load(r.Context(), sid)
	if err != nil {
		v.renderErr(w, r, err)
		return
	}
	if e.Phase() == editor.PhaseClosed {
		v.message(w, r, http.StatusConflict, "Editor closed", "This editor is closed.")
		return
	}
	v.render(w, r, http.StatusOK, editorTemplate, newEditorPage(sid, e))
}

// EditorAct handles POST /editor. The typed name and drafts are written to the
// session first, then the button's action runs. Actions that carry an argument
// are encoded as <action>:<arg>, e.g. remove:2 or toggle:active:3:1.
func (v *Views) EditorAct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	sid := r.PostForm.Get("session")
	action, arg, _ := strings.Cut(r.PostForm.Get("action"), ":")

	if _, err := v.editors.Apply(ctx, sid, func(e *editor.Editor) error {
		return syncDraft(e, r.PostForm)
	}); err != nil {
		v.editorErr(w, r, sid, err)
		return
	}

	var err error
	switch action {
	case "update":
	case "add":
		_, err = v.editors.Apply(ctx, sid, (*editor.Editor).AddDraft)
	case "remove":
		pos, convErr := strconv.Atoi(arg)
		if convErr != nil {
			http.Error(w, "invalid draft position", http.StatusBadRequest)
			return
		}
		_, err = v.editors.Apply(ctx, sid, func(e *editor.Editor) error { return e.RemoveDraft(pos) })
	case "reuse":
		_, err = v.editors.OpenReuse(ctx, sid)
	case "toggle":
		_, err = v.editors.Apply(ctx, sid, func(e *editor.Editor) error { return e.ToggleCandidate(arg) })
	case "confirm-reuse":
		_, err = v.editors.Apply(ctx, sid, func(e *editor.Editor) error {
			_, err := e.ConfirmReuse()
			return err
		})
	case "cancel-reuse":
		_, err = v.editors.Apply(ctx, sid, (*editor.Editor).CancelReuse)
	case "save":
		if _, _, err = v.editors.Save(ctx, sid); err == nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
	case "close":
		if err = v.editors.Discard(ctx, sid); err == nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
	default:
		err = errUnknownEditorAction
	}
	if err != nil {
		v.editorErr(w, r, sid, err)
		return
	}
	redirectEditor(w, r, sid)
}

// syncDraft copies the submitted name and draft fields into e. Fields missing
// from the form are left alone.
func syncDraft(e *editor.Editor, form url.Values) error {
	if e.Phase() != editor.PhaseEditing {
		return nil
	}
	if values, ok := form["name"]; ok {
		if err := e.SetName(values[0]); err != nil {
			return err
		}
	}
	for i := range e.Drafts() {
		for _, field := range []editor.Field{editor.FieldQuestion, editor.FieldAnswer} {
			values, ok := form[fmt.Sprintf("%s_%d", field, i)]
			if !ok {
				continue
			}
			if err := e.SetField(i, field, values[0]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *Views) editorErr(w http.ResponseWriter, r *http.Request, sid string, err error) {
	status := http.StatusConflict
	switch {
	case errors.Is(err, editor.ErrClosed):
		v.message(w, r, http.StatusConflict, "Editor closed", "This editor is closed.")
		return
	case errors.Is(err, editor.ErrSaveDisabled):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, editor.ErrDraftOutOfRange),
		errors.Is(err, editor.ErrReuseUnavailable),
		errors.Is(err, editor.ErrNotReviewing),
		errors.Is(err, editor.ErrUnknownCandidate),
		errors.Is(err, editor.ErrNothingSelected),
		errors.Is(err, errUnknownEditorAction):
	default:
		v.renderErr(w, r, err)
		return
	}

	e, loadErr := v.editors.Load(r.Context(), sid)
	if loadErr != nil {
		v.renderErr(w, r, loadErr)
		return
	}
	p := newEditorPage(sid, e)
	p.Error = err.Error()
	v.render(w, r, status, editorTemplate, p)
}

func (v *Views) quizID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		v.message(w, r, http.StatusBadRequest, "Invalid quiz", "Invalid quiz id.")
		return 0, false
	}
	return id, true
}

func redirectEditor(w http.ResponseWriter, r *http.Request, sid string) {
	http.Redirect(w, r, "/editor?"+url.Values{"session": {sid}}.Encode(), http.StatusSeeOther)
}
