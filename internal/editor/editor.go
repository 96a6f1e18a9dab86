package editor

import (
	"context"
	"errors"
	"strings"

	"github.com/gokatarajesh/quiz-manager/internal/quiz"
)

var (
	ErrClosed           = errors.New("editor is closed")
	ErrDraftOutOfRange  = errors.New("draft position out of range")
	ErrUnknownField     = errors.New("unknown draft field")
	ErrSaveDisabled     = errors.New("save is disabled until the form is valid")
	ErrReuseUnavailable = errors.New("question reuse is only available when creating a quiz")
	ErrNotReviewing     = errors.New("reuse picker is not open")
	ErrUnknownCandidate = errors.New("unknown reuse candidate")
	ErrNothingSelected  = errors.New("no reuse candidates selected")
)

// Phase is the editor's position in its state machine.
type Phase string

const (
	PhaseEditing   Phase = "editing"
	PhaseReviewing Phase = "reviewing"
	PhaseClosed    Phase = "closed"
)

// Field names one editable part of a draft.
type Field string

const (
	FieldQuestion Field = "question"
	FieldAnswer   Field = "answer"
)

// Sink receives saved quizzes. *quiz.Service satisfies it.
type Sink interface {
	Create(ctx context.Context, q quiz.Quiz) (quiz.Quiz, error)
	Update(ctx context.Context, q quiz.Quiz) (bool, error)
}

// Editor holds a working draft of one quiz. It is not safe for concurrent use.
type Editor struct {
	mode   quiz.Mode
	base   quiz.Quiz
	name   string
	drafts []quiz.Question
	picker *picker
	closed bool
}

// NewCreate starts a blank quiz with a single empty draft.
func NewCreate() *Editor {
	return &Editor{
		mode:   quiz.ModeCreate,
		drafts: []quiz.Question{{}},
	}
}

// NewEdit starts editing q. Question ids and options are kept.
func NewEdit(q quiz.Quiz) *Editor {
	e := &Editor{
		mode: quiz.ModeEdit,
		base: q.Clone(),
		name: q.Name,
	}
	e.drafts = e.base.Clone().Questions
	if len(e.drafts) == 0 {
		e.drafts = []quiz.Question{{}}
	}
	return e
}

func (e *Editor) Mode() quiz.Mode { return e.mode }

func (e *Editor) Name() string { return e.name }

// Phase reports the current state.
func (e *Editor) Phase() Phase {
	switch {
	case e.closed:
		return PhaseClosed
	case e.picker != nil:
		return PhaseReviewing
	default:
		return PhaseEditing
	}
}

// Drafts returns a copy of the draft list.
func (e *Editor) Drafts() []quiz.Question {
	out := make([]quiz.Question, len(e.drafts))
	for i, d := range e.drafts {
		out[i] = d.Clone()
	}
	return out
}

func (e *Editor) SetName(name string) error {
	if e.closed {
		return ErrClosed
	}
	e.name = name
	return nil
}

// AddDraft appends an empty draft.
func (e *Editor) AddDraft() error {
	if e.closed {
		return ErrClosed
	}
	e.drafts = append(e.drafts, quiz.Question{})
	return nil
}

// RemoveDraft deletes the draft at pos. The last remaining draft is never removed.
func (e *Editor) RemoveDraft(pos int) error {
	if e.closed {
		return ErrClosed
	}
	if pos < 0 || pos >= len(e.drafts) {
		return ErrDraftOutOfRange
	}
	if len(e.drafts) == 1 {
		return nil
	}
	e.drafts = append(e.drafts[:pos], e.drafts[pos+1:]...)
	return nil
}

// SetField updates one field of one draft without validating it.
func (e *Editor) SetField(pos int, field Field, value string) error {
	if e.closed {
		return ErrClosed
	}
	if pos < 0 || pos >= len(e.drafts) {
		return ErrDraftOutOfRange
	}
	switch field {
	case FieldQuestion:
		e.drafts[pos].Question = value
	case FieldAnswer:
		e.drafts[pos].Answer = value
	default:
		return ErrUnknownField
	}
	return nil
}

// Validate lists the problems that keep save disabled.
func (e *Editor) Validate() []quiz.Problem {
	return quiz.Validate(e.mode, e.name, e.drafts)
}

// CanSave reports whether the save action is enabled.
func (e *Editor) CanSave() bool {
	return !e.closed && len(e.Validate()) == 0
}

// Save hands the quiz to sink, then closes the editor whatever the sink returns.
// When save is disabled nothing changes and ErrSaveDisabled is returned.
func (e *Editor) Save(ctx context.Context, sink Sink) (quiz.Quiz, error) {
	if e.closed {
		return quiz.Quiz{}, ErrClosed
	}
	if !e.CanSave() {
		return quiz.Quiz{}, ErrSaveDisabled
	}

	q := e.build()
	defer e.Close()

	if e.mode == quiz.ModeCreate {
		return sink.Create(ctx, q)
	}
	if _, err := sink.Update(ctx, q); err != nil {
		return quiz.Quiz{}, err
	}
	return q, nil
}

// build applies a second pass that drops half-filled drafts even though the gate
// already rejects them.
func (e *Editor) build() quiz.Quiz {
	q := quiz.Quiz{Name: strings.TrimSpace(e.name)}
	if e.mode == quiz.ModeEdit {
		q = e.base.Clone()
		q.Name = strings.TrimSpace(e.name)
	}
	q.Questions = quiz.FilledOnly(e.drafts)
	return q
}

// Close discards the draft and any open picker.
func (e *Editor) Close() {
	e.name = ""
	e.drafts = []quiz.Question{{}}
	e.picker = nil
	e.base = quiz.Quiz{}
	e.closed = true
}
