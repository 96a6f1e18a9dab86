package taker

import (
	"errors"

	"github.com/gokatarajesh/quiz-manager/internal/quiz"
)

var (
	ErrNoQuestions  = errors.New("quiz has no questions")
	ErrNotAnswering = errors.New("quiz is not in progress")
	ErrAnswerHidden = errors.New("answer is hidden for this question")
	ErrFinished     = errors.New("quiz taking is finished")
)

// Phase is the taker's position in its state machine.
type Phase string

const (
	PhaseAnswering Phase = "answering"
	PhaseResults   Phase = "results"
	PhaseFinished  Phase = "finished"
)

// Taker steps through one quiz. It is not safe for concurrent use.
type Taker struct {
	quiz    quiz.Quiz
	index   int
	answers map[string]string
	hidden  map[string]bool
	phase   Phase
	result  *Result
	matches int
}

// New starts taking q at its first question.
func New(q quiz.Quiz) (*Taker, error) {
	if len(q.Questions) == 0 {
		return nil, ErrNoQuestions
	}
	t := &Taker{quiz: q.Clone()}
	t.reset()
	return t, nil
}

func (t *Taker) reset() {
	t.index = 0
	t.answers = make(map[string]string)
	t.hidden = make(map[string]bool)
	t.phase = PhaseAnswering
	t.result = nil
}

func (t *Taker) Quiz() quiz.Quiz { return t.quiz.Clone() }

func (t *Taker) Phase() Phase { return t.phase }

func (t *Taker) Index() int { return t.index }

func (t *Taker) Total() int { return len(t.quiz.Questions) }

// Matches is how many active quizzes carried the name this take was started
// from. It survives restarts.
func (t *Taker) Matches() int { return t.matches }

// Ambiguous reports whether the name matched more than one quiz.
func (t *Taker) Ambiguous() bool { return t.matches > 1 }

// Result is nil until the last question has been passed.
func (t *Taker) Result() *Result {
	if t.result == nil {
		return nil
	}
	r := *t.result
	return &r
}

func (t *Taker) currentKey() string {
	return t.quiz.Questions[t.index].Key(t.index)
}

// Hidden reports whether the current question's answer is hidden.
func (t *Taker) Hidden() bool {
	return t.hidden[t.currentKey()]
}

// Answers returns a copy of the recorded answers keyed by question key.
func (t *Taker) Answers() map[string]string {
	out := make(map[string]string, len(t.answers))
	for k, v := range t.answers {
		out[k] = v
	}
	return out
}

// Answer records value for the current question.
func (t *Taker) Answer(value string) error {
	if err := t.requireAnswering(); err != nil {
		return err
	}
	if t.Hidden() {
		return ErrAnswerHidden
	}
	t.answers[t.currentKey()] = value
	return nil
}

// ToggleVisibility flips answer visibility for the current question only.
func (t *Taker) ToggleVisibility() error {
	if err := t.requireAnswering(); err != nil {
		return err
	}
	key := t.currentKey()
	if t.hidden[key] {
		delete(t.hidden, key)
	} else {
		t.hidden[key] = true
	}
	return nil
}

// Next advances one question; past the last question it scores the quiz and
// moves to results.
func (t *Taker) Next() error {
	if err := t.requireAnswering(); err != nil {
		return err
	}
	if t.index < len(t.quiz.Questions)-1 {
		t.index++
		return nil
	}
	r := score(t.quiz, t.answers)
	t.result = &r
	t.phase = PhaseResults
	return nil
}

// Previous steps back one question; it does nothing on the first question.
func (t *Taker) Previous() error {
	if err := t.requireAnswering(); err != nil {
		return err
	}
	if t.index > 0 {
		t.index--
	}
	return nil
}

// Restart clears every answer and visibility flag and returns to the first question.
func (t *Taker) Restart() error {
	if t.phase == PhaseFinished {
		return ErrFinished
	}
	t.reset()
	return nil
}

// Finish leaves the quiz. Nothing is persisted.
func (t *Taker) Finish() {
	t.phase = PhaseFinished
}

func (t *Taker) requireAnswering() error {
	switch t.phase {
	case PhaseAnswering:
		return nil
	case PhaseFinished:
		return ErrFinished
	default:
		return ErrNotAnswering
	}
}
