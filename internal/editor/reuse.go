package editor

import (
	"fmt"

	"github.com/gokatarajesh/quiz-manager/internal/quiz"
)

// Source tags where a reuse candidate came from.
type Source string

const (
	SourceActive   Source = "active"
	SourceArchived Source = "archived"
)

// Candidate is one previously authored question offered for reuse.
type Candidate struct {
	// Key stays stable across rebuilds: <source>:<quiz id>:<position>, with a
	// ~<n> suffix on the n-th repeat when quizzes share an id.
	Key        string `json:"key"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	SourceQuiz string `json:"source_quiz"`
	Position   int    `json:"position"`
	Source     Source `json:"source"`
	Label      string `json:"label"`
	Selected   bool   `json:"selected"`
}

type picker struct {
	candidates []Candidate
	index      map[string]int
	selected   []string
}

func newPicker(candidates []Candidate) *picker {
	p := &picker{candidates: candidates, index: make(map[string]int, len(candidates))}
	for i, c := range candidates {
		p.index[c.Key] = i
	}
	return p
}

func (p *picker) isSelected(key string) bool {
	for _, k := range p.selected {
		if k == key {
			return true
		}
	}
	return false
}

// BuildCandidates flattens every question of every active quiz, then of every
// archived quiz. Keys are unique even when stored quizzes carry duplicate or
// missing ids.
func BuildCandidates(active, archived []quiz.Quiz) []Candidate {
	var out []Candidate
	seen := make(map[string]int)
	add := func(source Source, quizzes []quiz.Quiz) {
		for _, q := range quizzes {
			label := q.Name
			if source == SourceArchived {
				label = q.Name + " (deleted)"
			}
			for i, question := range q.Questions {
				key := fmt.Sprintf("%s:%d:%d", source, q.ID, i+1)
				seen[key]++
				if n := seen[key]; n > 1 {
					key = fmt.Sprintf("%s~%d", key, n)
				}
				out = append(out, Candidate{
					Key:        key,
					Question:   question.Question,
					Answer:     question.Answer,
					SourceQuiz: q.Name,
					Position:   i + 1,
					Source:     source,
					Label:      fmt.Sprintf("%s (question %d)", label, i+1),
				})
			}
		}
	}
	add(SourceActive, active)
	add(SourceArchived, archived)
	return out
}

// OpenReuse enters the reviewing state with a freshly built candidate list.
// Any earlier selection is dropped.
func (e *Editor) OpenReuse(active, archived []quiz.Quiz) error {
	if e.closed {
		return ErrClosed
	}
	if e.mode != quiz.ModeCreate {
		return ErrReuseUnavailable
	}
	e.picker = newPicker(BuildCandidates(active, archived))
	return nil
}

// Candidates returns the picker contents with their selection flags.
func (e *Editor) Candidates() []Candidate {
	if e.picker == nil {
		return nil
	}
	out := make([]Candidate, len(e.picker.candidates))
	for i, c := range e.picker.candidates {
		c.Selected = e.picker.isSelected(c.Key)
		out[i] = c
	}
	return out
}

// Selection returns the selected keys in the order they were picked.
func (e *Editor) Selection() []string {
	if e.picker == nil {
		return nil
	}
	return append([]string(nil), e.picker.selected...)
}

// ToggleCandidate flips the selection of the candidate with key.
func (e *Editor) ToggleCandidate(key string) error {
	if e.closed {
		return ErrClosed
	}
	if e.picker == nil {
		return ErrNotReviewing
	}
	if _, ok := e.picker.index[key]; !ok {
		return ErrUnknownCandidate
	}
	for i, k := range e.picker.selected {
		if k == key {
			e.picker.selected = append(e.picker.selected[:i], e.picker.selected[i+1:]...)
			return nil
		}
	}
	e.picker.selected = append(e.picker.selected, key)
	return nil
}

// ConfirmReuse appends {question, answer} copies of the selected candidates and
// leaves the reviewing state.
func (e *Editor) ConfirmReuse() (int, error) {
	if e.closed {
		return 0, ErrClosed
	}
	if e.picker == nil {
		return 0, ErrNotReviewing
	}
	if len(e.picker.selected) == 0 {
		return 0, ErrNothingSelected
	}
	for _, key := range e.picker.selected {
		c := e.picker.candidates[e.picker.index[key]]
		e.drafts = append(e.drafts, quiz.Question{Question: c.Question, Answer: c.Answer})
	}
	added := len(e.picker.selected)
	e.picker = nil
	return added, nil
}

// CancelReuse leaves the reviewing state without changing the drafts.
func (e *Editor) CancelReuse() error {
	if e.closed {
		return ErrClosed
	}
	e.picker = nil
	return nil
}
