package editor

import "github.com/gokatarajesh/quiz-manager/internal/quiz"

// State is the serializable form of an Editor, used to park it in a session store.
type State struct {
	Mode       quiz.Mode       `json:"mode"`
	Base       quiz.Quiz       `json:"base"`
	Name       string          `json:"name"`
	Drafts     []quiz.Question `json:"drafts"`
	Reviewing  bool            `json:"reviewing"`
	Candidates []Candidate     `json:"candidates,omitempty"`
	Selected   []string        `json:"selected,omitempty"`
	Closed     bool            `json:"closed"`
}

// State snapshots the editor.
func (e *Editor) State() State {
	s := State{
		Mode:   e.mode,
		Base:   e.base.Clone(),
		Name:   e.name,
		Drafts: e.Drafts(),
		Closed: e.closed,
	}
	if e.picker != nil {
		s.Reviewing = true
		s.Candidates = append([]Candidate(nil), e.picker.candidates...)
		s.Selected = append([]string(nil), e.picker.selected...)
	}
	return s
}

// Restore rebuilds an editor from a snapshot.
func Restore(s State) *Editor {
	e := &Editor{
		mode:   s.Mode,
		base:   s.Base.Clone(),
		name:   s.Name,
		closed: s.Closed,
	}
	for _, d := range s.Drafts {
		e.drafts = append(e.drafts, d.Clone())
	}
	if len(e.drafts) == 0 {
		e.drafts = []quiz.Question{{}}
	}
	if s.Reviewing {
		e.picker = newPicker(append([]Candidate(nil), s.Candidates...))
		for _, key := range s.Selected {
			if _, ok := e.picker.index[key]; ok {
				e.picker.selected = append(e.picker.selected, key)
			}
		}
	}
	return e
}
