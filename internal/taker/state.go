package taker

import "github.com/gokatarajesh/quiz-manager/internal/quiz"

// HiddenAnswerText replaces the answer while it is hidden.
const HiddenAnswerText = "Answer not available"

// View is what a client renders for the current step.
type View struct {
	QuizName  string   `json:"quiz_name"`
	Phase     Phase    `json:"phase"`
	Index     int      `json:"index"`
	Total     int      `json:"total"`
	Progress  float64  `json:"progress"`
	Question  string   `json:"question,omitempty"`
	Answer    string   `json:"answer,omitempty"`
	Hidden    bool     `json:"hidden"`
	Options   []string `json:"options,omitempty"`
	Selected  string   `json:"selected,omitempty"`
	IsLast    bool     `json:"is_last"`
	Ambiguous bool     `json:"ambiguous,omitempty"`
	Result    *Result  `json:"result,omitempty"`
}

// View renders the current question, or the result once scored.
func (t *Taker) View() View {
	total := len(t.quiz.Questions)
	v := View{
		QuizName:  t.quiz.Name,
		Phase:     t.phase,
		Index:     t.index,
		Total:     total,
		Progress:  float64(t.index+1) / float64(total) * 100,
		IsLast:    t.index == total-1,
		Ambiguous: t.Ambiguous(),
		Result:    t.Result(),
	}
	if t.phase != PhaseAnswering {
		return v
	}

	q := t.quiz.Questions[t.index]
	key := q.Key(t.index)
	v.Question = q.Question
	v.Hidden = t.hidden[key]
	v.Answer = q.Answer
	if v.Hidden || quiz.Blank(q.Answer) {
		v.Answer = HiddenAnswerText
	}
	v.Options = append([]string(nil), q.Options...)
	v.Selected = t.answers[key]
	return v
}

// State is the serializable form of a Taker.
type State struct {
	Quiz    quiz.Quiz         `json:"quiz"`
	Index   int               `json:"index"`
	Answers map[string]string `json:"answers"`
	Hidden  []string          `json:"hidden"`
	Phase   Phase             `json:"phase"`
	Result  *Result           `json:"result,omitempty"`
	Matches int               `json:"matches,omitempty"`
}

func (t *Taker) State() State {
	s := State{
		Quiz:    t.quiz.Clone(),
		Index:   t.index,
		Answers: t.Answers(),
		Phase:   t.phase,
		Result:  t.Result(),
		Matches: t.matches,
	}
	for k := range t.hidden {
		s.Hidden = append(s.Hidden, k)
	}
	return s
}

// Restore rebuilds a taker from a snapshot.
func Restore(s State) (*Taker, error) {
	t, err := New(s.Quiz)
	if err != nil {
		return nil, err
	}
	if s.Index >= 0 && s.Index < len(t.quiz.Questions) {
		t.index = s.Index
	}
	for k, v := range s.Answers {
		t.answers[k] = v
	}
	for _, k := range s.Hidden {
		t.hidden[k] = true
	}
	if s.Phase != "" {
		t.phase = s.Phase
	}
	if s.Result != nil {
		r := *s.Result
		t.result = &r
	}
	t.matches = s.Matches
	return t, nil
}
