package quiz

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Collection keys used by the original browser layout.
const (
	DefaultActiveKey  = "quizzes"
	DefaultArchiveKey = "deletedQuizzes"
)

// Question bounds enforced by the editor.
const (
	MinCreateQuestions = 5
	MaxCreateQuestions = 25
	MinEditQuestions   = 1
)

// Quiz is a named, ordered set of questions.
type Quiz struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

// Question is a prompt with its expected free-text answer.
type Question struct {
	// ID is kept exactly as stored (number or string); freshly authored questions have none.
	ID       json.RawMessage `json:"id,omitempty"`
	Question string          `json:"question"`
	Answer   string          `json:"answer"`
	Options  []string        `json:"options,omitempty"`
}

// HasID reports whether the question carries a usable identifier.
func (q Question) HasID() bool {
	return len(q.ID) > 0 && !bytes.Equal(q.ID, []byte("null"))
}

// Key identifies the question inside one quiz for transient taking state.
// Questions without an id fall back to their position.
func (q Question) Key(position int) string {
	if !q.HasID() {
		return "#" + strconv.Itoa(position)
	}
	var s string
	if err := json.Unmarshal(q.ID, &s); err == nil {
		return s
	}
	return string(q.ID)
}

// Clone returns a deep copy so callers never share backing arrays with the mirror.
func (q Quiz) Clone() Quiz {
	out := Quiz{ID: q.ID, Name: q.Name}
	if q.Questions != nil {
		out.Questions = make([]Question, len(q.Questions))
		for i, question := range q.Questions {
			out.Questions[i] = question.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the question.
func (q Question) Clone() Question {
	out := Question{Question: q.Question, Answer: q.Answer}
	if q.ID != nil {
		out.ID = append(json.RawMessage(nil), q.ID...)
	}
	if q.Options != nil {
		out.Options = append([]string(nil), q.Options...)
	}
	return out
}

func cloneAll(quizzes []Quiz) []Quiz {
	out := make([]Quiz, len(quizzes))
	for i, q := range quizzes {
		out[i] = q.Clone()
	}
	return out
}
