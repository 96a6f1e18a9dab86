package quiz

import (
	"fmt"
	"strings"
)

// Mode selects which save-gating rules apply.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Problem is a field-level validation message.
type Problem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Blank reports whether s has no visible characters.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Filled reports whether both question and answer carry text.
func (q Question) Filled() bool {
	return !Blank(q.Question) && !Blank(q.Answer)
}

// Validate applies the save gate for mode. Create requires 5..25 questions while edit
// only requires one; the asymmetry is intentional and must not be unified.
func Validate(mode Mode, name string, questions []Question) []Problem {
	var problems []Problem
	if Blank(name) {
		problems = append(problems, Problem{Field: "name", Message: "quiz name must not be blank"})
	}

	switch mode {
	case ModeCreate:
		if len(questions) < MinCreateQuestions || len(questions) > MaxCreateQuestions {
			problems = append(problems, Problem{
				Field:   "questions",
				Message: fmt.Sprintf("a new quiz needs between %d and %d questions, got %d", MinCreateQuestions, MaxCreateQuestions, len(questions)),
			})
		}
	default:
		if len(questions) < MinEditQuestions {
			problems = append(problems, Problem{Field: "questions", Message: "a quiz needs at least one question"})
		}
	}

	for i, q := range questions {
		if Blank(q.Question) {
			problems = append(problems, Problem{Field: fmt.Sprintf("questions[%d].question", i), Message: "question must not be blank"})
		}
		if Blank(q.Answer) {
			problems = append(problems, Problem{Field: fmt.Sprintf("questions[%d].answer", i), Message: "answer must not be blank"})
		}
	}
	return problems
}

// FilledOnly drops questions with a blank question or answer.
func FilledOnly(questions []Question) []Question {
	out := make([]Question, 0, len(questions))
	for _, q := range questions {
		if q.Filled() {
			out = append(out, q.Clone())
		}
	}
	return out
}
