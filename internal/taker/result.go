package taker

import (
	"fmt"

	"github.com/gokatarajesh/quiz-manager/internal/quiz"
)

// PassPercent is the share of correct answers shown as a pass. It is cosmetic.
const PassPercent = 80

// Result is the read-only outcome of one take.
type Result struct {
	Score   int    `json:"score"`
	Total   int    `json:"total"`
	Passed  bool   `json:"passed"`
	Needed  int    `json:"needed"`
	Message string `json:"message"`
}

// score counts answers that exactly match the stored answer.
func score(q quiz.Quiz, answers map[string]string) Result {
	correct := 0
	for i, question := range q.Questions {
		if given, ok := answers[question.Key(i)]; ok && given == question.Answer {
			correct++
		}
	}
	return newResult(correct, len(q.Questions))
}

// newResult uses integer math so thresholds like 80% of 15 stay exact.
func newResult(correct, total int) Result {
	r := Result{Score: correct, Total: total}
	if correct*100 >= total*PassPercent {
		r.Passed = true
		r.Message = "Congratulations! You passed the quiz."
		return r
	}
	threshold := (total*PassPercent + 99) / 100
	r.Needed = threshold - correct
	r.Message = fmt.Sprintf("Try again. You need %d more correct answers to pass.", r.Needed)
	return r
}
