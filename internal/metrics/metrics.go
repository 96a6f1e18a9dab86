package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QuizMutations counts create/update/delete operations on the active collection.
	QuizMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quiz_manager",
		Name:      "quiz_mutations_total",
		Help:      "Mutations applied to the active quiz collection.",
	}, []string{"op"})

	// EditorSaves counts editor save attempts by outcome.
	EditorSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quiz_manager",
		Name:      "editor_saves_total",
		Help:      "Editor save attempts by outcome.",
	}, []string{"mode", "outcome"})

	TakesStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quiz_manager",
		Name:      "takes_started_total",
		Help:      "Quiz-taking sessions started.",
	})

	TakesFinished = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quiz_manager",
		Name:      "takes_finished_total",
		Help:      "Quiz-taking sessions left through finish.",
	})

	// TakeScores observes the fraction of correct answers when a take reaches results.
	TakeScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "quiz_manager",
		Name:      "take_score_ratio",
		Help:      "Score divided by question count at results.",
		Buckets:   []float64{0.2, 0.4, 0.6, 0.8, 1},
	})

	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quiz_manager",
		Name:      "store_errors_total",
		Help:      "Backend failures and recovered malformed payloads.",
	}, []string{"kind"})
)
