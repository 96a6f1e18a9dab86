package taker

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-manager/internal/metrics"
	"github.com/gokatarajesh/quiz-manager/internal/quiz"
	"github.com/gokatarajesh/quiz-manager/internal/session"
)

var ErrUnknownAction = errors.New("unknown taker action")

// Action names one step a client can drive.
type Action string

const (
	ActionAnswer   Action = "answer"
	ActionToggle   Action = "toggle"
	ActionNext     Action = "next"
	ActionPrevious Action = "previous"
	ActionRestart  Action = "restart"
	ActionFinish   Action = "finish"
)

// Do applies action; value is only read by ActionAnswer.
func (t *Taker) Do(action Action, value string) error {
	switch action {
	case ActionAnswer:
		return t.Answer(value)
	case ActionToggle:
		return t.ToggleVisibility()
	case ActionNext:
		return t.Next()
	case ActionPrevious:
		return t.Previous()
	case ActionRestart:
		return t.Restart()
	case ActionFinish:
		t.Finish()
		return nil
	default:
		return ErrUnknownAction
	}
}

// Finder resolves a quiz by its display name. *quiz.Repository satisfies it.
type Finder interface {
	ResolveByName(name string) (quiz.Resolution, error)
}

// Manager parks takers in a session store between requests.
type Manager struct {
	store   session.Store
	quizzes Finder
	logger  zerolog.Logger
	newID   func() string
}

func NewManager(store session.Store, quizzes Finder, logger zerolog.Logger) *Manager {
	return &Manager{
		store:   store,
		quizzes: quizzes,
		logger:  logger.With().Str("component", "taker_sessions").Logger(),
		newID:   uuid.NewString,
	}
}

// Start resolves name and parks a fresh taker. An unknown name returns
// quiz.ErrQuizNotFound and creates nothing.
func (m *Manager) Start(ctx context.Context, name string) (string, *Taker, quiz.Resolution, error) {
	res, err := m.quizzes.ResolveByName(name)
	if err != nil {
		return "", nil, quiz.Resolution{}, err
	}
	t, err := New(res.Quiz)
	if err != nil {
		return "", nil, res, err
	}
	t.matches = res.Matches

	id := m.newID()
	if err := m.store.Save(ctx, session.KindTake, id, t.State()); err != nil {
		return "", nil, res, fmt.Errorf("park taker: %w", err)
	}
	metrics.TakesStarted.Inc()
	m.logger.Debug().Str("session_id", id).Int64("quiz_id", res.Quiz.ID).Int("matches", res.Matches).Msg("take started")
	return id, t, res, nil
}

// Load restores the taker parked under id.
func (m *Manager) Load(ctx context.Context, id string) (*Taker, error) {
	var st State
	found, err := m.store.Load(ctx, session.KindTake, id, &st)
	if err != nil {
		return nil, fmt.Errorf("load taker: %w", err)
	}
	if !found {
		return nil, session.ErrNotFound
	}
	return Restore(st)
}

// Step is one action with its value.
type Step struct {
	Action Action
	Value  string
}

// Apply runs one action against the parked taker and writes it back. A finished
// taker is dropped from the store. When the action is refused the unchanged taker
// is returned with the error.
func (m *Manager) Apply(ctx context.Context, id string, action Action, value string) (*Taker, error) {
	return m.ApplySteps(ctx, id, Step{Action: action, Value: value})
}

// ApplySteps runs steps in order and writes the taker back once. If any step is
// refused nothing is written and the taker is returned with the error.
func (m *Manager) ApplySteps(ctx context.Context, id string, steps ...Step) (*Taker, error) {
	t, err := m.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	before := t.Phase()
	for _, step := range steps {
		if err := t.Do(step.Action, step.Value); err != nil {
			return t, err
		}
	}

	if before == PhaseAnswering && t.Phase() == PhaseResults {
		if r := t.Result(); r != nil && r.Total > 0 {
			metrics.TakeScores.Observe(float64(r.Score) / float64(r.Total))
		}
	}

	if t.Phase() == PhaseFinished {
		metrics.TakesFinished.Inc()
		if err := m.store.Delete(ctx, session.KindTake, id); err != nil {
			m.logger.Warn().Err(err).Str("session_id", id).Msg("failed to drop finished take")
		}
		return t, nil
	}

	if err := m.store.Save(ctx, session.KindTake, id, t.State()); err != nil {
		return nil, fmt.Errorf("park taker: %w", err)
	}
	return t, nil
}
