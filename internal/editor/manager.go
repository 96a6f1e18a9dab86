package editor

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

// Quizzes is what the manager needs from the quiz service.
type Quizzes interface {
	Sink
	Get(id int64) (quiz.Quiz, error)
	ReuseSources(ctx context.Context) (active, archived []quiz.Quiz, err error)
}

// Manager parks editors in a session store between requests.
type Manager struct {
	store   session.Store
	quizzes Quizzes
	logger  zerolog.Logger
	newID   func() string
}

func NewManager(store session.Store, quizzes Quizzes, logger zerolog.Logger) *Manager {
	return &Manager{
		store:   store,
		quizzes: quizzes,
		logger:  logger.With().Str("component", "editor_sessions").Logger(),
		newID:   uuid.NewString,
	}
}

// Open starts a create editor, or an edit editor for quizID.
func (m *Manager) Open(ctx context.Context, mode quiz.Mode, quizID int64) (string, *Editor, error) {
	var e *Editor
	switch mode {
	case quiz.ModeCreate:
		e = NewCreate()
	case quiz.ModeEdit:
		q, err := m.quizzes.Get(quizID)
		if err != nil {
			return "", nil, err
		}
		e = NewEdit(q)
	default:
		return "", nil, fmt.Errorf("unknown editor mode %q", mode)
	}

	id := m.newID()
	if err := m.park(ctx, id, e); err != nil {
		return "", nil, err
	}
	return id, e, nil
}

// Load restores the editor parked under id.
func (m *Manager) Load(ctx context.Context, id string) (*Editor, error) {
	var st State
	found, err := m.store.Load(ctx, session.KindEditor, id, &st)
	if err != nil {
		return nil, fmt.Errorf("load editor: %w", err)
	}
	if !found {
		return nil, session.ErrNotFound
	}
	return Restore(st), nil
}

// Apply runs fn against the parked editor and writes it back when fn succeeds.
func (m *Manager) Apply(ctx context.Context, id string, fn func(*Editor) error) (*Editor, error) {
	e, err := m.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(e); err != nil {
		return e, err
	}
	if err := m.park(ctx, id, e); err != nil {
		return nil, err
	}
	return e, nil
}

// OpenReuse loads the reuse sources and opens the picker.
func (m *Manager) OpenReuse(ctx context.Context, id string) (*Editor, error) {
	return m.Apply(ctx, id, func(e *Editor) error {
		if e.Mode() != quiz.ModeCreate {
			return ErrReuseUnavailable
		}
		active, archived, err := m.quizzes.ReuseSources(ctx)
		if err != nil {
			return err
		}
		return e.OpenReuse(active, archived)
	})
}

// Save commits the draft and drops the session. A gated save leaves the session
// untouched and returns ErrSaveDisabled. When the session cannot be dropped the
// closed editor is parked in its place.
func (m *Manager) Save(ctx context.Context, id string) (quiz.Quiz, *Editor, error) {
	e, err := m.Load(ctx, id)
	if err != nil {
		return quiz.Quiz{}, nil, err
	}
	mode := string(e.Mode())

	saved, err := e.Save(ctx, m.quizzes)
	if errors.Is(err, ErrSaveDisabled) || errors.Is(err, ErrClosed) {
		metrics.EditorSaves.WithLabelValues(mode, "rejected").Inc()
		return quiz.Quiz{}, e, err
	}
	if derr := m.store.Delete(ctx, session.KindEditor, id); derr != nil {
		m.logger.Warn().Err(derr).Str("session_id", id).Msg("failed to drop closed editor")
		// a closed snapshot refuses a second save of the same draft
		if perr := m.park(ctx, id, e); perr != nil {
			m.logger.Error().Err(perr).Str("session_id", id).Msg("failed to park closed editor")
		}
	}
	if err != nil {
		metrics.EditorSaves.WithLabelValues(mode, "failed").Inc()
		return quiz.Quiz{}, e, err
	}
	metrics.EditorSaves.WithLabelValues(mode, "saved").Inc()
	m.logger.Debug().Str("session_id", id).Int64("quiz_id", saved.ID).Msg("editor saved")
	return saved, e, nil
}

// Discard closes the editor without saving.
func (m *Manager) Discard(ctx context.Context, id string) error {
	if _, err := m.Load(ctx, id); err != nil {
		return err
	}
	return m.store.Delete(ctx, session.KindEditor, id)
}

func (m *Manager) park(ctx context.Context, id string, e *Editor) error {
	if err := m.store.Save(ctx, session.KindEditor, id, e.State()); err != nil {
		return fmt.Errorf("park editor: %w", err)
	}
	return nil
}
