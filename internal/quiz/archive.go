package quiz

import (
	"context"
	"fmt"
	"sync"
)

// Archive is the recycle bin of deleted quizzes. It is read from the Store on
// every call; only the delete flow writes to it.
type Archive struct {
	mu    sync.Mutex
	store Store
	key   string
}

func NewArchive(store Store, keys Keys) *Archive {
	return &Archive{store: store, key: keys.withDefaults().Archive}
}

// List returns the archived quizzes in deletion order.
func (a *Archive) List(ctx context.Context) ([]Quiz, error) {
	quizzes, err := a.store.Load(ctx, a.key)
	if err != nil {
		return nil, fmt.Errorf("load archive: %w", err)
	}
	return quizzes, nil
}

// Append stores q at the end of the archive.
func (a *Archive) Append(ctx context.Context, q Quiz) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	quizzes, err := a.store.Load(ctx, a.key)
	if err != nil {
		return fmt.Errorf("load archive: %w", err)
	}
	quizzes = append(quizzes, q.Clone())
	if err := a.store.Save(ctx, a.key, quizzes); err != nil {
		return fmt.Errorf("save archive: %w", err)
	}
	return nil
}

// retract undoes the most recent Append of id.
func (a *Archive) retract(ctx context.Context, id int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	quizzes, err := a.store.Load(ctx, a.key)
	if err != nil {
		return err
	}
	for i := len(quizzes) - 1; i >= 0; i-- {
		if quizzes[i].ID == id {
			quizzes = append(quizzes[:i], quizzes[i+1:]...)
			return a.store.Save(ctx, a.key, quizzes)
		}
	}
	return nil
}
