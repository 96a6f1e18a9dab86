package quiz

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrQuizNotFound         = errors.New("quiz not found")
	ErrConfirmationRequired = errors.New("delete requires confirmation")
	ErrNotLoaded            = errors.New("repository not loaded")
)

// Store is the narrow persistence contract: whole collections by key.
type Store interface {
	Load(ctx context.Context, key string) ([]Quiz, error)
	Save(ctx context.Context, key string, quizzes []Quiz) error
}

// Keys names the two collections in the Store.
type Keys struct {
	Active  string
	Archive string
}

func (k Keys) withDefaults() Keys {
	if k.Active == "" {
		k.Active = DefaultActiveKey
	}
	if k.Archive == "" {
		k.Archive = DefaultArchiveKey
	}
	return k
}

// Repository is the in-memory mirror of the active collection. Every mutation
// re-serializes the full mirror to the Store.
type Repository struct {
	mu        sync.RWMutex
	store     Store
	keys      Keys
	logger    zerolog.Logger
	now       func() time.Time
	quizzes   []Quiz
	loaded    bool
	highWater int64
}

// RepositoryOptions configures a Repository.
type RepositoryOptions struct {
	Keys Keys
	Now  func() time.Time
}

// NewRepository builds an empty mirror; call LoadAll before use.
func NewRepository(store Store, logger zerolog.Logger, opts RepositoryOptions) *Repository {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Repository{
		store:  store,
		keys:   opts.Keys.withDefaults(),
		logger: logger.With().Str("component", "quiz_repository").Logger(),
		now:    now,
	}
}

// Keys returns the collection keys in use.
func (r *Repository) Keys() Keys {
	return r.keys
}

// LoadAll populates the mirror from the Store. The archive is read only to keep
// newly assigned ids distinct from archived ones.
func (r *Repository) LoadAll(ctx context.Context) error {
	active, err := r.store.Load(ctx, r.keys.Active)
	if err != nil {
		return fmt.Errorf("load active quizzes: %w", err)
	}
	archived, err := r.store.Load(ctx, r.keys.Archive)
	if err != nil {
		return fmt.Errorf("load archived quizzes: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.quizzes = cloneAll(active)
	r.loaded = true
	for _, q := range active {
		r.observe(q.ID)
	}
	for _, q := range archived {
		r.observe(q.ID)
	}
	r.logger.Info().Int("active", len(active)).Int("archived", len(archived)).Msg("quizzes loaded")
	return nil
}

// List returns a copy of the active collection in stored order.
func (r *Repository) List() []Quiz {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAll(r.quizzes)
}

// Get returns the quiz with the given id.
func (r *Repository) Get(id int64) (Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, q := range r.quizzes {
		if q.ID == id {
			return q.Clone(), nil
		}
	}
	return Quiz{}, ErrQuizNotFound
}

// Resolution is the outcome of a name lookup.
type Resolution struct {
	Quiz    Quiz
	Matches int
}

// Ambiguous reports whether more than one active quiz carries the name.
func (r Resolution) Ambiguous() bool {
	return r.Matches > 1
}

// ResolveByName finds an active quiz by exact name. When names collide the
// most recently created quiz (highest id) wins and Matches reports the count.
func (r *Repository) ResolveByName(name string) (Resolution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var res Resolution
	for _, q := range r.quizzes {
		if q.Name != name {
			continue
		}
		res.Matches++
		if res.Matches == 1 || q.ID > res.Quiz.ID {
			res.Quiz = q
		}
	}
	if res.Matches == 0 {
		return Resolution{}, ErrQuizNotFound
	}
	res.Quiz = res.Quiz.Clone()
	return res, nil
}

// Create assigns a fresh id, appends the quiz and persists the mirror.
func (r *Repository) Create(ctx context.Context, q Quiz) (Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.loaded {
		return Quiz{}, ErrNotLoaded
	}

	created := q.Clone()
	created.ID = r.nextID()
	next := append(cloneAll(r.quizzes), created)
	if err := r.persist(ctx, next); err != nil {
		return Quiz{}, err
	}
	r.quizzes = next
	r.observe(created.ID)
	r.logger.Debug().Int64("quiz_id", created.ID).Str("name", created.Name).Msg("quiz created")
	return created.Clone(), nil
}

// Update replaces the quiz whose id matches. It reports false, and persists
// nothing, when no quiz matches.
func (r *Repository) Update(ctx context.Context, q Quiz) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.loaded {
		return false, ErrNotLoaded
	}

	idx := r.indexOf(q.ID)
	if idx < 0 {
		r.logger.Debug().Int64("quiz_id", q.ID).Msg("update ignored: no matching quiz")
		return false, nil
	}
	next := cloneAll(r.quizzes)
	next[idx] = q.Clone()
	if err := r.persist(ctx, next); err != nil {
		return false, err
	}
	r.quizzes = next
	return true, nil
}

// Remove drops the quiz with the given id from the mirror and persists it.
// Archiving is the caller's job.
func (r *Repository) Remove(ctx context.Context, id int64) (Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.loaded {
		return Quiz{}, ErrNotLoaded
	}

	idx := r.indexOf(id)
	if idx < 0 {
		return Quiz{}, ErrQuizNotFound
	}
	removed := r.quizzes[idx].Clone()
	next := make([]Quiz, 0, len(r.quizzes)-1)
	next = append(next, cloneAll(r.quizzes[:idx])...)
	next = append(next, cloneAll(r.quizzes[idx+1:])...)
	if err := r.persist(ctx, next); err != nil {
		return Quiz{}, err
	}
	r.quizzes = next
	return removed, nil
}

func (r *Repository) persist(ctx context.Context, quizzes []Quiz) error {
	if err := r.store.Save(ctx, r.keys.Active, quizzes); err != nil {
		return fmt.Errorf("save active quizzes: %w", err)
	}
	return nil
}

func (r *Repository) indexOf(id int64) int {
	for i, q := range r.quizzes {
		if q.ID == id {
			return i
		}
	}
	return -1
}

// nextID is time-based (Unix milliseconds) but never repeats a known id.
func (r *Repository) nextID() int64 {
	id := r.now().UnixMilli()
	if id <= r.highWater {
		id = r.highWater + 1
	}
	return id
}

func (r *Repository) observe(id int64) {
	if id > r.highWater {
		r.highWater = id
	}
}
