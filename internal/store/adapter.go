package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-manager/internal/metrics"
	"github.com/gokatarajesh/quiz-manager/internal/quiz"
)

// ErrNotFound is returned by KV backends for absent keys.
var ErrNotFound = errors.New("key not found")

// KV is a raw byte key/value backend.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Adapter serializes quiz collections to JSON arrays in a KV backend.
type Adapter struct {
	kv      KV
	seedKey string
	seed    []quiz.Quiz
	logger  zerolog.Logger
}

var _ quiz.Store = (*Adapter)(nil)

// AdapterOptions configures first-run seeding.
type AdapterOptions struct {
	// SeedKey is the collection seeded with Seed when it has never been stored.
	SeedKey string
	Seed    []quiz.Quiz
}

func NewAdapter(kv KV, logger zerolog.Logger, opts AdapterOptions) *Adapter {
	seedKey := opts.SeedKey
	if seedKey == "" {
		seedKey = quiz.DefaultActiveKey
	}
	return &Adapter{
		kv:      kv,
		seedKey: seedKey,
		seed:    opts.Seed,
		logger:  logger.With().Str("component", "store_adapter").Logger(),
	}
}

// Load returns the collection under key. Absent or unparsable data yields an
// empty collection; the seed key is seeded and persisted on first access.
func (a *Adapter) Load(ctx context.Context, key string) ([]quiz.Quiz, error) {
	data, err := a.kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		if key == a.seedKey {
			return a.seedCollection(ctx, key)
		}
		return []quiz.Quiz{}, nil
	}
	if err != nil {
		metrics.StoreErrors.WithLabelValues("read").Inc()
		return nil, fmt.Errorf("get %q: %w", key, err)
	}

	var quizzes []quiz.Quiz
	if err := json.Unmarshal(data, &quizzes); err != nil {
		metrics.StoreErrors.WithLabelValues("malformed").Inc()
		a.logger.Warn().Err(err).Str("key", key).Msg("stored collection is malformed; using empty collection")
		return []quiz.Quiz{}, nil
	}
	if quizzes == nil {
		quizzes = []quiz.Quiz{}
	}
	return quizzes, nil
}

// Save overwrites the collection under key.
func (a *Adapter) Save(ctx context.Context, key string, quizzes []quiz.Quiz) error {
	if quizzes == nil {
		quizzes = []quiz.Quiz{}
	}
	data, err := json.Marshal(quizzes)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", key, err)
	}
	if err := a.kv.Set(ctx, key, data); err != nil {
		metrics.StoreErrors.WithLabelValues("write").Inc()
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (a *Adapter) seedCollection(ctx context.Context, key string) ([]quiz.Quiz, error) {
	seed := make([]quiz.Quiz, len(a.seed))
	for i, q := range a.seed {
		seed[i] = q.Clone()
	}
	if err := a.Save(ctx, key, seed); err != nil {
		return nil, err
	}
	a.logger.Info().Str("key", key).Int("quizzes", len(seed)).Msg("seeded store with default quizzes")
	return seed, nil
}
