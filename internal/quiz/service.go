package quiz

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-manager/internal/metrics"
)

// Service coordinates flows that span the active collection and the archive.
type Service struct {
	repo    *Repository
	archive *Archive
	logger  zerolog.Logger
}

func NewService(repo *Repository, archive *Archive, logger zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		archive: archive,
		logger:  logger.With().Str("component", "quiz_service").Logger(),
	}
}

// Repository exposes the active collection.
func (s *Service) Repository() *Repository {
	return s.repo
}

// Archive exposes the recycle bin.
func (s *Service) Archive() *Archive {
	return s.archive
}

// Get returns an active quiz by id.
func (s *Service) Get(id int64) (Quiz, error) {
	return s.repo.Get(id)
}

// Create stores a new quiz and satisfies the editor's save sink.
func (s *Service) Create(ctx context.Context, q Quiz) (Quiz, error) {
	created, err := s.repo.Create(ctx, q)
	if err != nil {
		return Quiz{}, err
	}
	metrics.QuizMutations.WithLabelValues("create").Inc()
	s.logger.Info().Int64("quiz_id", created.ID).Int("questions", len(created.Questions)).Msg("quiz created")
	return created, nil
}

// Update replaces a quiz by id and satisfies the editor's save sink.
func (s *Service) Update(ctx context.Context, q Quiz) (bool, error) {
	updated, err := s.repo.Update(ctx, q)
	if err != nil {
		return false, err
	}
	if updated {
		metrics.QuizMutations.WithLabelValues("update").Inc()
		s.logger.Info().Int64("quiz_id", q.ID).Msg("quiz updated")
	}
	return updated, nil
}

// Delete moves a quiz from the active collection to the archive. Without
// confirmation nothing changes.
func (s *Service) Delete(ctx context.Context, id int64, confirmed bool) (Quiz, error) {
	if !confirmed {
		return Quiz{}, ErrConfirmationRequired
	}

	q, err := s.repo.Get(id)
	if err != nil {
		return Quiz{}, err
	}
	if err := s.archive.Append(ctx, q); err != nil {
		return Quiz{}, err
	}
	removed, err := s.repo.Remove(ctx, id)
	if err != nil {
		if rerr := s.archive.retract(ctx, id); rerr != nil {
			s.logger.Error().Err(rerr).Int64("quiz_id", id).Msg("archive retract failed; quiz is in both collections")
		}
		return Quiz{}, fmt.Errorf("remove quiz %d: %w", id, err)
	}

	metrics.QuizMutations.WithLabelValues("delete").Inc()
	s.logger.Info().Int64("quiz_id", id).Str("name", removed.Name).Msg("quiz archived")
	return removed, nil
}

// ReuseSources returns the active and archived collections for the reuse picker.
func (s *Service) ReuseSources(ctx context.Context) (active, archived []Quiz, err error) {
	archived, err = s.archive.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	return s.repo.List(), archived, nil
}
