package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skillpath/internal/ai"
	"skillpath/internal/metrics"
	"skillpath/internal/model"
	"skillpath/internal/quota"
	"skillpath/internal/repository"

	"github.com/rs/zerolog"
)

var ErrSuggestionNotFound = errors.New("suggestion not found")

// SuggestionService produces sanitized HTML learning guides from questionnaire answers.
type SuggestionService interface {
	Suggest(ctx context.Context, userID string, answers model.SuggestionAnswers) (*model.SavedSuggestion, quota.Status, error)
	List(ctx context.Context, userID string) ([]model.SavedSuggestion, error)
	Get(ctx context.Context, userID, id string) (*model.SavedSuggestion, error)
	Delete(ctx context.Context, userID, id string) error
}

type suggestionService struct {
	users   UserLookup
	usage   repository.UsageRepository
	repo    repository.SuggestionRepository
	ai      ai.Generator
	metrics *metrics.Collector
	logger  zerolog.Logger
	clock   func() time.Time
}

func NewSuggestionService(
	users UserLookup,
	usage repository.UsageRepository,
	repo repository.SuggestionRepository,
	gen ai.Generator,
	m *metrics.Collector,
	logger zerolog.Logger,
) SuggestionService {
	return &suggestionService{
		users:   users,
		usage:   usage,
		repo:    repo,
		ai:      gen,
		metrics: m,
		logger:  logger.With().Str("service", "SuggestionService").Logger(),
		clock:   time.Now,
	}
}

func (s *suggestionService) Suggest(ctx context.Context, userID string, answers model.SuggestionAnswers) (*model.SavedSuggestion, quota.Status, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, quota.Status{}, err
	}
	now := s.clock()
	st, err := gate(ctx, s.usage, s.metrics, userID, model.FeatureAISuggestions, now)
	if err != nil {
		return nil, st, err
	}

	raw, err := s.ai.Generate(ctx, "suggestion", ai.SuggestionPrompt(answers))
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Suggestion generation failed")
		return nil, st, err
	}
	html, err := ai.SanitizeHTML(ai.StripFences(raw))
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Model returned unusable HTML")
		return nil, st, err
	}

	saved := &model.SavedSuggestion{UserID: userID, Answers: answers, Roadmap: html, CreatedAt: now.UTC()}
	st, err = consume(ctx, s.usage, s.metrics, userID, model.FeatureAISuggestions, now, func(ctx context.Context, tx repository.DBTX) error {
		return s.repo.Insert(ctx, tx, saved)
	})
	if err != nil {
		if !errors.Is(err, ErrQuotaExceeded) {
			s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to save suggestion")
			err = fmt.Errorf("saving suggestion: %w", err)
		}
		return nil, st, err
	}
	return saved, st, nil
}

func (s *suggestionService) List(ctx context.Context, userID string) ([]model.SavedSuggestion, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *suggestionService) Get(ctx context.Context, userID, id string) (*model.SavedSuggestion, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	sg, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if sg == nil {
		return nil, ErrSuggestionNotFound
	}
	return sg, nil
}

func (s *suggestionService) Delete(ctx context.Context, userID, id string) error {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return err
	}
	ok, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSuggestionNotFound
	}
	return nil
}
