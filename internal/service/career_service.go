package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skillpath/internal/ai"
	"skillpath/internal/metrics"
	"skillpath/internal/model"
	"skillpath/internal/pubsub"
	"skillpath/internal/quota"
	"skillpath/internal/repository"

	"github.com/rs/zerolog"
)

var ErrCareerPathNotFound = errors.New("career path not found")

// CareerService simulates step-by-step career paths.
type CareerService interface {
	Simulate(ctx context.Context, userID string, in model.CareerInputs) (*model.CareerPath, quota.Status, error)
	List(ctx context.Context, userID string) ([]model.CareerPath, error)
	Get(ctx context.Context, userID, id string) (*model.CareerPath, error)
	Delete(ctx context.Context, userID, id string) error
}

type careerService struct {
	users   UserLookup
	usage   repository.UsageRepository
	repo    repository.CareerRepository
	ai      ai.Generator
	events  *pubsub.EventEmitter
	metrics *metrics.Collector
	logger  zerolog.Logger
	clock   func() time.Time
}

func NewCareerService(
	users UserLookup,
	usage repository.UsageRepository,
	repo repository.CareerRepository,
	gen ai.Generator,
	events *pubsub.EventEmitter,
	m *metrics.Collector,
	logger zerolog.Logger,
) CareerService {
	return &careerService{
		users:   users,
		usage:   usage,
		repo:    repo,
		ai:      gen,
		events:  events,
		metrics: m,
		logger:  logger.With().Str("service", "CareerService").Logger(),
		clock:   time.Now,
	}
}

func (s *careerService) Simulate(ctx context.Context, userID string, in model.CareerInputs) (*model.CareerPath, quota.Status, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, quota.Status{}, err
	}
	now := s.clock()
	st, err := gate(ctx, s.usage, s.metrics, userID, model.FeatureCareerTrack, now)
	if err != nil {
		return nil, st, err
	}

	raw, err := s.ai.Generate(ctx, "career", ai.CareerPrompt(in))
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Career path generation failed")
		return nil, st, err
	}
	steps, err := ai.ParseCareerPath(raw)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Model returned an invalid career path")
		return nil, st, err
	}

	path := &model.CareerPath{UserID: userID, Inputs: in, Steps: steps, CreatedAt: now.UTC()}
	st, err = consume(ctx, s.usage, s.metrics, userID, model.FeatureCareerTrack, now, func(ctx context.Context, tx repository.DBTX) error {
		return s.repo.Insert(ctx, tx, path)
	})
	if err != nil {
		if !errors.Is(err, ErrQuotaExceeded) {
			s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to save career path")
			err = fmt.Errorf("saving career path: %w", err)
		}
		return nil, st, err
	}

	s.events.Emit(ctx, pubsub.Event{
		Type:       pubsub.EventCareerSimulated,
		UserID:     userID,
		OccurredAt: now.UTC(),
		Attributes: map[string]any{"career_path_id": path.ID, "goal": in.CareerGoal},
	})
	return path, st, nil
}

func (s *careerService) List(ctx context.Context, userID string) ([]model.CareerPath, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *careerService) Get(ctx context.Context, userID, id string) (*model.CareerPath, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	p, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrCareerPathNotFound
	}
	return p, nil
}

func (s *careerService) Delete(ctx context.Context, userID, id string) error {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return err
	}
	ok, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCareerPathNotFound
	}
	return nil
}
