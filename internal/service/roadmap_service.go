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

var ErrRoadmapNotFound = errors.New("roadmap not found")

type GenerateInput struct {
	Topic       string
	Timeframe   string
	Level       string
	ContextInfo string
}

// RoadmapService generates roadmaps with the AI model and manages the saved ones.
type RoadmapService interface {
	// Generate returns the roadmap usage after the call; with ErrQuotaExceeded
	// it is the exhausted status.
	Generate(ctx context.Context, userID string, in GenerateInput) (*model.GeneratedRoadmap, quota.Status, error)
	List(ctx context.Context, userID string) ([]model.GeneratedRoadmap, error)
	Get(ctx context.Context, userID, id string) (*model.GeneratedRoadmap, error)
	Delete(ctx context.Context, userID, id string) error
}

type roadmapService struct {
	users   UserLookup
	usage   repository.UsageRepository
	repo    repository.GeneratedRoadmapRepository
	ai      ai.Generator
	events  *pubsub.EventEmitter
	metrics *metrics.Collector
	logger  zerolog.Logger
	clock   func() time.Time
}

func NewRoadmapService(
	users UserLookup,
	usage repository.UsageRepository,
	repo repository.GeneratedRoadmapRepository,
	gen ai.Generator,
	events *pubsub.EventEmitter,
	m *metrics.Collector,
	logger zerolog.Logger,
) RoadmapService {
	return &roadmapService{
		users:   users,
		usage:   usage,
		repo:    repo,
		ai:      gen,
		events:  events,
		metrics: m,
		logger:  logger.With().Str("service", "RoadmapService").Logger(),
		clock:   time.Now,
	}
}

func (s *roadmapService) Generate(ctx context.Context, userID string, in GenerateInput) (*model.GeneratedRoadmap, quota.Status, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, quota.Status{}, err
	}
	now := s.clock()
	st, err := gate(ctx, s.usage, s.metrics, userID, model.FeatureRoadmap, now)
	if err != nil {
		return nil, st, err
	}

	// The feedback note is auxiliary; a failure there must not cost the user a roadmap.
	feedback, err := s.ai.Generate(ctx, "roadmap_feedback", ai.FeedbackPrompt(in.Topic, in.Timeframe, in.Level, in.ContextInfo))
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to generate roadmap feedback")
		feedback = ""
	}

	raw, err := s.ai.Generate(ctx, "roadmap", ai.RoadmapPrompt(in.Topic, in.Timeframe, in.Level, in.ContextInfo))
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Roadmap generation failed")
		return nil, st, err
	}
	tree, err := ai.ParseRoadmap(raw)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Model returned an invalid roadmap")
		return nil, st, err
	}

	g := &model.GeneratedRoadmap{
		UserID:      userID,
		Title:       in.Topic,
		Timeframe:   in.Timeframe,
		Level:       in.Level,
		ContextInfo: in.ContextInfo,
		Feedback:    feedback,
		Roadmap:     tree,
		CreatedAt:   now.UTC(),
	}
	st, err = consume(ctx, s.usage, s.metrics, userID, model.FeatureRoadmap, now, func(ctx context.Context, tx repository.DBTX) error {
		return s.repo.Insert(ctx, tx, g)
	})
	if err != nil {
		if !errors.Is(err, ErrQuotaExceeded) {
			s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to save generated roadmap")
			err = fmt.Errorf("saving generated roadmap: %w", err)
		}
		return nil, st, err
	}

	s.events.Emit(ctx, pubsub.Event{
		Type:       pubsub.EventRoadmapGenerated,
		UserID:     userID,
		OccurredAt: now.UTC(),
		Attributes: map[string]any{"roadmap_id": g.ID, "title": g.Title},
	})
	return g, st, nil
}

func (s *roadmapService) List(ctx context.Context, userID string) ([]model.GeneratedRoadmap, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *roadmapService) Get(ctx context.Context, userID, id string) (*model.GeneratedRoadmap, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	g, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrRoadmapNotFound
	}
	return g, nil
}

func (s *roadmapService) Delete(ctx context.Context, userID, id string) error {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return err
	}
	ok, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRoadmapNotFound
	}
	return nil
}
