package service

import (
	"context"
	"fmt"
	"time"

	"skillpath/internal/model"
	"skillpath/internal/progress"
	"skillpath/internal/pubsub"
	"skillpath/internal/repository"

	"github.com/rs/zerolog"
)

type ToggleResult struct {
	Completed bool
	Timestamp time.Time
}

// ProgressService tracks which roadmap nodes a user has completed.
type ProgressService interface {
	Toggle(ctx context.Context, userID, roadmapID, nodeID string, totalNodes *int) (*ToggleResult, error)
	CompletedNodes(ctx context.Context, userID, roadmapID string) ([]model.CompletedNode, error)
	Stats(ctx context.Context, userID, roadmapID string) (model.ProgressStats, error)
	Summary(ctx context.Context, userID string) (progress.Summary, error)
}

type progressService struct {
	users  UserLookup
	repo   repository.ProgressRepository
	events *pubsub.EventEmitter
	logger zerolog.Logger
	clock  func() time.Time
}

func NewProgressService(users UserLookup, repo repository.ProgressRepository, events *pubsub.EventEmitter, logger zerolog.Logger) ProgressService {
	return &progressService{
		users:  users,
		repo:   repo,
		events: events,
		logger: logger.With().Str("service", "ProgressService").Logger(),
		clock:  time.Now,
	}
}

func (s *progressService) Toggle(ctx context.Context, userID, roadmapID, nodeID string, totalNodes *int) (*ToggleResult, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	now := s.clock().UTC()
	completed, err := s.repo.Toggle(ctx, userID, roadmapID, nodeID, totalNodes, now)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("roadmap_id", roadmapID).Str("node_id", nodeID).Msg("Failed to toggle node")
		return nil, fmt.Errorf("toggling node: %w", err)
	}
	s.events.Emit(ctx, pubsub.Event{
		Type:       pubsub.EventNodeToggled,
		UserID:     userID,
		OccurredAt: now,
		Attributes: map[string]any{"roadmap_id": roadmapID, "node_id": nodeID, "completed": completed},
	})
	return &ToggleResult{Completed: completed, Timestamp: now}, nil
}

func (s *progressService) CompletedNodes(ctx context.Context, userID, roadmapID string) ([]model.CompletedNode, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	list, err := s.one(ctx, userID, roadmapID)
	if err != nil {
		return nil, err
	}
	return progress.CompletedNodes(list, roadmapID), nil
}

func (s *progressService) Stats(ctx context.Context, userID, roadmapID string) (model.ProgressStats, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return model.ProgressStats{}, err
	}
	list, err := s.one(ctx, userID, roadmapID)
	if err != nil {
		return model.ProgressStats{}, err
	}
	return progress.Stats(list, roadmapID), nil
}

func (s *progressService) Summary(ctx context.Context, userID string) (progress.Summary, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return progress.Summary{}, err
	}
	list, err := s.repo.List(ctx, userID)
	if err != nil {
		return progress.Summary{}, fmt.Errorf("listing progress: %w", err)
	}
	return progress.Summarize(list, s.clock()), nil
}

func (s *progressService) one(ctx context.Context, userID, roadmapID string) ([]model.RoadmapProgress, error) {
	p, err := s.repo.Get(ctx, userID, roadmapID)
	if err != nil {
		return nil, fmt.Errorf("loading progress: %w", err)
	}
	if p == nil {
		return nil, nil
	}
	return []model.RoadmapProgress{*p}, nil
}
