package service

import (
	"context"
	"fmt"

	"skillpath/internal/model"
	"skillpath/internal/repository"

	"github.com/rs/zerolog"
)

type BookmarkService interface {
	Toggle(ctx context.Context, userID, roadmapID string) (bool, error)
	List(ctx context.Context, userID string) ([]model.Bookmark, error)
	IsBookmarked(ctx context.Context, userID, roadmapID string) (bool, error)
}

type bookmarkService struct {
	users  UserLookup
	repo   repository.BookmarkRepository
	logger zerolog.Logger
}

func NewBookmarkService(users UserLookup, repo repository.BookmarkRepository, logger zerolog.Logger) BookmarkService {
	return &bookmarkService{users: users, repo: repo, logger: logger.With().Str("service", "BookmarkService").Logger()}
}

func (s *bookmarkService) Toggle(ctx context.Context, userID, roadmapID string) (bool, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return false, err
	}
	added, err := s.repo.Toggle(ctx, userID, roadmapID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("roadmap_id", roadmapID).Msg("Failed to toggle bookmark")
		return false, fmt.Errorf("toggling bookmark: %w", err)
	}
	return added, nil
}

func (s *bookmarkService) List(ctx context.Context, userID string) ([]model.Bookmark, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, userID)
}

func (s *bookmarkService) IsBookmarked(ctx context.Context, userID, roadmapID string) (bool, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return false, err
	}
	return s.repo.Exists(ctx, userID, roadmapID)
}
