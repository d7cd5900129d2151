package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skillpath/internal/metrics"
	"skillpath/internal/model"
	"skillpath/internal/quota"
	"skillpath/internal/repository"

	"github.com/rs/zerolog"
)

// ErrQuotaExceeded is returned by every quota-gated operation once the
// user's daily cap for the feature is reached.
var ErrQuotaExceeded = repository.ErrQuotaExceeded

// UserLookup resolves the account behind an authenticated request.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// requireUser fails with ErrUserNotFound when the token outlived its account.
func requireUser(ctx context.Context, users UserLookup, userID string) error {
	u, err := users.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("looking up user: %w", err)
	}
	if u == nil {
		return ErrUserNotFound
	}
	return nil
}

// UsageService reports daily usage of the quota-gated AI features.
type UsageService interface {
	Status(ctx context.Context, userID string, feature model.Feature) (quota.Status, error)
	All(ctx context.Context, userID string) (map[model.Feature]quota.Status, error)
}

type usageService struct {
	users  UserLookup
	repo   repository.UsageRepository
	logger zerolog.Logger
	clock  func() time.Time
}

func NewUsageService(users UserLookup, repo repository.UsageRepository, logger zerolog.Logger) UsageService {
	return &usageService{
		users:  users,
		repo:   repo,
		logger: logger.With().Str("service", "UsageService").Logger(),
		clock:  time.Now,
	}
}

func (s *usageService) Status(ctx context.Context, userID string, feature model.Feature) (quota.Status, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return quota.Status{}, err
	}
	return s.status(ctx, userID, feature)
}

func (s *usageService) status(ctx context.Context, userID string, feature model.Feature) (quota.Status, error) {
	st, err := checkQuota(ctx, s.repo, userID, feature, s.clock())
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("feature", string(feature)).Msg("Failed to load usage")
		return quota.Status{}, err
	}
	return st, nil
}

func (s *usageService) All(ctx context.Context, userID string) (map[model.Feature]quota.Status, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	out := make(map[model.Feature]quota.Status, len(model.Features))
	for _, f := range model.Features {
		st, err := s.status(ctx, userID, f)
		if err != nil {
			return nil, err
		}
		out[f] = st
	}
	return out, nil
}

func checkQuota(ctx context.Context, repo repository.UsageRepository, userID string, feature model.Feature, now time.Time) (quota.Status, error) {
	counters, err := repo.GetCounters(ctx, userID, feature, now)
	if err != nil {
		return quota.Status{}, fmt.Errorf("checking %s usage: %w", feature, err)
	}
	return quota.Check(counters, quota.Cap(feature), now), nil
}

// gate is the shared pre-flight for quota-gated operations: it rejects early
// when the cap is already reached so no upstream call is wasted. The
// authoritative check happens again inside Consume.
func gate(ctx context.Context, repo repository.UsageRepository, m *metrics.Collector, userID string, feature model.Feature, now time.Time) (quota.Status, error) {
	st, err := checkQuota(ctx, repo, userID, feature, now)
	if err != nil {
		return st, err
	}
	if !st.CanUse {
		recordDenied(m, feature)
		return st, ErrQuotaExceeded
	}
	return st, nil
}

// consume records one use of feature together with persist. On
// ErrQuotaExceeded the returned status reflects the exhausted cap.
func consume(ctx context.Context, repo repository.UsageRepository, m *metrics.Collector, userID string, feature model.Feature, now time.Time, persist repository.PersistFunc) (quota.Status, error) {
	st, err := repo.Consume(ctx, userID, feature, now, persist)
	if err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			recordDenied(m, feature)
		}
		return st, err
	}
	if m != nil {
		m.QuotaConsumed.WithLabelValues(string(feature)).Inc()
	}
	return st, nil
}

func recordDenied(m *metrics.Collector, feature model.Feature) {
	if m != nil {
		m.QuotaDenied.WithLabelValues(string(feature)).Inc()
	}
}
