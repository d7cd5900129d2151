package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skillpath/internal/model"
	"skillpath/internal/quota"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrQuotaExceeded is returned when the daily cap for a feature is reached.
var ErrQuotaExceeded = errors.New("quota_exceeded")

// UsageRepository stores the per-day usage counters of quota-gated features.
type UsageRepository interface {
	// GetCounters returns the counters of feature for the day containing now.
	GetCounters(ctx context.Context, userID string, feature model.Feature, now time.Time) ([]model.UsageCounter, error)
	// Consume atomically checks the cap, runs persist and records one use. Nothing
	// is written when the cap is reached or persist fails.
	Consume(ctx context.Context, userID string, feature model.Feature, now time.Time, persist PersistFunc) (quota.Status, error)
}

type usageRepo struct {
	pool *pgxpool.Pool
}

func NewUsageRepo(pool *pgxpool.Pool) UsageRepository {
	return &usageRepo{pool: pool}
}

func (r *usageRepo) GetCounters(ctx context.Context, userID string, feature model.Feature, now time.Time) ([]model.UsageCounter, error) {
	counters, err := loadCounters(ctx, r.pool, userID, feature, quota.DayKey(now), false)
	if err != nil {
		return nil, fmt.Errorf("loading %s usage for user %s: %w", feature, userID, err)
	}
	return counters, nil
}

func (r *usageRepo) Consume(ctx context.Context, userID string, feature model.Feature, now time.Time, persist PersistFunc) (quota.Status, error) {
	limit := quota.Cap(feature)
	var status quota.Status
	err := inSerializableTx(ctx, r.pool, func(tx pgx.Tx) error {
		counters, err := loadCounters(ctx, tx, userID, feature, quota.DayKey(now), true)
		if err != nil {
			return fmt.Errorf("loading %s usage for user %s: %w", feature, userID, err)
		}
		status = quota.Check(counters, limit, now)
		if !status.CanUse {
			return ErrQuotaExceeded
		}
		if persist != nil {
			if err := persist(ctx, tx); err != nil {
				return err
			}
		}
		updated := quota.Increment(counters, now)
		today := quota.Today(updated, now)
		const upsertQ = `
			INSERT INTO usage_counters (user_id, feature, day, count)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id, feature, day) DO UPDATE SET count = EXCLUDED.count
		`
		if _, err := tx.Exec(ctx, upsertQ, userID, string(feature), today.Day, today.Count); err != nil {
			return fmt.Errorf("recording %s usage for user %s: %w", feature, userID, err)
		}
		status = quota.Check(updated, limit, now)
		return nil
	})
	if err != nil {
		return status, err
	}
	return status, nil
}

func loadCounters(ctx context.Context, db DBTX, userID string, feature model.Feature, day string, forUpdate bool) ([]model.UsageCounter, error) {
	q := `SELECT day, count FROM usage_counters WHERE user_id = $1 AND feature = $2 AND day = $3`
	if forUpdate {
		q += ` FOR UPDATE`
	}
	rows, err := db.Query(ctx, q, userID, string(feature), day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counters []model.UsageCounter
	for rows.Next() {
		var c model.UsageCounter
		if err := rows.Scan(&c.Day, &c.Count); err != nil {
			return nil, err
		}
		counters = append(counters, c)
	}
	return counters, rows.Err()
}
