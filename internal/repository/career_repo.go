package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"skillpath/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CareerRepository interface {
	Insert(ctx context.Context, db DBTX, p *model.CareerPath) error
	ListByUser(ctx context.Context, userID string) ([]model.CareerPath, error)
	Get(ctx context.Context, userID, id string) (*model.CareerPath, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
}

type careerRepo struct {
	pool *pgxpool.Pool
}

func NewCareerRepo(pool *pgxpool.Pool) CareerRepository {
	return &careerRepo{pool: pool}
}

func scanCareer(row pgx.Row) (model.CareerPath, error) {
	var p model.CareerPath
	var inputs, steps []byte
	if err := row.Scan(&p.ID, &p.UserID, &inputs, &steps, &p.CreatedAt); err != nil {
		return p, err
	}
	if err := json.Unmarshal(inputs, &p.Inputs); err != nil {
		return p, fmt.Errorf("decoding career inputs %s: %w", p.ID, err)
	}
	if err := json.Unmarshal(steps, &p.Steps); err != nil {
		return p, fmt.Errorf("decoding career steps %s: %w", p.ID, err)
	}
	return p, nil
}

func (r *careerRepo) Insert(ctx context.Context, db DBTX, p *model.CareerPath) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	inputs, err := json.Marshal(p.Inputs)
	if err != nil {
		return fmt.Errorf("encoding career inputs: %w", err)
	}
	steps, err := json.Marshal(p.Steps)
	if err != nil {
		return fmt.Errorf("encoding career steps: %w", err)
	}
	const q = `
		INSERT INTO career_paths (id, user_id, inputs, steps)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	if err := db.QueryRow(ctx, q, p.ID, p.UserID, inputs, steps).Scan(&p.CreatedAt); err != nil {
		return fmt.Errorf("inserting career path for user %s: %w", p.UserID, err)
	}
	return nil
}

func (r *careerRepo) ListByUser(ctx context.Context, userID string) ([]model.CareerPath, error) {
	const q = `SELECT id, user_id, inputs, steps, created_at FROM career_paths WHERE user_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("listing career paths for user %s: %w", userID, err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.CareerPath, error) {
		return scanCareer(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scanning career paths for user %s: %w", userID, err)
	}
	return list, nil
}

func (r *careerRepo) Get(ctx context.Context, userID, id string) (*model.CareerPath, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	const q = `SELECT id, user_id, inputs, steps, created_at FROM career_paths WHERE user_id = $1 AND id = $2`
	p, err := scanCareer(r.pool.QueryRow(ctx, q, userID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting career path %s: %w", id, err)
	}
	return &p, nil
}

func (r *careerRepo) Delete(ctx context.Context, userID, id string) (bool, error) {
	return deleteOwned(ctx, r.pool, "career_paths", userID, id)
}
