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

type SuggestionRepository interface {
	Insert(ctx context.Context, db DBTX, s *model.SavedSuggestion) error
	ListByUser(ctx context.Context, userID string) ([]model.SavedSuggestion, error)
	Get(ctx context.Context, userID, id string) (*model.SavedSuggestion, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
}

type suggestionRepo struct {
	pool *pgxpool.Pool
}

func NewSuggestionRepo(pool *pgxpool.Pool) SuggestionRepository {
	return &suggestionRepo{pool: pool}
}

func scanSuggestion(row pgx.Row) (model.SavedSuggestion, error) {
	var s model.SavedSuggestion
	var answers []byte
	if err := row.Scan(&s.ID, &s.UserID, &answers, &s.Roadmap, &s.CreatedAt); err != nil {
		return s, err
	}
	if err := json.Unmarshal(answers, &s.Answers); err != nil {
		return s, fmt.Errorf("decoding suggestion answers %s: %w", s.ID, err)
	}
	return s, nil
}

func (r *suggestionRepo) Insert(ctx context.Context, db DBTX, s *model.SavedSuggestion) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	answers, err := json.Marshal(s.Answers)
	if err != nil {
		return fmt.Errorf("encoding suggestion answers: %w", err)
	}
	const q = `
		INSERT INTO saved_suggestions (id, user_id, answers, roadmap)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	if err := db.QueryRow(ctx, q, s.ID, s.UserID, answers, s.Roadmap).Scan(&s.CreatedAt); err != nil {
		return fmt.Errorf("inserting suggestion for user %s: %w", s.UserID, err)
	}
	return nil
}

func (r *suggestionRepo) ListByUser(ctx context.Context, userID string) ([]model.SavedSuggestion, error) {
	const q = `SELECT id, user_id, answers, roadmap, created_at FROM saved_suggestions WHERE user_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("listing suggestions for user %s: %w", userID, err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.SavedSuggestion, error) {
		return scanSuggestion(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scanning suggestions for user %s: %w", userID, err)
	}
	return list, nil
}

func (r *suggestionRepo) Get(ctx context.Context, userID, id string) (*model.SavedSuggestion, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	const q = `SELECT id, user_id, answers, roadmap, created_at FROM saved_suggestions WHERE user_id = $1 AND id = $2`
	s, err := scanSuggestion(r.pool.QueryRow(ctx, q, userID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting suggestion %s: %w", id, err)
	}
	return &s, nil
}

func (r *suggestionRepo) Delete(ctx context.Context, userID, id string) (bool, error) {
	return deleteOwned(ctx, r.pool, "saved_suggestions", userID, id)
}
