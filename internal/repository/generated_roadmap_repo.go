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

// GeneratedRoadmapRepository stores AI-generated roadmaps. Insert takes the
// executor so it can run inside a quota transaction.
type GeneratedRoadmapRepository interface {
	Insert(ctx context.Context, db DBTX, r *model.GeneratedRoadmap) error
	ListByUser(ctx context.Context, userID string) ([]model.GeneratedRoadmap, error)
	Get(ctx context.Context, userID, id string) (*model.GeneratedRoadmap, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
}

type generatedRoadmapRepo struct {
	pool *pgxpool.Pool
}

func NewGeneratedRoadmapRepo(pool *pgxpool.Pool) GeneratedRoadmapRepository {
	return &generatedRoadmapRepo{pool: pool}
}

const generatedColumns = `id, user_id, title, timeframe, level, context_info, feedback, roadmap, created_at`

func scanGenerated(row pgx.Row) (model.GeneratedRoadmap, error) {
	var g model.GeneratedRoadmap
	var tree []byte
	if err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.Timeframe, &g.Level, &g.ContextInfo, &g.Feedback, &tree, &g.CreatedAt); err != nil {
		return g, err
	}
	if err := json.Unmarshal(tree, &g.Roadmap); err != nil {
		return g, fmt.Errorf("decoding roadmap %s: %w", g.ID, err)
	}
	return g, nil
}

func (r *generatedRoadmapRepo) Insert(ctx context.Context, db DBTX, g *model.GeneratedRoadmap) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	tree, err := json.Marshal(g.Roadmap)
	if err != nil {
		return fmt.Errorf("encoding roadmap: %w", err)
	}
	const q = `
		INSERT INTO generated_roadmaps (id, user_id, title, timeframe, level, context_info, feedback, roadmap)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	if err := db.QueryRow(ctx, q, g.ID, g.UserID, g.Title, g.Timeframe, g.Level, g.ContextInfo, g.Feedback, tree).Scan(&g.CreatedAt); err != nil {
		return fmt.Errorf("inserting generated roadmap for user %s: %w", g.UserID, err)
	}
	return nil
}

func (r *generatedRoadmapRepo) ListByUser(ctx context.Context, userID string) ([]model.GeneratedRoadmap, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+generatedColumns+` FROM generated_roadmaps WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing generated roadmaps for user %s: %w", userID, err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.GeneratedRoadmap, error) {
		return scanGenerated(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scanning generated roadmaps for user %s: %w", userID, err)
	}
	return list, nil
}

func (r *generatedRoadmapRepo) Get(ctx context.Context, userID, id string) (*model.GeneratedRoadmap, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	g, err := scanGenerated(r.pool.QueryRow(ctx, `SELECT `+generatedColumns+` FROM generated_roadmaps WHERE user_id = $1 AND id = $2`, userID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting generated roadmap %s: %w", id, err)
	}
	return &g, nil
}

func (r *generatedRoadmapRepo) Delete(ctx context.Context, userID, id string) (bool, error) {
	return deleteOwned(ctx, r.pool, "generated_roadmaps", userID, id)
}

// deleteOwned removes row id of table when it belongs to userID.
func deleteOwned(ctx context.Context, db DBTX, table, userID, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	tag, err := db.Exec(ctx, `DELETE FROM `+table+` WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return false, fmt.Errorf("deleting %s %s: %w", table, id, err)
	}
	return tag.RowsAffected() > 0, nil
}
