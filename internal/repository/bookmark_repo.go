package repository

import (
	"context"
	"fmt"

	"skillpath/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookmarkRepository interface {
	// Toggle adds or removes the bookmark and reports whether it now exists.
	Toggle(ctx context.Context, userID, roadmapID string) (bool, error)
	List(ctx context.Context, userID string) ([]model.Bookmark, error)
	Exists(ctx context.Context, userID, roadmapID string) (bool, error)
}

type bookmarkRepo struct {
	pool *pgxpool.Pool
}

func NewBookmarkRepo(pool *pgxpool.Pool) BookmarkRepository {
	return &bookmarkRepo{pool: pool}
}

func (r *bookmarkRepo) Toggle(ctx context.Context, userID, roadmapID string) (bool, error) {
	var added bool
	err := inSerializableTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM bookmarks WHERE user_id = $1 AND roadmap_id = $2`, userID, roadmapID)
		if err != nil {
			return fmt.Errorf("removing bookmark %s: %w", roadmapID, err)
		}
		if tag.RowsAffected() > 0 {
			added = false
			return nil
		}
		if _, err := tx.Exec(ctx, `INSERT INTO bookmarks (user_id, roadmap_id) VALUES ($1, $2)`, userID, roadmapID); err != nil {
			return fmt.Errorf("adding bookmark %s: %w", roadmapID, err)
		}
		added = true
		return nil
	})
	return added, err
}

func (r *bookmarkRepo) List(ctx context.Context, userID string) ([]model.Bookmark, error) {
	rows, err := r.pool.Query(ctx, `SELECT roadmap_id, created_at FROM bookmarks WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing bookmarks for user %s: %w", userID, err)
	}
	bookmarks, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.Bookmark])
	if err != nil {
		return nil, fmt.Errorf("scanning bookmarks for user %s: %w", userID, err)
	}
	return bookmarks, nil
}

func (r *bookmarkRepo) Exists(ctx context.Context, userID, roadmapID string) (bool, error) {
	var exists bool
	const q = `SELECT EXISTS (SELECT 1 FROM bookmarks WHERE user_id = $1 AND roadmap_id = $2)`
	if err := r.pool.QueryRow(ctx, q, userID, roadmapID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking bookmark %s: %w", roadmapID, err)
	}
	return exists, nil
}
