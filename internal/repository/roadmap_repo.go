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

// RoadmapRepository reads curated roadmaps. Getters return nil, nil when nothing matches.
type RoadmapRepository interface {
	GetBySlug(ctx context.Context, slug string) (*model.Roadmap, error)
	GetByID(ctx context.Context, id string) (*model.Roadmap, error)
	// GetByName matches the whole name case-insensitively.
	GetByName(ctx context.Context, name string) (*model.Roadmap, error)
	ListWithoutSlug(ctx context.Context) ([]model.Roadmap, error)
	SetSlug(ctx context.Context, id, slug string) error
}

type roadmapRepo struct {
	pool *pgxpool.Pool
}

func NewRoadmapRepo(pool *pgxpool.Pool) RoadmapRepository {
	return &roadmapRepo{pool: pool}
}

const roadmapColumns = `id, name, COALESCE(slug, ''), description, children, created_at`

func scanRoadmap(row pgx.Row) (model.Roadmap, error) {
	var r model.Roadmap
	var children []byte
	if err := row.Scan(&r.ID, &r.Name, &r.Slug, &r.Description, &children, &r.CreatedAt); err != nil {
		return r, err
	}
	if err := json.Unmarshal(children, &r.Children); err != nil {
		return r, fmt.Errorf("decoding roadmap %s: %w", r.ID, err)
	}
	return r, nil
}

func (r *roadmapRepo) getOne(ctx context.Context, where string, arg any) (*model.Roadmap, error) {
	rm, err := scanRoadmap(r.pool.QueryRow(ctx, `SELECT `+roadmapColumns+` FROM roadmaps WHERE `+where+` LIMIT 1`, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rm, nil
}

func (r *roadmapRepo) GetBySlug(ctx context.Context, slug string) (*model.Roadmap, error) {
	rm, err := r.getOne(ctx, `slug = $1`, slug)
	if err != nil {
		return nil, fmt.Errorf("getting roadmap by slug %s: %w", slug, err)
	}
	return rm, nil
}

func (r *roadmapRepo) GetByID(ctx context.Context, id string) (*model.Roadmap, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	rm, err := r.getOne(ctx, `id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("getting roadmap %s: %w", id, err)
	}
	return rm, nil
}

func (r *roadmapRepo) GetByName(ctx context.Context, name string) (*model.Roadmap, error) {
	rm, err := r.getOne(ctx, `lower(name) = lower($1)`, name)
	if err != nil {
		return nil, fmt.Errorf("getting roadmap by name %q: %w", name, err)
	}
	return rm, nil
}

func (r *roadmapRepo) ListWithoutSlug(ctx context.Context) ([]model.Roadmap, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+roadmapColumns+` FROM roadmaps WHERE slug IS NULL OR slug = '' ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("listing roadmaps without slug: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Roadmap, error) {
		return scanRoadmap(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scanning roadmaps: %w", err)
	}
	return list, nil
}

func (r *roadmapRepo) SetSlug(ctx context.Context, id, slug string) error {
	if _, err := r.pool.Exec(ctx, `UPDATE roadmaps SET slug = $2 WHERE id = $1`, id, slug); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("setting slug for roadmap %s: %w", id, err)
	}
	return nil
}

var ErrDuplicateSlug = errors.New("duplicate_slug")
