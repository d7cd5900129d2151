package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skillpath/internal/model"
	"skillpath/internal/progress"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProgressRepository persists per-roadmap node completion.
type ProgressRepository interface {
	List(ctx context.Context, userID string) ([]model.RoadmapProgress, error)
	// Get returns nil when the user never touched the roadmap.
	Get(ctx context.Context, userID, roadmapID string) (*model.RoadmapProgress, error)
	// Toggle flips a node and reports whether it is now completed.
	Toggle(ctx context.Context, userID, roadmapID, nodeID string, totalNodes *int, now time.Time) (bool, error)
}

type progressRepo struct {
	pool *pgxpool.Pool
}

func NewProgressRepo(pool *pgxpool.Pool) ProgressRepository {
	return &progressRepo{pool: pool}
}

func (r *progressRepo) List(ctx context.Context, userID string) ([]model.RoadmapProgress, error) {
	const progressQ = `
		SELECT roadmap_id, total_nodes, last_updated
		FROM roadmap_progress
		WHERE user_id = $1
		ORDER BY roadmap_id
	`
	rows, err := r.pool.Query(ctx, progressQ, userID)
	if err != nil {
		return nil, fmt.Errorf("listing progress for user %s: %w", userID, err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.RoadmapProgress, error) {
		var p model.RoadmapProgress
		err := row.Scan(&p.RoadmapID, &p.TotalNodes, &p.LastUpdated)
		p.CompletedNodes = []model.CompletedNode{}
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning progress for user %s: %w", userID, err)
	}

	const nodesQ = `
		SELECT roadmap_id, node_id, completed_at
		FROM completed_nodes
		WHERE user_id = $1
		ORDER BY roadmap_id, position
	`
	rows, err = r.pool.Query(ctx, nodesQ, userID)
	if err != nil {
		return nil, fmt.Errorf("listing completed nodes for user %s: %w", userID, err)
	}
	defer rows.Close()

	index := make(map[string]int, len(list))
	for i := range list {
		index[list[i].RoadmapID] = i
	}
	for rows.Next() {
		var roadmapID string
		n := model.CompletedNode{Completed: true}
		if err := rows.Scan(&roadmapID, &n.NodeID, &n.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning completed node: %w", err)
		}
		if i, ok := index[roadmapID]; ok {
			list[i].CompletedNodes = append(list[i].CompletedNodes, n)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating completed nodes: %w", err)
	}
	return list, nil
}

func (r *progressRepo) Get(ctx context.Context, userID, roadmapID string) (*model.RoadmapProgress, error) {
	p, err := loadProgress(ctx, r.pool, userID, roadmapID, false)
	if err != nil {
		return nil, fmt.Errorf("loading progress %s for user %s: %w", roadmapID, userID, err)
	}
	return p, nil
}

func (r *progressRepo) Toggle(ctx context.Context, userID, roadmapID, nodeID string, totalNodes *int, now time.Time) (bool, error) {
	var completed bool
	err := inSerializableTx(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := loadProgress(ctx, tx, userID, roadmapID, true)
		if err != nil {
			return fmt.Errorf("loading progress %s for user %s: %w", roadmapID, userID, err)
		}
		var list []model.RoadmapProgress
		if current != nil {
			list = append(list, *current)
		}
		list, completed = progress.Toggle(list, roadmapID, nodeID, totalNodes, now)
		updated := progress.Find(list, roadmapID)

		const upsertQ = `
			INSERT INTO roadmap_progress (user_id, roadmap_id, total_nodes, last_updated)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id, roadmap_id)
			DO UPDATE SET total_nodes = EXCLUDED.total_nodes, last_updated = EXCLUDED.last_updated
		`
		if _, err := tx.Exec(ctx, upsertQ, userID, roadmapID, updated.TotalNodes, updated.LastUpdated); err != nil {
			return fmt.Errorf("saving progress %s for user %s: %w", roadmapID, userID, err)
		}

		if completed {
			const insertQ = `
				INSERT INTO completed_nodes (user_id, roadmap_id, node_id, position, completed_at)
				SELECT $1, $2, $3, COALESCE(MAX(position), 0) + 1, $4
				FROM completed_nodes WHERE user_id = $1 AND roadmap_id = $2
			`
			if _, err := tx.Exec(ctx, insertQ, userID, roadmapID, nodeID, now); err != nil {
				return fmt.Errorf("completing node %s: %w", nodeID, err)
			}
			return nil
		}
		const deleteQ = `DELETE FROM completed_nodes WHERE user_id = $1 AND roadmap_id = $2 AND node_id = $3`
		if _, err := tx.Exec(ctx, deleteQ, userID, roadmapID, nodeID); err != nil {
			return fmt.Errorf("uncompleting node %s: %w", nodeID, err)
		}
		return nil
	})
	return completed, err
}

func loadProgress(ctx context.Context, db DBTX, userID, roadmapID string, forUpdate bool) (*model.RoadmapProgress, error) {
	q := `SELECT total_nodes, last_updated FROM roadmap_progress WHERE user_id = $1 AND roadmap_id = $2`
	if forUpdate {
		q += ` FOR UPDATE`
	}
	p := model.RoadmapProgress{RoadmapID: roadmapID, CompletedNodes: []model.CompletedNode{}}
	if err := db.QueryRow(ctx, q, userID, roadmapID).Scan(&p.TotalNodes, &p.LastUpdated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	const nodesQ = `
		SELECT node_id, completed_at FROM completed_nodes
		WHERE user_id = $1 AND roadmap_id = $2
		ORDER BY position
	`
	rows, err := db.Query(ctx, nodesQ, userID, roadmapID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		n := model.CompletedNode{Completed: true}
		if err := rows.Scan(&n.NodeID, &n.Timestamp); err != nil {
			return nil, err
		}
		p.CompletedNodes = append(p.CompletedNodes, n)
	}
	return &p, rows.Err()
}
