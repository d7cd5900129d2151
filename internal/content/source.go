// Package content aggregates articles for roadmap tags from external sources.
package content

import (
	"context"
	"fmt"

	"skillpath/internal/model"
)

// Source fetches one page of articles for a tag.
type Source interface {
	ID() string
	Name() string
	FetchArticles(ctx context.Context, tag string, limit, page int) ([]model.Article, error)
}

// StatusError is returned when a source answers with a non-2xx status.
type StatusError struct {
	Source     string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("error fetching %s articles: status %d", e.Source, e.StatusCode)
}
