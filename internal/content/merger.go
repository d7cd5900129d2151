package content

import (
	"context"
	"sort"

	"skillpath/internal/metrics"
	"skillpath/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	maxSourcesPerTag = 2
	maxParallelFetch = 8
)

// Merger fans a feed request out over its sources and merges the results.
type Merger struct {
	sources []Source
	logger  zerolog.Logger
	metrics *metrics.Collector
}

// NewMerger keeps sources in the given order; that order drives rotation.
func NewMerger(sources []Source, logger zerolog.Logger, m *metrics.Collector) *Merger {
	return &Merger{
		sources: sources,
		logger:  logger.With().Str("service", "ContentMerger").Logger(),
		metrics: m,
	}
}

// Sources describes the configured sources in rotation order.
func (m *Merger) Sources() []model.SourceInfo {
	out := make([]model.SourceInfo, 0, len(m.sources))
	for _, s := range m.sources {
		out = append(out, model.SourceInfo{ID: s.ID(), Name: s.Name()})
	}
	return out
}

type fetchJob struct {
	tag    string
	source Source
}

// FetchMixed fetches page of every tag from up to two rotating sources,
// drops later duplicates by URL and returns the articles newest first.
// A failing source is logged and contributes nothing.
func (m *Merger) FetchMixed(ctx context.Context, tags []string, limit, page int) []model.Article {
	n := len(m.sources)
	if n == 0 || len(tags) == 0 {
		return []model.Article{}
	}
	perTag := min(maxSourcesPerTag, n)
	perSource := (limit + perTag - 1) / perTag
	start := ((page-1)%n + n) % n

	jobs := make([]fetchJob, 0, len(tags)*perTag)
	for _, tag := range tags {
		for i := 0; i < perTag; i++ {
			jobs = append(jobs, fetchJob{tag: tag, source: m.sources[(start+i)%n]})
		}
	}

	results := make([][]model.Article, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetch)
	for i, job := range jobs {
		g.Go(func() error {
			articles, err := job.source.FetchArticles(gctx, job.tag, perSource, page)
			if err != nil {
				m.logger.Error().Err(err).Str("source", job.source.ID()).Str("tag", job.tag).Msg("Error fetching articles")
				if m.metrics != nil {
					m.metrics.SourceFailures.WithLabelValues(job.source.ID()).Inc()
				}
				return nil
			}
			results[i] = articles
			return nil
		})
	}
	_ = g.Wait()

	return mergeArticles(results)
}

// mergeArticles concatenates batches in order, keeps the first article per URL
// and stable-sorts by publication time, newest first.
func mergeArticles(batches [][]model.Article) []model.Article {
	seen := make(map[string]struct{})
	merged := []model.Article{}
	for _, batch := range batches {
		for _, a := range batch {
			if _, ok := seen[a.URL]; ok {
				continue
			}
			seen[a.URL] = struct{}{}
			merged = append(merged, a)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishedAt.After(merged[j].PublishedAt)
	})
	return merged
}
