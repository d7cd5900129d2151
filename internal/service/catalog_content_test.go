package service

import (
	"context"
	"testing"
	"time"

	"skillpath/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Full Stack Developer Roadmap 2025": "full-stack-developer-roadmap-2025",
		"  C++ & Rust -- Systems!  ":        "c-rust-systems",
		"Node.js":                           "nodejs",
		"---":                               "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestCatalogLookupChain(t *testing.T) {
	repo := &fakeRoadmapRepo{roadmaps: []model.Roadmap{
		{ID: "11111111-1111-1111-1111-111111111111", Name: "Frontend", Slug: "frontend"},
		{ID: "22222222-2222-2222-2222-222222222222", Name: "Machine Learning Developer Roadmap 2025"},
		{ID: "33333333-3333-3333-3333-333333333333", Name: "devops"},
	}}
	svc := NewCatalogService(repo, zerolog.Nop())
	ctx := context.Background()

	rm, err := svc.Get(ctx, "frontend")
	require.NoError(t, err)
	assert.Equal(t, "Frontend", rm.Name)

	rm, err = svc.Get(ctx, "33333333-3333-3333-3333-333333333333")
	require.NoError(t, err)
	assert.Equal(t, "devops", rm.Name)

	rm, err = svc.Get(ctx, "machine-learning")
	require.NoError(t, err)
	assert.Equal(t, "22222222-2222-2222-2222-222222222222", rm.ID)

	rm, err = svc.Get(ctx, "devops")
	require.NoError(t, err)
	assert.Equal(t, "33333333-3333-3333-3333-333333333333", rm.ID)

	_, err = svc.Get(ctx, "cobol")
	assert.ErrorIs(t, err, ErrRoadmapNotFound)
}

func TestBackfillSlugsResolvesCollisions(t *testing.T) {
	repo := &fakeRoadmapRepo{roadmaps: []model.Roadmap{
		{ID: "a", Name: "Go Roadmap", Slug: "go-roadmap"},
		{ID: "b", Name: "Go  Roadmap!"},
		{ID: "c", Name: "Python"},
		{ID: "d", Name: "???"},
	}}
	svc := NewCatalogService(repo, zerolog.Nop())

	n, err := svc.BackfillSlugs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "go-roadmap-2", repo.roadmaps[1].Slug)
	assert.Equal(t, "python", repo.roadmaps[2].Slug)
	assert.Empty(t, repo.roadmaps[3].Slug)
}

func TestContentFeedUnknownTagSkipsFetch(t *testing.T) {
	f := &fakeFetcher{}
	svc := &contentService{merger: f}

	_, err := svc.Feed(context.Background(), "not-a-roadmap", 1, "")
	require.ErrorIs(t, err, ErrUnknownTag)
	assert.Zero(t, f.calls)
}

func TestContentFeedLimitsAndFilter(t *testing.T) {
	now := time.Now()
	f := &fakeFetcher{articles: []model.Article{
		{URL: "a", Source: "Dev.to", PublishedAt: now.Add(-time.Hour)},
		{URL: "b", Source: "Medium", PublishedAt: now},
	}}
	svc := &contentService{merger: f}
	ctx := context.Background()

	feed, err := svc.Feed(ctx, "default", 0, "all")
	require.NoError(t, err)
	assert.Equal(t, 8, f.limit)
	assert.Equal(t, 1, feed.Page)
	assert.True(t, feed.HasMore)
	assert.Len(t, feed.Articles, 2)
	assert.Len(t, feed.Sources, 2)

	feed, err = svc.Feed(ctx, "Full-Stack-Developer", 2, "devto")
	require.NoError(t, err)
	assert.Equal(t, 6, f.limit)
	assert.Contains(t, f.tags, "webdev")
	require.Len(t, feed.Articles, 1)
	assert.Equal(t, "a", feed.Articles[0].URL)

	feed, err = svc.Feed(ctx, "full-stack-developer", 2, "MEDIUM")
	require.NoError(t, err)
	require.Len(t, feed.Articles, 1)
	assert.Equal(t, "b", feed.Articles[0].URL)

	feed, err = svc.Feed(ctx, "full-stack-developer", 2, "hashnode")
	require.NoError(t, err)
	assert.Empty(t, feed.Articles)
	assert.False(t, feed.HasMore)
}

func TestProgressServiceToggleAndStats(t *testing.T) {
	repo := &fakeProgressRepo{}
	svc := NewProgressService(usersWith("u1"), repo, nil, zerolog.Nop())
	ctx := context.Background()
	total := 5

	res, err := svc.Toggle(ctx, "u1", "go", "n1", &total)
	require.NoError(t, err)
	assert.True(t, res.Completed)
	_, err = svc.Toggle(ctx, "u1", "go", "n2", nil)
	require.NoError(t, err)

	nodes, err := svc.CompletedNodes(ctx, "u1", "go")
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "n1", nodes[0].NodeID)

	res, err = svc.Toggle(ctx, "u1", "go", "n1", nil)
	require.NoError(t, err)
	assert.False(t, res.Completed)

	st, err := svc.Stats(ctx, "u1", "go")
	require.NoError(t, err)
	assert.Equal(t, 1, st.TotalCompleted)
	assert.Equal(t, []string{"n2"}, st.CompletedNodes)
	assert.NotNil(t, st.LastUpdated)

	empty, err := svc.Stats(ctx, "u1", "rust")
	require.NoError(t, err)
	assert.Zero(t, empty.TotalCompleted)
	assert.Nil(t, empty.LastUpdated)

	sum, err := svc.Summary(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, sum.Total)
}
