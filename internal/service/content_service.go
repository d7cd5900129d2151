package service

import (
	"context"
	"errors"
	"strings"

	"skillpath/internal/content"
	"skillpath/internal/model"
)

var ErrUnknownTag = errors.New("unknown roadmap category")

const (
	defaultFeedLimit = 8
	tagFeedLimit     = 6
	allSources       = "all"
)

type Feed struct {
	Articles []model.Article
	Page     int
	HasMore  bool
	Sources  []model.SourceInfo
}

// ContentService builds the article feed for a roadmap category.
type ContentService interface {
	Feed(ctx context.Context, roadmapID string, page int, source string) (*Feed, error)
	Sources() []model.SourceInfo
}

type feedFetcher interface {
	FetchMixed(ctx context.Context, tags []string, limit, page int) []model.Article
	Sources() []model.SourceInfo
}

type contentService struct {
	merger feedFetcher
}

func NewContentService(merger *content.Merger) ContentService {
	return &contentService{merger: merger}
}

// Feed rejects unknown categories before any upstream request is made.
// source filters the merged result by source id or display name; "" and
// "all" keep everything.
func (s *contentService) Feed(ctx context.Context, roadmapID string, page int, source string) (*Feed, error) {
	tags, ok := content.TagsFor(roadmapID)
	if !ok {
		return nil, ErrUnknownTag
	}
	if page < 1 {
		page = 1
	}
	limit := tagFeedLimit
	if strings.EqualFold(roadmapID, content.DefaultFeed) {
		limit = defaultFeedLimit
	}

	articles := s.merger.FetchMixed(ctx, tags, limit, page)
	if source != "" && !strings.EqualFold(source, allSources) {
		articles = filterBySource(articles, s.merger.Sources(), source)
	}
	return &Feed{
		Articles: articles,
		Page:     page,
		// The upstreams expose no totals, so a non-empty page implies more may follow.
		HasMore: len(articles) > 0,
		Sources: s.merger.Sources(),
	}, nil
}

func (s *contentService) Sources() []model.SourceInfo {
	return s.merger.Sources()
}

func filterBySource(articles []model.Article, sources []model.SourceInfo, filter string) []model.Article {
	name := filter
	for _, src := range sources {
		if strings.EqualFold(src.ID, filter) {
			name = src.Name
			break
		}
	}
	out := []model.Article{}
	for _, a := range articles {
		if strings.EqualFold(a.Source, name) {
			out = append(out, a)
		}
	}
	return out
}
