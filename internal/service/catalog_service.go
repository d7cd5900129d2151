package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"skillpath/internal/model"
	"skillpath/internal/repository"

	"github.com/rs/zerolog"
)

const maxSlugSuffix = 50

var (
	slugInvalidRe = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaceRe   = regexp.MustCompile(`\s+`)
	slugDashRe    = regexp.MustCompile(`-+`)
)

// Slugify lowercases name, drops everything except letters, digits, spaces
// and hyphens, then joins words with single hyphens.
func Slugify(name string) string {
	s := slugInvalidRe.ReplaceAllString(strings.ToLower(name), "")
	s = slugSpaceRe.ReplaceAllString(s, "-")
	s = slugDashRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// namePatterns lists the legacy names a slug-like id may refer to, most
// specific first. "machine-learning" becomes "Machine Learning ...".
func namePatterns(id string) []string {
	words := strings.Split(id, "-")
	for i, w := range words {
		if r, size := utf8.DecodeRuneInString(w); size > 0 {
			words[i] = string(unicode.ToUpper(r)) + w[size:]
		}
	}
	name := strings.Join(words, " ")
	return []string{
		name + " Developer Roadmap for Beginners to Advanced 2025",
		name + " Developer Roadmap 2025",
		name + " Roadmap 2025",
		name + " Developer",
		name,
	}
}

// CatalogService serves the curated roadmaps.
type CatalogService interface {
	// Get resolves id as a slug, then a roadmap id, then a legacy name.
	Get(ctx context.Context, id string) (*model.Roadmap, error)
	// BackfillSlugs assigns slugs to roadmaps that have none and reports how
	// many were updated.
	BackfillSlugs(ctx context.Context) (int, error)
}

type catalogService struct {
	repo   repository.RoadmapRepository
	logger zerolog.Logger
}

func NewCatalogService(repo repository.RoadmapRepository, logger zerolog.Logger) CatalogService {
	return &catalogService{repo: repo, logger: logger.With().Str("service", "CatalogService").Logger()}
}

func (s *catalogService) Get(ctx context.Context, id string) (*model.Roadmap, error) {
	rm, err := s.repo.GetBySlug(ctx, id)
	if err != nil || rm != nil {
		return rm, err
	}
	rm, err = s.repo.GetByID(ctx, id)
	if err != nil || rm != nil {
		return rm, err
	}
	for _, name := range namePatterns(id) {
		rm, err = s.repo.GetByName(ctx, name)
		if err != nil || rm != nil {
			return rm, err
		}
	}
	return nil, ErrRoadmapNotFound
}

func (s *catalogService) BackfillSlugs(ctx context.Context) (int, error) {
	list, err := s.repo.ListWithoutSlug(ctx)
	if err != nil {
		return 0, err
	}
	updated := 0
	for _, rm := range list {
		base := Slugify(rm.Name)
		if base == "" {
			s.logger.Warn().Str("roadmap_id", rm.ID).Str("name", rm.Name).Msg("Name yields an empty slug, skipping")
			continue
		}
		slug, err := s.assignSlug(ctx, rm.ID, base)
		if err != nil {
			return updated, err
		}
		s.logger.Info().Str("name", rm.Name).Str("slug", slug).Msg("Updated roadmap slug")
		updated++
	}
	return updated, nil
}

// assignSlug tries base, then base-2, base-3, ... until one is free.
func (s *catalogService) assignSlug(ctx context.Context, id, base string) (string, error) {
	slug := base
	for n := 2; ; n++ {
		err := s.repo.SetSlug(ctx, id, slug)
		if err == nil {
			return slug, nil
		}
		if !errors.Is(err, repository.ErrDuplicateSlug) || n > maxSlugSuffix {
			return "", fmt.Errorf("assigning slug %q: %w", slug, err)
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}
