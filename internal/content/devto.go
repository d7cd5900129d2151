package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"skillpath/internal/model"
)

type DevTo struct {
	baseURL string
	client  *http.Client
}

// NewDevTo returns a Dev.to source. baseURL is the API root, e.g. https://dev.to/api.
func NewDevTo(baseURL string, client *http.Client) *DevTo {
	return &DevTo{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (d *DevTo) ID() string   { return "devto" }
func (d *DevTo) Name() string { return "Dev.to" }

type devToArticle struct {
	ID                 int64   `json:"id"`
	Title              string  `json:"title"`
	URL                string  `json:"url"`
	PublishedAt        string  `json:"published_at"`
	CoverImage         *string `json:"cover_image"`
	SocialImage        *string `json:"social_image"`
	Description        string  `json:"description"`
	ReadingTimeMinutes int     `json:"reading_time_minutes"`
	User               struct {
		Name string `json:"name"`
	} `json:"user"`
}

func (d *DevTo) FetchArticles(ctx context.Context, tag string, limit, page int) ([]model.Article, error) {
	q := url.Values{}
	q.Set("tag", tag)
	q.Set("per_page", strconv.Itoa(limit))
	q.Set("page", strconv.Itoa(page))
	endpoint := d.baseURL + "/articles?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building dev.to request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching dev.to articles for %s: %w", tag, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Source: d.Name(), StatusCode: resp.StatusCode}
	}

	var raw []devToArticle
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding dev.to response: %w", err)
	}

	articles := make([]model.Article, 0, len(raw))
	for _, a := range raw {
		published, _ := time.Parse(time.RFC3339, a.PublishedAt)
		art := model.Article{
			Title:       a.Title,
			URL:         a.URL,
			Tag:         tag,
			PublishedAt: published,
			Source:      d.Name(),
			ArticleID:   fmt.Sprintf("devto-%d", a.ID),
			Description: a.Description,
			Author:      a.User.Name,
		}
		switch {
		case a.CoverImage != nil && *a.CoverImage != "":
			art.Image = *a.CoverImage
		case a.SocialImage != nil:
			art.Image = *a.SocialImage
		}
		if a.ReadingTimeMinutes > 0 {
			art.ReadTime = fmt.Sprintf("%d min read", a.ReadingTimeMinutes)
		}
		articles = append(articles, art)
	}
	return articles, nil
}
