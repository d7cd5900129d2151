package content

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"skillpath/internal/model"
)

const (
	descriptionLimit = 150
	wordsPerMinute   = 200
	rss2jsonLayout   = "2006-01-02 15:04:05"
)

// Medium reads tag feeds through an RSS-to-JSON proxy. The proxy returns the
// whole feed, so pages are cut out locally.
type Medium struct {
	proxyURL string
	feedURL  string
	client   *http.Client
}

func NewMedium(proxyURL, feedURL string, client *http.Client) *Medium {
	return &Medium{proxyURL: proxyURL, feedURL: strings.TrimRight(feedURL, "/"), client: client}
}

func (m *Medium) ID() string   { return "medium" }
func (m *Medium) Name() string { return "Medium" }

type rss2jsonResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Items   []struct {
		Title       string `json:"title"`
		PubDate     string `json:"pubDate"`
		Link        string `json:"link"`
		Author      string `json:"author"`
		Description string `json:"description"`
		Content     string `json:"content"`
	} `json:"items"`
}

func (m *Medium) FetchArticles(ctx context.Context, tag string, limit, page int) ([]model.Article, error) {
	endpoint := m.proxyURL + "?rss_url=" + url.QueryEscape(m.feedURL+"/"+tag)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building medium request: %w", err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching medium feed for %s: %w", tag, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Source: m.Name(), StatusCode: resp.StatusCode}
	}

	var feed rss2jsonResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decoding medium feed: %w", err)
	}
	if feed.Status != "" && feed.Status != "ok" {
		return nil, fmt.Errorf("medium feed for %s: %s", tag, feed.Message)
	}

	start := (page - 1) * limit
	if start < 0 || start >= len(feed.Items) {
		return []model.Article{}, nil
	}
	end := min(start+limit, len(feed.Items))

	articles := make([]model.Article, 0, end-start)
	for i, item := range feed.Items[start:end] {
		published, err := time.Parse(rss2jsonLayout, item.PubDate)
		if err != nil {
			published, _ = time.Parse(time.RFC1123Z, item.PubDate)
		}
		words := len(strings.Fields(plainText(item.Content)))
		minutes := max(1, int(math.Round(float64(words)/wordsPerMinute)))

		articles = append(articles, model.Article{
			Title:       item.Title,
			URL:         item.Link,
			Tag:         tag,
			PublishedAt: published.UTC(),
			Source:      m.Name(),
			Image:       firstImageSrc(item.Content),
			ArticleID:   fmt.Sprintf("medium-%s-%d-%d", tag, page, i),
			Description: truncate(plainText(item.Description), descriptionLimit) + "...",
			Author:      item.Author,
			ReadTime:    fmt.Sprintf("%d min read", minutes),
		})
	}
	return articles, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
