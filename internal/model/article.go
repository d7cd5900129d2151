package model

import "time"

// Article is a normalized item from an external content source. It is never persisted.
type Article struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Tag         string    `json:"tag"`
	PublishedAt time.Time `json:"published_at"`
	Source      string    `json:"source"`
	Image       string    `json:"image,omitempty"`
	ArticleID   string    `json:"articleId"`
	Description string    `json:"description"`
	Author      string    `json:"author"`
	ReadTime    string    `json:"readTime"`
}

type SourceInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
