package model

import "time"

// RoadmapNode is one step of a roadmap tree. Generated roadmaps carry a
// Timeframe on top-level nodes; curated roadmaps use Preferred/DividerText.
type RoadmapNode struct {
	Name        string        `json:"name"`
	Timeframe   string        `json:"timeframe,omitempty"`
	Preferred   bool          `json:"preferred,omitempty"`
	DividerText string        `json:"dividerText,omitempty"`
	Children    []RoadmapNode `json:"children,omitempty"`
}

// Roadmap is a curated roadmap served under /roadmaps.
type Roadmap struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Slug        string        `json:"slug,omitempty"`
	Description string        `json:"description,omitempty"`
	Children    []RoadmapNode `json:"children"`
	CreatedAt   time.Time     `json:"createdAt"`
}

type GeneratedRoadmap struct {
	ID          string      `json:"id"`
	UserID      string      `json:"-"`
	Title       string      `json:"title"`
	Timeframe   string      `json:"timeframe"`
	Level       string      `json:"level"`
	ContextInfo string      `json:"contextInfo,omitempty"`
	Feedback    string      `json:"aiFeedback"`
	Roadmap     RoadmapNode `json:"roadmap"`
	CreatedAt   time.Time   `json:"createdAt"`
}
