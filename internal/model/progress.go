package model

import "time"

type CompletedNode struct {
	NodeID    string    `json:"nodeId"`
	Completed bool      `json:"completed"`
	Timestamp time.Time `json:"timestamp"`
}

// RoadmapProgress is created on the first toggle of a roadmap and kept even
// after all its nodes are un-completed.
type RoadmapProgress struct {
	RoadmapID      string          `json:"roadmapId"`
	CompletedNodes []CompletedNode `json:"completedNodes"`
	TotalNodes     int             `json:"totalNodes"`
	LastUpdated    time.Time       `json:"lastUpdated"`
}

type ProgressStats struct {
	TotalCompleted int        `json:"totalCompleted"`
	CompletedNodes []string   `json:"completedNodes"`
	LastUpdated    *time.Time `json:"lastUpdated"`
}
