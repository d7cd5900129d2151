package dto

import "time"

type ToggleProgressDTO struct {
	RoadmapID  string `json:"roadmapId" validate:"required"`
	NodeID     string `json:"nodeId" validate:"required"`
	TotalNodes *int   `json:"totalNodes,omitempty" validate:"omitempty,min=0"`
}

type ToggleProgressResponseDTO struct {
	Success   bool      `json:"success"`
	Completed bool      `json:"completed"`
	Timestamp time.Time `json:"timestamp"`
}

type CompletedNodeDTO struct {
	NodeID    string    `json:"nodeId"`
	Timestamp time.Time `json:"timestamp"`
}

type ToggleBookmarkDTO struct {
	RoadmapID string `json:"roadmapId" validate:"required"`
}

type BookmarkToggleResponseDTO struct {
	Success    bool `json:"success"`
	Bookmarked bool `json:"bookmarked"`
}

type BookmarkListResponseDTO struct {
	Bookmarks []string `json:"bookmarks"`
}

// MessageDTO is the plain {message} envelope used by the progress, bookmark,
// content and roadmap routes.
type MessageDTO struct {
	Message string `json:"message"`
}
