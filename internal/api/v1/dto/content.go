package dto

import "skillpath/internal/model"

type PaginationDTO struct {
	CurrentPage int  `json:"currentPage"`
	HasMore     bool `json:"hasMore"`
}

type FeedResponseDTO struct {
	Articles         []model.Article    `json:"articles"`
	Pagination       PaginationDTO      `json:"pagination"`
	AvailableSources []model.SourceInfo `json:"availableSources"`
}

type SourcesResponseDTO struct {
	Sources []model.SourceInfo `json:"sources"`
}

type MainRoadmapDTO struct {
	Name     string              `json:"name"`
	Children []model.RoadmapNode `json:"children"`
}

type MainRoadmapResponseDTO struct {
	Success bool           `json:"success"`
	Data    MainRoadmapDTO `json:"data"`
}

type MainRoadmapNotFoundDTO struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	RequestedID string `json:"requestedId"`
}
