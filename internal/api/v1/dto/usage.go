package dto

import "skillpath/internal/quota"

// UsageOverviewDTO reports every daily cap at once.
type UsageOverviewDTO struct {
	RoadmapGeneration quota.Status `json:"roadmapGeneration"`
	Chatbot           quota.Status `json:"chatbot"`
	AISuggestions     quota.Status `json:"aiSuggestions"`
	CareerTrack       quota.Status `json:"careerTrack"`
}
