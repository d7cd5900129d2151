package model

// Feature identifies a quota-gated capability.
type Feature string

const (
	FeatureRoadmap       Feature = "roadmap"
	FeatureChatbot       Feature = "chatbot"
	FeatureAISuggestions Feature = "ai_suggestions"
	FeatureCareerTrack   Feature = "career_track"
)

// Features lists every gated feature in display order.
var Features = []Feature{FeatureRoadmap, FeatureChatbot, FeatureAISuggestions, FeatureCareerTrack}

// UsageCounter is the number of uses of one feature on one UTC day.
type UsageCounter struct {
	Day   string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}
