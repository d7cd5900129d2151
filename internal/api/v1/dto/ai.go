package dto

import (
	"skillpath/internal/model"
	"skillpath/internal/quota"
)

// GenerateRoadmapDTO keeps the web client's "input" name for the topic.
type GenerateRoadmapDTO struct {
	Input       string `json:"input" validate:"required,max=200"`
	Timeframe   string `json:"timeframe" validate:"required,max=100"`
	Level       string `json:"level" validate:"required,max=50"`
	ContextInfo string `json:"contextInfo,omitempty" validate:"max=2000"`
}

// RoadmapUsageDTO is the roadmap quota in the shape the original client expects.
type RoadmapUsageDTO struct {
	CanGenerate    bool `json:"canGenerate"`
	UsageCount     int  `json:"usageCount"`
	RemainingCount int  `json:"remainingCount"`
}

type GenerateRoadmapResponseDTO struct {
	Roadmap    model.RoadmapNode `json:"roadmap"`
	RoadmapID  string            `json:"roadmapId"`
	UsageInfo  RoadmapUsageDTO   `json:"usageInfo"`
	AIFeedback string            `json:"aiFeedback"`
}

type GeneratedRoadmapsResponseDTO struct {
	AIGeneratedRoadmaps []model.GeneratedRoadmap `json:"aiGeneratedRoadmaps"`
}

type GeneratedRoadmapResponseDTO struct {
	Roadmap *model.GeneratedRoadmap `json:"roadmap"`
}

// LimitErrorDTO is returned when a daily cap is reached.
type LimitErrorDTO struct {
	Error          string `json:"error"`
	Message        string `json:"message,omitempty"`
	UsageCount     int    `json:"usageCount"`
	RemainingCount int    `json:"remainingCount"`
}

// ErrorDTO is the {error} envelope of the AI routes.
type ErrorDTO struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type SuggestDTO struct {
	Answers SuggestionAnswersDTO `json:"answers" validate:"required"`
}

type SuggestionAnswersDTO struct {
	CareerGoals      string   `json:"careerGoals" validate:"required,max=500"`
	Experience       string   `json:"experience" validate:"max=500"`
	LearningStyle    string   `json:"learningStyle" validate:"max=200"`
	TimeCommitment   string   `json:"timeCommitment" validate:"max=200"`
	CurrentKnowledge []string `json:"currentKnowledge" validate:"max=50,dive,max=100"`
	Preference       string   `json:"preference" validate:"max=200"`
}

type UsageCountsDTO struct {
	UsageCount     int `json:"usageCount"`
	RemainingCount int `json:"remainingCount"`
}

type SuggestResponseDTO struct {
	Roadmap   string         `json:"roadmap"`
	ID        string         `json:"id"`
	UsageInfo UsageCountsDTO `json:"usageInfo"`
}

type SavedSuggestionsResponseDTO struct {
	SavedSuggestions []model.SavedSuggestion `json:"savedSuggestions"`
}

type SuggestionResponseDTO struct {
	Success    bool                   `json:"success"`
	Suggestion *model.SavedSuggestion `json:"suggestion"`
}

type SimulateCareerDTO struct {
	CurrentSkills     []string `json:"currentSkills" validate:"required,min=1,max=50,dive,required,max=100"`
	CareerGoal        string   `json:"careerGoal" validate:"required,max=200"`
	CareerStage       string   `json:"careerStage" validate:"required,max=100"`
	EducationLevel    string   `json:"educationLevel" validate:"required,max=100"`
	GoalTimeframe     string   `json:"goalTimeframe,omitempty" validate:"max=100"`
	HoursPerWeek      string   `json:"hoursPerWeek,omitempty" validate:"max=50"`
	CurrentlyStudying string   `json:"currentlyStudying,omitempty" validate:"max=200"`
	Major             string   `json:"major,omitempty" validate:"max=200"`
	YearsOfExperience string   `json:"yearsOfExperience,omitempty" validate:"max=50"`
}

type SimulateCareerResponseDTO struct {
	ID         string             `json:"id"`
	CareerPath []model.CareerStep `json:"careerPath"`
	Message    string             `json:"message"`
	UsageInfo  quota.Status       `json:"usageInfo"`
}

type SavedCareerPathsResponseDTO struct {
	SavedCareerPaths []model.CareerPath `json:"savedCareerPaths"`
}

type CareerPathResponseDTO struct {
	CareerPath *model.CareerPath `json:"careerPath"`
}

type ChatMessageDTO struct {
	Type    string `json:"type"`
	Content string `json:"content" validate:"max=4000"`
}

type MentorChatDTO struct {
	Message             string           `json:"message" validate:"required,max=1000"`
	ConversationHistory []ChatMessageDTO `json:"conversationHistory" validate:"max=100,dive"`
}

type MentorChatResponseDTO struct {
	Success  bool         `json:"success"`
	Response string       `json:"response"`
	Usage    quota.Status `json:"usage"`
}

// MentorErrorDTO is the error envelope of the /chatbot routes.
type MentorErrorDTO struct {
	Success bool          `json:"success"`
	Error   string        `json:"error"`
	Code    string        `json:"code"`
	Usage   *quota.Status `json:"usage,omitempty"`
}

type MentorUsageResponseDTO struct {
	Success bool `json:"success"`
	quota.Status
}

type InsightsResponseDTO struct {
	Success  bool `json:"success"`
	Insights any  `json:"insights"`
}

// MsgDTO is the {msg} envelope kept by the generated roadmap routes.
type MsgDTO struct {
	Msg string `json:"msg"`
}
