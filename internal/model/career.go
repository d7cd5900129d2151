package model

import "time"

// CareerInputs is the questionnaire behind a simulated career path.
type CareerInputs struct {
	CurrentSkills     []string `json:"currentSkills"`
	CareerGoal        string   `json:"careerGoal"`
	CareerStage       string   `json:"careerStage"`
	EducationLevel    string   `json:"educationLevel"`
	GoalTimeframe     string   `json:"goalTimeframe,omitempty"`
	HoursPerWeek      string   `json:"hoursPerWeek,omitempty"`
	CurrentlyStudying string   `json:"currentlyStudying,omitempty"`
	Major             string   `json:"major,omitempty"`
	YearsOfExperience string   `json:"yearsOfExperience,omitempty"`
}

type CareerStep struct {
	Title             string   `json:"title"`
	TimeToAchieve     float64  `json:"timeToAchieve"`
	RequiredSkills    []string `json:"requiredSkills"`
	Description       string   `json:"description"`
	LearningResources []string `json:"learningResources"`
	AIFeedback        string   `json:"aiFeedback,omitempty"`
}

type CareerPath struct {
	ID        string       `json:"id"`
	UserID    string       `json:"-"`
	Inputs    CareerInputs `json:"inputs"`
	Steps     []CareerStep `json:"careerPath"`
	CreatedAt time.Time    `json:"createdAt"`
}

type SuggestionAnswers struct {
	CareerGoals      string   `json:"careerGoals"`
	Experience       string   `json:"experience"`
	LearningStyle    string   `json:"learningStyle"`
	TimeCommitment   string   `json:"timeCommitment"`
	CurrentKnowledge []string `json:"currentKnowledge"`
	Preference       string   `json:"preference"`
}

// SavedSuggestion is sanitized HTML produced for a questionnaire.
type SavedSuggestion struct {
	ID        string            `json:"id"`
	UserID    string            `json:"-"`
	Answers   SuggestionAnswers `json:"answers"`
	Roadmap   string            `json:"roadmap"`
	CreatedAt time.Time         `json:"createdAt"`
}

// ChatTurn is one exchange in a mentor conversation.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
