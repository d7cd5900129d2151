package ai

import (
	"fmt"
	"strings"

	"skillpath/internal/model"
)

const noContext = "No additional context"

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// RoadmapPrompt asks for a three-level roadmap tree with a timeframe on each top-level node.
func RoadmapPrompt(topic, timeframe, level, contextInfo string) string {
	return fmt.Sprintf(`Generate a long detailed learning roadmap with at least 10 main categories for learning %[1]q at the %[3]s level within %[2]s.
Take this context into account: %[4]q.

Return valid JSON only, shaped exactly like:
{"name": %[1]q, "children": [{"name": "Main Category", "timeframe": "2 weeks", "children": [{"name": "Subcategory", "children": [{"name": "Topic"}]}]}]}

Requirements:
- Exactly 3 levels: main categories, subcategories, individual topics.
- Order main categories as a logical learning progression, one step each.
- Use clear names of 1-3 words and no descriptions.
- Include a "timeframe" field (days, weeks or months) on main categories only.
- Cover current industry-relevant tools and practices.`,
		topic, timeframe, level, orDefault(contextInfo, noContext))
}

// FeedbackPrompt asks for a short plain-text note about the roadmap request.
func FeedbackPrompt(topic, timeframe, level, contextInfo string) string {
	return fmt.Sprintf(`The user has chosen the topic %q to learn at %q level with timeframe %q. They also added: %q.
Give a short helpful note in one paragraph covering whether goal, level and timeframe align, how the request could be improved, and tips or tools for better outcomes.
Plain text only, no formatting. 6-7 sentences. Be direct, clear and supportive.`,
		topic, level, timeframe, orDefault(contextInfo, noContext))
}

// SuggestionPrompt asks for an HTML learning guide for the questionnaire answers.
func SuggestionPrompt(a model.SuggestionAnswers) string {
	knowledge := "None"
	if len(a.CurrentKnowledge) > 0 {
		knowledge = strings.Join(a.CurrentKnowledge, ", ")
	}
	return fmt.Sprintf(`You are a career guidance expert creating a personalised tech learning roadmap.

USER PROFILE:
- Career Goal: %s
- Experience Level: %s
- Learning Preference: %s
- Time Commitment: %s
- Current Knowledge: %s
- Development Preference: %s

Respond with HTML only, no markdown or code blocks, using only h1, h2, h3, p, ul, ol, li, strong, em, section, div and span.
Start with <h1>Personalized %[1]s Learning Roadmap</h1>, then sections for the learning profile, essential skills
(<div class="essential-skills-container"><span class="essential-skill-badge">Skill</span></div>), a phased plan,
resources matched to the learning preference and next steps. Close every tag.`,
		a.CareerGoals, a.Experience, a.LearningStyle, a.TimeCommitment, knowledge, a.Preference)
}

// CareerPrompt asks for a JSON array of career steps leading to the goal.
func CareerPrompt(in model.CareerInputs) string {
	var details strings.Builder
	line := func(k, v string) {
		fmt.Fprintf(&details, "- %s: %s\n", k, orDefault(v, "N/A"))
	}
	line("Current Skills", strings.Join(in.CurrentSkills, ", "))
	line("Career Goal", in.CareerGoal)
	line("Career Stage", in.CareerStage)
	line("Education Level", in.EducationLevel)
	line("Goal Timeframe", in.GoalTimeframe)
	line("Hours Per Week", in.HoursPerWeek)
	line("Currently Studying", in.CurrentlyStudying)
	line("Major", in.Major)
	line("Years Of Experience", in.YearsOfExperience)

	return fmt.Sprintf(`You are a career coaching AI specialised in tech career progression.
User details:
%s
Return only a valid JSON array describing a realistic path from the current position to the goal:
[{"title": "Position (max 4 words)", "timeToAchieve": <months as a number>, "requiredSkills": ["..."],
  "description": "...", "learningResources": ["..."], "aiFeedback": "50-100 word coaching message, first object only"}]
Include as many steps as needed, build gradually on existing skills and respect the timeframe of %s.`,
		details.String(), orDefault(in.GoalTimeframe, "N/A"))
}

// MentorSystemPrompt frames the mentor persona around the learner's profile.
func MentorSystemPrompt(profile string) string {
	return `You are an experienced, supportive learning mentor for software and tech careers.
Reference the learner's actual data (progress percentages, roadmap names, streaks, recent activity) when relevant,
give concrete next steps, and keep answers focused and concise.

Learner profile:
` + profile
}
