package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"skillpath/internal/ai"
	"skillpath/internal/metrics"
	"skillpath/internal/model"
	"skillpath/internal/progress"
	"skillpath/internal/quota"
	"skillpath/internal/repository"

	"github.com/rs/zerolog"
)

const mentorHistoryTurns = 8

type MostActiveRoadmap struct {
	ID             string  `json:"id"`
	Activity       int     `json:"activity"`
	CompletionRate float64 `json:"completionRate"`
}

type Insights struct {
	TotalProgress struct {
		Completed  int `json:"completed"`
		Total      int `json:"total"`
		Percentage int `json:"percentage"`
	} `json:"totalProgress"`
	RoadmapProgress []progress.RoadmapActivity `json:"roadmapProgress"`
	Streak          progress.Streak            `json:"streak"`
	Activity        struct {
		ThisWeek          int                   `json:"thisWeek"`
		ThisMonth         int                   `json:"thisMonth"`
		MostActiveRoadmap *MostActiveRoadmap    `json:"mostActiveRoadmap"`
		RecentCompletions []progress.Completion `json:"recentCompletions"`
	} `json:"activity"`
	Roadmaps struct {
		Bookmarked                int `json:"bookmarked"`
		AIGenerated               int `json:"aiGenerated"`
		ActiveRoadmaps            int `json:"activeRoadmaps"`
		BookmarkedWithProgress    int `json:"bookmarkedWithProgress"`
		BookmarkedWithoutProgress int `json:"bookmarkedWithoutProgress"`
	} `json:"roadmaps"`
	Career struct {
		PathsSaved         int     `json:"pathsSaved"`
		LatestGoal         *string `json:"latestGoal"`
		AISuggestionsSaved int     `json:"aiSuggestionsSaved"`
	} `json:"career"`
	Usage struct {
		RoadmapGeneration quota.Status `json:"roadmapGeneration"`
		Chatbot           quota.Status `json:"chatbot"`
		AISuggestions     quota.Status `json:"aiSuggestions"`
		CareerTrack       quota.Status `json:"careerTrack"`
	} `json:"usage"`
	Recommendations []string `json:"recommendations"`
}

// MentorService answers learner questions with their own progress as context.
type MentorService interface {
	Chat(ctx context.Context, userID, message string, history []model.ChatTurn) (string, quota.Status, error)
	Insights(ctx context.Context, userID string) (*Insights, error)
}

type MentorDeps struct {
	Users       UserLookup
	Usage       repository.UsageRepository
	Progress    repository.ProgressRepository
	Bookmarks   repository.BookmarkRepository
	Generated   repository.GeneratedRoadmapRepository
	Careers     repository.CareerRepository
	Suggestions repository.SuggestionRepository
}

type mentorService struct {
	deps    MentorDeps
	ai      ai.Generator
	metrics *metrics.Collector
	logger  zerolog.Logger
	clock   func() time.Time
}

func NewMentorService(deps MentorDeps, gen ai.Generator, m *metrics.Collector, logger zerolog.Logger) MentorService {
	return &mentorService{
		deps:    deps,
		ai:      gen,
		metrics: m,
		logger:  logger.With().Str("service", "MentorService").Logger(),
		clock:   time.Now,
	}
}

func (s *mentorService) Chat(ctx context.Context, userID, message string, history []model.ChatTurn) (string, quota.Status, error) {
	if err := requireUser(ctx, s.deps.Users, userID); err != nil {
		return "", quota.Status{}, err
	}
	now := s.clock()
	st, err := gate(ctx, s.deps.Usage, s.metrics, userID, model.FeatureChatbot, now)
	if err != nil {
		return "", st, err
	}

	insights, err := s.insights(ctx, userID)
	if err != nil {
		return "", st, err
	}
	if len(history) > mentorHistoryTurns {
		history = history[len(history)-mentorHistoryTurns:]
	}

	reply, err := s.ai.Chat(ctx, ai.MentorSystemPrompt(learnerProfile(insights)), history, message)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Mentor chat failed")
		return "", st, err
	}

	st, err = consume(ctx, s.deps.Usage, s.metrics, userID, model.FeatureChatbot, now, nil)
	if err != nil {
		return "", st, err
	}
	return reply, st, nil
}

func (s *mentorService) Insights(ctx context.Context, userID string) (*Insights, error) {
	if err := requireUser(ctx, s.deps.Users, userID); err != nil {
		return nil, err
	}
	return s.insights(ctx, userID)
}

func (s *mentorService) insights(ctx context.Context, userID string) (*Insights, error) {
	now := s.clock()
	list, err := s.deps.Progress.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing progress: %w", err)
	}
	bookmarks, err := s.deps.Bookmarks.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing bookmarks: %w", err)
	}
	generated, err := s.deps.Generated.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing generated roadmaps: %w", err)
	}
	careers, err := s.deps.Careers.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing career paths: %w", err)
	}
	suggestions, err := s.deps.Suggestions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing suggestions: %w", err)
	}

	sum := progress.Summarize(list, now)
	in := &Insights{RoadmapProgress: sum.Roadmaps, Streak: sum.Streak, Recommendations: []string{}}
	in.TotalProgress.Completed = sum.Completed
	in.TotalProgress.Total = sum.Total
	in.TotalProgress.Percentage = sum.Percentage
	in.Activity.ThisWeek = sum.ThisWeek
	in.Activity.ThisMonth = sum.ThisMonth
	in.Activity.RecentCompletions = sum.RecentCompletions
	if ma := sum.MostActive(); ma != nil {
		in.Activity.MostActiveRoadmap = &MostActiveRoadmap{ID: ma.RoadmapID, Activity: ma.ThisMonth, CompletionRate: ma.CompletionRate}
	}

	active := make(map[string]bool, len(list))
	for _, rp := range list {
		active[rp.RoadmapID] = true
	}
	in.Roadmaps.Bookmarked = len(bookmarks)
	in.Roadmaps.AIGenerated = len(generated)
	in.Roadmaps.ActiveRoadmaps = len(list)
	for _, b := range bookmarks {
		if active[b.RoadmapID] {
			in.Roadmaps.BookmarkedWithProgress++
		} else {
			in.Roadmaps.BookmarkedWithoutProgress++
		}
	}

	in.Career.PathsSaved = len(careers)
	in.Career.AISuggestionsSaved = len(suggestions)
	if len(careers) > 0 {
		// Listed oldest first.
		goal := careers[len(careers)-1].Inputs.CareerGoal
		in.Career.LatestGoal = &goal
	}

	for _, f := range model.Features {
		st, err := checkQuota(ctx, s.deps.Usage, userID, f, now)
		if err != nil {
			return nil, err
		}
		switch f {
		case model.FeatureRoadmap:
			in.Usage.RoadmapGeneration = st
		case model.FeatureChatbot:
			in.Usage.Chatbot = st
		case model.FeatureAISuggestions:
			in.Usage.AISuggestions = st
		case model.FeatureCareerTrack:
			in.Usage.CareerTrack = st
		}
	}

	in.Recommendations = recommend(sum, in.Roadmaps.BookmarkedWithoutProgress)
	return in, nil
}

func recommend(sum progress.Summary, unstartedBookmarks int) []string {
	recs := []string{}
	var overall float64
	if sum.Total > 0 {
		overall = float64(sum.Completed) / float64(sum.Total) * 100
	}
	switch {
	case overall < 20:
		recs = append(recs, "Focus on completing smaller milestones to build momentum in your learning journey")
	case overall > 80:
		recs = append(recs, "Excellent progress! Consider exploring advanced topics or new domains")
	}

	switch {
	case sum.Streak.Current == 0:
		recs = append(recs, "Restart your learning streak - even 10 minutes daily can make a big difference")
	case sum.Streak.Current > 7:
		recs = append(recs, fmt.Sprintf("Outstanding %d-day streak! Your consistency is paying off", sum.Streak.Current))
	}

	if sum.ThisWeek == 0 && sum.Completed > 0 {
		recs = append(recs, "You haven't made progress this week. Consider setting aside time for learning")
	}

	for _, r := range sum.Roadmaps {
		if r.ThisMonth == 0 && r.CompletionRate > 0 && r.CompletionRate < 100 {
			recs = append(recs, fmt.Sprintf("Resume progress on %q - you're %.1f%% complete and close to a milestone", r.RoadmapID, r.CompletionRate))
			break
		}
	}
	for _, r := range sum.Roadmaps {
		if r.CompletionRate > 80 && r.CompletionRate < 100 {
			recs = append(recs, fmt.Sprintf("You're %.1f%% done with %q - finish strong to complete it!", r.CompletionRate, r.RoadmapID))
			break
		}
	}

	if unstartedBookmarks > 0 {
		recs = append(recs, fmt.Sprintf("You have %d bookmarked roadmaps you haven't started yet", unstartedBookmarks))
	}
	return recs
}

// learnerProfile renders insights as plain text for the mentor prompt.
func learnerProfile(in *Insights) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- Overall progress: %d of %d nodes (%d%%)\n", in.TotalProgress.Completed, in.TotalProgress.Total, in.TotalProgress.Percentage)
	fmt.Fprintf(&b, "- Current streak: %d days, %d active days in total\n", in.Streak.Current, in.Streak.UniqueActiveDays)
	fmt.Fprintf(&b, "- Completed this week: %d, this month: %d\n", in.Activity.ThisWeek, in.Activity.ThisMonth)
	for _, r := range in.RoadmapProgress {
		fmt.Fprintf(&b, "- Roadmap %q: %d/%d nodes (%.1f%%), %d this week\n", r.RoadmapID, r.Completed, r.Total, r.CompletionRate, r.ThisWeek)
	}
	fmt.Fprintf(&b, "- Bookmarked roadmaps: %d (%d not started)\n", in.Roadmaps.Bookmarked, in.Roadmaps.BookmarkedWithoutProgress)
	fmt.Fprintf(&b, "- AI generated roadmaps: %d\n", in.Roadmaps.AIGenerated)
	if in.Career.LatestGoal != nil {
		fmt.Fprintf(&b, "- Career goal: %s\n", *in.Career.LatestGoal)
	}
	return b.String()
}
