package progress

import (
	"math"
	"sort"
	"time"

	"skillpath/internal/model"
)

const dayLayout = "2006-01-02"

// RoadmapActivity summarises one roadmap's progress and recent completions.
type RoadmapActivity struct {
	RoadmapID      string    `json:"roadmapId"`
	Completed      int       `json:"completed"`
	Total          int       `json:"total"`
	CompletionRate float64   `json:"completionRate"`
	LastUpdated    time.Time `json:"lastUpdated"`
	ThisWeek       int       `json:"thisWeek"`
	ThisMonth      int       `json:"thisMonth"`
}

type Completion struct {
	RoadmapID string    `json:"roadmapId"`
	NodeID    string    `json:"nodeId"`
	Timestamp time.Time `json:"timestamp"`
}

type Streak struct {
	Current            int        `json:"current"`
	LastActivity       *time.Time `json:"lastActivity"`
	UniqueActiveDays   int        `json:"uniqueActiveDays"`
	AverageNodesPerDay float64    `json:"averageNodesPerDay"`
}

type Summary struct {
	Completed         int               `json:"completed"`
	Total             int               `json:"total"`
	Percentage        int               `json:"percentage"`
	Roadmaps          []RoadmapActivity `json:"roadmaps"`
	Streak            Streak            `json:"streak"`
	ThisWeek          int               `json:"thisWeek"`
	ThisMonth         int               `json:"thisMonth"`
	RecentCompletions []Completion      `json:"recentCompletions"`
}

// Summarize computes completion rates, 7/30-day activity and the current daily
// streak over every roadmap in list. Roadmaps are ordered by completion rate, highest first.
func Summarize(list []model.RoadmapProgress, now time.Time) Summary {
	weekAgo := now.Add(-7 * 24 * time.Hour)
	monthAgo := now.Add(-30 * 24 * time.Hour)

	s := Summary{Roadmaps: make([]RoadmapActivity, 0, len(list))}
	var all []Completion
	for _, rp := range list {
		ra := RoadmapActivity{
			RoadmapID:   rp.RoadmapID,
			Completed:   len(rp.CompletedNodes),
			Total:       rp.TotalNodes,
			LastUpdated: rp.LastUpdated,
		}
		if rp.TotalNodes > 0 {
			ra.CompletionRate = round1(float64(ra.Completed) / float64(rp.TotalNodes) * 100)
		}
		for _, n := range rp.CompletedNodes {
			if n.Timestamp.After(weekAgo) {
				ra.ThisWeek++
			}
			if n.Timestamp.After(monthAgo) {
				ra.ThisMonth++
			}
			all = append(all, Completion{RoadmapID: rp.RoadmapID, NodeID: n.NodeID, Timestamp: n.Timestamp})
		}
		s.Completed += ra.Completed
		s.Total += ra.Total
		s.ThisWeek += ra.ThisWeek
		s.ThisMonth += ra.ThisMonth
		s.Roadmaps = append(s.Roadmaps, ra)
	}
	sort.SliceStable(s.Roadmaps, func(i, j int) bool {
		return s.Roadmaps[i].CompletionRate > s.Roadmaps[j].CompletionRate
	})
	if s.Total > 0 {
		s.Percentage = int(math.Round(float64(s.Completed) / float64(s.Total) * 100))
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Timestamp.After(all[j].Timestamp) })
	s.Streak = streak(all, now)
	if s.Streak.UniqueActiveDays > 0 {
		s.Streak.AverageNodesPerDay = round1(float64(s.Completed) / float64(s.Streak.UniqueActiveDays))
	}
	if len(all) > 10 {
		all = all[:10]
	}
	s.RecentCompletions = all
	if s.RecentCompletions == nil {
		s.RecentCompletions = []Completion{}
	}
	return s
}

// streak counts consecutive UTC days with at least one completion, ending today.
// completions must be sorted newest first.
func streak(completions []Completion, now time.Time) Streak {
	days := make(map[string]struct{})
	for _, c := range completions {
		days[c.Timestamp.UTC().Format(dayLayout)] = struct{}{}
	}
	st := Streak{UniqueActiveDays: len(days)}
	if len(completions) > 0 {
		last := completions[0].Timestamp
		st.LastActivity = &last
	}
	for d := now.UTC(); ; d = d.AddDate(0, 0, -1) {
		if _, ok := days[d.Format(dayLayout)]; !ok {
			break
		}
		st.Current++
	}
	return st
}

// MostActive returns the roadmap with the most completions in the last 30 days, or nil.
func (s Summary) MostActive() *RoadmapActivity {
	var best *RoadmapActivity
	for i := range s.Roadmaps {
		if s.Roadmaps[i].ThisMonth == 0 {
			continue
		}
		if best == nil || s.Roadmaps[i].ThisMonth > best.ThisMonth {
			best = &s.Roadmaps[i]
		}
	}
	return best
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
