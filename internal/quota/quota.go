// Package quota gates features behind per-user daily usage caps.
package quota

import (
	"time"

	"skillpath/internal/model"
)

const dayLayout = "2006-01-02"

var caps = map[model.Feature]int{
	model.FeatureRoadmap:       10,
	model.FeatureChatbot:       10,
	model.FeatureAISuggestions: 3,
	model.FeatureCareerTrack:   3,
}

// Cap returns the daily limit for f, or 0 for an unknown feature.
func Cap(f model.Feature) int {
	return caps[f]
}

// DayKey returns the UTC calendar day of t.
func DayKey(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

// Status is one feature's usage for the current day.
type Status struct {
	CanUse         bool `json:"canUse"`
	UsageCount     int  `json:"usageCount"`
	RemainingCount int  `json:"remainingCount"`
}

// Check reports today's usage against limit. Counters for other days are ignored.
func Check(counters []model.UsageCounter, limit int, now time.Time) Status {
	today := DayKey(now)
	used := 0
	for _, c := range counters {
		if c.Day == today {
			used = c.Count
			break
		}
	}
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return Status{
		CanUse:         used < limit,
		UsageCount:     used,
		RemainingCount: remaining,
	}
}

// Increment returns a copy of counters with today's count raised by one.
func Increment(counters []model.UsageCounter, now time.Time) []model.UsageCounter {
	today := DayKey(now)
	out := make([]model.UsageCounter, len(counters), len(counters)+1)
	copy(out, counters)
	for i := range out {
		if out[i].Day == today {
			out[i].Count++
			return out
		}
	}
	return append(out, model.UsageCounter{Day: today, Count: 1})
}

// Today returns the counter for the current day, zero if there is none.
func Today(counters []model.UsageCounter, now time.Time) model.UsageCounter {
	today := DayKey(now)
	for _, c := range counters {
		if c.Day == today {
			return c
		}
	}
	return model.UsageCounter{Day: today}
}
