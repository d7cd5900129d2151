package quota

import (
	"testing"
	"time"

	"skillpath/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noon = time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)

func TestCaps(t *testing.T) {
	assert.Equal(t, 10, Cap(model.FeatureRoadmap))
	assert.Equal(t, 10, Cap(model.FeatureChatbot))
	assert.Equal(t, 3, Cap(model.FeatureAISuggestions))
	assert.Equal(t, 3, Cap(model.FeatureCareerTrack))
	assert.Equal(t, 0, Cap(model.Feature("unknown")))
}

func TestCheckWithoutCounters(t *testing.T) {
	st := Check(nil, 10, noon)
	assert.Equal(t, Status{CanUse: true, UsageCount: 0, RemainingCount: 10}, st)
}

func TestCheckIgnoresOtherDays(t *testing.T) {
	counters := []model.UsageCounter{{Day: "2024-03-13", Count: 10}}
	st := Check(counters, 10, noon)
	assert.True(t, st.CanUse)
	assert.Equal(t, 0, st.UsageCount)
}

func TestCheckAtCap(t *testing.T) {
	counters := []model.UsageCounter{{Day: "2024-03-14", Count: 3}}
	st := Check(counters, 3, noon)
	assert.False(t, st.CanUse)
	assert.Equal(t, 3, st.UsageCount)
	assert.Equal(t, 0, st.RemainingCount)
}

func TestCheckClampsRemaining(t *testing.T) {
	counters := []model.UsageCounter{{Day: "2024-03-14", Count: 12}}
	st := Check(counters, 10, noon)
	assert.False(t, st.CanUse)
	assert.Equal(t, 0, st.RemainingCount)
}

func TestIncrementAppendsThenBumps(t *testing.T) {
	counters := []model.UsageCounter{{Day: "2024-03-13", Count: 4}}

	once := Increment(counters, noon)
	require.Len(t, once, 2)
	assert.Equal(t, model.UsageCounter{Day: "2024-03-14", Count: 1}, once[1])

	twice := Increment(once, noon)
	require.Len(t, twice, 2)
	assert.Equal(t, 2, twice[1].Count)
	assert.Equal(t, 4, twice[0].Count)

	// input untouched
	assert.Equal(t, 1, once[1].Count)
	assert.Len(t, counters, 1)
}

func TestIncrementUntilCapBlocks(t *testing.T) {
	var counters []model.UsageCounter
	limit := Cap(model.FeatureAISuggestions)
	for i := 0; i < limit; i++ {
		require.True(t, Check(counters, limit, noon).CanUse, "use %d", i)
		counters = Increment(counters, noon)
	}
	st := Check(counters, limit, noon)
	assert.False(t, st.CanUse)
	assert.Equal(t, limit, st.UsageCount)
}

func TestDayKeyUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	local := time.Date(2024, 3, 15, 5, 0, 0, 0, loc)
	assert.Equal(t, "2024-03-14", DayKey(local))
}

func TestTodayReturnsZeroCounter(t *testing.T) {
	c := Today([]model.UsageCounter{{Day: "2024-03-01", Count: 2}}, noon)
	assert.Equal(t, model.UsageCounter{Day: "2024-03-14"}, c)
}
