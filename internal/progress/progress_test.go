package progress

import (
	"testing"
	"time"

	"skillpath/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func TestToggleCreatesEntryAndCompletes(t *testing.T) {
	list, completed := Toggle(nil, "frontend", "html", intPtr(40), t0)

	require.True(t, completed)
	require.Len(t, list, 1)
	assert.Equal(t, "frontend", list[0].RoadmapID)
	assert.Equal(t, 40, list[0].TotalNodes)
	assert.Equal(t, t0, list[0].LastUpdated)
	require.Len(t, list[0].CompletedNodes, 1)
	assert.Equal(t, model.CompletedNode{NodeID: "html", Completed: true, Timestamp: t0}, list[0].CompletedNodes[0])
	assert.True(t, HasCompleted(list, "frontend", "html"))
}

func TestToggleTwiceRemovesNodeButKeepsEntry(t *testing.T) {
	list, _ := Toggle(nil, "frontend", "html", nil, t0)
	t1 := t0.Add(time.Hour)
	list, completed := Toggle(list, "frontend", "html", nil, t1)

	assert.False(t, completed)
	assert.False(t, HasCompleted(list, "frontend", "html"))
	require.Len(t, list, 1)
	assert.Empty(t, list[0].CompletedNodes)
	assert.Equal(t, t1, list[0].LastUpdated)
}

func TestToggleKeepsTotalWhenOmitted(t *testing.T) {
	list, _ := Toggle(nil, "backend", "go", intPtr(12), t0)
	list, _ = Toggle(list, "backend", "sql", nil, t0)
	assert.Equal(t, 12, list[0].TotalNodes)

	list, _ = Toggle(list, "backend", "docker", intPtr(15), t0)
	assert.Equal(t, 15, list[0].TotalNodes)
}

func TestToggleDoesNotMutateInput(t *testing.T) {
	before, _ := Toggle(nil, "r", "a", nil, t0)
	after, _ := Toggle(before, "r", "a", nil, t0)

	assert.Len(t, before[0].CompletedNodes, 1)
	assert.Empty(t, after[0].CompletedNodes)
}

func TestRoadmapsAreIndependent(t *testing.T) {
	list, _ := Toggle(nil, "a", "n1", nil, t0)
	list, _ = Toggle(list, "b", "n1", nil, t0)

	assert.True(t, HasCompleted(list, "a", "n1"))
	assert.True(t, HasCompleted(list, "b", "n1"))
	assert.False(t, HasCompleted(list, "c", "n1"))
}

func TestCompletedNodesInsertionOrder(t *testing.T) {
	var list []model.RoadmapProgress
	for i, id := range []string{"c", "a", "b"} {
		list, _ = Toggle(list, "r", id, nil, t0.Add(time.Duration(i)*time.Minute))
	}
	list, _ = Toggle(list, "r", "a", nil, t0.Add(time.Hour))

	nodes := CompletedNodes(list, "r")
	require.Len(t, nodes, 2)
	assert.Equal(t, "c", nodes[0].NodeID)
	assert.Equal(t, "b", nodes[1].NodeID)
	assert.Equal(t, t0.Add(2*time.Minute), nodes[1].Timestamp)

	assert.Empty(t, CompletedNodes(list, "missing"))
}

func TestStats(t *testing.T) {
	empty := Stats(nil, "r")
	assert.Equal(t, 0, empty.TotalCompleted)
	assert.Empty(t, empty.CompletedNodes)
	assert.Nil(t, empty.LastUpdated)

	list, _ := Toggle(nil, "r", "x", nil, t0)
	list, _ = Toggle(list, "r", "y", nil, t0.Add(time.Minute))
	st := Stats(list, "r")
	assert.Equal(t, 2, st.TotalCompleted)
	assert.Equal(t, []string{"x", "y"}, st.CompletedNodes)
	require.NotNil(t, st.LastUpdated)
	assert.Equal(t, t0.Add(time.Minute), *st.LastUpdated)
}
