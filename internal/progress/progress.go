// Package progress implements the per-roadmap node completion ledger.
// Presence of a node in a roadmap's completed list means it is completed.
package progress

import (
	"time"

	"skillpath/internal/model"
)

// Toggle flips nodeID in roadmapID and returns the updated list together with
// whether the node is now completed. The progress entry for roadmapID is created
// on demand; totalNodes, when given, overwrites the stored total.
func Toggle(list []model.RoadmapProgress, roadmapID, nodeID string, totalNodes *int, now time.Time) ([]model.RoadmapProgress, bool) {
	out := clone(list)

	idx := indexOf(out, roadmapID)
	if idx < 0 {
		out = append(out, model.RoadmapProgress{RoadmapID: roadmapID})
		idx = len(out) - 1
	}
	rp := &out[idx]
	if totalNodes != nil {
		rp.TotalNodes = *totalNodes
	}

	completed := true
	if n := nodeIndex(rp.CompletedNodes, nodeID); n >= 0 {
		rp.CompletedNodes = append(rp.CompletedNodes[:n:n], rp.CompletedNodes[n+1:]...)
		completed = false
	} else {
		rp.CompletedNodes = append(rp.CompletedNodes, model.CompletedNode{
			NodeID:    nodeID,
			Completed: true,
			Timestamp: now,
		})
	}
	rp.LastUpdated = now
	return out, completed
}

// HasCompleted reports whether nodeID is completed in roadmapID.
func HasCompleted(list []model.RoadmapProgress, roadmapID, nodeID string) bool {
	rp := Find(list, roadmapID)
	return rp != nil && nodeIndex(rp.CompletedNodes, nodeID) >= 0
}

// CompletedNodes returns the completed nodes of roadmapID in insertion order.
func CompletedNodes(list []model.RoadmapProgress, roadmapID string) []model.CompletedNode {
	rp := Find(list, roadmapID)
	if rp == nil {
		return []model.CompletedNode{}
	}
	nodes := make([]model.CompletedNode, len(rp.CompletedNodes))
	copy(nodes, rp.CompletedNodes)
	return nodes
}

// Stats summarises roadmapID; a roadmap with no entry yields zero counts.
func Stats(list []model.RoadmapProgress, roadmapID string) model.ProgressStats {
	rp := Find(list, roadmapID)
	if rp == nil {
		return model.ProgressStats{CompletedNodes: []string{}}
	}
	ids := make([]string, 0, len(rp.CompletedNodes))
	for _, n := range rp.CompletedNodes {
		ids = append(ids, n.NodeID)
	}
	last := rp.LastUpdated
	return model.ProgressStats{
		TotalCompleted: len(ids),
		CompletedNodes: ids,
		LastUpdated:    &last,
	}
}

// Find returns the progress entry for roadmapID or nil.
func Find(list []model.RoadmapProgress, roadmapID string) *model.RoadmapProgress {
	if i := indexOf(list, roadmapID); i >= 0 {
		return &list[i]
	}
	return nil
}

func indexOf(list []model.RoadmapProgress, roadmapID string) int {
	for i := range list {
		if list[i].RoadmapID == roadmapID {
			return i
		}
	}
	return -1
}

func nodeIndex(nodes []model.CompletedNode, nodeID string) int {
	for i := range nodes {
		if nodes[i].NodeID == nodeID {
			return i
		}
	}
	return -1
}

func clone(list []model.RoadmapProgress) []model.RoadmapProgress {
	out := make([]model.RoadmapProgress, len(list))
	for i, rp := range list {
		out[i] = rp
		out[i].CompletedNodes = append([]model.CompletedNode(nil), rp.CompletedNodes...)
	}
	return out
}
