package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"skillpath/internal/model"
)

var (
	fenceRe    = regexp.MustCompile("```[a-zA-Z]*")
	citationRe = regexp.MustCompile(`\[\d+\]`)
)

// StripFences removes markdown code fences the model tends to wrap output in.
func StripFences(s string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(s, ""))
}

// ParseRoadmap decodes a generated roadmap tree. The root and every node need a
// name, and the root needs at least one child.
func ParseRoadmap(raw string) (model.RoadmapNode, error) {
	text := citationRe.ReplaceAllString(StripFences(raw), "")
	text = extract(text, '{', '}')

	var root model.RoadmapNode
	if err := json.Unmarshal([]byte(text), &root); err != nil {
		return model.RoadmapNode{}, fmt.Errorf("%w: roadmap is not valid JSON: %v", ErrUpstreamFormat, err)
	}
	root.Name = strings.TrimSpace(root.Name)
	if len(root.Children) == 0 {
		return model.RoadmapNode{}, fmt.Errorf("%w: roadmap has no categories", ErrUpstreamFormat)
	}
	if err := validateNode(&root, "root"); err != nil {
		return model.RoadmapNode{}, err
	}
	return root, nil
}

func validateNode(n *model.RoadmapNode, path string) error {
	n.Name = strings.TrimSpace(n.Name)
	if n.Name == "" {
		return fmt.Errorf("%w: node %s has no name", ErrUpstreamFormat, path)
	}
	for i := range n.Children {
		if err := validateNode(&n.Children[i], fmt.Sprintf("%s.%d", path, i)); err != nil {
			return err
		}
	}
	return nil
}

type rawCareerStep struct {
	Title             string   `json:"title"`
	TimeToAchieve     *float64 `json:"timeToAchieve"`
	RequiredSkills    []string `json:"requiredSkills"`
	Description       string   `json:"description"`
	LearningResources []string `json:"learningResources"`
	AIFeedback        string   `json:"aiFeedback"`
}

// ParseCareerPath decodes a non-empty JSON array of career steps. The first
// step must carry the coaching feedback.
func ParseCareerPath(raw string) ([]model.CareerStep, error) {
	text := extract(StripFences(raw), '[', ']')

	var steps []rawCareerStep
	if err := json.Unmarshal([]byte(text), &steps); err != nil {
		return nil, fmt.Errorf("%w: career path is not a valid JSON array: %v", ErrUpstreamFormat, err)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: career path must be a non-empty array", ErrUpstreamFormat)
	}

	out := make([]model.CareerStep, 0, len(steps))
	for i, s := range steps {
		if s.Title == "" || s.TimeToAchieve == nil || s.RequiredSkills == nil || s.Description == "" || s.LearningResources == nil {
			return nil, fmt.Errorf("%w: invalid career path step at index %d", ErrUpstreamFormat, i)
		}
		if i == 0 && s.AIFeedback == "" {
			return nil, fmt.Errorf("%w: first step must include aiFeedback", ErrUpstreamFormat)
		}
		out = append(out, model.CareerStep{
			Title:             s.Title,
			TimeToAchieve:     *s.TimeToAchieve,
			RequiredSkills:    s.RequiredSkills,
			Description:       s.Description,
			LearningResources: s.LearningResources,
			AIFeedback:        s.AIFeedback,
		})
	}
	return out, nil
}

// extract trims any prose around the outermost open..close pair.
func extract(s string, open, close byte) string {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start < 0 || end < start {
		return s
	}
	return s[start : end+1]
}
