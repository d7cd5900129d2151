// Package ai wraps the generative model and turns its free-form output into
// validated domain values.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"skillpath/internal/metrics"
	"skillpath/internal/model"

	"google.golang.org/genai"
)

var (
	// ErrUpstream means the model could not be reached or returned nothing.
	ErrUpstream = errors.New("ai upstream failure")
	// ErrUpstreamFormat means the model answered but the answer had the wrong shape.
	ErrUpstreamFormat = errors.New("ai response format error")
	ErrNotConfigured  = errors.New("ai client not configured")
)

// Generator is the subset of the model API the services use.
type Generator interface {
	Generate(ctx context.Context, operation, prompt string) (string, error)
	Chat(ctx context.Context, system string, history []model.ChatTurn, message string) (string, error)
}

type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	metrics *metrics.Collector
}

func NewGemini(ctx context.Context, apiKey, modelName string, timeout time.Duration, m *metrics.Collector) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Gemini{client: client, model: modelName, timeout: timeout, metrics: m}, nil
}

func (g *Gemini) Generate(ctx context.Context, operation, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	return g.finish(operation, resp, err)
}

// Chat sends history followed by message. Turns with role "assistant" or
// "model" are attributed to the model, everything else to the user.
func (g *Gemini) Chat(ctx context.Context, system string, history []model.ChatTurn, message string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contents := make([]*genai.Content, 0, len(history)+1)
	for _, turn := range history {
		contents = append(contents, genai.NewContentFromText(turn.Content, turnRole(turn.Role)))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	return g.finish("chat", resp, err)
}

func turnRole(role string) genai.Role {
	if role == "assistant" || role == "model" {
		return genai.RoleModel
	}
	return genai.RoleUser
}

func (g *Gemini) finish(operation string, resp *genai.GenerateContentResponse, err error) (string, error) {
	if err != nil {
		g.observe(operation, "error")
		return "", fmt.Errorf("%w: %s: %v", ErrUpstream, operation, err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		g.observe(operation, "empty")
		return "", fmt.Errorf("%w: %s: empty response", ErrUpstream, operation)
	}
	g.observe(operation, "ok")
	return text, nil
}

func (g *Gemini) observe(operation, status string) {
	if g.metrics != nil {
		g.metrics.AIRequests.WithLabelValues(operation, status).Inc()
	}
}

// Disabled stands in for the model when no API key is configured. Every call
// fails with ErrNotConfigured, so gated features never consume quota.
type Disabled struct{}

func (Disabled) Generate(context.Context, string, string) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) Chat(context.Context, string, []model.ChatTurn, string) (string, error) {
	return "", ErrNotConfigured
}
