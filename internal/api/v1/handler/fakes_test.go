package handler

import (
	"context"
	"net/http"
	"sync/atomic"

	"skillpath/internal/middleware"
	"skillpath/internal/model"
	"skillpath/internal/progress"
	"skillpath/internal/quota"
	"skillpath/internal/service"
)

const testUserID = "7b0f6a4e-2f0d-4c8e-9c1e-0d5c2b3a4f11"

// asUser stands in for the JWT middleware.
func asUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), middleware.UserContextKey, testUserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type stubUsers struct {
	service.UserService
	register    func(username, email, password string) (*service.AuthResult, error)
	googleLogin func(idToken, email, username string) (*service.AuthResult, error)
	refresh     func(token string) (*service.AuthResult, error)
}

func (s *stubUsers) Register(_ context.Context, username, email, password string) (*service.AuthResult, error) {
	return s.register(username, email, password)
}

func (s *stubUsers) GoogleLogin(_ context.Context, idToken, email, username string) (*service.AuthResult, error) {
	return s.googleLogin(idToken, email, username)
}

func (s *stubUsers) Refresh(_ context.Context, token string) (*service.AuthResult, error) {
	return s.refresh(token)
}

type stubProgress struct {
	service.ProgressService
	toggled []string
}

func (s *stubProgress) Toggle(_ context.Context, userID, roadmapID, nodeID string, _ *int) (*service.ToggleResult, error) {
	s.toggled = append(s.toggled, userID+"/"+roadmapID+"/"+nodeID)
	return &service.ToggleResult{Completed: true}, nil
}

func (s *stubProgress) CompletedNodes(context.Context, string, string) ([]model.CompletedNode, error) {
	return nil, nil
}

func (s *stubProgress) Summary(context.Context, string) (progress.Summary, error) {
	return progress.Summary{}, nil
}

type stubRoadmaps struct {
	service.RoadmapService
	generate func(in service.GenerateInput) (*model.GeneratedRoadmap, quota.Status, error)
}

func (s *stubRoadmaps) Generate(_ context.Context, _ string, in service.GenerateInput) (*model.GeneratedRoadmap, quota.Status, error) {
	return s.generate(in)
}

func (s *stubRoadmaps) Get(_ context.Context, _, id string) (*model.GeneratedRoadmap, error) {
	return nil, service.ErrRoadmapNotFound
}

type stubMentor struct {
	service.MentorService
	chat func(message string, history []model.ChatTurn) (string, quota.Status, error)
}

func (s *stubMentor) Chat(_ context.Context, _, message string, history []model.ChatTurn) (string, quota.Status, error) {
	return s.chat(message, history)
}

type stubCatalog struct {
	service.CatalogService
	roadmaps map[string]*model.Roadmap
}

func (s *stubCatalog) Get(_ context.Context, id string) (*model.Roadmap, error) {
	if rm, ok := s.roadmaps[id]; ok {
		return rm, nil
	}
	return nil, service.ErrRoadmapNotFound
}

// countingSource records every upstream fetch.
type countingSource struct {
	calls    atomic.Int32
	articles []model.Article
}

func (s *countingSource) ID() string   { return "devto" }
func (s *countingSource) Name() string { return "Dev.to" }

func (s *countingSource) FetchArticles(context.Context, string, int, int) ([]model.Article, error) {
	s.calls.Add(1)
	return s.articles, nil
}

// noUsers answers every lookup as if the account had been deleted.
type noUsers struct{}

func (noUsers) GetUserByID(context.Context, string) (*model.User, error) { return nil, nil }

// countingModel records calls to the generative model.
type countingModel struct {
	calls atomic.Int32
}

func (m *countingModel) Generate(context.Context, string, string) (string, error) {
	m.calls.Add(1)
	return "", nil
}

func (m *countingModel) Chat(context.Context, string, []model.ChatTurn, string) (string, error) {
	m.calls.Add(1)
	return "", nil
}
