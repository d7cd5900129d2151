package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"skillpath/internal/ai"
	"skillpath/internal/content"
	"skillpath/internal/model"
	"skillpath/internal/quota"
	"skillpath/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, register func(*http.ServeMux), method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	mux := http.NewServeMux()
	register(mux)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestSmartFeedUnknownCategoryFetchesNothing(t *testing.T) {
	src := &countingSource{}
	merger := content.NewMerger([]content.Source{src}, zerolog.Nop(), nil)
	h := NewContentHandler(service.NewContentService(merger), &stubCatalog{}, zerolog.Nop())

	rec, body := serve(t, func(mux *http.ServeMux) { h.RegisterRoutes(mux, asUser) },
		http.MethodGet, "/content/smart-feed/underwater-basket-weaving", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Unknown roadmap category", body["message"])
	assert.Zero(t, src.calls.Load())
}

func TestSmartFeedReturnsPagination(t *testing.T) {
	src := &countingSource{articles: []model.Article{
		{Title: "Go generics", URL: "https://dev.to/a", Source: "Dev.to", PublishedAt: time.Now()},
	}}
	merger := content.NewMerger([]content.Source{src}, zerolog.Nop(), nil)
	h := NewContentHandler(service.NewContentService(merger), &stubCatalog{}, zerolog.Nop())

	rec, body := serve(t, func(mux *http.ServeMux) { h.RegisterRoutes(mux, asUser) },
		http.MethodGet, "/content/smart-feed/cybersecurity?page=2", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Positive(t, src.calls.Load())
	pagination := body["pagination"].(map[string]any)
	assert.EqualValues(t, 2, pagination["currentPage"])
	assert.Len(t, body["articles"], 1)
	assert.Len(t, body["availableSources"], 1)
}

func TestMainRoadmapNotFoundEchoesID(t *testing.T) {
	h := NewContentHandler(nil, &stubCatalog{}, zerolog.Nop())

	rec, body := serve(t, func(mux *http.ServeMux) { h.RegisterRoutes(mux, asUser) },
		http.MethodGet, "/roadmaps/no-such-thing", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "no-such-thing", body["requestedId"])
}

func TestMainRoadmapFound(t *testing.T) {
	catalog := &stubCatalog{roadmaps: map[string]*model.Roadmap{
		"frontend": {Name: "Frontend", Children: []model.RoadmapNode{{Name: "HTML"}}},
	}}
	h := NewContentHandler(nil, catalog, zerolog.Nop())

	rec, body := serve(t, func(mux *http.ServeMux) { h.RegisterRoutes(mux, asUser) },
		http.MethodGet, "/roadmaps/frontend", "")

	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "Frontend", data["name"])
	assert.Len(t, data["children"], 1)
}

func TestRegisterRejectsWeakPasswordBeforeService(t *testing.T) {
	called := false
	users := &stubUsers{register: func(string, string, string) (*service.AuthResult, error) {
		called = true
		return nil, nil
	}}
	h := NewAuthHandler(users, NewValidator(), zerolog.Nop(), false)

	rec, body := serve(t, func(mux *http.ServeMux) { h.RegisterRoutes(mux, asUser) },
		http.MethodPost, "/auth/register", `{"username":"ada","email":"ada@example.com","password":"lowercase1"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "password must contain at least one uppercase letter", body["msg"])
	assert.False(t, called)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := &stubUsers{register: func(string, string, string) (*service.AuthResult, error) {
		return nil, service.ErrEmailTaken
	}}
	h := NewAuthHandler(users, NewValidator(), zerolog.Nop(), false)

	rec, body := serve(t, func(mux *http.ServeMux) { h.RegisterRoutes(mux, asUser) },
		http.MethodPost, "/auth/register", `{"username":"ada","email":"ada@example.com","password":"Lovelace1"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User with this email already exists", body["msg"])
}

func TestGoogleLoginUsernameTakenSuggestsAlternative(t *testing.T) {
	users := &stubUsers{googleLogin: func(string, string, string) (*service.AuthResult, error) {
		return nil, &service.UsernameTakenError{Suggested: "ada417"}
	}}
	h := NewAuthHandler(users, NewValidator(), zerolog.Nop(), false)

	rec, body := serve(t, func(mux *http.ServeMux) { h.RegisterRoutes(mux, asUser) },
		http.MethodPost, "/auth/google-login", `{"email":"ada@example.com","googleId":"tok","username":"ada"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "USERNAME_TAKEN", body["code"])
	assert.Equal(t, "ada417", body["suggestedUsername"])
	assert.Equal(t, false, body["success"])
}

func TestGoogleLoginSuccessMarksNewUser(t *testing.T) {
	users := &stubUsers{googleLogin: func(string, string, string) (*service.AuthResult, error) {
		return &service.AuthResult{
			Token:        "access",
			RefreshToken: "refresh",
			User:         &model.User{ID: "u1", Username: "ada", Email: "ada@example.com"},
			IsNewUser:    true,
		}, nil
	}}
	h := NewAuthHandler(users, NewValidator(), zerolog.Nop(), false)

	rec, body := serve(t, func(mux *http.ServeMux) { h.RegisterRoutes(mux, asUser) },
		http.MethodPost, "/auth/google-login", `{"email":"ada@example.com","googleId":"tok"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "refresh", body["refreshToken"])
	user := body["user"].(map[string]any)
	assert.Equal(t, true, user["isNewUser"])
}

func TestRefreshTokenInvalid(t *testing.T) {
	users := &stubUsers{refresh: func(string) (*service.AuthResult, error) {
		return nil, service.ErrInvalidRefreshToken
	}}
	h := NewAuthHandler(users, NewValidator(), zerolog.Nop(), false)

	rec, body := serve(t, func(mux *http.ServeMux) { h.RegisterRoutes(mux, asUser) },
		http.MethodPost, "/auth/refresh-token", `{"refreshToken":"stale"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid refresh token", body["msg"])
}

func TestToggleProgressRequiresIDs(t *testing.T) {
	progressSvc := &stubProgress{}
	h := NewProgressHandler(progressSvc, nil, NewValidator(), zerolog.Nop())

	rec, body := serve(t, func(mux *http.ServeMux) { h.RegisterRoutes(mux, asUser) },
		http.MethodPost, "/progress/toggle", `{"roadmapId":"frontend"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "RoadmapId and nodeId are required", body["message"])
	assert.Empty(t, progressSvc.toggled)
}

func TestToggleProgressUsesContextUser(t *testing.T) {
	progressSvc := &stubProgress{}
	h := NewProgressHandler(progressSvc, nil, NewValidator(), zerolog.Nop())

	rec, body := serve(t, func(mux *http.ServeMux) { h.RegisterRoutes(mux, asUser) },
		http.MethodPost, "/progress/toggle", `{"roadmapId":"frontend","nodeId":"html","totalNodes":12}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["completed"])
	assert.Equal(t, []string{testUserID + "/frontend/html"}, progressSvc.toggled)
}

func TestCompletedNodesIsAnEmptyArray(t *testing.T) {
	h := NewProgressHandler(&stubProgress{}, nil, NewValidator(), zerolog.Nop())

	rec, _ := serve(t, func(mux *http.ServeMux) { h.RegisterRoutes(mux, asUser) },
		http.MethodGet, "/progress/frontend", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGenerateOverLimitIsForbidden(t *testing.T) {
	roadmaps := &stubRoadmaps{generate: func(service.GenerateInput) (*model.GeneratedRoadmap, quota.Status, error) {
		return nil, quota.Status{UsageCount: 10}, service.ErrQuotaExceeded
	}}
	h := NewRoadmapHandler(roadmaps, nil, NewValidator(), zerolog.Nop())

	rec, body := serve(t, func(mux *http.ServeMux) { h.RegisterRoutes(mux, asUser) },
		http.MethodPost, "/ai/generate", `{"input":"Go","timeframe":"3 months","level":"beginner"}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Daily limit reached", body["error"])
	assert.EqualValues(t, 10, body["usageCount"])
	assert.EqualValues(t, 0, body["remainingCount"])
}

func TestGenerateReturnsRoadmapAndUsage(t *testing.T) {
	var got service.GenerateInput
	roadmaps := &stubRoadmaps{generate: func(in service.GenerateInput) (*model.GeneratedRoadmap, quota.Status, error) {
		got = in
		return &model.GeneratedRoadmap{
			ID:       "r1",
			Feedback: "Solid plan",
			Roadmap:  model.RoadmapNode{Name: "Go", Children: []model.RoadmapNode{{Name: "Syntax", Timeframe: "Week 1"}}},
		}, quota.Status{CanUse: true, UsageCount: 1, RemainingCount: 9}, nil
	}}
	h := NewRoadmapHandler(roadmaps, nil, NewValidator(), zerolog.Nop())

	rec, body := serve(t, func(mux *http.ServeMux) { h.RegisterRoutes(mux, asUser) },
		http.MethodPost, "/ai/generate", `{"input":"Go","timeframe":"3 months","level":"beginner","contextInfo":"backend"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Go", got.Topic)
	assert.Equal(t, "backend", got.ContextInfo)
	assert.Equal(t, "r1", body["roadmapId"])
	assert.Equal(t, "Solid plan", body["aiFeedback"])
	usage := body["usageInfo"].(map[string]any)
	assert.Equal(t, true, usage["canGenerate"])
	assert.EqualValues(t, 9, usage["remainingCount"])
}

func TestGenerateFormatErrorHasDistinctCode(t *testing.T) {
	roadmaps := &stubRoadmaps{generate: func(service.GenerateInput) (*model.GeneratedRoadmap, quota.Status, error) {
		return nil, quota.Status{}, ai.ErrUpstreamFormat
	}}
	h := NewRoadmapHandler(roadmaps, nil, NewValidator(), zerolog.Nop())

	rec, body := serve(t, func(mux *http.ServeMux) { h.RegisterRoutes(mux, asUser) },
		http.MethodPost, "/ai/generate", `{"input":"Go","timeframe":"3 months","level":"beginner"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "AI_FORMAT_ERROR", body["details"])
}

func TestGeneratedRoadmapNotFound(t *testing.T) {
	h := NewRoadmapHandler(&stubRoadmaps{}, nil, NewValidator(), zerolog.Nop())

	rec, body := serve(t, func(mux *http.ServeMux) { h.RegisterRoutes(mux, asUser) },
		http.MethodGet, "/ai/generated-roadmaps/missing", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Roadmap not found", body["msg"])
}

func TestMentorChatOverLimit(t *testing.T) {
	mentor := &stubMentor{chat: func(string, []model.ChatTurn) (string, quota.Status, error) {
		return "", quota.Status{UsageCount: 10}, service.ErrQuotaExceeded
	}}
	h := NewMentorHandler(mentor, nil, NewValidator(), zerolog.Nop())

	rec, body := serve(t, func(mux *http.ServeMux) { h.RegisterRoutes(mux, asUser) },
		http.MethodPost, "/chatbot/chat", `{"message":"What next?"}`)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "USAGE_LIMIT_EXCEEDED", body["code"])
	usage := body["usage"].(map[string]any)
	assert.EqualValues(t, 0, usage["remainingCount"])
}

func TestMentorChatRejectsLongMessage(t *testing.T) {
	mentor := &stubMentor{chat: func(string, []model.ChatTurn) (string, quota.Status, error) {
		t.Fatal("chat must not be called")
		return "", quota.Status{}, nil
	}}
	h := NewMentorHandler(mentor, nil, NewValidator(), zerolog.Nop())

	long := strings.Repeat("a", 1001)
	rec, body := serve(t, func(mux *http.ServeMux) { h.RegisterRoutes(mux, asUser) },
		http.MethodPost, "/chatbot/chat", `{"message":"`+long+`"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MESSAGE_TOO_LONG", body["code"])
}

func TestMentorChatMapsHistoryRoles(t *testing.T) {
	var history []model.ChatTurn
	mentor := &stubMentor{chat: func(_ string, h []model.ChatTurn) (string, quota.Status, error) {
		history = h
		return "Keep going", quota.Status{CanUse: true, UsageCount: 1, RemainingCount: 9}, nil
	}}
	h := NewMentorHandler(mentor, nil, NewValidator(), zerolog.Nop())

	rec, body := serve(t, func(mux *http.ServeMux) { h.RegisterRoutes(mux, asUser) },
		http.MethodPost, "/chatbot/chat",
		`{"message":"And now?","conversationHistory":[{"type":"user","content":"hi"},{"type":"ai","content":"hello"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Keep going", body["response"])
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "assistant", history[1].Role)
}

func TestDeletedAccountGetsNotFound(t *testing.T) {
	gen := &countingModel{}
	users := noUsers{}
	logger := zerolog.Nop()
	validate := NewValidator()
	usage := service.NewUsageService(users, nil, logger)

	// Repositories are nil: nothing past the account lookup may run.
	routes := []interface {
		RegisterRoutes(*http.ServeMux, func(http.Handler) http.Handler)
	}{
		NewProgressHandler(service.NewProgressService(users, nil, nil, logger), service.NewBookmarkService(users, nil, logger), validate, logger),
		NewRoadmapHandler(service.NewRoadmapService(users, nil, nil, gen, nil, nil, logger), usage, validate, logger),
		NewSuggestionHandler(service.NewSuggestionService(users, nil, nil, gen, nil, logger), usage, validate, logger),
		NewCareerHandler(service.NewCareerService(users, nil, nil, gen, nil, nil, logger), usage, validate, logger),
		NewMentorHandler(service.NewMentorService(service.MentorDeps{Users: users}, gen, nil, logger), usage, validate, logger),
	}
	register := func(mux *http.ServeMux) {
		for _, h := range routes {
			h.RegisterRoutes(mux, asUser)
		}
	}

	cases := []struct {
		method, target, body, key string
	}{
		{http.MethodPost, "/progress/toggle", `{"roadmapId":"frontend","nodeId":"html"}`, "message"},
		{http.MethodGet, "/progress/frontend", "", "message"},
		{http.MethodGet, "/progress/frontend/stats", "", "message"},
		{http.MethodPost, "/bookmark", `{"roadmapId":"frontend"}`, "message"},
		{http.MethodGet, "/bookmark", "", "message"},
		{http.MethodGet, "/usage", "", "msg"},
		{http.MethodGet, "/ai/usage", "", "msg"},
		{http.MethodPost, "/ai/generate", `{"input":"Go","timeframe":"3 months","level":"beginner"}`, "msg"},
		{http.MethodGet, "/ai/generated-roadmaps", "", "msg"},
		{http.MethodGet, "/suggestions/usage", "", "error"},
		{http.MethodPost, "/suggestions/suggest", `{"answers":{"careerGoals":"Backend"}}`, "error"},
		{http.MethodGet, "/career-track/usage", "", "error"},
		{http.MethodPost, "/career-track/simulate", `{"currentSkills":["Go"],"careerGoal":"SRE","careerStage":"junior","educationLevel":"bachelor"}`, "error"},
		{http.MethodGet, "/chatbot/usage", "", "error"},
		{http.MethodPost, "/chatbot/chat", `{"message":"What next?"}`, "error"},
		{http.MethodGet, "/chatbot/insights", "", "error"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			rec, body := serve(t, register, tc.method, tc.target, tc.body)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, "User not found", body[tc.key])
		})
	}
	assert.Zero(t, gen.calls.Load())
}
