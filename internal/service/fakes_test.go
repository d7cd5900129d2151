package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"skillpath/internal/mailer"
	"skillpath/internal/model"
	"skillpath/internal/progress"
	"skillpath/internal/quota"
	"skillpath/internal/repository"
)

type fakeUsageRepo struct {
	mu       sync.Mutex
	counters map[string][]model.UsageCounter
}

func newFakeUsageRepo() *fakeUsageRepo {
	return &fakeUsageRepo{counters: map[string][]model.UsageCounter{}}
}

func (f *fakeUsageRepo) key(userID string, feature model.Feature) string {
	return userID + "|" + string(feature)
}

func (f *fakeUsageRepo) GetCounters(_ context.Context, userID string, feature model.Feature, _ time.Time) ([]model.UsageCounter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.UsageCounter(nil), f.counters[f.key(userID, feature)]...), nil
}

func (f *fakeUsageRepo) Consume(ctx context.Context, userID string, feature model.Feature, now time.Time, persist repository.PersistFunc) (quota.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := f.key(userID, feature)
	st := quota.Check(f.counters[k], quota.Cap(feature), now)
	if !st.CanUse {
		return st, repository.ErrQuotaExceeded
	}
	if persist != nil {
		if err := persist(ctx, nil); err != nil {
			return st, err
		}
	}
	f.counters[k] = quota.Increment(f.counters[k], now)
	return quota.Check(f.counters[k], quota.Cap(feature), now), nil
}

func (f *fakeUsageRepo) fill(userID string, feature model.Feature, now time.Time, n int) {
	f.counters[f.key(userID, feature)] = []model.UsageCounter{{Day: quota.DayKey(now), Count: n}}
}

type fakeAI struct {
	responses map[string]string
	errs      map[string]error
	calls     []string
	history   []model.ChatTurn
	system    string
}

func (f *fakeAI) Generate(_ context.Context, operation, _ string) (string, error) {
	f.calls = append(f.calls, operation)
	if err := f.errs[operation]; err != nil {
		return "", err
	}
	return f.responses[operation], nil
}

func (f *fakeAI) Chat(_ context.Context, system string, history []model.ChatTurn, _ string) (string, error) {
	f.calls = append(f.calls, "chat")
	f.system, f.history = system, history
	if err := f.errs["chat"]; err != nil {
		return "", err
	}
	return f.responses["chat"], nil
}

// ownedStore is a tiny per-user list keyed by generated ids.
type ownedStore[T any] struct {
	seq   int
	items map[string]map[string]T
	order []string
}

func (s *ownedStore[T]) put(userID string, item T) string {
	if s.items == nil {
		s.items = map[string]map[string]T{}
	}
	s.seq++
	id := fmt.Sprintf("id-%d", s.seq)
	if s.items[userID] == nil {
		s.items[userID] = map[string]T{}
	}
	s.items[userID][id] = item
	s.order = append(s.order, id)
	return id
}

func (s *ownedStore[T]) list(userID string) []T {
	out := []T{}
	for _, id := range s.order {
		if v, ok := s.items[userID][id]; ok {
			out = append(out, v)
		}
	}
	return out
}

func (s *ownedStore[T]) get(userID, id string) (T, bool) {
	v, ok := s.items[userID][id]
	return v, ok
}

func (s *ownedStore[T]) del(userID, id string) bool {
	if _, ok := s.items[userID][id]; !ok {
		return false
	}
	delete(s.items[userID], id)
	return true
}

type fakeGeneratedRepo struct{ store ownedStore[model.GeneratedRoadmap] }

func (f *fakeGeneratedRepo) Insert(_ context.Context, _ repository.DBTX, g *model.GeneratedRoadmap) error {
	g.ID = fmt.Sprintf("id-%d", f.store.seq+1)
	f.store.put(g.UserID, *g)
	return nil
}
func (f *fakeGeneratedRepo) ListByUser(_ context.Context, userID string) ([]model.GeneratedRoadmap, error) {
	return f.store.list(userID), nil
}
func (f *fakeGeneratedRepo) Get(_ context.Context, userID, id string) (*model.GeneratedRoadmap, error) {
	if v, ok := f.store.get(userID, id); ok {
		return &v, nil
	}
	return nil, nil
}
func (f *fakeGeneratedRepo) Delete(_ context.Context, userID, id string) (bool, error) {
	return f.store.del(userID, id), nil
}

type fakeSuggestionRepo struct{ store ownedStore[model.SavedSuggestion] }

func (f *fakeSuggestionRepo) Insert(_ context.Context, _ repository.DBTX, s *model.SavedSuggestion) error {
	s.ID = fmt.Sprintf("id-%d", f.store.seq+1)
	f.store.put(s.UserID, *s)
	return nil
}
func (f *fakeSuggestionRepo) ListByUser(_ context.Context, userID string) ([]model.SavedSuggestion, error) {
	return f.store.list(userID), nil
}
func (f *fakeSuggestionRepo) Get(_ context.Context, userID, id string) (*model.SavedSuggestion, error) {
	if v, ok := f.store.get(userID, id); ok {
		return &v, nil
	}
	return nil, nil
}
func (f *fakeSuggestionRepo) Delete(_ context.Context, userID, id string) (bool, error) {
	return f.store.del(userID, id), nil
}

type fakeCareerRepo struct{ store ownedStore[model.CareerPath] }

func (f *fakeCareerRepo) Insert(_ context.Context, _ repository.DBTX, p *model.CareerPath) error {
	p.ID = fmt.Sprintf("id-%d", f.store.seq+1)
	f.store.put(p.UserID, *p)
	return nil
}
func (f *fakeCareerRepo) ListByUser(_ context.Context, userID string) ([]model.CareerPath, error) {
	return f.store.list(userID), nil
}
func (f *fakeCareerRepo) Get(_ context.Context, userID, id string) (*model.CareerPath, error) {
	if v, ok := f.store.get(userID, id); ok {
		return &v, nil
	}
	return nil, nil
}
func (f *fakeCareerRepo) Delete(_ context.Context, userID, id string) (bool, error) {
	return f.store.del(userID, id), nil
}

type fakeProgressRepo struct {
	byUser map[string][]model.RoadmapProgress
}

func (f *fakeProgressRepo) List(_ context.Context, userID string) ([]model.RoadmapProgress, error) {
	return f.byUser[userID], nil
}
func (f *fakeProgressRepo) Get(_ context.Context, userID, roadmapID string) (*model.RoadmapProgress, error) {
	return progress.Find(f.byUser[userID], roadmapID), nil
}
func (f *fakeProgressRepo) Toggle(_ context.Context, userID, roadmapID, nodeID string, totalNodes *int, now time.Time) (bool, error) {
	if f.byUser == nil {
		f.byUser = map[string][]model.RoadmapProgress{}
	}
	list, completed := progress.Toggle(f.byUser[userID], roadmapID, nodeID, totalNodes, now)
	f.byUser[userID] = list
	return completed, nil
}

type fakeBookmarkRepo struct {
	byUser map[string][]model.Bookmark
}

func (f *fakeBookmarkRepo) Toggle(_ context.Context, userID, roadmapID string) (bool, error) {
	if f.byUser == nil {
		f.byUser = map[string][]model.Bookmark{}
	}
	list := f.byUser[userID]
	for i, b := range list {
		if b.RoadmapID == roadmapID {
			f.byUser[userID] = append(list[:i], list[i+1:]...)
			return false, nil
		}
	}
	f.byUser[userID] = append(list, model.Bookmark{RoadmapID: roadmapID, CreatedAt: time.Now()})
	return true, nil
}
func (f *fakeBookmarkRepo) List(_ context.Context, userID string) ([]model.Bookmark, error) {
	return f.byUser[userID], nil
}
func (f *fakeBookmarkRepo) Exists(_ context.Context, userID, roadmapID string) (bool, error) {
	for _, b := range f.byUser[userID] {
		if b.RoadmapID == roadmapID {
			return true, nil
		}
	}
	return false, nil
}

type fakeUserRepo struct {
	users []*model.User
}

// usersWith returns a store holding one account per id.
func usersWith(ids ...string) *fakeUserRepo {
	f := &fakeUserRepo{}
	for _, id := range ids {
		f.users = append(f.users, &model.User{ID: id, Username: id, Email: id + "@example.com"})
	}
	return f
}

func (f *fakeUserRepo) find(match func(u *model.User) bool) *model.User {
	for _, u := range f.users {
		if match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (f *fakeUserRepo) stored(id string) *model.User {
	for _, u := range f.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (f *fakeUserRepo) CreateUser(_ context.Context, u *model.User) error {
	if f.find(func(x *model.User) bool { return x.Email == u.Email || strings.EqualFold(x.Username, u.Username) }) != nil {
		return repository.ErrDuplicateUser
	}
	u.ID = fmt.Sprintf("user-%d", len(f.users)+1)
	cp := *u
	f.users = append(f.users, &cp)
	return nil
}
func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.ID == id }), nil
}
func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.Email == email }), nil
}
func (f *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return strings.EqualFold(u.Username, username) }), nil
}
func (f *fakeUserRepo) GetUserByResetToken(_ context.Context, token string, now time.Time) (*model.User, error) {
	return f.find(func(u *model.User) bool {
		return u.ResetPasswordToken != nil && *u.ResetPasswordToken == token && u.ResetPasswordExpires.After(now)
	}), nil
}
func (f *fakeUserRepo) SetRefreshToken(_ context.Context, id string, token *string) error {
	f.stored(id).RefreshToken = token
	return nil
}
func (f *fakeUserRepo) SetResetToken(_ context.Context, id, token string, expires time.Time) error {
	u := f.stored(id)
	u.ResetPasswordToken, u.ResetPasswordExpires = &token, &expires
	return nil
}
func (f *fakeUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	u := f.stored(id)
	u.PasswordHash, u.ResetPasswordToken, u.ResetPasswordExpires = hash, nil, nil
	return nil
}
func (f *fakeUserRepo) LinkGoogleID(_ context.Context, id, googleID string) error {
	f.stored(id).GoogleID = &googleID
	return nil
}

type fakeRoadmapRepo struct {
	roadmaps []model.Roadmap
	slugs    map[string]string
}

func (f *fakeRoadmapRepo) match(pred func(r model.Roadmap) bool) *model.Roadmap {
	for _, r := range f.roadmaps {
		if pred(r) {
			cp := r
			return &cp
		}
	}
	return nil
}
func (f *fakeRoadmapRepo) GetBySlug(_ context.Context, slug string) (*model.Roadmap, error) {
	return f.match(func(r model.Roadmap) bool { return r.Slug != "" && r.Slug == slug }), nil
}
func (f *fakeRoadmapRepo) GetByID(_ context.Context, id string) (*model.Roadmap, error) {
	return f.match(func(r model.Roadmap) bool { return r.ID == id }), nil
}
func (f *fakeRoadmapRepo) GetByName(_ context.Context, name string) (*model.Roadmap, error) {
	return f.match(func(r model.Roadmap) bool { return strings.EqualFold(r.Name, name) }), nil
}
func (f *fakeRoadmapRepo) ListWithoutSlug(_ context.Context) ([]model.Roadmap, error) {
	var out []model.Roadmap
	for _, r := range f.roadmaps {
		if r.Slug == "" {
			out = append(out, r)
		}
	}
	return out, nil
}
func (f *fakeRoadmapRepo) SetSlug(_ context.Context, id, slug string) error {
	for i := range f.roadmaps {
		if f.roadmaps[i].Slug == slug {
			return repository.ErrDuplicateSlug
		}
	}
	for i := range f.roadmaps {
		if f.roadmaps[i].ID == id {
			f.roadmaps[i].Slug = slug
		}
	}
	return nil
}

type fakeGoogle struct {
	identity *GoogleIdentity
	err      error
}

func (f *fakeGoogle) Verify(context.Context, string) (*GoogleIdentity, error) {
	return f.identity, f.err
}

type fakeMail struct {
	sent []mailer.Message
}

func (f *fakeMail) Enqueue(_ context.Context, msg mailer.Message) error {
	f.sent = append(f.sent, msg)
	return nil
}

type fakeFetcher struct {
	articles []model.Article
	calls    int
	tags     []string
	limit    int
}

func (f *fakeFetcher) FetchMixed(_ context.Context, tags []string, limit, _ int) []model.Article {
	f.calls++
	f.tags, f.limit = tags, limit
	out := append([]model.Article(nil), f.articles...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].PublishedAt.After(out[j].PublishedAt) })
	return out
}

func (f *fakeFetcher) Sources() []model.SourceInfo {
	return []model.SourceInfo{{ID: "devto", Name: "Dev.to"}, {ID: "medium", Name: "Medium"}}
}
