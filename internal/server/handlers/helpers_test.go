package handlers

import (
	"context"
	"encoding/json"
	"io"
	"slices"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"socialtrack/internal/domain/post"
	"socialtrack/internal/service/insights"
	"socialtrack/internal/service/window"
)

var handlerNow = time.Date(2026, time.March, 18, 15, 30, 0, 0, time.UTC)

type memoryProjects struct {
	mu       sync.Mutex
	projects map[string]post.Project
	posts    *memoryPosts
	err      error
}

func (m *memoryProjects) SaveProject(ctx context.Context, p post.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.projects[p.ID] = p
	return nil
}

func (m *memoryProjects) GetProject(ctx context.Context, id string) (*post.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.projects[id]
	if !ok {
		return nil, post.ErrNotFound
	}
	return &p, nil
}

// DeleteProject removes the project and, like the database cascade, its posts
func (m *memoryProjects) DeleteProject(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.projects[id]; !ok {
		return post.ErrNotFound
	}
	delete(m.projects, id)
	if m.posts != nil {
		m.posts.deleteProject(id)
	}
	return nil
}

func (m *memoryProjects) ProjectsForOwner(ctx context.Context, ownerID string) ([]post.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []post.Project{}
	for _, id := range []string{"p1", "p2", "p3"} {
		if p, ok := m.projects[id]; ok && p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryProjects) Owners(ctx context.Context) ([]string, error) {
	return nil, nil
}

type memoryPosts struct {
	mu    sync.Mutex
	posts []post.Post
	err   error
}

func (m *memoryPosts) SavePost(ctx context.Context, p post.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.posts = append(m.posts, p)
	return nil
}

func (m *memoryPosts) GetPost(ctx context.Context, id string) (*post.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, post.ErrNotFound
}

func (m *memoryPosts) ListPosts(ctx context.Context, projectIDs []string) ([]post.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []post.Post{}
	for _, p := range m.posts {
		for _, id := range projectIDs {
			if p.ProjectID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (m *memoryPosts) DeletePosts(ctx context.Context, ids []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	kept := m.posts[:0]
	deleted := 0
	for _, p := range m.posts {
		if slices.Contains(ids, p.ID) {
			deleted++
			continue
		}
		kept = append(kept, p)
	}
	m.posts = kept
	return deleted, nil
}

func (m *memoryPosts) deleteProject(projectID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.posts[:0]
	for _, p := range m.posts {
		if p.ProjectID != projectID {
			kept = append(kept, p)
		}
	}
	m.posts = kept
}

type memoryCache struct {
	mu          sync.Mutex
	values      map[string][]byte
	gets        int
	hits        int
	invalidated []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	data, ok := c.values[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(data, dst)
}

func (c *memoryCache) Set(ctx context.Context, key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = data
	return nil
}

func (c *memoryCache) Invalidate(ctx context.Context, ownerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, ownerID)
	c.values = map[string][]byte{}
	return nil
}

type fixture struct {
	projects *memoryProjects
	posts    *memoryPosts
	cache    *memoryCache
	router   chi.Router
}

// newFixture wires the handlers to in-memory stores and the real analytics engine.
// alice owns p1 and p2, bob owns p3.
func newFixture() *fixture {
	f := &fixture{
		projects: &memoryProjects{projects: map[string]post.Project{
			"p1": {ID: "p1", OwnerID: "alice", Name: "Main"},
			"p2": {ID: "p2", OwnerID: "alice", Name: "Side"},
			"p3": {ID: "p3", OwnerID: "bob", Name: "Bob"},
		}},
		posts: &memoryPosts{},
		cache: newMemoryCache(),
	}
	f.projects.posts = f.posts

	engine := insights.NewEngine(insights.DefaultEngineConfig())
	loader := window.NewLoader(f.projects, f.posts)
	logger := zap.NewNop()

	analyticsHandler := NewAnalyticsHandler(engine, loader, f.cache, func() time.Time { return handlerNow }, logger)
	postHandler := NewPostHandler(f.projects, f.posts, loader, engine, f.cache, logger)

	r := chi.NewRouter()
	r.Get("/projects", postHandler.ListProjects)
	r.Post("/projects", postHandler.CreateProject)
	r.Delete("/projects/{projectID}", postHandler.DeleteProject)
	r.Get("/projects/{projectID}/posts", postHandler.ListProjectPosts)
	r.Post("/projects/{projectID}/posts", postHandler.CreatePost)
	r.Get("/projects/{projectID}/posts/{postID}", postHandler.GetPost)
	r.Delete("/projects/{projectID}/posts/{postID}", postHandler.DeletePost)
	r.Get("/posts", postHandler.ListPosts)
	r.Post("/posts/delete", postHandler.DeletePosts)
	r.Get("/analytics/trends", analyticsHandler.GetTrends)
	r.Get("/analytics/recommendations", analyticsHandler.GetRecommendations)
	r.Get("/analytics/alerts", analyticsHandler.GetAlerts)
	r.Get("/analytics/predict", analyticsHandler.GetPrediction)
	r.Get("/analytics/report", analyticsHandler.GetReport)
	r.Get("/analytics/dashboard", analyticsHandler.GetDashboard)
	f.router = r

	return f
}

func (f *fixture) do(t *testing.T, method, target, owner string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if owner != "" {
		req.Header.Set(OwnerHeader, owner)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

// seed adds an Image post to projectID with the given date and score
func (f *fixture) seed(id, projectID, date string, score float64, opts ...func(*post.Post)) {
	d, _ := time.Parse(post.DateLayout, date)
	p := post.Post{
		ID:        id,
		ProjectID: projectID,
		Type:      post.TypeImage,
		Date:      d,
		Time:      "12:00",
		Metrics:   post.Metrics{PerformanceScore: score, EngagementRateWeighted: score / 4},
	}
	for _, opt := range opts {
		opt(&p)
	}
	f.posts.posts = append(f.posts.posts, p)
}
