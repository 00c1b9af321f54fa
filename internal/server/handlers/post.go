// internal/server/handlers/post.go

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"socialtrack/internal/domain/analytics"
	"socialtrack/internal/domain/post"
	"socialtrack/internal/service/window"
)

// PostHandler handles project and post HTTP requests
type PostHandler struct {
	projects post.ProjectStore
	posts    post.Store
	loader   WindowLoader
	engine   analytics.Engine
	cache    ViewCache
	logger   *zap.Logger
}

// NewPostHandler creates a new post handler
func NewPostHandler(
	projects post.ProjectStore,
	posts post.Store,
	loader WindowLoader,
	engine analytics.Engine,
	cache ViewCache,
	logger *zap.Logger,
) *PostHandler {
	return &PostHandler{
		projects: projects,
		posts:    posts,
		loader:   loader,
		engine:   engine,
		cache:    cache,
		logger:   logger,
	}
}

type createProjectRequest struct {
	Name        string `json:"project_name"`
	Description string `json:"description"`
}

type deletePostsRequest struct {
	PostIDs []string `json:"post_ids"`
}

type createPostRequest struct {
	Type            post.Type `json:"post_type"`
	Date            string    `json:"post_date"`
	Time            string    `json:"post_time"`
	Caption         string    `json:"caption"`
	CaptionCategory string    `json:"caption_category"`
	Likes           int       `json:"likes"`
	Shares          int       `json:"shares"`
	Comments        int       `json:"comments"`
	Saves           int       `json:"saves"`
	Reach           int       `json:"reach"`
	FollowersGained int       `json:"followers_gained"`
	ReelLength      int       `json:"reel_length"`
	WatchTime       int       `json:"watch_time"`
	AvgViewDuration float64   `json:"avg_view_duration"`
}

// validate checks the request and returns the parsed post date
func (req createPostRequest) validate() (time.Time, error) {
	if !req.Type.Valid() {
		return time.Time{}, errors.New("invalid post type")
	}

	date, err := time.Parse(post.DateLayout, req.Date)
	if err != nil {
		return time.Time{}, errors.New("invalid post date, expected YYYY-MM-DD")
	}

	if _, err := time.Parse("15:04", req.Time); err != nil {
		return time.Time{}, errors.New("invalid post time, expected HH:MM")
	}

	for _, n := range []int{req.Likes, req.Shares, req.Comments, req.Saves, req.Reach,
		req.FollowersGained, req.ReelLength, req.WatchTime} {
		if n < 0 {
			return time.Time{}, errors.New("counts must not be negative")
		}
	}
	if req.AvgViewDuration < 0 {
		return time.Time{}, errors.New("counts must not be negative")
	}

	return date, nil
}

// ListProjects returns the owner's projects
func (h *PostHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Missing owner")
		return
	}

	projects, err := h.projects.ProjectsForOwner(r.Context(), owner)
	if err != nil {
		fail(h.logger, w, r, http.StatusInternalServerError, "Failed to list projects", err)
		return
	}

	respondWithJSON(w, http.StatusOK, projects)
}

// CreateProject creates a project for the owner
func (h *PostHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Missing owner")
		return
	}

	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondWithError(w, http.StatusBadRequest, "Project name is required")
		return
	}

	project := post.Project{
		ID:          uuid.New().String(),
		OwnerID:     owner,
		Name:        req.Name,
		Description: req.Description,
	}

	if err := h.projects.SaveProject(r.Context(), project); err != nil {
		fail(h.logger, w, r, http.StatusInternalServerError, "Failed to create project", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, project)
}

// ownedProject loads the URL project and checks it belongs to the requesting owner.
// It writes the error response itself and reports whether the caller may continue.
func (h *PostHandler) ownedProject(w http.ResponseWriter, r *http.Request) (*post.Project, bool) {
	owner, err := ownerID(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Missing owner")
		return nil, false
	}

	project, err := h.projects.GetProject(r.Context(), chi.URLParam(r, "projectID"))
	if errors.Is(err, post.ErrNotFound) || (err == nil && project.OwnerID != owner) {
		respondWithError(w, http.StatusNotFound, "Project not found")
		return nil, false
	}
	if err != nil {
		fail(h.logger, w, r, http.StatusInternalServerError, "Failed to load project", err)
		return nil, false
	}

	return project, true
}

// CreatePost logs a post, deriving its metrics and hashtags
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	project, ok := h.ownedProject(w, r)
	if !ok {
		return
	}

	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	date, err := req.validate()
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	p := post.Post{
		ID:              uuid.New().String(),
		ProjectID:       project.ID,
		Type:            req.Type,
		Date:            date,
		Time:            req.Time,
		Caption:         req.Caption,
		CaptionCategory: req.CaptionCategory,
		Likes:           req.Likes,
		Shares:          req.Shares,
		Comments:        req.Comments,
		Saves:           req.Saves,
		Reach:           req.Reach,
		FollowersGained: req.FollowersGained,
		ReelLength:      req.ReelLength,
		WatchTime:       req.WatchTime,
		AvgViewDuration: req.AvgViewDuration,
	}
	p.Metrics = h.engine.ComputeMetrics(p.Counts())
	p.Hashtags = h.engine.ExtractHashtags(p.Caption)

	if err := h.posts.SavePost(r.Context(), p); err != nil {
		fail(h.logger, w, r, http.StatusInternalServerError, "Failed to save post", err)
		return
	}

	h.invalidate(r.Context(), project.OwnerID)

	respondWithJSON(w, http.StatusCreated, p)
}

// GetPost returns a post of an owned project
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	project, ok := h.ownedProject(w, r)
	if !ok {
		return
	}

	p, err := h.posts.GetPost(r.Context(), chi.URLParam(r, "postID"))
	if errors.Is(err, post.ErrNotFound) || (err == nil && p.ProjectID != project.ID) {
		respondWithError(w, http.StatusNotFound, "Post not found")
		return
	}
	if err != nil {
		fail(h.logger, w, r, http.StatusInternalServerError, "Failed to get post", err)
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

// ListPosts lists the owner's posts, optionally for one project, sorted by the sort and order parameters
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Missing owner")
		return
	}

	win, err := h.loader.Load(r.Context(), owner, r.URL.Query().Get("project_id"))
	if errors.Is(err, window.ErrProjectNotFound) {
		respondWithError(w, http.StatusNotFound, "Project not found")
		return
	}
	if err != nil {
		fail(h.logger, w, r, http.StatusInternalServerError, "Failed to list posts", err)
		return
	}

	respondWithJSON(w, http.StatusOK, sortedPosts(r, win.Posts))
}

// ListProjectPosts lists the posts of an owned project
func (h *PostHandler) ListProjectPosts(w http.ResponseWriter, r *http.Request) {
	project, ok := h.ownedProject(w, r)
	if !ok {
		return
	}

	posts, err := h.posts.ListPosts(r.Context(), []string{project.ID})
	if err != nil {
		fail(h.logger, w, r, http.StatusInternalServerError, "Failed to list posts", err)
		return
	}
	if posts == nil {
		posts = []post.Post{}
	}

	respondWithJSON(w, http.StatusOK, sortedPosts(r, posts))
}

func sortedPosts(r *http.Request, posts []post.Post) []post.Post {
	field, desc := post.ParseSort(r.URL.Query().Get("sort"), r.URL.Query().Get("order"))
	post.SortPosts(posts, field, desc)
	return posts
}

// DeletePost deletes a post of an owned project
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	project, ok := h.ownedProject(w, r)
	if !ok {
		return
	}

	p, err := h.posts.GetPost(r.Context(), chi.URLParam(r, "postID"))
	if errors.Is(err, post.ErrNotFound) || (err == nil && p.ProjectID != project.ID) {
		respondWithError(w, http.StatusNotFound, "Post not found")
		return
	}
	if err != nil {
		fail(h.logger, w, r, http.StatusInternalServerError, "Failed to get post", err)
		return
	}

	if _, err := h.posts.DeletePosts(r.Context(), []string{p.ID}); err != nil {
		fail(h.logger, w, r, http.StatusInternalServerError, "Failed to delete post", err)
		return
	}

	h.invalidate(r.Context(), project.OwnerID)

	w.WriteHeader(http.StatusNoContent)
}

// DeletePosts deletes several posts at once. Nothing is deleted unless the owner owns every post.
func (h *PostHandler) DeletePosts(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Missing owner")
		return
	}

	var req deletePostsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ids := make([]string, 0, len(req.PostIDs))
	seen := make(map[string]struct{}, len(req.PostIDs))
	for _, id := range req.PostIDs {
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		respondWithError(w, http.StatusBadRequest, "No posts selected")
		return
	}

	owned, err := h.ownsPosts(r.Context(), owner, ids)
	if err != nil {
		fail(h.logger, w, r, http.StatusInternalServerError, "Failed to load posts", err)
		return
	}
	if !owned {
		respondWithError(w, http.StatusNotFound, "Some posts not found")
		return
	}

	deleted, err := h.posts.DeletePosts(r.Context(), ids)
	if err != nil {
		fail(h.logger, w, r, http.StatusInternalServerError, "Failed to delete posts", err)
		return
	}

	h.invalidate(r.Context(), owner)

	respondWithJSON(w, http.StatusOK, map[string]int{"deleted_count": deleted})
}

// ownsPosts reports whether every post exists and belongs to a project of owner
func (h *PostHandler) ownsPosts(ctx context.Context, owner string, ids []string) (bool, error) {
	projectOwners := make(map[string]string)

	for _, id := range ids {
		p, err := h.posts.GetPost(ctx, id)
		if errors.Is(err, post.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}

		projectOwner, ok := projectOwners[p.ProjectID]
		if !ok {
			project, err := h.projects.GetProject(ctx, p.ProjectID)
			if errors.Is(err, post.ErrNotFound) {
				return false, nil
			}
			if err != nil {
				return false, err
			}
			projectOwner = project.OwnerID
			projectOwners[p.ProjectID] = projectOwner
		}

		if projectOwner != owner {
			return false, nil
		}
	}

	return true, nil
}

// DeleteProject deletes an owned project with all of its posts
func (h *PostHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	project, ok := h.ownedProject(w, r)
	if !ok {
		return
	}

	err := h.projects.DeleteProject(r.Context(), project.ID)
	if errors.Is(err, post.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, "Project not found")
		return
	}
	if err != nil {
		fail(h.logger, w, r, http.StatusInternalServerError, "Failed to delete project", err)
		return
	}

	h.invalidate(r.Context(), project.OwnerID)

	w.WriteHeader(http.StatusNoContent)
}

func (h *PostHandler) invalidate(ctx context.Context, owner string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(ctx, owner); err != nil {
		h.logger.Warn("report cache invalidation failed", zap.String("owner_id", owner), zap.Error(err))
	}
}
