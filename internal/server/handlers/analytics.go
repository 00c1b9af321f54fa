// internal/server/handlers/analytics.go

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"socialtrack/internal/adapter/cache"
	"socialtrack/internal/domain/analytics"
	"socialtrack/internal/domain/post"
	"socialtrack/internal/observability"
	"socialtrack/internal/service/insights"
	"socialtrack/internal/service/window"
)

// WindowLoader builds the post window of an owner
type WindowLoader interface {
	Load(ctx context.Context, ownerID, projectID string) (post.Window, error)
}

// ViewCache stores computed views per owner
type ViewCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context, ownerID string) error
}

// Prediction defaults for parameters the client leaves out
const (
	defaultPredictType     = post.TypeReel
	defaultPredictHour     = 12
	defaultPredictCategory = "Educational"
)

// AnalyticsHandler handles analytics HTTP requests
type AnalyticsHandler struct {
	engine analytics.Engine
	loader WindowLoader
	cache  ViewCache
	clock  func() time.Time
	logger *zap.Logger
}

// NewAnalyticsHandler creates a new analytics handler. clock may be nil to use the current UTC time.
func NewAnalyticsHandler(
	engine analytics.Engine,
	loader WindowLoader,
	cache ViewCache,
	clock func() time.Time,
	logger *zap.Logger,
) *AnalyticsHandler {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &AnalyticsHandler{
		engine: engine,
		loader: loader,
		cache:  cache,
		clock:  clock,
		logger: logger,
	}
}

// loadWindow resolves the owner and the optional project_id filter and loads the window.
// It writes the error response itself and reports whether the caller may continue.
func (h *AnalyticsHandler) loadWindow(w http.ResponseWriter, r *http.Request) (post.Window, bool) {
	owner, err := ownerID(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Missing owner")
		return post.Window{}, false
	}

	win, err := h.loader.Load(r.Context(), owner, r.URL.Query().Get("project_id"))
	if errors.Is(err, window.ErrProjectNotFound) {
		respondWithError(w, http.StatusNotFound, "Project not found")
		return post.Window{}, false
	}
	if err != nil {
		fail(h.logger, w, r, http.StatusInternalServerError, "Failed to load posts", err)
		return post.Window{}, false
	}

	observability.WindowPosts.Observe(float64(len(win.Posts)))
	return win, true
}

// parseLimit reads the optional limit parameter; -1 means no limit
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return -1, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, errors.New("invalid limit")
	}
	return limit, nil
}

// GetTrends returns the month-over-month trend report
func (h *AnalyticsHandler) GetTrends(w http.ResponseWriter, r *http.Request) {
	win, ok := h.loadWindow(w, r)
	if !ok {
		return
	}

	done := observability.TrackAnalytics("trends")
	trends := h.engine.AnalyzeTrends(win.Posts)
	done()

	respondWithJSON(w, http.StatusOK, trends)
}

// GetRecommendations returns recommendations, optionally filtered by priority and limited
func (h *AnalyticsHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	priority := analytics.Priority(r.URL.Query().Get("priority"))
	if priority != "" && priority.Rank() > analytics.PriorityLow.Rank() {
		respondWithError(w, http.StatusBadRequest, "Invalid priority")
		return
	}

	win, ok := h.loadWindow(w, r)
	if !ok {
		return
	}

	done := observability.TrackAnalytics("recommendations")
	recommendations := h.engine.GenerateRecommendations(win.Posts, h.clock())
	done()
	if priority != "" {
		recommendations = insights.FilterByPriority(recommendations, priority)
	}

	respondWithJSON(w, http.StatusOK, insights.Top(recommendations, limit))
}

// GetAlerts returns the alerts of the last week, optionally limited
func (h *AnalyticsHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	win, ok := h.loadWindow(w, r)
	if !ok {
		return
	}

	done := observability.TrackAnalytics("alerts")
	alerts := h.engine.CheckAlerts(win.Posts, h.clock())
	done()

	respondWithJSON(w, http.StatusOK, insights.TopAlerts(alerts, limit))
}

// GetPrediction predicts the performance of a candidate post
func (h *AnalyticsHandler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	candidate := analytics.Candidate{
		Type:            defaultPredictType,
		Hour:            defaultPredictHour,
		CaptionCategory: defaultPredictCategory,
	}

	if t := query.Get("type"); t != "" {
		candidate.Type = post.Type(t)
		if !candidate.Type.Valid() {
			respondWithError(w, http.StatusBadRequest, "Invalid post type")
			return
		}
	}

	if raw := query.Get("hour"); raw != "" {
		hour, err := strconv.Atoi(raw)
		if err != nil || hour < 0 || hour > 23 {
			respondWithError(w, http.StatusBadRequest, "Invalid hour")
			return
		}
		candidate.Hour = hour
	}

	if category := query.Get("category"); category != "" {
		candidate.CaptionCategory = category
	}

	win, ok := h.loadWindow(w, r)
	if !ok {
		return
	}

	done := observability.TrackAnalytics("predict")
	prediction := h.engine.PredictPerformance(candidate, win.Posts)
	done()

	respondWithJSON(w, http.StatusOK, prediction)
}

// GetReport returns the full analytics report
func (h *AnalyticsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	win, ok := h.loadWindow(w, r)
	if !ok {
		return
	}

	now := h.clock()
	key := h.viewKey("report", r, win, now)

	var report analytics.Report
	if h.fromCache(r, key, &report) {
		respondWithJSON(w, http.StatusOK, report)
		return
	}

	done := observability.TrackAnalytics("report")
	report = h.engine.BuildReport(win, now)
	done()

	h.toCache(r, key, report)
	respondWithJSON(w, http.StatusOK, report)
}

// GetDashboard returns the dashboard overview
func (h *AnalyticsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	win, ok := h.loadWindow(w, r)
	if !ok {
		return
	}

	now := h.clock()
	key := h.viewKey("dashboard", r, win, now)

	var dashboard analytics.Dashboard
	if h.fromCache(r, key, &dashboard) {
		respondWithJSON(w, http.StatusOK, dashboard)
		return
	}

	done := observability.TrackAnalytics("dashboard")
	dashboard = h.engine.Dashboard(win, now)
	done()

	h.toCache(r, key, dashboard)
	respondWithJSON(w, http.StatusOK, dashboard)
}

// viewKey scopes a cached view to the owner, project filter and evaluation day
func (h *AnalyticsHandler) viewKey(kind string, r *http.Request, win post.Window, now time.Time) string {
	scope := r.URL.Query().Get("project_id")
	if scope == "" {
		scope = "all"
	}
	return cache.Key(win.OwnerID, kind, scope, now.Format(post.DateLayout))
}

func (h *AnalyticsHandler) fromCache(r *http.Request, key string, dst any) bool {
	if h.cache == nil {
		return false
	}
	found, err := h.cache.Get(r.Context(), key, dst)
	if err != nil {
		h.logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return found
}

func (h *AnalyticsHandler) toCache(r *http.Request, key string, value any) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Set(r.Context(), key, value); err != nil {
		h.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}
}
