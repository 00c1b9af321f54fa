// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"socialtrack/internal/config"
	"socialtrack/internal/domain/analytics"
	"socialtrack/internal/domain/post"
	"socialtrack/internal/server/handlers"
)

// Dependencies are the collaborators the HTTP layer is wired to
type Dependencies struct {
	Engine      analytics.Engine
	Loader      handlers.WindowLoader
	Projects    post.ProjectStore
	Posts       post.Store
	Cache       handlers.ViewCache
	Bus         handlers.Subscriber
	EventsTopic string
	Clock       func() time.Time
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(cfg config.ServerConfig, deps Dependencies, logger *zap.Logger) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", handlers.OwnerHeader},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Create handler dependencies
	analyticsHandler := handlers.NewAnalyticsHandler(deps.Engine, deps.Loader, deps.Cache, deps.Clock, logger)
	postHandler := handlers.NewPostHandler(deps.Projects, deps.Posts, deps.Loader, deps.Engine, deps.Cache, logger)

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	// Routes
	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(timeout))

		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		// API version
		r.Route("/v1", func(r chi.Router) {
			// Projects and posts API
			r.Route("/projects", func(r chi.Router) {
				r.Get("/", postHandler.ListProjects)
				r.Post("/", postHandler.CreateProject)
				r.Delete("/{projectID}", postHandler.DeleteProject)
				r.Get("/{projectID}/posts", postHandler.ListProjectPosts)
				r.Post("/{projectID}/posts", postHandler.CreatePost)
				r.Get("/{projectID}/posts/{postID}", postHandler.GetPost)
				r.Delete("/{projectID}/posts/{postID}", postHandler.DeletePost)
			})

			// Posts across the owner's projects
			r.Route("/posts", func(r chi.Router) {
				r.Get("/", postHandler.ListPosts)
				r.Post("/delete", postHandler.DeletePosts)
			})

			// Analytics API
			r.Route("/analytics", func(r chi.Router) {
				r.Get("/trends", analyticsHandler.GetTrends)
				r.Get("/recommendations", analyticsHandler.GetRecommendations)
				r.Get("/alerts", analyticsHandler.GetAlerts)
				r.Get("/predict", analyticsHandler.GetPrediction)
				r.Get("/report", analyticsHandler.GetReport)
				r.Get("/dashboard", analyticsHandler.GetDashboard)
			})
		})
	})

	// Prometheus scrape endpoint
	router.Handle("/metrics", promhttp.Handler())

	// WebSocket endpoint for real-time alerts
	router.Get("/ws/alerts", handlers.AlertStreamHandler(deps.Bus, deps.EventsTopic, logger))

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// requestLogger logs one line per request with zap
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				logger.Info("http request",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
