// cmd/api/main.go

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"socialtrack/internal/adapter/cache"
	"socialtrack/internal/adapter/storage"
	"socialtrack/internal/config"
	"socialtrack/internal/observability"
	"socialtrack/internal/server"
	"socialtrack/internal/server/handlers"
	"socialtrack/internal/service/insights"
	"socialtrack/internal/service/monitoring"
	"socialtrack/internal/service/window"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Initialize dependencies
	db, err := initDatabase(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// The event bus is optional: without it alerts are still served over HTTP
	var (
		publisher  monitoring.Publisher
		subscriber handlers.Subscriber
	)
	natsConn, err := initNATS(cfg.NATS, logger)
	if err != nil {
		logger.Warn("continuing without event bus", zap.Error(err))
	} else {
		defer natsConn.Close()
		publisher = natsConn
		subscriber = natsConn
	}

	// The report cache is optional as well
	var reportCache *cache.ReportCache
	redisClient, err := initRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Warn("continuing without report cache", zap.Error(err))
	} else if redisClient != nil {
		defer redisClient.Close()
		reportCache = cache.NewReportCache(redisClient, cfg.Redis.ReportTTL)
	}

	// Initialize storage adapters
	projectStore := storage.NewProjectStore(db)
	postStore := storage.NewPostStore(db)

	// Initialize services
	engine := insights.NewEngine(insights.EngineConfig{
		Priorities:               cfg.Analytics.Priorities,
		DashboardRecommendations: cfg.Analytics.DashboardRecommendations,
		DashboardAlerts:          cfg.Analytics.DashboardAlerts,
	})
	loader := window.NewLoader(projectStore, postStore)

	var monitor *monitoring.AlertMonitor
	if cfg.Alerts.Enabled {
		monitor = monitoring.NewAlertMonitor(
			projectStore,
			loader,
			engine,
			publisher,
			logger,
			monitoring.MonitorConfig{
				ScanInterval: cfg.Alerts.ScanInterval,
				EventsTopic:  cfg.Alerts.EventsTopic,
			},
		)

		if err := monitor.Start(ctx); err != nil {
			logger.Fatal("failed to start alert monitor", zap.Error(err))
		}
	}

	// Initialize HTTP server
	httpServer := server.NewServer(
		cfg.Server,
		server.Dependencies{
			Engine:      engine,
			Loader:      loader,
			Projects:    projectStore,
			Posts:       postStore,
			Cache:       reportCache,
			Bus:         subscriber,
			EventsTopic: cfg.Alerts.EventsTopic,
		},
		logger,
	)

	// Start HTTP server
	go func() {
		logger.Info("starting HTTP server", zap.String("host", cfg.Server.Host), zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	logger.Info("shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Shutdown HTTP server
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// Stop alert monitor
	if monitor != nil {
		if err := monitor.Stop(shutdownCtx); err != nil {
			logger.Error("alert monitor shutdown error", zap.Error(err))
		}
	}

	logger.Info("shutdown complete")
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig, logger *zap.Logger) (*nats.Conn, error) {
	options := []nats.Option{
		nats.Name("socialtrack-api"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}

// Initialize Redis connection. An empty URL leaves the cache disabled.
func initRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	return cache.NewClient(ctx, cfg.URL)
}
