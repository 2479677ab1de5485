package server

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httpapi "github.com/coraldesk/studio/backend/internal/api/http"
	"github.com/coraldesk/studio/backend/internal/api/middleware"
	"github.com/coraldesk/studio/backend/internal/api/ws"
	"github.com/coraldesk/studio/backend/internal/domain/workspace"
	"github.com/coraldesk/studio/backend/internal/infrastructure/config"
	"github.com/coraldesk/studio/backend/internal/infrastructure/logging"
	"github.com/coraldesk/studio/backend/internal/infrastructure/monitoring"
	"github.com/coraldesk/studio/backend/internal/storage"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router     *gin.Engine
	workspaces *workspace.Manager
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	// Initialize logger
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stdout"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	logger.Info("Initializing studio state server",
		zap.String("port", cfg.Server.Port),
		zap.String("data_dir", cfg.Storage.DataDir),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()

	// Select the snapshot store. An empty data dir keeps everything
	// in memory, which is what tests and ephemeral deployments want.
	var store storage.Store
	if cfg.Storage.DataDir == "" {
		store = storage.NewMemory()
		logger.Info("Using in-memory snapshot store")
	} else {
		fileStore, err := storage.NewFile(cfg.Storage.DataDir, cfg.Storage.Compress)
		if err != nil {
			return nil, fmt.Errorf("failed to open snapshot store: %w", err)
		}
		store = fileStore
		logger.Info("Using file snapshot store",
			zap.String("dir", cfg.Storage.DataDir),
			zap.Bool("compress", cfg.Storage.Compress),
		)
	}

	loader := storage.NewLoader(store, logger).WithMetrics(metrics)
	workspaces := workspace.NewManager(loader, logger).
		WithMetrics(metrics).
		WithRecentsCap(cfg.Tabs.RecentsCap)

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	// Create handlers
	handlers := httpapi.NewHandlers(workspaces, logger)
	metricsHandlers := httpapi.NewMetricsHandlers(metrics)
	wsHandler := ws.NewHandler(workspaces, logger).WithMetrics(metrics)

	// Register routes
	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Workspace bindings
	router.GET("/workspaces", handlers.ListWorkspaces)
	router.POST("/workspaces/:ref/rebind", handlers.RebindWorkspace)
	router.DELETE("/workspaces/:ref", handlers.ReleaseWorkspace)

	// Tab state
	router.GET("/workspaces/:ref/tabs", handlers.GetTabs)
	router.POST("/workspaces/:ref/tabs", handlers.OpenTab)
	router.PATCH("/workspaces/:ref/tabs/:id", handlers.UpdateTab)
	router.DELETE("/workspaces/:ref/tabs/:id", handlers.CloseTab)
	router.DELETE("/workspaces/:ref/tabs", handlers.CloseAllTabs)
	router.POST("/workspaces/:ref/tabs/:id/activate", handlers.ActivateTab)
	router.POST("/workspaces/:ref/tabs/:id/promote", handlers.PromoteTab)
	router.POST("/workspaces/:ref/tabs/promote-active", handlers.PromoteActiveTab)
	router.POST("/workspaces/:ref/tabs/reorder", handlers.ReorderTabs)
	router.POST("/workspaces/:ref/tabs/drag-end", handlers.DragEnd)
	router.POST("/workspaces/:ref/tabs/remove", handlers.RemoveTabs)

	// Recently visited
	router.GET("/workspaces/:ref/recents", handlers.ListRecents)
	router.POST("/workspaces/:ref/recents/remove", handlers.RemoveRecents)
	router.DELETE("/workspaces/:ref/recents", handlers.ClearRecents)

	// WebSocket
	router.GET("/stream", wsHandler.HandleConnection)

	// Metrics endpoints
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/metrics/json", metricsHandlers.GetMetricsJSON)

	logger.Info("Server initialized successfully")

	return &Server{
		router:     router,
		workspaces: workspaces,
		logger:     logger,
		config:     cfg,
		metrics:    metrics,
	}, nil
}

// Run starts the HTTP server
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	// Release live bindings; each mutation already persisted, so this
	// only tears down subscriptions
	for _, ref := range s.workspaces.Refs() {
		s.workspaces.Release(ref)
	}

	// Sync logger before exit
	s.logger.Sync()

	return nil
}
