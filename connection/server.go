package connection

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"taskboard/controller/health"
	"taskboard/controller/task"
	"taskboard/middleware"
	"taskboard/services"
	"taskboard/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// StartServer wires the record store into the task service and serves the API.
func StartServer(cfg *Config, logger *slog.Logger) error {
	ctx := context.Background()

	recordStore, closer, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	svc := services.NewTaskService(recordStore, cfg.DatabaseID(), cfg.StoreTimeout, logger)
	if !cfg.SkipSchema {
		if err := svc.CheckSchema(ctx); err != nil {
			return fmt.Errorf("schema check failed (set SKIP_SCHEMA_CHECK=true to bypass): %w", err)
		}
	}

	gin.SetMode(cfg.GinMode)
	router := NewRouter(cfg, svc, logger)

	logger.Info("server starting", "config", cfg)
	return router.Run(":" + cfg.Port)
}

// NewRouter registers the middleware and controllers on a fresh engine.
func NewRouter(cfg *Config, svc *services.TaskService, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(logger), gin.Recovery())

	if len(cfg.CORSAllowOrigins) == 0 {
		router.Use(cors.Default())
	} else {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.CORSAllowOrigins
		router.Use(cors.New(corsConfig))
	}

	api := router.Group("/api")
	if cfg.JWTSecret != "" {
		api.Use(middleware.AccessTokenMiddleware(cfg.JWTSecret))
	}

	health.HealthController(router, api, svc)
	task.TaskController(api, svc, logger)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	return router
}

// OpenStore builds the configured record store. The returned closer is nil
// for stores that hold no connection.
func OpenStore(ctx context.Context, cfg *Config, logger *slog.Logger) (services.RecordStore, io.Closer, error) {
	switch cfg.Backend {
	case BackendFirestore:
		client, err := FBConnection(ctx, cfg.FirestoreCredentials, cfg.FirestoreProjectID)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Firestore connection successful", "collection", cfg.FirestoreCollection)
		return store.NewFirestoreStore(client, cfg.FirestoreCollection, logger), client, nil
	case BackendMemory:
		logger.Warn("using in-memory record store, data is lost on exit")
		return store.NewMemoryStore(), nil, nil
	default:
		notion := store.NewNotionStore(store.NotionConfig{
			Token:     cfg.NotionToken,
			Version:   cfg.NotionVersion,
			BaseURL:   cfg.NotionBaseURL,
			RateLimit: cfg.NotionRateLimit,
		}, &http.Client{}, logger)
		return notion, nil, nil
	}
}
