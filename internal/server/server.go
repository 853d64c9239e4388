package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/mealmatch/backend/config"
	"github.com/pageza/mealmatch/backend/internal/api"
	"github.com/pageza/mealmatch/backend/internal/archive"
	"github.com/pageza/mealmatch/backend/internal/database"
	"github.com/pageza/mealmatch/backend/internal/middleware"
	"github.com/pageza/mealmatch/backend/internal/recipes"
	"github.com/pageza/mealmatch/backend/internal/router"
	"github.com/pageza/mealmatch/backend/internal/service"
	"github.com/pageza/mealmatch/backend/internal/store"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
	redis  *redis.Client
	logger *zap.Logger
}

// New connects the backing stores and wires the services behind the router.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.RunMigrations(db, logger); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Redis backs the recipe cache and the swipe limiter; both are optional.
	var rdb *redis.Client
	if cfg.RedisHost != "" || cfg.RedisURL != "" {
		rdb, err = database.NewRedisClient(cfg, logger)
		if err != nil {
			logger.Warn("redis unavailable, running without cache and rate limiting", zap.Error(err))
			rdb = nil
		}
	}

	provider, err := recipes.NewProvider(cfg, db, rdb, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create recipe provider: %w", err)
	}

	s3cfg, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure session archive: %w", err)
	}
	archiver := archive.FromConfig(s3cfg)
	if archiver == nil {
		logger.Info("session archive disabled")
	}

	households := service.NewHouseholdService(store.New(db), archiver, logger)
	deps := api.Dependencies{
		Tokens:         service.NewTokenService(cfg.JWTSecret),
		Households:     households,
		Matches:        service.NewMatchService(households, provider, logger),
		Recipes:        provider,
		CandidateBatch: cfg.CandidateBatch,
		Logger:         logger,
	}
	if rdb != nil {
		deps.SwipeLimiter = middleware.NewSwipeRateLimiter(rdb, cfg.SwipesPerMinute, logger)
	}

	r := router.SetupRouter(deps, cfg.CORSOrigins, logger)

	return &Server{
		router: r,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
		db:     db,
		redis:  rdb,
		logger: logger,
	}, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server and closes the backing stores.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	if s.redis != nil {
		if cerr := s.redis.Close(); cerr != nil {
			s.logger.Warn("failed to close redis", zap.Error(cerr))
		}
	}
	if sqlDB, derr := s.db.DB(); derr == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			s.logger.Warn("failed to close database", zap.Error(cerr))
		}
	}
	return err
}
