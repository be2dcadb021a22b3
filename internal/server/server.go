package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sipas-id/sipas-portal/internal/app/bootstrap"
	"github.com/sipas-id/sipas-portal/internal/app/session"
	"github.com/sipas-id/sipas-portal/internal/app/upstream"
	"github.com/sipas-id/sipas-portal/internal/pkg/config"
)

// Server holds the dependencies for the HTTP server
type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	rdb     *redis.Client
	manager *session.Manager
	client  *upstream.Client
	runner  *bootstrap.Runner
	router  http.Handler
}

// New creates a new Server instance with all dependencies
func New(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logger,
	}

	rdb, err := s.setupRedis(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to setup redis: %w", err)
	}
	s.rdb = rdb

	persister := session.NewRedisPersister(rdb, cfg.Session.CookieMaxAge)
	s.manager = session.NewManager(persister, cfg.Session, logger)

	// The global 401 hook: any unauthenticated upstream response evicts
	// the whole session, no matter which call tripped it.
	opts := []upstream.Option{
		upstream.WithOnUnauthorized(func(src upstream.TokenSource) {
			if store, ok := src.(*session.Store); ok {
				logger.Warn("Upstream rejected token, evicting session",
					zap.String("session", store.Key()))
				store.Logout()
			}
		}),
	}
	if cfg.Upstream.Timeout > 0 {
		opts = append(opts, upstream.WithTimeout(cfg.Upstream.Timeout))
	}
	s.client = upstream.New(cfg.Upstream.BaseURL, logger, opts...)

	s.runner = bootstrap.NewRunner(s.client, logger)

	return s, nil
}

// setupRedis connects the session mirror store and verifies the link.
func (s *Server) setupRedis(ctx context.Context) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     s.cfg.Redis.Addr,
		Password: s.cfg.Redis.Password,
		DB:       s.cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	s.logger.Info("Connected to redis", zap.String("addr", s.cfg.Redis.Addr))
	return rdb, nil
}

// HTTPServer creates and configures the HTTP server
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         ":" + s.cfg.ServerPort,
		Handler:      s.router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// SetRouter sets the HTTP router/handler
func (s *Server) SetRouter(router http.Handler) {
	s.router = router
}

// Manager returns the session manager
func (s *Server) Manager() *session.Manager {
	return s.manager
}

// Client returns the upstream API client
func (s *Server) Client() *upstream.Client {
	return s.client
}

// Runner returns the session bootstrap runner
func (s *Server) Runner() *bootstrap.Runner {
	return s.runner
}

// GetLogger returns the logger instance
func (s *Server) GetLogger() *zap.Logger {
	return s.logger
}

// GetConfig returns the configuration
func (s *Server) GetConfig() *config.Config {
	return s.cfg
}

// Close closes all server resources
func (s *Server) Close() {
	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			s.logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}
}
