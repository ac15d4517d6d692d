// Package api provides the HTTP surface of the chatbot: the chat endpoint,
// raw retrieval search, health, and the model listing.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/sortphy/chatgpdune/api/handlers"
	"github.com/sortphy/chatgpdune/api/middleware"
	"github.com/sortphy/chatgpdune/internal/config"
	"github.com/sortphy/chatgpdune/internal/domain"
	"github.com/sortphy/chatgpdune/internal/processor"
)

type Server struct {
	config *config.Config
	router *gin.Engine
	server *http.Server
	logger zerolog.Logger
}

func NewServer(cfg *config.Config, proc *processor.Service, models domain.ModelResolver) *Server {
	logger := NewLogger(cfg.Server)

	if cfg.Server.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s := &Server{
		config: cfg,
		router: router,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  2 * time.Minute,
		},
	}

	s.setupRoutes(proc, models)

	return s
}

func (s *Server) setupRoutes(proc *processor.Service, models domain.ModelResolver) {
	h := handlers.New(proc, models, s.config.Ollama.EmbeddingModel, s.config.Qdrant.Collection)

	s.router.GET("/health", h.Health)
	s.router.GET("/models", h.Models)

	if s.config.Server.EnableMetrics {
		s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	limited := s.router.Group("/")
	if s.config.Server.RateLimit > 0 {
		limited.Use(middleware.RateLimit(s.config.Server.RateLimit, s.config.Server.RateBurst))
	}
	limited.POST("/chat", h.Chat)
	limited.GET("/search", h.Search)
}

// Start serves until the listener fails or Stop is called.
func (s *Server) Start() error {
	s.logger.Info().
		Str("host", s.config.Server.Host).
		Int("port", s.config.Server.Port).
		Bool("metrics", s.config.Server.EnableMetrics).
		Msg("starting API server")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Stop drains in-flight requests within the given context.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info().Msg("shutting down API server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// NewLogger builds the zerolog logger configured for the server: console
// output unless JSON logging is enabled.
func NewLogger(cfg config.ServerConfig) zerolog.Logger {
	level := parseLogLevel(cfg.LogLevel)

	var logger zerolog.Logger
	if cfg.LogJSON {
		logger = zerolog.New(os.Stderr)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	return logger.Level(level).With().Timestamp().Logger()
}

func parseLogLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
