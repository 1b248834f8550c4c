package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jaki95/songinfo/config"
	"github.com/jaki95/songinfo/internal/catalog"
	"github.com/jaki95/songinfo/internal/resolver"
	"github.com/jaki95/songinfo/internal/storage"
)

type SongResolver interface {
	Resolve(ctx context.Context, artist, title string) (*resolver.Result, error)
}

// CacheStats exposes the size of the in-memory cache tier.
type CacheStats interface {
	Len() int
}

// Dependencies are built once at startup and shared by every request.
type Dependencies struct {
	Resolver SongResolver
	// Searcher is nil when catalog credentials are not configured
	Searcher catalog.Searcher
	Store    storage.Store
	Cache    CacheStats
}

// Server handles HTTP requests for song lookups
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	deps   Dependencies
}

// New creates a new HTTP server instance
func New(cfg *config.Config, deps Dependencies) *Server {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery(), requestLogger(), corsMiddleware())

	server := &Server{
		cfg:    cfg,
		router: router,
		deps:   deps,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)

	api := s.router.Group("/api")
	{
		api.GET("/search", s.search)
		api.GET("/song-info", s.songInfo)
		api.GET("/features/:trackId", s.features)
	}

	s.router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, ErrorResponse{Error: codeMethodNotAllowed})
	})
	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: codeNotFound})
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves HTTP on port until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
