package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jaki95/songinfo/internal/storage"
)

// StartCleanupWorker periodically purges expired entries from the
// persistent store when it supports it. It stops when ctx is canceled.
func (s *Server) StartCleanupWorker(ctx context.Context) {
	purger, ok := s.deps.Store.(storage.Purger)
	if !ok {
		return
	}

	interval := s.cfg.Server.CleanupInterval
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.purgeExpired(ctx, purger)
			}
		}
	}()
	slog.Info("Cache cleanup worker started", "interval", interval)
}

func (s *Server) purgeExpired(ctx context.Context, purger storage.Purger) {
	removed, err := purger.Purge(ctx)
	if err != nil {
		slog.Error("Failed to purge expired cache entries", "error", err)
		return
	}
	if removed > 0 {
		slog.Info("Cleanup completed", "entries_removed", removed)
	}
}

func logHandlerError(c *gin.Context, msg string, err error, args ...any) {
	args = append(args, "error", err, "path", c.Request.URL.Path)
	slog.Error(msg, args...)
}
