package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jaki95/songinfo/config"
	"github.com/jaki95/songinfo/internal/server"
	"github.com/jaki95/songinfo/internal/service"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "./config/config.yaml", "Path to the configuration file")
	port := flag.String("port", "", "Server port (overrides config)")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		slog.Warn("Failed to load .env file", "error", err)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = config.Default()
		cfg.ApplyEnv()
	} else if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	// Setup logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := service.New(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize service", "error", err)
		return 1
	}
	defer svc.Close()

	srv := server.New(cfg, server.Dependencies{
		Resolver: svc.Resolver,
		Searcher: svc.Searcher,
		Store:    svc.Store,
		Cache:    svc.Cache,
	})
	srv.StartCleanupWorker(ctx)

	slog.Info("Starting song info API server", "port", cfg.Server.Port)
	if err := srv.Start(ctx, cfg.Server.Port); err != nil {
		slog.Error("Server failed", "error", err)
		return 1
	}
	return 0
}
