package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Abin-1409/fuel-swift/internal/config"
	"github.com/Abin-1409/fuel-swift/internal/events"
	"github.com/Abin-1409/fuel-swift/internal/infra"
	"github.com/Abin-1409/fuel-swift/internal/migrations"
	"github.com/Abin-1409/fuel-swift/internal/server"
	"github.com/Abin-1409/fuel-swift/internal/users"
)

func main() {
	config.LoadDotEnvUp(8)

	logger, _ := zap.NewProduction()
	if os.Getenv("APP_ENV") == "local" {
		logger, _ = zap.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}

	runner, err := migrations.NewRunner(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("migrations init failed", zap.Error(err))
	}
	if err := runner.Up(0); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}
	_ = runner.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	infraDeps, err := infra.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("infra init failed", zap.Error(err))
	}
	defer infraDeps.Close()

	if err := infra.EnsureAdmin(ctx, cfg, users.NewRepo(infraDeps.PG), logger); err != nil {
		logger.Fatal("admin bootstrap failed", zap.Error(err))
	}

	hub := events.NewHub(logger)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.NewRouter(cfg, infraDeps, hub, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	// websocket connections are hijacked, Shutdown does not wait for them
	hub.Close()
	_ = httpServer.Shutdown(shutdownCtx)
	logger.Info("http server stopped")
}
