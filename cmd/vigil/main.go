package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Northlight-Systems/Vigil/internal/api"
	"github.com/Northlight-Systems/Vigil/internal/config"
	"github.com/Northlight-Systems/Vigil/internal/driftwatch"
	"github.com/Northlight-Systems/Vigil/internal/ensemble"
	"github.com/Northlight-Systems/Vigil/internal/pulse"
	"github.com/Northlight-Systems/Vigil/internal/signals"
	"github.com/Northlight-Systems/Vigil/internal/store"
	"github.com/Northlight-Systems/Vigil/internal/tuner"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := store.NewPostgresStore(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database")

	// Pulse (optional)
	var pulseClient pulse.Client
	if cfg.Pulse.URL != "" {
		pc, err := pulse.NewNATSClient(ctx, cfg.Pulse.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to pulse, running without events", "error", err)
		} else {
			pulseClient = pc
			defer pc.Close()
			logger.Info("connected to pulse")
		}
	}

	// Driftwatch
	driftClient := driftwatch.NewHTTPClient(cfg.Driftwatch.URL, cfg.Driftwatch.Token)

	// Weight engine
	engine := ensemble.New(ensemble.Config{
		LearningRate: cfg.Engine.LearningRate,
		Momentum:     cfg.Engine.Momentum,
		MinWeight:    cfg.Engine.MinWeight,
		MaxWeight:    cfg.Engine.MaxWeight,
		HistoryCap:   cfg.Engine.HistoryCap,
		EvalWindow:   cfg.Engine.EvalWindow,
	}, db, driftClient, logger)

	// Signal combiner
	combiner := signals.NewCombiner(engine, logger)

	// Adaptation loop
	tn := tuner.New(engine, db, pulseClient, cfg.AdaptInterval(), logger)
	tn.Start(ctx)
	defer tn.Stop()
	logger.Info("tuner started", "adapt_interval", cfg.AdaptInterval())

	// API server
	router := api.NewRouter(engine, combiner, db, pulseClient, tn, cfg.Server.AdminToken, logger)
	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Metrics server
	metricsRouter := api.NewMetricsRouter()
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: metricsRouter,
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
