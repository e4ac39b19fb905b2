package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/utafrali/reputation-service/internal/app"
	"github.com/utafrali/reputation-service/internal/config"
	"github.com/utafrali/reputation-service/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New("reputation-worker", cfg.LogLevel)
	log.Info("starting push worker",
		slog.String("environment", cfg.Environment),
		slog.String("consumer_group", cfg.ConsumerGroup),
	)

	worker, err := app.NewWorker(cfg, log)
	if err != nil {
		log.Error("failed to initialize worker", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := worker.Run(ctx); err != nil {
		log.Error("worker error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("push worker stopped")
}
