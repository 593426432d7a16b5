package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/fillog/blog-service/internal/config"
	"github.com/fillog/blog-service/internal/service"
	"github.com/fillog/blog-service/internal/storage"
	"go.uber.org/zap"
)

func main() {
	full := flag.Bool("full", false, "also scan every post and user for drift")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load(".")
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	store, err := storage.Open(ctx, logger, cfg)
	if err != nil {
		logger.Fatal("failed to open storage", zap.Error(err))
	}
	defer store.Close(context.Background())

	services := service.New(logger, store.Repo, service.OptionsFromConfig(cfg))

	report, err := services.Reconciler.Run(ctx, *full)
	if err != nil {
		logger.Error("reconciliation failed", zap.Error(err))
	}
	if report != nil {
		_ = json.NewEncoder(os.Stdout).Encode(report)
	}
	if err != nil {
		os.Exit(1)
	}
}
