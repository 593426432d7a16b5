package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fillog/blog-service/internal/config"
	"github.com/fillog/blog-service/internal/migrate"
	"github.com/fillog/blog-service/internal/repository/mongodb"
	"github.com/fillog/blog-service/internal/storage"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load(".")
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	if cfg.StoreDriver != config.DriverMongo {
		logger.Fatal("migration needs the mongo store driver", zap.String("driver", cfg.StoreDriver))
	}

	store, err := storage.Open(ctx, logger, cfg)
	if err != nil {
		logger.Fatal("failed to open storage", zap.Error(err))
	}
	defer store.Close(context.Background())

	migrator := migrate.New(logger, mongodb.NewLegacyStore(store.Mongo), store.Repo.Follow)
	if _, err := migrator.Run(ctx); err != nil {
		logger.Error("migration failed", zap.Error(err))
		os.Exit(1)
	}
}
