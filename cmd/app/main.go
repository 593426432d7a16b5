package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fillog/blog-service/internal/config"
	"github.com/fillog/blog-service/internal/handler"
	"github.com/fillog/blog-service/internal/server"
	"github.com/fillog/blog-service/internal/service"
	"github.com/fillog/blog-service/internal/storage"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	logger, _ := zap.NewProduction()

	cfg, err := loadConfig(logger, ".")
	if err != nil {
		_ = logger.Sync()
		os.Exit(1)
	}
	if cfg.IsDevelopment() {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	store, err := storage.Open(ctx, logger, cfg)
	if err != nil {
		logger.Sugar().Panicf("failed to open storage: %s", err.Error())
	}

	services := service.New(logger, store.Repo, service.OptionsFromConfig(cfg))
	handlers := handler.New(logger, services, cfg.ClientOrigin)

	srv := server.New(config.ServerConfig{
		Port:           cfg.Port,
		Handler:        handlers.InitRoutes(),
		MaxHeaderBytes: 1 << 20,
		ReadTimeout:    time.Second * 10,
		WriteTimeout:   time.Second * 10,
	})
	go func() {
		if err := srv.Run(); err != nil {
			logger.Sugar().Panicf("failed to run http server: %s", err.Error())
		}
	}()

	logger.Sugar().Infof("Server started on port %s", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Server shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("failed to shut down http server: %s", err.Error())
	}
	if err := store.Close(shutdownCtx); err != nil {
		logger.Sugar().Errorf("failed to close storage: %s", err.Error())
	}
}

// loadConfig logs why the configuration was rejected before returning it.
func loadConfig(logger *zap.Logger, dir string) (*config.Config, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		logger.Error("failed to load config", zap.Error(err))
		return nil, err
	}

	return cfg, nil
}
