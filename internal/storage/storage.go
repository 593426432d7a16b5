// Package storage opens the backends selected by store.driver and assembles
// them into a repository.Repository.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fillog/blog-service/internal/config"
	"github.com/fillog/blog-service/internal/repository"
	"github.com/fillog/blog-service/internal/repository/memory"
	"github.com/fillog/blog-service/internal/repository/mongodb"
	"github.com/fillog/blog-service/internal/repository/postgres"
	"github.com/fillog/blog-service/internal/repository/redisrepo"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"
)

type Storage struct {
	Repo *repository.Repository
	// Mongo is nil for the memory driver.
	Mongo *mongo.Database

	client *mongo.Client
	db     *sql.DB
	rdb    *redis.Client
}

func Open(ctx context.Context, logger *zap.Logger, cfg *config.Config) (*Storage, error) {
	if cfg.StoreDriver == config.DriverMemory {
		logger.Warn("using in-memory store, data is lost on exit")
		return &Storage{Repo: memory.New()}, nil
	}

	s := &Storage{}

	client, err := mongodb.Connect(ctx, cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	s.client = client
	s.Mongo = client.Database(cfg.Mongo.Database)
	if err := mongodb.EnsureIndexes(ctx, s.Mongo); err != nil {
		s.Close(ctx)
		return nil, fmt.Errorf("failed to create mongodb indexes: %w", err)
	}
	logger.Info("Successfully connected to MongoDB")

	db, err := postgres.DB(ctx, cfg.Postgres)
	if err != nil {
		s.Close(ctx)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	s.db = db
	if err := postgres.Migrate(ctx, db); err != nil {
		s.Close(ctx)
		return nil, fmt.Errorf("failed to migrate postgres: %w", err)
	}
	logger.Info("Successfully connected to PostgreSQL")

	s.rdb = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	pong, err := s.rdb.Ping(ctx).Result()
	if err != nil {
		s.Close(ctx)
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	logger.Sugar().Infof("Successfully connected to Redis: %s", pong)

	mongoRepo := mongodb.New(s.Mongo)
	s.Repo = &repository.Repository{
		Post:      mongoRepo.Post,
		Comment:   mongoRepo.Comment,
		User:      mongoRepo.User,
		Guestbook: mongoRepo.Guestbook,
		Follow:    postgres.New(db).Follow,
		Journal:   redisrepo.NewJournal(s.rdb),
	}

	return s, nil
}

func (s *Storage) Close(ctx context.Context) error {
	var errs []error
	if s.rdb != nil {
		errs = append(errs, s.rdb.Close())
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	if s.client != nil {
		errs = append(errs, s.client.Disconnect(ctx))
	}
	return errors.Join(errs...)
}
