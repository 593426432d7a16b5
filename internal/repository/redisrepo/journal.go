package redisrepo

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fillog/blog-service/internal/model"
	"github.com/fillog/blog-service/internal/repository"
	"github.com/redis/go-redis/v9"
)

type journalRepo struct {
	rdb *redis.Client
}

func NewJournal(rdb *redis.Client) repository.Journal {
	return &journalRepo{
		rdb: rdb,
	}
}

func (r *journalRepo) Record(ctx context.Context, task model.RepairTask) error {
	taskJSON, err := json.Marshal(task)
	if err != nil {
		return err
	}

	return r.rdb.RPush(ctx, REPAIR_QUEUE_KEY, taskJSON).Err()
}

func (r *journalRepo) Next(ctx context.Context) (*model.RepairTask, error) {
	value, err := r.rdb.LPop(ctx, REPAIR_QUEUE_KEY).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var task model.RepairTask
	if err := json.Unmarshal([]byte(value), &task); err != nil {
		return nil, err
	}

	return &task, nil
}

func (r *journalRepo) Len(ctx context.Context) (int64, error) {
	return r.rdb.LLen(ctx, REPAIR_QUEUE_KEY).Result()
}
