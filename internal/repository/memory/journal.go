package memory

import (
	"context"

	"github.com/fillog/blog-service/internal/model"
)

type journal struct {
	store
	tasks []model.RepairTask
}

func newJournal() *journal {
	return &journal{}
}

func (j *journal) Record(ctx context.Context, task model.RepairTask) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	task.Completed = clone(task.Completed)
	j.tasks = append(j.tasks, task)

	return nil
}

func (j *journal) Next(ctx context.Context) (*model.RepairTask, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if len(j.tasks) == 0 {
		return nil, nil
	}
	task := j.tasks[0]
	j.tasks = j.tasks[1:]

	return &task, nil
}

func (j *journal) Len(ctx context.Context) (int64, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	return int64(len(j.tasks)), nil
}
