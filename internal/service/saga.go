package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fillog/blog-service/internal/metrics"
	"github.com/fillog/blog-service/internal/model"
	"github.com/fillog/blog-service/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type sagaStep struct {
	name string
	undo func(ctx context.Context) error
}

// saga tracks the side effects of a multi-entity operation so they can be
// undone in reverse order when a later step fails.
type saga struct {
	op      string
	logger  *zap.Logger
	journal repository.Journal
	timeout time.Duration
	task    model.RepairTask
	steps   []sagaStep
}

func newSaga(op string, logger *zap.Logger, journal repository.Journal, timeout time.Duration, task model.RepairTask) *saga {
	task.Op = op
	return &saga{
		op:      op,
		logger:  logger,
		journal: journal,
		timeout: timeout,
		task:    task,
	}
}

func (s *saga) done(name string, undo func(ctx context.Context) error) {
	s.steps = append(s.steps, sagaStep{name: name, undo: undo})
}

func (s *saga) completed(n int) []string {
	names := make([]string, 0, n)
	for _, step := range s.steps[:n] {
		names = append(names, step.name)
	}
	return names
}

// detached outlives the request so a client disconnect cannot skip rollback.
func (s *saga) detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
}

// retry runs fn and, if it fails, runs it once more on a detached context.
func (s *saga) retry(ctx context.Context, fn func(ctx context.Context) error) error {
	err := fn(ctx)
	if err == nil {
		return nil
	}

	s.logger.Sugar().Warnf("%s: retrying after error: %s", s.op, err.Error())

	rctx, cancel := s.detached(ctx)
	defer cancel()

	return fn(rctx)
}

// abort undoes every completed step. It returns a store error when the
// rollback succeeded and a *PartialFailureError when it did not.
func (s *saga) abort(ctx context.Context, failed string, cause error) error {
	rctx, cancel := s.detached(ctx)
	defer cancel()

	for i := len(s.steps) - 1; i >= 0; i-- {
		step := s.steps[i]
		if err := step.undo(rctx); err != nil {
			s.logger.Sugar().Errorf("%s: failed to undo %s: %s", s.op, step.name, err.Error())
			return s.partial(rctx, s.completed(i+1), failed, cause)
		}
	}

	s.logger.Warn("operation rolled back",
		zap.String("op", s.op),
		zap.String("failed", failed),
		zap.Error(cause),
	)
	metrics.EngagementOps.WithLabelValues(s.op, "rolled_back").Inc()

	if errors.Is(cause, repository.ErrNotFound) {
		return s.notFound(failed)
	}
	return StoreUnavailable(cause)
}

// notFound names the entity a failed step was writing to. Steps are named
// "<entity>.<field>"; a comment step writes to the parent comment.
func (s *saga) notFound(failed string) *Error {
	entity, _, _ := strings.Cut(failed, ".")
	switch entity {
	case "post":
		return NotFound("post", s.task.PostID)
	case "comment":
		return NotFound("comment", s.task.ParentID)
	default:
		return NotFound("user", s.task.UserID)
	}
}

// partial journals a repair task for side effects that are still applied.
func (s *saga) partial(ctx context.Context, completed []string, failed string, cause error) error {
	task := s.task
	task.ID = uuid.NewString()
	task.Completed = completed
	task.Failed = failed
	task.CreatedAt = time.Now()

	fields := []zap.Field{
		zap.String("op", s.op),
		zap.String("task_id", task.ID),
		zap.String("post_id", task.PostID),
		zap.String("user_id", task.UserID),
		zap.String("comment_id", task.CommentID),
		zap.Strings("completed", completed),
		zap.String("failed", failed),
		zap.Error(cause),
	}

	if err := s.journal.Record(ctx, task); err != nil {
		s.logger.Error("failed to journal repair task", append(fields, zap.NamedError("journal_error", err))...)
		task.ID = ""
	} else {
		s.logger.Error("operation partially applied", fields...)
	}

	metrics.PartialFailures.WithLabelValues(s.op).Inc()
	metrics.EngagementOps.WithLabelValues(s.op, "partial").Inc()

	return &PartialFailureError{
		Op:        s.op,
		TaskID:    task.ID,
		Completed: completed,
		Failed:    failed,
		Err:       cause,
	}
}
