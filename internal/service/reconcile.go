package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fillog/blog-service/internal/metrics"
	"github.com/fillog/blog-service/internal/model"
	"github.com/fillog/blog-service/internal/repository"
	"go.uber.org/zap"
)

const maxRepairAttempts = 10

type ReconcileReport struct {
	JournalProcessed int `json:"journalProcessed"`
	JournalRepaired  int `json:"journalRepaired"`
	JournalRequeued  int `json:"journalRequeued"`
	JournalDropped   int `json:"journalDropped"`
	LikesFixed       int `json:"likesFixed"`
	DanglingRemoved  int `json:"danglingRemoved"`
}

type reconciler struct {
	logger *zap.Logger
	repo   *repository.Repository
}

func newReconciler(logger *zap.Logger, repo *repository.Repository) Reconciler {
	return &reconciler{
		logger: logger,
		repo:   repo,
	}
}

// Run replays the repair journal and, when fullScan is set, rebuilds every
// post's likes from the users' likedArticles and drops comment ids whose
// record is gone.
func (r *reconciler) Run(ctx context.Context, fullScan bool) (*ReconcileReport, error) {
	report := &ReconcileReport{}

	if err := r.drainJournal(ctx, report); err != nil {
		return report, err
	}

	if fullScan {
		if err := r.scan(ctx, report); err != nil {
			return report, err
		}
	}

	r.logger.Info("reconciliation finished",
		zap.Bool("full_scan", fullScan),
		zap.Int("journal_processed", report.JournalProcessed),
		zap.Int("journal_repaired", report.JournalRepaired),
		zap.Int("journal_requeued", report.JournalRequeued),
		zap.Int("likes_fixed", report.LikesFixed),
		zap.Int("dangling_removed", report.DanglingRemoved),
	)

	return report, nil
}

// drainJournal handles at most the tasks present when it starts, so tasks it
// requeues are left for the next run.
func (r *reconciler) drainJournal(ctx context.Context, report *ReconcileReport) error {
	pending, err := r.repo.Journal.Len(ctx)
	if err != nil {
		r.logger.Sugar().Errorf("failed to read repair journal length: %s", err.Error())
		return StoreUnavailable(err)
	}

	for range pending {
		task, err := r.repo.Journal.Next(ctx)
		if err != nil {
			r.logger.Sugar().Errorf("failed to read repair task: %s", err.Error())
			return StoreUnavailable(err)
		}
		if task == nil {
			return nil
		}
		report.JournalProcessed++

		if err := r.repair(ctx, task); err != nil {
			metrics.Repairs.WithLabelValues(string(task.Kind), "failed").Inc()

			task.Attempts++
			if task.Attempts >= maxRepairAttempts {
				r.logger.Error("dropping repair task", zap.String("task_id", task.ID), zap.Int("attempts", task.Attempts), zap.Error(err))
				report.JournalDropped++
				continue
			}

			r.logger.Sugar().Warnf("failed to repair task(%s), requeueing: %s", task.ID, err.Error())
			if err := r.repo.Journal.Record(ctx, *task); err != nil {
				r.logger.Error("failed to requeue repair task", zap.String("task_id", task.ID), zap.Error(err))
				return StoreUnavailable(err)
			}
			report.JournalRequeued++
			continue
		}

		metrics.Repairs.WithLabelValues(string(task.Kind), "repaired").Inc()
		report.JournalRepaired++
	}

	return nil
}

func (r *reconciler) repair(ctx context.Context, task *model.RepairTask) error {
	switch task.Kind {
	case model.RepairLike:
		return r.repairLike(ctx, task)
	case model.RepairComment:
		return r.repairComment(ctx, task)
	default:
		return fmt.Errorf("unknown repair kind %q", task.Kind)
	}
}

// repairLike makes the post side match the user's likedArticles.
func (r *reconciler) repairLike(ctx context.Context, task *model.RepairTask) error {
	_, err := r.reconcileLike(ctx, task.PostID, task.UserID)
	return err
}

// reconcileLike re-reads both documents and makes the post side of the pair
// agree with the user side. It reports whether anything was written.
func (r *reconciler) reconcileLike(ctx context.Context, postID string, userID string) (bool, error) {
	post, err := r.repo.Post.FindByID(ctx, postID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	user, err := r.repo.User.FindByID(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}

	switch {
	case post == nil && user == nil:
		return false, nil
	case post == nil:
		return r.repo.User.RemoveLikedArticle(ctx, userID, postID)
	case user == nil:
		if !post.IsLikedBy(userID) {
			return false, nil
		}
		_, err := r.repo.Post.RemoveLiker(ctx, postID, userID)
		return err == nil, err
	case user.HasLiked(post.ID) && !post.IsLikedBy(user.ID):
		_, err := r.repo.Post.AddLiker(ctx, post.ID, user.ID)
		return err == nil, err
	case !user.HasLiked(post.ID) && post.IsLikedBy(user.ID):
		_, err := r.repo.Post.RemoveLiker(ctx, post.ID, user.ID)
		return err == nil, err
	}

	return false, nil
}

// repairComment finishes removing a comment that was half created or half
// deleted: it is detached from its post and parent and its record deleted.
func (r *reconciler) repairComment(ctx context.Context, task *model.RepairTask) error {
	if _, err := r.repo.Post.RemoveComment(ctx, task.PostID, task.CommentID); err != nil {
		return err
	}
	if task.ParentID != "" {
		if _, err := r.repo.Comment.RemoveReReply(ctx, task.ParentID, task.CommentID); err != nil {
			return err
		}
	}
	if err := r.repo.Comment.Delete(ctx, task.CommentID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	return nil
}

func (r *reconciler) scan(ctx context.Context, report *ReconcileReport) error {
	users, err := r.repo.User.FindAll(ctx)
	if err != nil {
		r.logger.Sugar().Errorf("failed to find users: %s", err.Error())
		return StoreUnavailable(err)
	}
	posts, err := r.repo.Post.FindAll(ctx, model.PostFilter{})
	if err != nil {
		r.logger.Sugar().Errorf("failed to find posts: %s", err.Error())
		return StoreUnavailable(err)
	}

	exists := make(map[string]bool, len(posts))
	for _, post := range posts {
		exists[post.ID] = true
	}

	likers := make(map[string]map[string]bool)
	for _, user := range users {
		for _, postID := range user.LikedArticles {
			if !exists[postID] {
				if err := r.fixLike(ctx, postID, user.ID, report); err != nil {
					return err
				}
				continue
			}
			if likers[postID] == nil {
				likers[postID] = make(map[string]bool)
			}
			likers[postID][user.ID] = true
		}
	}

	for _, post := range posts {
		if err := r.scanLikes(ctx, post, likers[post.ID], report); err != nil {
			return err
		}
		if err := r.scanComments(ctx, post, report); err != nil {
			return err
		}
	}

	return nil
}

// scanLikes compares the post against the users snapshot. The snapshots are
// taken at different times, so every mismatch is re-checked against the
// current documents before anything is written.
func (r *reconciler) scanLikes(ctx context.Context, post *model.Post, want map[string]bool, report *ReconcileReport) error {
	have := make(map[string]bool, len(post.Likes))
	for _, userID := range post.Likes {
		have[userID] = true
		if want[userID] {
			continue
		}
		if err := r.fixLike(ctx, post.ID, userID, report); err != nil {
			return err
		}
	}

	for userID := range want {
		if have[userID] {
			continue
		}
		if err := r.fixLike(ctx, post.ID, userID, report); err != nil {
			return err
		}
	}

	return nil
}

func (r *reconciler) fixLike(ctx context.Context, postID string, userID string, report *ReconcileReport) error {
	changed, err := r.reconcileLike(ctx, postID, userID)
	if err != nil {
		r.logger.Sugar().Errorf("failed to reconcile like of post(%s) by user(%s): %s", postID, userID, err.Error())
		return StoreUnavailable(err)
	}
	if changed {
		metrics.Repairs.WithLabelValues(string(model.RepairLike), "scan").Inc()
		report.LikesFixed++
	}
	return nil
}

func (r *reconciler) scanComments(ctx context.Context, post *model.Post, report *ReconcileReport) error {
	if len(post.Comments) == 0 {
		return nil
	}

	found, err := r.repo.Comment.FindByIDs(ctx, post.Comments)
	if err != nil {
		r.logger.Sugar().Errorf("failed to find comments of post(%s): %s", post.ID, err.Error())
		return StoreUnavailable(err)
	}
	present := make(map[string]bool, len(found))
	for _, comment := range found {
		present[comment.ID] = true
	}

	for _, commentID := range post.Comments {
		if present[commentID] {
			continue
		}
		if _, err := r.repo.Post.RemoveComment(ctx, post.ID, commentID); err != nil {
			r.logger.Sugar().Errorf("failed to remove dangling comment(%s) from post(%s): %s", commentID, post.ID, err.Error())
			return StoreUnavailable(err)
		}
		metrics.Repairs.WithLabelValues(string(model.RepairComment), "scan").Inc()
		report.DanglingRemoved++
	}

	return nil
}
