package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fillog/blog-service/internal/config"
	"github.com/fillog/blog-service/internal/dto"
	"github.com/fillog/blog-service/internal/metrics"
	"github.com/fillog/blog-service/internal/model"
	"github.com/fillog/blog-service/internal/repository"
	"github.com/fillog/blog-service/pkg/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type commentService struct {
	logger *zap.Logger
	repo   *repository.Repository
	opts   Options
}

func newCommentService(logger *zap.Logger, repo *repository.Repository, opts Options) Comment {
	return &commentService{
		logger: logger,
		repo:   repo,
		opts:   opts,
	}
}

func replyTarget(input *model.ReplyTarget) (model.ReplyTarget, error) {
	if input == nil || input.Kind == "" {
		return model.ReplyTarget{Kind: model.TargetPost}, nil
	}

	switch input.Kind {
	case model.TargetPost:
		return model.ReplyTarget{Kind: model.TargetPost}, nil
	case model.TargetComment:
		if strings.TrimSpace(input.TargetID) == "" {
			return model.ReplyTarget{}, Validation("replyTarget.targetId", "is required for a nested comment")
		}
		return model.ReplyTarget{Kind: model.TargetComment, TargetID: strings.TrimSpace(input.TargetID)}, nil
	default:
		return model.ReplyTarget{}, Validation("replyTarget.kind", "must be post or comment")
	}
}

func (s *commentService) Add(ctx context.Context, postID string, actor *model.Actor, input dto.CreateCommentRequest) (*model.Comment, error) {
	const op = "comment.add"

	text := strings.TrimSpace(input.ReplyText)
	if text == "" {
		return nil, Validation("replyText", "must not be empty")
	}
	target, err := replyTarget(input.ReplyTarget)
	if err != nil {
		return nil, err
	}

	if _, err := lookup(s.logger, "post", postID, func() (*model.Post, error) {
		return s.repo.Post.FindByID(ctx, postID)
	}); err != nil {
		return nil, err
	}

	if target.IsNested() {
		parent, err := lookup(s.logger, "comment", target.TargetID, func() (*model.Comment, error) {
			return s.repo.Comment.FindByID(ctx, target.TargetID)
		})
		if err != nil {
			return nil, err
		}
		if parent.PostID != postID {
			return nil, Conflict(fmt.Sprintf("comment(%s) does not belong to post(%s)", parent.ID, postID))
		}
	}

	author, err := s.resolveAuthor(ctx, actor)
	if err != nil {
		return nil, err
	}

	comment := model.Comment{
		ID:          uuid.NewString(),
		PostID:      postID,
		ReplyTarget: target,
		Text:        text,
		ReReplies:   []string{},
		CreatedAt:   s.opts.Now(),
	}

	comment.AuthorName = strings.TrimSpace(input.UserName)
	if author != nil {
		comment.AuthorID = author.ID
		comment.AuthorName = author.UserName
	}
	if comment.AuthorName == "" {
		return nil, Validation("userName", "is required for anonymous comments")
	}

	if input.Password != "" {
		hash, err := utils.HashPassword(input.Password)
		if err != nil {
			s.logger.Sugar().Errorf("failed to hash comment password: %s", err.Error())
			return nil, StoreUnavailable(err)
		}
		comment.PasswordHash = hash
	}

	created, err := s.repo.Comment.Create(ctx, comment)
	if err != nil {
		s.logger.Sugar().Errorf("failed to create comment on post(%s): %s", postID, err.Error())
		metrics.EngagementOps.WithLabelValues(op, "error").Inc()
		return nil, StoreUnavailable(err)
	}

	sg := newSaga(op, s.logger, s.repo.Journal, s.opts.CompensationTimeout, model.RepairTask{
		Kind:      model.RepairComment,
		PostID:    postID,
		UserID:    comment.AuthorID,
		CommentID: comment.ID,
		ParentID:  target.TargetID,
	})
	sg.done("comment.create", func(ctx context.Context) error {
		if err := s.repo.Comment.Delete(ctx, comment.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return nil
	})

	if target.IsNested() {
		if err := sg.retry(ctx, func(ctx context.Context) error {
			return s.repo.Comment.AppendReReply(ctx, target.TargetID, comment.ID)
		}); err != nil {
			return nil, sg.abort(ctx, "comment.reReplies", err)
		}
		sg.done("comment.reReplies", func(ctx context.Context) error {
			_, err := s.repo.Comment.RemoveReReply(ctx, target.TargetID, comment.ID)
			return err
		})
	} else {
		if err := sg.retry(ctx, func(ctx context.Context) error {
			return s.repo.Post.AppendComment(ctx, postID, comment.ID)
		}); err != nil {
			return nil, sg.abort(ctx, "post.comments", err)
		}
		sg.done("post.comments", func(ctx context.Context) error {
			_, err := s.repo.Post.RemoveComment(ctx, postID, comment.ID)
			return err
		})
	}

	if author != nil {
		if err := sg.retry(ctx, func(ctx context.Context) error {
			_, err := s.repo.User.AddCommentedArticle(ctx, author.ID, postID)
			return err
		}); err != nil {
			return nil, sg.abort(ctx, "user.commentedArticles", err)
		}
	}

	metrics.EngagementOps.WithLabelValues(op, "ok").Inc()

	return created, nil
}

// resolveAuthor returns nil for anonymous callers and for tokens whose user
// no longer exists.
func (s *commentService) resolveAuthor(ctx context.Context, actor *model.Actor) (*model.User, error) {
	if actor == nil {
		return nil, nil
	}

	user, err := s.repo.User.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		s.logger.Sugar().Errorf("failed to find user(%s): %s", actor.UserID, err.Error())
		return nil, StoreUnavailable(err)
	}

	return user, nil
}

// Delete detaches commentID from its post (or parent comment) and deletes the
// record. Re-replies of the deleted comment are left in place.
func (s *commentService) Delete(ctx context.Context, postID string, commentID string, password string, actor *model.Actor) error {
	const op = "comment.delete"

	post, err := lookup(s.logger, "post", postID, func() (*model.Post, error) {
		return s.repo.Post.FindByID(ctx, postID)
	})
	if err != nil {
		return err
	}
	comment, err := lookup(s.logger, "comment", commentID, func() (*model.Comment, error) {
		return s.repo.Comment.FindByID(ctx, commentID)
	})
	if err != nil {
		return err
	}

	attached, err := s.isAttached(ctx, post, comment)
	if err != nil {
		return err
	}
	if !attached {
		return Conflict(fmt.Sprintf("comment(%s) is not attached to post(%s)", commentID, postID))
	}

	if err := s.authorize(comment, password, actor); err != nil {
		return err
	}

	var detached bool
	if comment.ReplyTarget.IsNested() {
		detached, err = s.repo.Comment.RemoveReReply(ctx, comment.ReplyTarget.TargetID, commentID)
	} else {
		detached, err = s.repo.Post.RemoveComment(ctx, postID, commentID)
	}
	if err != nil {
		s.logger.Sugar().Errorf("failed to detach comment(%s) from post(%s): %s", commentID, postID, err.Error())
		metrics.EngagementOps.WithLabelValues(op, "error").Inc()
		return StoreUnavailable(err)
	}
	if !detached {
		metrics.EngagementOps.WithLabelValues(op, "conflict").Inc()
		return Conflict(fmt.Sprintf("comment(%s) was already removed", commentID))
	}

	sg := newSaga(op, s.logger, s.repo.Journal, s.opts.CompensationTimeout, model.RepairTask{
		Kind:      model.RepairComment,
		PostID:    postID,
		UserID:    comment.AuthorID,
		CommentID: commentID,
		ParentID:  comment.ReplyTarget.TargetID,
	})

	if err := sg.retry(ctx, func(ctx context.Context) error {
		err := s.repo.Comment.Delete(ctx, commentID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}); err != nil {
		jctx, cancel := sg.detached(ctx)
		defer cancel()
		return sg.partial(jctx, []string{"comment.detach"}, "comment.delete", err)
	}

	metrics.EngagementOps.WithLabelValues(op, "ok").Inc()

	return nil
}

func (s *commentService) isAttached(ctx context.Context, post *model.Post, comment *model.Comment) (bool, error) {
	if comment.PostID != post.ID {
		return false, nil
	}
	if !comment.ReplyTarget.IsNested() {
		return post.HasComment(comment.ID), nil
	}

	parent, err := s.repo.Comment.FindByID(ctx, comment.ReplyTarget.TargetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		s.logger.Sugar().Errorf("failed to find comment(%s): %s", comment.ReplyTarget.TargetID, err.Error())
		return false, StoreUnavailable(err)
	}

	return parent.HasReReply(comment.ID), nil
}

// authorize lets admins and the comment's own author through. Everyone else
// needs the comment's password; passwordless comments follow the configured
// policy.
func (s *commentService) authorize(comment *model.Comment, password string, actor *model.Actor) error {
	if actor.IsAdmin() || actor.Is(comment.AuthorID) {
		return nil
	}

	if comment.HasPassword() {
		if password != "" && utils.CheckPassword(comment.PasswordHash, password) {
			return nil
		}
		return Unauthorized(ErrInvalidPassword)
	}

	if s.opts.PasswordlessDelete == config.PasswordlessDeleteAnyone {
		return nil
	}
	return Unauthorized(ErrForbidden)
}
