package service

import (
	"context"

	"github.com/fillog/blog-service/internal/metrics"
	"github.com/fillog/blog-service/internal/model"
	"github.com/fillog/blog-service/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type LikeResult struct {
	Liked     bool
	LikeCount int
	Post      *model.Post
}

type likeService struct {
	logger *zap.Logger
	repo   *repository.Repository
	opts   Options
}

func newLikeService(logger *zap.Logger, repo *repository.Repository, opts Options) Like {
	return &likeService{
		logger: logger,
		repo:   repo,
		opts:   opts,
	}
}

// Toggle flips userID's like on postID. The user's likedArticles decides the
// direction and is written first with a membership check, so two concurrent
// toggles cannot both apply.
func (s *likeService) Toggle(ctx context.Context, postID string, userID string) (*LikeResult, error) {
	var user *model.User

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := lookup(s.logger, "post", postID, func() (*model.Post, error) {
			return s.repo.Post.FindByID(gctx, postID)
		})
		return err
	})
	g.Go(func() error {
		u, err := lookup(s.logger, "user", userID, func() (*model.User, error) {
			return s.repo.User.FindByID(gctx, userID)
		})
		user = u
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if user.HasLiked(postID) {
		return s.unlike(ctx, postID, userID)
	}
	return s.like(ctx, postID, userID)
}

func (s *likeService) like(ctx context.Context, postID string, userID string) (*LikeResult, error) {
	const op = "like"

	applied, err := s.repo.User.AddLikedArticle(ctx, userID, postID)
	if err != nil {
		s.logger.Sugar().Errorf("failed to add post(%s) to user(%s) liked articles: %s", postID, userID, err.Error())
		metrics.EngagementOps.WithLabelValues(op, "error").Inc()
		return nil, StoreUnavailable(err)
	}
	if !applied {
		metrics.EngagementOps.WithLabelValues(op, "conflict").Inc()
		return nil, Conflict("like state changed concurrently, retry")
	}

	sg := newSaga(op, s.logger, s.repo.Journal, s.opts.CompensationTimeout, model.RepairTask{
		Kind:   model.RepairLike,
		PostID: postID,
		UserID: userID,
	})
	sg.done("user.likedArticles", func(ctx context.Context) error {
		_, err := s.repo.User.RemoveLikedArticle(ctx, userID, postID)
		return err
	})

	var post *model.Post
	if err := sg.retry(ctx, func(ctx context.Context) error {
		p, err := s.repo.Post.AddLiker(ctx, postID, userID)
		post = p
		return err
	}); err != nil {
		return nil, sg.abort(ctx, "post.likes", err)
	}

	metrics.EngagementOps.WithLabelValues(op, "ok").Inc()

	return &LikeResult{Liked: true, LikeCount: post.LikeCount(), Post: post}, nil
}

func (s *likeService) unlike(ctx context.Context, postID string, userID string) (*LikeResult, error) {
	const op = "unlike"

	applied, err := s.repo.User.RemoveLikedArticle(ctx, userID, postID)
	if err != nil {
		s.logger.Sugar().Errorf("failed to remove post(%s) from user(%s) liked articles: %s", postID, userID, err.Error())
		metrics.EngagementOps.WithLabelValues(op, "error").Inc()
		return nil, StoreUnavailable(err)
	}
	if !applied {
		metrics.EngagementOps.WithLabelValues(op, "conflict").Inc()
		return nil, Conflict("like state changed concurrently, retry")
	}

	sg := newSaga(op, s.logger, s.repo.Journal, s.opts.CompensationTimeout, model.RepairTask{
		Kind:   model.RepairLike,
		PostID: postID,
		UserID: userID,
	})
	sg.done("user.likedArticles", func(ctx context.Context) error {
		_, err := s.repo.User.AddLikedArticle(ctx, userID, postID)
		return err
	})

	var post *model.Post
	if err := sg.retry(ctx, func(ctx context.Context) error {
		p, err := s.repo.Post.RemoveLiker(ctx, postID, userID)
		post = p
		return err
	}); err != nil {
		return nil, sg.abort(ctx, "post.likes", err)
	}

	metrics.EngagementOps.WithLabelValues(op, "ok").Inc()

	return &LikeResult{Liked: false, LikeCount: post.LikeCount(), Post: post}, nil
}
