package service

import (
	"context"

	"github.com/fillog/blog-service/internal/metrics"
	"github.com/fillog/blog-service/internal/model"
	"github.com/fillog/blog-service/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type FollowResult struct {
	Following bool
	// Changed is false when the edge was already in the requested state.
	Changed   bool
	Followers []string
}

type followService struct {
	logger *zap.Logger
	repo   *repository.Repository
}

func newFollowService(logger *zap.Logger, repo *repository.Repository) Follow {
	return &followService{
		logger: logger,
		repo:   repo,
	}
}

func (s *followService) Follow(ctx context.Context, followeeID string, followerID string) (*FollowResult, error) {
	return s.apply(ctx, "follow", followeeID, followerID, s.repo.Follow.Add)
}

func (s *followService) Unfollow(ctx context.Context, followeeID string, followerID string) (*FollowResult, error) {
	return s.apply(ctx, "unfollow", followeeID, followerID, s.repo.Follow.Remove)
}

func (s *followService) apply(ctx context.Context, op string, followeeID string, followerID string, change func(ctx context.Context, followerID string, followeeID string) (bool, error)) (*FollowResult, error) {
	if followeeID == followerID {
		return nil, Validation("userID", "cannot follow yourself")
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range []string{followeeID, followerID} {
		g.Go(func() error {
			_, err := lookup(s.logger, "user", id, func() (*model.User, error) {
				return s.repo.User.FindByID(gctx, id)
			})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	changed, err := change(ctx, followerID, followeeID)
	if err != nil {
		s.logger.Sugar().Errorf("failed to %s user(%s) by user(%s): %s", op, followeeID, followerID, err.Error())
		metrics.EngagementOps.WithLabelValues(op, "error").Inc()
		return nil, StoreUnavailable(err)
	}

	followers, err := s.repo.Follow.Followers(ctx, followeeID)
	if err != nil {
		s.logger.Sugar().Errorf("failed to find followers of user(%s): %s", followeeID, err.Error())
		return nil, StoreUnavailable(err)
	}

	result := "ok"
	if !changed {
		result = "noop"
	}
	metrics.EngagementOps.WithLabelValues(op, result).Inc()

	return &FollowResult{
		Following: op == "follow",
		Changed:   changed,
		Followers: followers,
	}, nil
}

func (s *followService) Followers(ctx context.Context, userID string) ([]string, error) {
	if _, err := lookup(s.logger, "user", userID, func() (*model.User, error) {
		return s.repo.User.FindByID(ctx, userID)
	}); err != nil {
		return nil, err
	}

	followers, err := s.repo.Follow.Followers(ctx, userID)
	if err != nil {
		s.logger.Sugar().Errorf("failed to find followers of user(%s): %s", userID, err.Error())
		return nil, StoreUnavailable(err)
	}

	return followers, nil
}

func (s *followService) Following(ctx context.Context, userID string) ([]string, error) {
	if _, err := lookup(s.logger, "user", userID, func() (*model.User, error) {
		return s.repo.User.FindByID(ctx, userID)
	}); err != nil {
		return nil, err
	}

	following, err := s.repo.Follow.Following(ctx, userID)
	if err != nil {
		s.logger.Sugar().Errorf("failed to find users followed by user(%s): %s", userID, err.Error())
		return nil, StoreUnavailable(err)
	}

	return following, nil
}
