package memory

import (
	"context"
	"time"

	"github.com/fillog/blog-service/internal/model"
)

type followRepo struct {
	store
	edges []model.Follow
}

func newFollowRepo() *followRepo {
	return &followRepo{}
}

func (r *followRepo) indexOf(followerID string, followeeID string) int {
	for i, edge := range r.edges {
		if edge.FollowerID == followerID && edge.FolloweeID == followeeID {
			return i
		}
	}
	return -1
}

func (r *followRepo) Add(ctx context.Context, followerID string, followeeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(followerID, followeeID) >= 0 {
		return false, nil
	}
	r.edges = append(r.edges, model.Follow{FollowerID: followerID, FolloweeID: followeeID, CreatedAt: time.Now()})

	return true, nil
}

func (r *followRepo) Remove(ctx context.Context, followerID string, followeeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(followerID, followeeID)
	if i < 0 {
		return false, nil
	}
	r.edges = append(r.edges[:i], r.edges[i+1:]...)

	return true, nil
}

func (r *followRepo) Followers(ctx context.Context, followeeID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := []string{}
	for _, edge := range r.edges {
		if edge.FolloweeID == followeeID {
			ids = append(ids, edge.FollowerID)
		}
	}

	return ids, nil
}

func (r *followRepo) Following(ctx context.Context, followerID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := []string{}
	for _, edge := range r.edges {
		if edge.FollowerID == followerID {
			ids = append(ids, edge.FolloweeID)
		}
	}

	return ids, nil
}
