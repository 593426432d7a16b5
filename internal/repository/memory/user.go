package memory

import (
	"context"
	"sort"

	"github.com/fillog/blog-service/internal/model"
	"github.com/fillog/blog-service/internal/repository"
)

type userRepo struct {
	store
	users map[string]*model.User
}

func newUserRepo() *userRepo {
	return &userRepo{users: make(map[string]*model.User)}
}

func copyUser(u *model.User) *model.User {
	c := *u
	c.LikedArticles = clone(u.LikedArticles)
	c.CommentedArticles = clone(u.CommentedArticles)
	if u.BlogSettings != nil {
		settings := *u.BlogSettings
		settings.FavoriteGenres = clone(u.BlogSettings.FavoriteGenres)
		settings.BlogCategories = clone(u.BlogSettings.BlogCategories)
		c.BlogSettings = &settings
	}
	return &c
}

func (r *userRepo) Create(ctx context.Context, user model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.ID]; exists {
		return nil, repository.ErrDuplicate
	}
	for _, existing := range r.users {
		if existing.Account == user.Account {
			return nil, repository.ErrDuplicate
		}
	}
	r.users[user.ID] = copyUser(&user)

	return copyUser(&user), nil
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	return copyUser(user), nil
}

func (r *userRepo) FindByAccount(ctx context.Context, account string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Account == account {
			return copyUser(user), nil
		}
	}

	return nil, repository.ErrNotFound
}

func (r *userRepo) FindAll(ctx context.Context) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*model.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, copyUser(user))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	return users, nil
}

func (r *userRepo) AddLikedArticle(ctx context.Context, userID string, postID string) (bool, error) {
	return r.add(userID, postID, func(u *model.User) *[]string { return &u.LikedArticles })
}

func (r *userRepo) RemoveLikedArticle(ctx context.Context, userID string, postID string) (bool, error) {
	return r.remove(userID, postID, func(u *model.User) *[]string { return &u.LikedArticles })
}

func (r *userRepo) AddCommentedArticle(ctx context.Context, userID string, postID string) (bool, error) {
	return r.add(userID, postID, func(u *model.User) *[]string { return &u.CommentedArticles })
}

func (r *userRepo) RemoveCommentedArticle(ctx context.Context, userID string, postID string) (bool, error) {
	return r.remove(userID, postID, func(u *model.User) *[]string { return &u.CommentedArticles })
}

func (r *userRepo) UpdateBlogSettings(ctx context.Context, userID string, settings model.BlogSettings) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	settings.FavoriteGenres = clone(settings.FavoriteGenres)
	settings.BlogCategories = clone(settings.BlogCategories)
	user.BlogSettings = &settings

	return copyUser(user), nil
}

func (r *userRepo) add(userID string, postID string, field func(*model.User) *[]string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return false, nil
	}

	set := field(user)
	for _, id := range *set {
		if id == postID {
			return false, nil
		}
	}
	*set = append(*set, postID)

	return true, nil
}

func (r *userRepo) remove(userID string, postID string, field func(*model.User) *[]string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return false, nil
	}

	set := field(user)
	var removed bool
	*set, removed = remove(*set, postID)

	return removed, nil
}
