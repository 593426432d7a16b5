package memory

import (
	"context"
	"sort"
	"time"

	"github.com/fillog/blog-service/internal/model"
	"github.com/fillog/blog-service/internal/repository"
)

type postRepo struct {
	store
	posts map[string]*model.Post
}

func newPostRepo() *postRepo {
	return &postRepo{posts: make(map[string]*model.Post)}
}

func copyPost(p *model.Post) *model.Post {
	c := *p
	c.Images = clone(p.Images)
	c.Likes = clone(p.Likes)
	c.Comments = clone(p.Comments)
	return &c
}

func (r *postRepo) Create(ctx context.Context, post model.Post) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.posts[post.ID]; exists {
		return nil, repository.ErrDuplicate
	}
	r.posts[post.ID] = copyPost(&post)

	return copyPost(&post), nil
}

func (r *postRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	return copyPost(post), nil
}

func (r *postRepo) FindAll(ctx context.Context, filter model.PostFilter) ([]*model.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	posts := []*model.Post{}
	for _, post := range r.posts {
		if filter.Category != "" && post.Category != filter.Category {
			continue
		}
		if filter.AuthorID != "" && post.Author.ID != filter.AuthorID {
			continue
		}
		posts = append(posts, copyPost(post))
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})

	return posts, nil
}

func (r *postRepo) Update(ctx context.Context, id string, update model.PostUpdate) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	if update.Title != nil {
		post.Title = *update.Title
	}
	if update.Category != nil {
		post.Category = *update.Category
	}
	if update.Text != nil {
		post.Text = *update.Text
	}
	if update.MovieID != nil {
		movieID := *update.MovieID
		post.MovieID = &movieID
	}
	if update.ThumbIndex != nil {
		post.ThumbIndex = *update.ThumbIndex
	}
	if update.Images != nil {
		post.Images = clone(update.Images)
	}
	post.UpdatedAt = time.Now()

	return copyPost(post), nil
}

func (r *postRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.posts, id)

	return nil
}

func (r *postRepo) AddLiker(ctx context.Context, postID string, userID string) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[postID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !post.IsLikedBy(userID) {
		post.Likes = append(post.Likes, userID)
	}

	return copyPost(post), nil
}

func (r *postRepo) RemoveLiker(ctx context.Context, postID string, userID string) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[postID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	post.Likes, _ = remove(post.Likes, userID)

	return copyPost(post), nil
}

func (r *postRepo) AppendComment(ctx context.Context, postID string, commentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[postID]
	if !ok {
		return repository.ErrNotFound
	}
	post.Comments = append(post.Comments, commentID)

	return nil
}

func (r *postRepo) RemoveComment(ctx context.Context, postID string, commentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[postID]
	if !ok {
		return false, nil
	}

	var removed bool
	post.Comments, removed = remove(post.Comments, commentID)

	return removed, nil
}
