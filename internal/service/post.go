package service

import (
	"context"
	"errors"
	"strings"

	"github.com/fillog/blog-service/internal/dto"
	"github.com/fillog/blog-service/internal/model"
	"github.com/fillog/blog-service/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type postService struct {
	logger *zap.Logger
	repo   *repository.Repository
	opts   Options
}

func newPostService(logger *zap.Logger, repo *repository.Repository, opts Options) Post {
	return &postService{
		logger: logger,
		repo:   repo,
		opts:   opts,
	}
}

func validateThumbIndex(thumbIndex int, images []model.PostImage) error {
	if thumbIndex < 0 || (len(images) > 0 && thumbIndex >= len(images)) {
		return Validation("thumbIndex", "out of range")
	}
	return nil
}

func (s *postService) Create(ctx context.Context, actor *model.Actor, input dto.CreatePostRequest) (*model.Post, error) {
	if actor == nil {
		return nil, Unauthorized(ErrForbidden)
	}

	title := strings.TrimSpace(input.Title)
	category := strings.TrimSpace(input.Category)
	text := strings.TrimSpace(input.Text)
	switch {
	case title == "":
		return nil, Validation("title", "is required")
	case category == "":
		return nil, Validation("category", "is required")
	case text == "":
		return nil, Validation("text", "is required")
	}
	if err := validateThumbIndex(input.ThumbIndex, input.Images); err != nil {
		return nil, err
	}

	author, err := lookup(s.logger, "user", actor.UserID, func() (*model.User, error) {
		return s.repo.User.FindByID(ctx, actor.UserID)
	})
	if err != nil {
		return nil, err
	}

	images := input.Images
	if images == nil {
		images = []model.PostImage{}
	}

	now := s.opts.Now()
	post := model.Post{
		ID:         uuid.NewString(),
		Title:      title,
		Category:   category,
		MovieID:    input.MovieID,
		Text:       text,
		ThumbIndex: input.ThumbIndex,
		Images:     images,
		Likes:      []string{},
		Comments:   []string{},
		Author:     author.AsAuthor(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	createdPost, err := s.repo.Post.Create(ctx, post)
	if err != nil {
		s.logger.Sugar().Errorf("failed to create user(%s) post: %s", actor.UserID, err.Error())
		return nil, StoreUnavailable(err)
	}

	return createdPost, nil
}

func (s *postService) FindByID(ctx context.Context, id string) (*model.Post, error) {
	return lookup(s.logger, "post", id, func() (*model.Post, error) {
		return s.repo.Post.FindByID(ctx, id)
	})
}

func (s *postService) FindAll(ctx context.Context, filter model.PostFilter) ([]*model.Post, error) {
	posts, err := s.repo.Post.FindAll(ctx, filter)
	if err != nil {
		s.logger.Sugar().Errorf("failed to find posts: %s", err.Error())
		return nil, StoreUnavailable(err)
	}

	return posts, nil
}

func (s *postService) Update(ctx context.Context, actor *model.Actor, id string, update model.PostUpdate) (*model.Post, error) {
	if update.IsEmpty() {
		return nil, Validation("body", "nothing to update")
	}
	fields := []struct {
		name  string
		value *string
	}{{"title", update.Title}, {"category", update.Category}, {"text", update.Text}}
	for _, field := range fields {
		if field.value != nil && strings.TrimSpace(*field.value) == "" {
			return nil, Validation(field.name, "must not be empty")
		}
	}

	post, err := s.authorized(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	thumbIndex := post.ThumbIndex
	if update.ThumbIndex != nil {
		thumbIndex = *update.ThumbIndex
	}
	images := post.Images
	if update.Images != nil {
		images = update.Images
	}
	if err := validateThumbIndex(thumbIndex, images); err != nil {
		return nil, err
	}

	updatedPost, err := s.repo.Post.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("post", id)
		}
		s.logger.Sugar().Errorf("failed to update post(%s): %s", id, err.Error())
		return nil, StoreUnavailable(err)
	}

	return updatedPost, nil
}

// Delete removes the post record only. Its comments stay in the store and are
// no longer reachable from any thread.
func (s *postService) Delete(ctx context.Context, actor *model.Actor, id string) error {
	if _, err := s.authorized(ctx, actor, id); err != nil {
		return err
	}

	if err := s.repo.Post.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFound("post", id)
		}
		s.logger.Sugar().Errorf("failed to delete post(%s): %s", id, err.Error())
		return StoreUnavailable(err)
	}

	return nil
}

func (s *postService) authorized(ctx context.Context, actor *model.Actor, id string) (*model.Post, error) {
	if actor == nil {
		return nil, Unauthorized(ErrForbidden)
	}

	post, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.Is(post.Author.ID) {
		return nil, Unauthorized(ErrForbidden)
	}

	return post, nil
}
