package service

import (
	"context"
	"slices"
	"sort"

	"github.com/fillog/blog-service/internal/model"
	"github.com/fillog/blog-service/internal/repository"
	"go.uber.org/zap"
)

const commentBatchSize = 50

type threadService struct {
	logger *zap.Logger
	repo   *repository.Repository
}

func newThreadService(logger *zap.Logger, repo *repository.Repository) Thread {
	return &threadService{
		logger: logger,
		repo:   repo,
	}
}

// PostComments returns a cursor over the post's top-level comments in the
// order they were added. Nested replies are not expanded.
func (s *threadService) PostComments(ctx context.Context, postID string) (*CommentCursor, error) {
	post, err := lookup(s.logger, "post", postID, func() (*model.Post, error) {
		return s.repo.Post.FindByID(ctx, postID)
	})
	if err != nil {
		return nil, err
	}

	return newCommentCursor(post.Comments, func(ctx context.Context, ids []string) ([]*model.Comment, error) {
		comments, err := s.repo.Comment.FindByIDs(ctx, ids)
		if err != nil {
			s.logger.Sugar().Errorf("failed to find comments of post(%s): %s", postID, err.Error())
			return nil, StoreUnavailable(err)
		}
		return comments, nil
	}), nil
}

// ReReplies returns the children of commentID, newest first.
func (s *threadService) ReReplies(ctx context.Context, commentID string) ([]*model.Comment, error) {
	parent, err := lookup(s.logger, "comment", commentID, func() (*model.Comment, error) {
		return s.repo.Comment.FindByID(ctx, commentID)
	})
	if err != nil {
		return nil, err
	}

	// Reversed so that equal timestamps keep the most recently appended first.
	ids := slices.Clone(parent.ReReplies)
	slices.Reverse(ids)

	children, err := Collect(ctx, newCommentCursor(ids, func(ctx context.Context, ids []string) ([]*model.Comment, error) {
		comments, err := s.repo.Comment.FindByIDs(ctx, ids)
		if err != nil {
			s.logger.Sugar().Errorf("failed to find re-replies of comment(%s): %s", commentID, err.Error())
			return nil, StoreUnavailable(err)
		}
		return comments, nil
	}))
	if err != nil {
		return nil, err
	}

	sort.SliceStable(children, func(i, j int) bool {
		return children[i].CreatedAt.After(children[j].CreatedAt)
	})

	return children, nil
}

// CommentCursor walks a list of comment ids, loading them in batches as it
// goes. Ids whose record no longer exists are skipped. A cursor cannot be
// rewound.
type CommentCursor struct {
	ids     []string
	fetch   func(ctx context.Context, ids []string) ([]*model.Comment, error)
	batch   []*model.Comment
	current *model.Comment
	err     error
}

func newCommentCursor(ids []string, fetch func(ctx context.Context, ids []string) ([]*model.Comment, error)) *CommentCursor {
	return &CommentCursor{
		ids:   slices.Clone(ids),
		fetch: fetch,
	}
}

// Next advances the cursor. It returns false when the ids are exhausted or a
// lookup failed; check Err afterwards.
func (c *CommentCursor) Next(ctx context.Context) bool {
	if c.err != nil {
		return false
	}

	for len(c.batch) == 0 {
		if len(c.ids) == 0 {
			c.current = nil
			return false
		}

		n := min(commentBatchSize, len(c.ids))
		chunk := c.ids[:n]
		c.ids = c.ids[n:]

		found, err := c.fetch(ctx, chunk)
		if err != nil {
			c.err = err
			c.current = nil
			return false
		}

		byID := make(map[string]*model.Comment, len(found))
		for _, comment := range found {
			byID[comment.ID] = comment
		}
		for _, id := range chunk {
			if comment, ok := byID[id]; ok {
				c.batch = append(c.batch, comment)
			}
		}
	}

	c.current = c.batch[0]
	c.batch = c.batch[1:]

	return true
}

func (c *CommentCursor) Comment() *model.Comment {
	return c.current
}

func (c *CommentCursor) Err() error {
	return c.err
}

// Collect drains the cursor.
func Collect(ctx context.Context, cursor *CommentCursor) ([]*model.Comment, error) {
	comments := []*model.Comment{}
	for cursor.Next(ctx) {
		comments = append(comments, cursor.Comment())
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return comments, nil
}
