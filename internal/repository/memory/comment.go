package memory

import (
	"context"

	"github.com/fillog/blog-service/internal/model"
	"github.com/fillog/blog-service/internal/repository"
)

type commentRepo struct {
	store
	comments map[string]*model.Comment
}

func newCommentRepo() *commentRepo {
	return &commentRepo{comments: make(map[string]*model.Comment)}
}

func copyComment(c *model.Comment) *model.Comment {
	cp := *c
	cp.ReReplies = clone(c.ReReplies)
	return &cp
}

func (r *commentRepo) Create(ctx context.Context, comment model.Comment) (*model.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.comments[comment.ID]; exists {
		return nil, repository.ErrDuplicate
	}
	r.comments[comment.ID] = copyComment(&comment)

	return copyComment(&comment), nil
}

func (r *commentRepo) FindByID(ctx context.Context, id string) (*model.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	comment, ok := r.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	return copyComment(comment), nil
}

func (r *commentRepo) FindByIDs(ctx context.Context, ids []string) ([]*model.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	comments := []*model.Comment{}
	for _, id := range ids {
		if comment, ok := r.comments[id]; ok {
			comments = append(comments, copyComment(comment))
		}
	}

	return comments, nil
}

func (r *commentRepo) AppendReReply(ctx context.Context, parentID string, childID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	parent, ok := r.comments[parentID]
	if !ok {
		return repository.ErrNotFound
	}
	parent.ReReplies = append(parent.ReReplies, childID)

	return nil
}

func (r *commentRepo) RemoveReReply(ctx context.Context, parentID string, childID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	parent, ok := r.comments[parentID]
	if !ok {
		return false, nil
	}

	var removed bool
	parent.ReReplies, removed = remove(parent.ReReplies, childID)

	return removed, nil
}

func (r *commentRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.comments, id)

	return nil
}
