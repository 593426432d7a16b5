package memory

import (
	"context"
	"sort"

	"github.com/fillog/blog-service/internal/model"
	"github.com/fillog/blog-service/internal/repository"
)

type guestbookRepo struct {
	store
	guestbooks map[string]*model.Guestbook
	replies    map[string]*model.GuestbookReply
}

func newGuestbookRepo() *guestbookRepo {
	return &guestbookRepo{
		guestbooks: make(map[string]*model.Guestbook),
		replies:    make(map[string]*model.GuestbookReply),
	}
}

func copyGuestbook(g *model.Guestbook) *model.Guestbook {
	c := *g
	c.Replies = clone(g.Replies)
	return &c
}

func (r *guestbookRepo) Create(ctx context.Context, guestbook model.Guestbook) (*model.Guestbook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.guestbooks[guestbook.ID]; exists {
		return nil, repository.ErrDuplicate
	}
	r.guestbooks[guestbook.ID] = copyGuestbook(&guestbook)

	return copyGuestbook(&guestbook), nil
}

func (r *guestbookRepo) FindByID(ctx context.Context, id string) (*model.Guestbook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	guestbook, ok := r.guestbooks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	return copyGuestbook(guestbook), nil
}

func (r *guestbookRepo) FindAll(ctx context.Context) ([]*model.Guestbook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	guestbooks := make([]*model.Guestbook, 0, len(r.guestbooks))
	for _, guestbook := range r.guestbooks {
		guestbooks = append(guestbooks, copyGuestbook(guestbook))
	}
	sort.SliceStable(guestbooks, func(i, j int) bool {
		return guestbooks[i].CreatedAt.After(guestbooks[j].CreatedAt)
	})

	return guestbooks, nil
}

func (r *guestbookRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.guestbooks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.guestbooks, id)

	return nil
}

func (r *guestbookRepo) CreateReply(ctx context.Context, reply model.GuestbookReply) (*model.GuestbookReply, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.replies[reply.ID]; exists {
		return nil, repository.ErrDuplicate
	}
	stored := reply
	r.replies[reply.ID] = &stored

	return &reply, nil
}

func (r *guestbookRepo) AppendReply(ctx context.Context, guestbookID string, replyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	guestbook, ok := r.guestbooks[guestbookID]
	if !ok {
		return repository.ErrNotFound
	}
	guestbook.Replies = append(guestbook.Replies, replyID)

	return nil
}

func (r *guestbookRepo) FindReplies(ctx context.Context, ids []string) ([]*model.GuestbookReply, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	replies := []*model.GuestbookReply{}
	for _, id := range ids {
		if reply, ok := r.replies[id]; ok {
			c := *reply
			replies = append(replies, &c)
		}
	}

	return replies, nil
}

func (r *guestbookRepo) DeleteReplies(ctx context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		delete(r.replies, id)
	}

	return nil
}
