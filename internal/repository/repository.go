package repository

import (
	"context"
	"errors"

	"github.com/fillog/blog-service/internal/model"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

type Post interface {
	Create(ctx context.Context, post model.Post) (*model.Post, error)
	FindByID(ctx context.Context, id string) (*model.Post, error)
	FindAll(ctx context.Context, filter model.PostFilter) ([]*model.Post, error)
	Update(ctx context.Context, id string, update model.PostUpdate) (*model.Post, error)
	Delete(ctx context.Context, id string) error
	// AddLiker and RemoveLiker are set operations and return the post after the change.
	AddLiker(ctx context.Context, postID string, userID string) (*model.Post, error)
	RemoveLiker(ctx context.Context, postID string, userID string) (*model.Post, error)
	AppendComment(ctx context.Context, postID string, commentID string) error
	// RemoveComment reports false when the post did not reference the comment.
	RemoveComment(ctx context.Context, postID string, commentID string) (bool, error)
}

type Comment interface {
	Create(ctx context.Context, comment model.Comment) (*model.Comment, error)
	FindByID(ctx context.Context, id string) (*model.Comment, error)
	// FindByIDs returns the comments that exist, in no particular order.
	FindByIDs(ctx context.Context, ids []string) ([]*model.Comment, error)
	AppendReReply(ctx context.Context, parentID string, childID string) error
	RemoveReReply(ctx context.Context, parentID string, childID string) (bool, error)
	Delete(ctx context.Context, id string) error
}

type User interface {
	Create(ctx context.Context, user model.User) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByAccount(ctx context.Context, account string) (*model.User, error)
	FindAll(ctx context.Context) ([]*model.User, error)
	// AddLikedArticle and RemoveLikedArticle only apply when the membership is
	// still in the expected state and report whether they did.
	AddLikedArticle(ctx context.Context, userID string, postID string) (bool, error)
	RemoveLikedArticle(ctx context.Context, userID string, postID string) (bool, error)
	AddCommentedArticle(ctx context.Context, userID string, postID string) (bool, error)
	RemoveCommentedArticle(ctx context.Context, userID string, postID string) (bool, error)
	UpdateBlogSettings(ctx context.Context, userID string, settings model.BlogSettings) (*model.User, error)
}

type Follow interface {
	// Add reports false when the edge already existed.
	Add(ctx context.Context, followerID string, followeeID string) (bool, error)
	// Remove reports false when there was no edge.
	Remove(ctx context.Context, followerID string, followeeID string) (bool, error)
	Followers(ctx context.Context, followeeID string) ([]string, error)
	Following(ctx context.Context, followerID string) ([]string, error)
}

type Guestbook interface {
	Create(ctx context.Context, guestbook model.Guestbook) (*model.Guestbook, error)
	FindByID(ctx context.Context, id string) (*model.Guestbook, error)
	FindAll(ctx context.Context) ([]*model.Guestbook, error)
	Delete(ctx context.Context, id string) error
	CreateReply(ctx context.Context, reply model.GuestbookReply) (*model.GuestbookReply, error)
	AppendReply(ctx context.Context, guestbookID string, replyID string) error
	FindReplies(ctx context.Context, ids []string) ([]*model.GuestbookReply, error)
	DeleteReplies(ctx context.Context, ids []string) error
}

// Journal is the queue of repair tasks left behind by partial failures.
type Journal interface {
	Record(ctx context.Context, task model.RepairTask) error
	// Next returns nil when the journal is empty.
	Next(ctx context.Context) (*model.RepairTask, error)
	Len(ctx context.Context) (int64, error)
}

type Repository struct {
	Post      Post
	Comment   Comment
	User      User
	Follow    Follow
	Guestbook Guestbook
	Journal   Journal
}
