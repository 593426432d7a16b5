package service

import (
	"context"
	"errors"
	"time"

	"github.com/fillog/blog-service/internal/config"
	"github.com/fillog/blog-service/internal/dto"
	"github.com/fillog/blog-service/internal/model"
	"github.com/fillog/blog-service/internal/repository"
	"go.uber.org/zap"
)

type Options struct {
	JWTSecret           []byte
	TokenTTL            time.Duration
	PasswordlessDelete  string
	CompensationTimeout time.Duration
	Now                 func() time.Time
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		JWTSecret:           []byte(cfg.JWTSecret),
		TokenTTL:            cfg.TokenTTL,
		PasswordlessDelete:  cfg.PasswordlessDelete,
		CompensationTimeout: cfg.CompensationTimeout,
	}
}

func (o Options) withDefaults() Options {
	if o.TokenTTL <= 0 {
		o.TokenTTL = 24 * time.Hour
	}
	if o.PasswordlessDelete == "" {
		o.PasswordlessDelete = config.PasswordlessDeleteAuthor
	}
	if o.CompensationTimeout <= 0 {
		o.CompensationTimeout = 5 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

type Like interface {
	Toggle(ctx context.Context, postID string, userID string) (*LikeResult, error)
}

type Comment interface {
	Add(ctx context.Context, postID string, actor *model.Actor, input dto.CreateCommentRequest) (*model.Comment, error)
	Delete(ctx context.Context, postID string, commentID string, password string, actor *model.Actor) error
}

type Thread interface {
	PostComments(ctx context.Context, postID string) (*CommentCursor, error)
	ReReplies(ctx context.Context, commentID string) ([]*model.Comment, error)
}

type Follow interface {
	Follow(ctx context.Context, followeeID string, followerID string) (*FollowResult, error)
	Unfollow(ctx context.Context, followeeID string, followerID string) (*FollowResult, error)
	Followers(ctx context.Context, userID string) ([]string, error)
	Following(ctx context.Context, userID string) ([]string, error)
}

type Post interface {
	Create(ctx context.Context, actor *model.Actor, input dto.CreatePostRequest) (*model.Post, error)
	FindByID(ctx context.Context, id string) (*model.Post, error)
	FindAll(ctx context.Context, filter model.PostFilter) ([]*model.Post, error)
	Update(ctx context.Context, actor *model.Actor, id string, update model.PostUpdate) (*model.Post, error)
	Delete(ctx context.Context, actor *model.Actor, id string) error
}

type Guestbook interface {
	FindAll(ctx context.Context) ([]*model.FullGuestbook, error)
	Write(ctx context.Context, actor *model.Actor, input dto.WriteGuestbookRequest) (*model.Guestbook, error)
	Reply(ctx context.Context, actor *model.Actor, guestbookID string, text string) (*model.GuestbookReply, error)
	Delete(ctx context.Context, actor *model.Actor, guestbookID string, password string) error
}

type User interface {
	Register(ctx context.Context, input dto.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, input dto.LoginRequest) (*dto.LoginResponse, error)
	Authenticate(token string) (*model.Actor, error)
	Profile(ctx context.Context, userID string) (*Profile, error)
	UpdateBlogSettings(ctx context.Context, actor *model.Actor, input dto.BlogSettingsRequest) (*model.User, error)
}

type Reconciler interface {
	Run(ctx context.Context, fullScan bool) (*ReconcileReport, error)
}

type Service struct {
	Like       Like
	Comment    Comment
	Thread     Thread
	Follow     Follow
	Post       Post
	Guestbook  Guestbook
	User       User
	Reconciler Reconciler
}

func New(logger *zap.Logger, repo *repository.Repository, opts Options) *Service {
	opts = opts.withDefaults()

	return &Service{
		Like:       newLikeService(logger, repo, opts),
		Comment:    newCommentService(logger, repo, opts),
		Thread:     newThreadService(logger, repo),
		Follow:     newFollowService(logger, repo),
		Post:       newPostService(logger, repo, opts),
		Guestbook:  newGuestbookService(logger, repo, opts),
		User:       newUserService(logger, repo, opts),
		Reconciler: newReconciler(logger, repo),
	}
}

// lookup translates a repository read into a service error.
func lookup[T any](logger *zap.Logger, entity string, id string, find func() (T, error)) (T, error) {
	v, err := find()
	if err == nil {
		return v, nil
	}

	var zero T
	if errors.Is(err, repository.ErrNotFound) {
		return zero, NotFound(entity, id)
	}

	logger.Sugar().Errorf("failed to find %s(%s): %s", entity, id, err.Error())
	return zero, StoreUnavailable(err)
}
