package service

import (
	"context"
	"errors"
	"strings"

	"github.com/fillog/blog-service/internal/dto"
	"github.com/fillog/blog-service/internal/model"
	"github.com/fillog/blog-service/internal/repository"
	"github.com/fillog/blog-service/pkg/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type guestbookService struct {
	logger *zap.Logger
	repo   *repository.Repository
	opts   Options
}

func newGuestbookService(logger *zap.Logger, repo *repository.Repository, opts Options) Guestbook {
	return &guestbookService{
		logger: logger,
		repo:   repo,
		opts:   opts,
	}
}

func (s *guestbookService) FindAll(ctx context.Context) ([]*model.FullGuestbook, error) {
	guestbooks, err := s.repo.Guestbook.FindAll(ctx)
	if err != nil {
		s.logger.Sugar().Errorf("failed to find guestbooks: %s", err.Error())
		return nil, StoreUnavailable(err)
	}

	var replyIDs []string
	for _, guestbook := range guestbooks {
		replyIDs = append(replyIDs, guestbook.Replies...)
	}

	replies, err := s.repo.Guestbook.FindReplies(ctx, replyIDs)
	if err != nil {
		s.logger.Sugar().Errorf("failed to find guestbook replies: %s", err.Error())
		return nil, StoreUnavailable(err)
	}
	byID := make(map[string]*model.GuestbookReply, len(replies))
	for _, reply := range replies {
		byID[reply.ID] = reply
	}

	full := make([]*model.FullGuestbook, 0, len(guestbooks))
	for _, guestbook := range guestbooks {
		entry := &model.FullGuestbook{Guestbook: *guestbook, ReplyList: []*model.GuestbookReply{}}
		for _, id := range guestbook.Replies {
			if reply, ok := byID[id]; ok {
				entry.ReplyList = append(entry.ReplyList, reply)
			}
		}
		full = append(full, entry)
	}

	return full, nil
}

// Write stores an entry as the logged-in user, or anonymously under a name
// and password that are needed again to delete it.
func (s *guestbookService) Write(ctx context.Context, actor *model.Actor, input dto.WriteGuestbookRequest) (*model.Guestbook, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, Validation("text", "must not be empty")
	}

	guestbook := model.Guestbook{
		ID:        uuid.NewString(),
		Text:      text,
		Replies:   []string{},
		CreatedAt: s.opts.Now(),
	}

	if actor != nil {
		user, err := lookup(s.logger, "user", actor.UserID, func() (*model.User, error) {
			return s.repo.User.FindByID(ctx, actor.UserID)
		})
		if err != nil {
			return nil, err
		}
		guestbook.WrittenUser = model.GuestbookAuthor{
			IsUser:    true,
			UserID:    user.ID,
			UserName:  user.UserName,
			UserImage: user.UserImage,
		}
	} else {
		name := strings.TrimSpace(input.UserName)
		if name == "" {
			return nil, Validation("userName", "is required for anonymous entries")
		}
		if input.Password == "" {
			return nil, Validation("password", "is required for anonymous entries")
		}
		hash, err := utils.HashPassword(input.Password)
		if err != nil {
			s.logger.Sugar().Errorf("failed to hash guestbook password: %s", err.Error())
			return nil, StoreUnavailable(err)
		}
		guestbook.WrittenUser = model.GuestbookAuthor{UserName: name, PasswordHash: hash}
	}

	created, err := s.repo.Guestbook.Create(ctx, guestbook)
	if err != nil {
		s.logger.Sugar().Errorf("failed to create guestbook: %s", err.Error())
		return nil, StoreUnavailable(err)
	}

	return created, nil
}

func (s *guestbookService) Reply(ctx context.Context, actor *model.Actor, guestbookID string, text string) (*model.GuestbookReply, error) {
	if actor == nil {
		return nil, Unauthorized(ErrForbidden)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, Validation("replyText", "must not be empty")
	}

	if _, err := lookup(s.logger, "guestbook", guestbookID, func() (*model.Guestbook, error) {
		return s.repo.Guestbook.FindByID(ctx, guestbookID)
	}); err != nil {
		return nil, err
	}

	reply, err := s.repo.Guestbook.CreateReply(ctx, model.GuestbookReply{
		ID:          uuid.NewString(),
		GuestbookID: guestbookID,
		ReplyUserID: actor.UserID,
		ReplyText:   text,
		CreatedAt:   s.opts.Now(),
	})
	if err != nil {
		s.logger.Sugar().Errorf("failed to create reply on guestbook(%s): %s", guestbookID, err.Error())
		return nil, StoreUnavailable(err)
	}

	if err := s.repo.Guestbook.AppendReply(ctx, guestbookID, reply.ID); err != nil {
		s.logger.Sugar().Errorf("failed to attach reply(%s) to guestbook(%s): %s", reply.ID, guestbookID, err.Error())

		// An unattached reply is never listed, so a failed cleanup is only logged.
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.CompensationTimeout)
		defer cancel()
		if err := s.repo.Guestbook.DeleteReplies(dctx, []string{reply.ID}); err != nil {
			s.logger.Sugar().Errorf("failed to delete unattached reply(%s): %s", reply.ID, err.Error())
		}

		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("guestbook", guestbookID)
		}
		return nil, StoreUnavailable(err)
	}

	return reply, nil
}

func (s *guestbookService) Delete(ctx context.Context, actor *model.Actor, guestbookID string, password string) error {
	guestbook, err := lookup(s.logger, "guestbook", guestbookID, func() (*model.Guestbook, error) {
		return s.repo.Guestbook.FindByID(ctx, guestbookID)
	})
	if err != nil {
		return err
	}

	if err := authorizeGuestbook(guestbook, actor, password); err != nil {
		return err
	}

	if err := s.repo.Guestbook.Delete(ctx, guestbookID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFound("guestbook", guestbookID)
		}
		s.logger.Sugar().Errorf("failed to delete guestbook(%s): %s", guestbookID, err.Error())
		return StoreUnavailable(err)
	}

	if len(guestbook.Replies) > 0 {
		if err := s.repo.Guestbook.DeleteReplies(ctx, guestbook.Replies); err != nil {
			s.logger.Sugar().Errorf("failed to delete replies of guestbook(%s): %s", guestbookID, err.Error())
		}
	}

	return nil
}

func authorizeGuestbook(guestbook *model.Guestbook, actor *model.Actor, password string) error {
	author := guestbook.WrittenUser
	if actor.IsAdmin() {
		return nil
	}
	if author.IsUser {
		if actor.Is(author.UserID) {
			return nil
		}
		return Unauthorized(ErrForbidden)
	}
	if password != "" && author.PasswordHash != "" && utils.CheckPassword(author.PasswordHash, password) {
		return nil
	}
	return Unauthorized(ErrInvalidPassword)
}
