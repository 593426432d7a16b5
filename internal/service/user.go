package service

import (
	"context"
	"errors"
	"strings"

	"github.com/fillog/blog-service/internal/dto"
	"github.com/fillog/blog-service/internal/model"
	"github.com/fillog/blog-service/internal/repository"
	"github.com/fillog/blog-service/pkg/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const minPasswordLength = 4

// Profile is a user together with the follow edges on both sides.
type Profile struct {
	User      *model.User
	Followers []string
	Following []string
}

type userService struct {
	logger *zap.Logger
	repo   *repository.Repository
	opts   Options
}

func newUserService(logger *zap.Logger, repo *repository.Repository, opts Options) User {
	return &userService{
		logger: logger,
		repo:   repo,
		opts:   opts,
	}
}

func (s *userService) Register(ctx context.Context, input dto.RegisterRequest) (*model.User, error) {
	account := strings.TrimSpace(input.Account)
	userName := strings.TrimSpace(input.UserName)
	switch {
	case account == "":
		return nil, Validation("account", "is required")
	case len(input.Password) < minPasswordLength:
		return nil, Validation("password", "must be at least 4 characters")
	case userName == "":
		return nil, Validation("userName", "is required")
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		s.logger.Sugar().Errorf("failed to hash password of account(%s): %s", account, err.Error())
		return nil, StoreUnavailable(err)
	}

	user, err := s.repo.User.Create(ctx, model.User{
		ID:                uuid.NewString(),
		Account:           account,
		PasswordHash:      hash,
		UserName:          userName,
		UserImage:         strings.TrimSpace(input.UserImage),
		Role:              model.RoleNormal,
		LikedArticles:     []string{},
		CommentedArticles: []string{},
		CreatedAt:         s.opts.Now(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, Conflict("account already exists")
		}
		s.logger.Sugar().Errorf("failed to create account(%s): %s", account, err.Error())
		return nil, StoreUnavailable(err)
	}

	return user, nil
}

func (s *userService) Login(ctx context.Context, input dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.User.FindByAccount(ctx, strings.TrimSpace(input.Account))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, Unauthorized(ErrInvalidPassword)
		}
		s.logger.Sugar().Errorf("failed to find account(%s): %s", input.Account, err.Error())
		return nil, StoreUnavailable(err)
	}

	if !utils.CheckPassword(user.PasswordHash, input.Password) {
		return nil, Unauthorized(ErrInvalidPassword)
	}

	token, err := utils.NewJWT(jwt.MapClaims{
		"id":   user.ID,
		"role": string(user.Role),
	}, s.opts.JWTSecret, s.opts.TokenTTL)
	if err != nil {
		s.logger.Sugar().Errorf("failed to sign token for user(%s): %s", user.ID, err.Error())
		return nil, StoreUnavailable(err)
	}

	return &dto.LoginResponse{
		Token: token,
		User: dto.SessionUser{
			ID:        user.ID,
			Account:   user.Account,
			UserName:  user.UserName,
			UserImage: user.UserImage,
			Role:      user.Role,
		},
	}, nil
}

func (s *userService) Authenticate(token string) (*model.Actor, error) {
	claims, err := utils.DecodeJWT(token, s.opts.JWTSecret)
	if err != nil {
		return nil, Unauthorized(ErrInvalidToken)
	}

	id, ok := claims["id"].(string)
	if !ok || id == "" {
		return nil, Unauthorized(ErrInvalidToken)
	}
	role, _ := claims["role"].(string)

	return &model.Actor{UserID: id, Role: model.Role(role)}, nil
}

func (s *userService) Profile(ctx context.Context, userID string) (*Profile, error) {
	user, err := lookup(s.logger, "user", userID, func() (*model.User, error) {
		return s.repo.User.FindByID(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	profile := &Profile{User: user}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		followers, err := s.repo.Follow.Followers(gctx, userID)
		profile.Followers = followers
		return err
	})
	g.Go(func() error {
		following, err := s.repo.Follow.Following(gctx, userID)
		profile.Following = following
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Sugar().Errorf("failed to find follow edges of user(%s): %s", userID, err.Error())
		return nil, StoreUnavailable(err)
	}

	return profile, nil
}

func (s *userService) UpdateBlogSettings(ctx context.Context, actor *model.Actor, input dto.BlogSettingsRequest) (*model.User, error) {
	if actor == nil {
		return nil, Unauthorized(ErrForbidden)
	}

	blogName := strings.TrimSpace(input.BlogName)
	if blogName == "" {
		return nil, Validation("blogName", "is required")
	}

	settings := model.BlogSettings{
		BlogName:       blogName,
		FavoriteGenres: input.FavoriteGenres,
		BlogCategories: input.BlogCategories,
	}
	if settings.FavoriteGenres == nil {
		settings.FavoriteGenres = []int{}
	}
	if settings.BlogCategories == nil {
		settings.BlogCategories = []model.BlogCategory{}
	}

	user, err := s.repo.User.UpdateBlogSettings(ctx, actor.UserID, settings)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("user", actor.UserID)
		}
		s.logger.Sugar().Errorf("failed to update blog settings of user(%s): %s", actor.UserID, err.Error())
		return nil, StoreUnavailable(err)
	}

	return user, nil
}
