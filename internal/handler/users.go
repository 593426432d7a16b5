package handler

import (
	"net/http"

	"github.com/fillog/blog-service/internal/dto"
	"github.com/fillog/blog-service/internal/service"
	"github.com/gin-gonic/gin"
)

func (h *Handler) usersRegister(c *gin.Context) {
	var input dto.RegisterRequest
	if !h.bindJSON(c, &input) {
		return
	}

	user, err := h.services.User.Register(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *Handler) usersLogin(c *gin.Context) {
	var input dto.LoginRequest
	if !h.bindJSON(c, &input) {
		return
	}

	session, err := h.services.User.Login(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *Handler) usersGet(c *gin.Context) {
	profile, err := h.services.User.Profile(c.Request.Context(), c.Param("userID"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProfileResponse{
		User:      profile.User,
		Followers: profile.Followers,
		Following: profile.Following,
	})
}

func (h *Handler) usersFollowers(c *gin.Context) {
	followers, err := h.services.Follow.Followers(c.Request.Context(), c.Param("userID"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"followers": followers})
}

func (h *Handler) usersFollow(c *gin.Context) {
	actor := h.getActorFromRequest(c)

	result, err := h.services.Follow.Follow(c.Request.Context(), c.Param("userID"), actor.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, followResponse(result))
}

func (h *Handler) usersUnfollow(c *gin.Context) {
	actor := h.getActorFromRequest(c)

	result, err := h.services.Follow.Unfollow(c.Request.Context(), c.Param("userID"), actor.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, followResponse(result))
}

func followResponse(result *service.FollowResult) dto.FollowResponse {
	return dto.FollowResponse{
		Following: result.Following,
		Changed:   result.Changed,
		Followers: result.Followers,
	}
}

func (h *Handler) usersUpdateBlogSettings(c *gin.Context) {
	actor := h.getActorFromRequest(c)

	var input dto.BlogSettingsRequest
	if !h.bindJSON(c, &input) {
		return
	}

	user, err := h.services.User.UpdateBlogSettings(c.Request.Context(), actor, input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
