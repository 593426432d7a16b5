package handler

import (
	"net/http"
	"strings"

	"github.com/fillog/blog-service/internal/dto"
	"github.com/fillog/blog-service/internal/model"
	"github.com/gin-gonic/gin"
)

func (h *Handler) postsCreate(c *gin.Context) {
	actor := h.getActorFromRequest(c)

	var input dto.CreatePostRequest
	if !h.bindJSON(c, &input) {
		return
	}

	createdPost, err := h.services.Post.Create(c.Request.Context(), actor, input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, createdPost)
}

func (h *Handler) postsGet(c *gin.Context) {
	filter := model.PostFilter{
		Category: strings.TrimSpace(c.Query("category")),
		AuthorID: strings.TrimSpace(c.Query("author")),
	}

	posts, err := h.services.Post.FindAll(c.Request.Context(), filter)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}

func (h *Handler) postsGetByID(c *gin.Context) {
	actor := h.getActorFromRequest(c)

	post, err := h.services.Post.FindByID(c.Request.Context(), c.Param("postID"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	postDto := dto.GetPost{
		Post:      post,
		LikeCount: post.LikeCount(),
	}
	if actor != nil {
		postDto.IsLiked = post.IsLikedBy(actor.UserID)
	}

	c.JSON(http.StatusOK, postDto)
}

func (h *Handler) postsEdit(c *gin.Context) {
	actor := h.getActorFromRequest(c)

	var input dto.EditPostRequest
	if !h.bindJSON(c, &input) {
		return
	}

	updatedPost, err := h.services.Post.Update(c.Request.Context(), actor, c.Param("postID"), input.ToUpdate())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, updatedPost)
}

func (h *Handler) postsDelete(c *gin.Context) {
	actor := h.getActorFromRequest(c)

	if err := h.services.Post.Delete(c.Request.Context(), actor, c.Param("postID")); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBasicResponse(true, "post deleted"))
}

func (h *Handler) postsLike(c *gin.Context) {
	actor := h.getActorFromRequest(c)

	result, err := h.services.Like.Toggle(c.Request.Context(), c.Param("postID"), actor.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LikeResponse{
		Liked:     result.Liked,
		LikeCount: result.LikeCount,
		Post:      result.Post,
	})
}
