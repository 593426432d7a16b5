package handler

import (
	"net/http"

	"github.com/fillog/blog-service/internal/dto"
	"github.com/fillog/blog-service/internal/service"
	"github.com/gin-gonic/gin"
)

func (h *Handler) commentsCreate(c *gin.Context) {
	actor := h.getActorFromRequest(c)

	var input dto.CreateCommentRequest
	if !h.bindJSON(c, &input) {
		return
	}

	createdComment, err := h.services.Comment.Add(c.Request.Context(), c.Param("postID"), actor, input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, createdComment)
}

func (h *Handler) commentsGet(c *gin.Context) {
	ctx := c.Request.Context()

	cursor, err := h.services.Thread.PostComments(ctx, c.Param("postID"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	comments, err := service.Collect(ctx, cursor)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}

func (h *Handler) commentsGetReReplies(c *gin.Context) {
	replies, err := h.services.Thread.ReReplies(c.Request.Context(), c.Param("commentID"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, replies)
}

func (h *Handler) commentsDelete(c *gin.Context) {
	actor := h.getActorFromRequest(c)

	var input dto.DeleteCommentRequest
	if !h.bindOptionalJSON(c, &input) {
		return
	}

	if err := h.services.Comment.Delete(c.Request.Context(), c.Param("postID"), c.Param("commentID"), input.Password, actor); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBasicResponse(true, "comment deleted"))
}
