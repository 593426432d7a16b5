package handler

import (
	"net/http"

	"github.com/fillog/blog-service/internal/dto"
	"github.com/gin-gonic/gin"
)

func (h *Handler) guestbooksGet(c *gin.Context) {
	guestbooks, err := h.services.Guestbook.FindAll(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, guestbooks)
}

func (h *Handler) guestbooksWrite(c *gin.Context) {
	actor := h.getActorFromRequest(c)

	var input dto.WriteGuestbookRequest
	if !h.bindJSON(c, &input) {
		return
	}

	guestbook, err := h.services.Guestbook.Write(c.Request.Context(), actor, input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, guestbook)
}

func (h *Handler) guestbooksReply(c *gin.Context) {
	actor := h.getActorFromRequest(c)

	var input dto.ReplyGuestbookRequest
	if !h.bindJSON(c, &input) {
		return
	}

	reply, err := h.services.Guestbook.Reply(c.Request.Context(), actor, c.Param("guestbookID"), input.ReplyText)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reply)
}

func (h *Handler) guestbooksDelete(c *gin.Context) {
	actor := h.getActorFromRequest(c)

	var input dto.DeleteGuestbookRequest
	if !h.bindOptionalJSON(c, &input) {
		return
	}

	if err := h.services.Guestbook.Delete(c.Request.Context(), actor, c.Param("guestbookID"), input.Password); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBasicResponse(true, "guestbook deleted"))
}
