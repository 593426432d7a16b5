package handler

import (
	"net/http"
	"strings"

	"github.com/fillog/blog-service/internal/dto"
	"github.com/gin-gonic/gin"
)

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// authenticate stores the caller in the context, or aborts with 403.
func (h *Handler) authenticate(c *gin.Context) bool {
	accessToken := bearerToken(c)
	if accessToken == "" {
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewBasicResponse(false, errNotAuthorized.Error()))
		return false
	}

	actor, err := h.services.User.Authenticate(accessToken)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewBasicResponse(false, err.Error()))
		return false
	}

	c.Set("user", *actor)

	return true
}

func (h *Handler) authMiddleware(c *gin.Context) {
	if !h.authenticate(c) {
		return
	}

	c.Next()
}

func (h *Handler) adminMiddleware(c *gin.Context) {
	if !h.authenticate(c) {
		return
	}

	if !h.getActorFromRequest(c).IsAdmin() {
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewBasicResponse(false, errNoAccess.Error()))
		return
	}

	c.Next()
}
