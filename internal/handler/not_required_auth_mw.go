package handler

import "github.com/gin-gonic/gin"

// notRequiredAuthMiddleware resolves the caller when a valid token is sent and
// lets the request through anonymously otherwise.
func (h *Handler) notRequiredAuthMiddleware(c *gin.Context) {
	accessToken := bearerToken(c)
	if accessToken == "" {
		c.Next()
		return
	}

	actor, err := h.services.User.Authenticate(accessToken)
	if err != nil {
		c.Next()
		return
	}

	c.Set("user", *actor)

	c.Next()
}
