package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) adminReconcile(c *gin.Context) {
	fullScan := c.Query("full") == "true"

	report, err := h.services.Reconciler.Run(c.Request.Context(), fullScan)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
