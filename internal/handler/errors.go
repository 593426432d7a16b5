package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/fillog/blog-service/internal/dto"
	"github.com/fillog/blog-service/internal/service"
	"github.com/gin-gonic/gin"
)

var (
	errNotAuthorized = errors.New("user is not authorized")
	errNoAccess      = errors.New("no access")
	errInvalidBody   = errors.New("invalid request body")
)

var statusByKind = map[service.Kind]int{
	service.KindNotFound:          http.StatusNotFound,
	service.KindConflict:          http.StatusConflict,
	service.KindUnauthorized:      http.StatusForbidden,
	service.KindValidation:        http.StatusBadRequest,
	service.KindStoreUnavailable:  http.StatusInternalServerError,
	service.KindPartialConsistent: http.StatusInternalServerError,
}

// writeError maps a service error to its status code. Errors outside the
// service taxonomy never reach the client verbatim.
func (h *Handler) writeError(c *gin.Context, err error) {
	kind := service.KindOf(err)

	message := err.Error()
	var svcErr *service.Error
	var partial *service.PartialFailureError
	if !errors.As(err, &svcErr) && !errors.As(err, &partial) {
		message = service.ErrInternal.Error()
	}

	_ = c.Error(err)
	c.JSON(statusByKind[kind], dto.NewBasicResponse(false, message))
}

func (h *Handler) bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, errInvalidBody.Error()+": "+err.Error()))
		return false
	}
	return true
}

// bindOptionalJSON binds the body when there is one. Chunked bodies have no
// content length, so emptiness is only known once decoding hits EOF.
func (h *Handler) bindOptionalJSON(c *gin.Context, v any) bool {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return true
	}
	if err := c.ShouldBindJSON(v); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, errInvalidBody.Error()+": "+err.Error()))
		return false
	}
	return true
}
