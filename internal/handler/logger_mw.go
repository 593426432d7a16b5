package handler

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/fillog/blog-service/internal/dto"
	"github.com/fillog/blog-service/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) loggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next()

	fields := []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("query", c.Request.URL.RawQuery),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("latency", time.Since(start)),
		zap.Int("size", c.Writer.Size()),
	}
	if len(c.Errors) > 0 {
		fields = append(fields, zap.String("error", c.Errors.String()))
	}

	h.logger.Info("http request", fields...)
}

func (h *Handler) recoveryMiddleware(c *gin.Context) {
	defer func() {
		if err := recover(); err != nil {
			h.logger.Error("panic recovered",
				zap.Any("error", err),
				zap.ByteString("stack", debug.Stack()),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewBasicResponse(false, service.ErrInternal.Error()))
		}
	}()

	c.Next()
}
