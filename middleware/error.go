package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const MsgUnexpected = "An unexpected error occurred"

// ErrorHandler recovers from panics in later handlers. API routes get a JSON
// 500; other routes are handed to page, which renders the error for a human.
// A nil page falls back to JSON everywhere.
func ErrorHandler(logger *zap.Logger, page gin.HandlerFunc) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					zap.Any("panic", err),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"),
				)

				if page == nil || IsAPI(c) || c.Writer.Written() {
					if !c.Writer.Written() {
						c.JSON(http.StatusInternalServerError, gin.H{"error": MsgUnexpected})
					}
					c.Abort()
					return
				}
				c.Status(http.StatusInternalServerError)
				page(c)
				c.Abort()
			}
		}()

		c.Next()
	}
}

// IsAPI reports whether the request targets the JSON API.
func IsAPI(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}
