package errors

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"chatonline-world/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the first error a handler attached with c.Error,
// unless the handler already wrote a response
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := FromError(c.Errors[0].Err)
		report(c, appErr)

		if appErr.PlainText {
			c.Abort()
			c.String(appErr.StatusCode, appErr.Message)
			return
		}
		c.AbortWithStatusJSON(appErr.StatusCode, gin.H{"error": appErr})
	}
}

func report(c *gin.Context, appErr *AppError) {
	level := slog.LevelWarn
	if appErr.StatusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	attrs := []any{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status_code", appErr.StatusCode,
		"error_code", appErr.Code,
	}
	if appErr.cause != nil {
		attrs = append(attrs, "cause", appErr.cause.Error())
	}
	logger.FromGin(c).Log(c.Request.Context(), level, appErr.Message, attrs...)
}

// RecoveryWithLogger turns a handler panic into a logged 500
func RecoveryWithLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			logger.FromGin(c).Error("Handler panicked",
				"panic", fmt.Sprint(r),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"stack", string(debug.Stack()),
			)

			appErr := NewInternalServerError("SERVER_ERROR", "The server encountered an unexpected error")
			if gin.Mode() == gin.DebugMode {
				appErr.Details = fmt.Sprintf("panic: %v", r)
			}
			c.AbortWithStatusJSON(appErr.StatusCode, gin.H{"error": appErr})
		}()
		c.Next()
	}
}
