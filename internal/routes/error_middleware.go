package routes

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
)

const ajaxKey = "Ajax"

type errorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Success bool      `json:"success"`
	Data    errorData `json:"data"`
}

// wantsJSON reports whether the error should be returned as JSON.
func wantsJSON(c *gin.Context) bool {
	return c.GetBool(ajaxKey) || strings.Contains(c.GetHeader("Accept"), "application/json")
}

// ErrorHandler captures errors and returns a consistent response with the
// HTTP status of the error kind. Ajax requests get JSON, pages get HTML.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next() // Process the request first

		if len(c.Errors) == 0 {
			return
		}

		// Use the last error (most recent)
		err := c.Errors.Last().Err

		statusCode := GetErrorStatus(err)
		errorInfo := GetErrorInfo(err)

		attrs := []any{
			"error", err,
			"status", statusCode,
			"code", errorInfo.Code,
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		}
		if c.GetBool(ajaxKey) {
			attrs = append(attrs, "instance", c.PostForm("instance"), "day", c.PostForm("day"))
		}
		if statusCode >= 500 {
			slog.Error("Request failed with server error", attrs...)
		} else if statusCode >= 400 {
			slog.Warn("Request failed with client error", attrs...)
		}

		// Only send the response if it hasn't been written yet
		if c.Writer.Written() {
			return
		}

		message := T(c)(errorInfo.MessageKey)
		if wantsJSON(c) {
			c.AbortWithStatusJSON(statusCode, errorResponse{
				Success: false,
				Data:    errorData{Code: errorInfo.Code, Message: message},
			})
			return
		}

		slog.Debug("Returning error page HTML", "code", statusCode, "message", message)
		HTML(c, statusCode, "error.html.tmpl", gin.H{
			"Status":  statusCode,
			"Code":    errorInfo.Code,
			"Message": message,
		})
		c.Abort()
	}
}

// AbortWithError is a helper function to abort the request with an error
// and add it to the Gin error chain for the ErrorHandler middleware
func AbortWithError(c *gin.Context, err error) {
	statusCode := GetErrorStatus(err)
	c.Error(err)
	c.Abort()
	// Set the status code so gin knows not to send 200
	c.Status(statusCode)
}

// NotFound is the fallback for unknown routes.
func NotFound(c *gin.Context) {
	AbortWithError(c, ErrNotFound)
}

// Recovery turns panics into internal errors rendered by ErrorHandler.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.Error("Recovered from panic", "panic", recovered, "path", c.Request.URL.Path)
		AbortWithError(c, ErrInternalServer)
	})
}
