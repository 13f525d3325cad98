package utils

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequestScheme honours X-Forwarded-Proto from a terminating proxy.
func RequestScheme(c *gin.Context) string {
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		return "https"
	}
	return "http"
}

// Helper function to generate a URL for a given path
func UrlFor(c *gin.Context, path string) string {
	// Check for "/" prefix in path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("%s://%s%s", RequestScheme(c), c.Request.Host, path)
}

// JoinURL appends a relative path to base, keeping base's path prefix.
func JoinURL(base, path string) string {
	if base == "" {
		base = "/"
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + strings.TrimPrefix(path, "/")
}

// WithQuery returns rawURL with key set to value.
func WithQuery(rawURL, key, value string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
