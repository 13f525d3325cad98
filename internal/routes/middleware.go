package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"advent-calendar/internal/availability"
	"advent-calendar/internal/i18n"
	"advent-calendar/internal/utils"
)

// ContextMiddleware exposes configuration and shared services to handlers.
func ContextMiddleware(h *Handlers) gin.HandlerFunc {
	baseURL := h.Config.BaseURL
	if baseURL == "" {
		baseURL = "/"
	}
	return func(c *gin.Context) {
		c.Set(baseURLKey, baseURL)
		c.Set(assetsKey, h.Assets)
		c.Next()
	}
}

// LanguageMiddleware negotiates the UI language from ?lang= and Accept-Language.
func LanguageMiddleware(bundle *i18n.Bundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		tag := bundle.Match(c.Query("lang"), c.GetHeader("Accept-Language"))
		c.Set(langKey, tag)
		c.Set(translateKey, bundle.For(tag))
		c.Next()
	}
}

// TestModeMiddleware resolves the test mode flag of the request. The opt-in
// parameter set to 1 issues a marker cookie that already counts for this
// request; 0 clears it. Otherwise a valid marker cookie enables test mode.
func TestModeMiddleware(tm *availability.TestMode, param string) gin.HandlerFunc {
	if param == "" {
		param = availability.TestModeCookie
	}
	return func(c *gin.Context) {
		secure := utils.RequestScheme(c) == "https"
		c.SetSameSite(http.SameSiteLaxMode)

		switch c.Query(param) {
		case "1":
			marker, err := tm.Issue()
			if err != nil {
				AbortWithError(c, err)
				return
			}
			c.SetCookie(availability.TestModeCookie, marker, int(tm.TTL().Seconds()), "/", "", secure, true)
			c.Set(testModeKey, true)
		case "0":
			c.SetCookie(availability.TestModeCookie, "", -1, "/", "", secure, true)
			c.Set(testModeKey, false)
		default:
			marker, _ := c.Cookie(availability.TestModeCookie)
			c.Set(testModeKey, tm.Valid(marker))
		}
		c.Next()
	}
}
