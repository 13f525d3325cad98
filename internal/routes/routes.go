package routes

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"advent-calendar/internal/assets"
	"advent-calendar/internal/availability"
	"advent-calendar/internal/config"
	"advent-calendar/internal/content"
	"advent-calendar/internal/i18n"
	"advent-calendar/internal/pages"
	"advent-calendar/internal/render"
	"advent-calendar/internal/reveal"
	"advent-calendar/internal/utils"
)

// Context keys
const (
	baseURLKey   = "BaseURL"
	langKey      = "Lang"
	translateKey = "T"
	testModeKey  = "TestMode"
	assetsKey    = "Assets"
)

// Handlers groups the services the routes depend on.
type Handlers struct {
	Config   *config.Config
	Site     *pages.Site
	Blocks   *render.BlockRenderer
	Reveal   *reveal.Service
	Content  *content.Renderer
	Assets   *assets.Registry
	Bundle   *i18n.Bundle
	TestMode *availability.TestMode
}

// T returns the request translator, or an identity lookup outside a request
// that passed the language middleware.
func T(c *gin.Context) i18n.Translate {
	if v, ok := c.Get(translateKey); ok {
		if t, ok := v.(i18n.Translate); ok {
			return t
		}
	}
	return func(key string, args ...any) string { return key }
}

func Lang(c *gin.Context) language.Tag {
	if v, ok := c.Get(langKey); ok {
		if tag, ok := v.(language.Tag); ok {
			return tag
		}
	}
	return language.Und
}

// Merge into existing gin.H. This is the late output point of a page: the
// render frame is flushed here.
func H(c *gin.Context, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	data["BaseURL"] = c.GetString(baseURLKey)
	data["AppVersion"] = utils.GetVersion()
	data["Lang"] = Lang(c).String()
	data["T"] = T(c)
	data["TestMode"] = c.GetBool(testModeKey)

	frame := render.FrameFrom(c)
	footer, err := frame.Flush()
	if err != nil {
		slog.Error("Failed to flush render frame", "error", err)
	}
	data["Footer"] = footer

	var tags template.HTML
	if v, ok := c.Get(assetsKey); ok {
		if registry, ok := v.(*assets.Registry); ok {
			tags = registry.Tags(frame.Assets())
		}
	}
	data["Assets"] = tags
	return data
}

// Returns a HTML response with merged data. Error responses never carry the
// bootstrap of blocks rendered before the failure.
func HTML(c *gin.Context, code int, name string, data gin.H) {
	if code >= http.StatusBadRequest {
		render.ResetFrame(c)
	}
	data = H(c, data)
	c.HTML(code, name, data)
}

// RegisterRoutes wires every route group onto r.
func RegisterRoutes(r *gin.Engine, h *Handlers) {
	r.Use(render.FrameMiddleware())
	r.Use(ContextMiddleware(h))
	r.Use(ErrorHandler())
	r.Use(Recovery())
	r.Use(LanguageMiddleware(h.Bundle))
	r.Use(TestModeMiddleware(h.TestMode, h.Config.TestModeParam))

	root := r.Group("/")
	Health(root)
	PageRoutes(root, h)
	AjaxRoutes(root, h)

	r.NoRoute(NotFound)
}
