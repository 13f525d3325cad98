package routes

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"advent-calendar/internal/assets"
	"advent-calendar/internal/render"
	"advent-calendar/internal/utils"
)

func PageRoutes(r *gin.RouterGroup, h *Handlers) {
	r.GET("/", func(c *gin.Context) {
		HTML(c, http.StatusOK, "index.html.tmpl", gin.H{
			"Pages": h.Site.Pages,
		})
	})

	r.GET("/p/:slug", func(c *gin.Context) {
		page, err := h.Site.BySlug(c.Param("slug"))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		frame := render.FrameFrom(c)
		frame.Enqueue(assets.CalendarStyle)

		ajaxURL := utils.JoinURL(c.GetString(baseURLKey), "ajax")
		blocks := make([]template.HTML, 0, len(page.Blocks))
		for _, block := range page.Blocks {
			html, err := h.Blocks.Render(c.Request.Context(), frame, render.BlockRequest{
				InstanceID:  block.InstanceID,
				OwnerPageID: page.ID,
				Doors:       block.Doors,
				TestMode:    c.GetBool(testModeKey),
				AjaxURL:     ajaxURL,
				T:           T(c),
			})
			if err != nil {
				AbortWithError(c, err)
				return
			}
			if html != "" {
				blocks = append(blocks, html)
			}
		}

		HTML(c, http.StatusOK, "page.html.tmpl", gin.H{
			"Page":   page,
			"Intro":  h.Content.Paragraphs(page.Intro),
			"Blocks": blocks,
		})
	})
}
