package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"advent-calendar/internal/reveal"
)

// AjaxAction handles one value of the action form field.
type AjaxAction func(c *gin.Context)

func AjaxRoutes(r *gin.RouterGroup, h *Handlers) {
	actions := map[string]AjaxAction{
		reveal.Action: revealDoor(h.Reveal),
	}

	r.POST("/ajax", func(c *gin.Context) {
		c.Set(ajaxKey, true)

		action, ok := actions[c.PostForm("action")]
		if !ok {
			AbortWithError(c, ErrUnknownAction)
			return
		}
		action(c)
	})
}

func revealDoor(svc *reveal.Service) AjaxAction {
	return func(c *gin.Context) {
		result, err := svc.Reveal(c.Request.Context(), reveal.Request{
			InstanceID: c.PostForm("instance"),
			Day:        c.PostForm("day"),
			Token:      c.PostForm("nonce"),
			TestMode:   c.GetBool(testModeKey),
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    result,
		})
	}
}
