package app

import (
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"advent-calendar/internal/routes"
	"advent-calendar/web"
)

func securityHeaders(c *gin.Context) {
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Frame-Options", "DENY")
	c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

	// Pages carry per-render tokens and test mode state.
	c.Header("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Next()
}

// Middleware to check if the IP is allowed.
func IPAccessControl(allowedCIDRs []string) gin.HandlerFunc {
	// Parse allowed CIDRs
	var parsedCIDRs []*net.IPNet

	// Allow local networks in debug mode
	if os.Getenv("GIN_MODE") != "release" {
		localhostCIDRs := []string{"127.0.0.1/8", "::1/128"}
		allowedCIDRs = append(allowedCIDRs, localhostCIDRs...)
	}

	for _, cidr := range allowedCIDRs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			slog.Warn("Invalid CIDR", "cidr", cidr)
			continue
		}
		slog.Debug("Allowed CIDR", "cidr", cidr)
		parsedCIDRs = append(parsedCIDRs, network)
	}

	return func(c *gin.Context) {
		clientIP := net.ParseIP(c.ClientIP())
		if clientIP == nil {
			// Should not happen
			slog.Warn("Invalid client IP", "ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}

		for _, cidr := range parsedCIDRs {
			if cidr.Contains(clientIP) {
				c.Next()
				return
			}
		}
		slog.Warn("IP not allowed", "ip", clientIP)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	}
}

// ParseNetworks splits a comma separated CIDR list.
func ParseNetworks(networks string) []string {
	var allowedCIDRs []string
	for cidr := range strings.SplitSeq(networks, ",") {
		// Remove spaces and ignore empty sets
		if cidr := strings.TrimSpace(cidr); cidr != "" {
			allowedCIDRs = append(allowedCIDRs, cidr)
		}
	}
	return allowedCIDRs
}

func HTTPServer(h *routes.Handlers) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Logger())

	renderer, err := web.Views(h.Assets.TemplateFuncs())
	if err != nil {
		return nil, err
	}
	r.HTMLRender = renderer

	r.StaticFS("/assets", http.FS(web.Assets()))
	if _, err := os.Stat("dist"); err == nil {
		r.Static("/dist", "./dist")
	}

	if h.Config.AllowedNetworks != "" {
		slog.Debug("Enabling IP access control", "allowed_networks", h.Config.AllowedNetworks)
		r.Use(IPAccessControl(ParseNetworks(h.Config.AllowedNetworks)))
	}
	r.Use(securityHeaders)

	routes.RegisterRoutes(r, h)
	return r, nil
}
