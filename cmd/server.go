package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	app "advent-calendar/internal"
	"advent-calendar/internal/antiforgery"
	"advent-calendar/internal/assets"
	"advent-calendar/internal/availability"
	"advent-calendar/internal/cache"
	"advent-calendar/internal/config"
	"advent-calendar/internal/content"
	"advent-calendar/internal/door"
	"advent-calendar/internal/i18n"
	"advent-calendar/internal/jwt"
	"advent-calendar/internal/nonce"
	"advent-calendar/internal/pages"
	"advent-calendar/internal/render"
	"advent-calendar/internal/reveal"
	"advent-calendar/internal/routes"
	"advent-calendar/internal/storage"
	"advent-calendar/web"
)

const DIST_DIR = "dist"

var serverAddr string

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the advent calendar server",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		initLogger(cfg)

		var storageProvider storage.Provider
		if usesSQL(cfg) {
			storageProvider = requireProvider()
		}
		fmt.Println("Starting advent calendar server...")
		ServerMain(ctx, storageProvider)
	},
}

// Initialize logger
func initLogger(cfg *config.Config) *slog.Logger {
	level, ok := parseLevel(cfg.LogLevel)
	if !ok {
		println("Invalid log level in config, defaulting to INFO")
	}
	handlerOpts := &slog.HandlerOptions{
		Level: level,
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, handlerOpts))
	slog.SetDefault(logger)

	slog.Debug("Logger initialized", "level", level.String())
	return logger
}

// siteName scopes the test mode marker to the configured host.
func siteName(cfg *config.Config) string {
	if u, err := url.Parse(cfg.BaseURL); err == nil && u.Host != "" {
		return u.Host
	}
	return cfg.BaseURL
}

func newEmbedder(cfg *config.Config) content.Embedder {
	if !cfg.OEmbed.Enabled {
		return nil
	}
	return content.NewOEmbed(cfg.OEmbedTimeoutDuration())
}

// NewHandlers wires every service the routes need.
func NewHandlers(cfg *config.Config, storageProvider storage.Provider) (*routes.Handlers, error) {
	site, err := pages.Load(cfg.PagesFile)
	if err != nil {
		return nil, fmt.Errorf("load pages: %w", err)
	}

	nonceStore, err := nonce.InitNonceStore(cfg, storageProvider)
	if err != nil {
		return nil, err
	}
	instanceCache, err := cache.New(cfg, storageProvider)
	if err != nil {
		return nil, err
	}
	bundle, err := i18n.Load(cfg.DefaultLang)
	if err != nil {
		return nil, err
	}

	tokens := antiforgery.New(jwt.NewSigner(cfg.Secret, jwt.PurposeAntiForgery), nonceStore, cfg.NonceTTLDuration())
	policy := availability.NewPolicy(cfg.Location())
	renderer := content.NewRenderer(newEmbedder(cfg))
	sanitizer := door.NewSanitizer(cfg.Finale.DownloadURL, cfg.Finale.DownloadLabel)

	var dist = os.DirFS(DIST_DIR)
	if _, err := os.Stat(DIST_DIR); err != nil {
		slog.Warn("No compiled assets found, calendar script must be served externally", "dir", DIST_DIR)
		dist = nil
	}

	return &routes.Handlers{
		Config:   cfg,
		Site:     site,
		Blocks:   render.NewBlockRenderer(sanitizer, instanceCache, tokens, policy),
		Reveal:   reveal.NewService(tokens, instanceCache, policy, renderer),
		Content:  renderer,
		Assets:   assets.DefaultRegistry(web.Assets(), dist),
		Bundle:   bundle,
		TestMode: availability.NewTestMode(jwt.NewSigner(cfg.Secret, jwt.PurposeTestMode), siteName(cfg), cfg.TestModeTTLDuration()),
	}, nil
}

func ServerMain(ctx context.Context, storageProvider storage.Provider) {
	if config.Cfg == nil {
		panic("Config not initialized.")
	}

	h, err := NewHandlers(config.Cfg, storageProvider)
	if err != nil {
		slog.Error("Failed to initialize services", "error", err)
		os.Exit(1)
	}
	slog.Info("Serving pages", "pages", len(h.Site.Pages), "timezone", config.Cfg.Location().String(), "available_day", availability.NewPolicy(config.Cfg.Location()).AvailableDay())

	server, err := app.HTTPServer(h)
	if err != nil {
		slog.Error("Failed to initialize HTTP server", "error", err)
		os.Exit(1)
	}

	var addr []string
	if serverAddr != "" {
		addr = append(addr, serverAddr)
	}
	if err := server.Run(addr...); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func init() {
	serverCmd.Flags().StringVar(&serverAddr, "addr", "", "listen address (default :8080 or $PORT)")
	rootCmd.AddCommand(serverCmd)
}
