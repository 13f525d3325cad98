package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"advent-calendar/internal/config"
	"advent-calendar/internal/storage"
	"advent-calendar/internal/utils"
)

var (
	cfgFile  string
	cfg      *config.Config
	provider storage.Provider
)

var rootCmd = &cobra.Command{
	Use:     "advent",
	Short:   "Advent calendar server and tools",
	Long:    `Serves pages with 24-door advent calendars and reveals doors day by day.`,
	Version: utils.GetVersion(),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional
		_ = godotenv.Load()

		initCLILogger()

		var err error
		if cfgFile != "" {
			cfg, err = config.LoadConfig(cfgFile)
		} else {
			cfg, err = config.LoadConfig()
		}
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		config.Cfg = cfg
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		// Cleanup
		if provider != nil {
			provider.Close()
		}
	},
}

// requireProvider opens the storage provider on first use.
func requireProvider() storage.Provider {
	if provider != nil {
		return provider
	}
	provider = storage.NewProvider(&cfg.Storage)
	if provider == nil {
		slog.Error("Failed to initialize storage provider", "error", utils.ErrStorageProviderNotFound)
		os.Exit(1)
	}
	return provider
}

// usesSQL reports whether any configured store is backed by the provider.
func usesSQL(cfg *config.Config) bool {
	return cfg.CacheStore == "sql" || cfg.NonceStore == "sql"
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// CLI commands only report errors.
func initCLILogger() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	slog.SetDefault(logger)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./instance/config.yaml or ./config.yaml)")
}
