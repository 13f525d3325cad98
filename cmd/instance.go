package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	"advent-calendar/internal/cache"
	"advent-calendar/internal/config"
	"advent-calendar/internal/utils"
)

var instanceCmd = &cobra.Command{
	Use:   "instance",
	Short: "Manage calendar instances",
}

var instanceNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate a new calendar instance id for a pages file block",
	Run: func(cmd *cobra.Command, args []string) {
		id, err := utils.NewInstanceID()
		if err != nil {
			slog.Error("Failed to generate instance id", "error", err)
			os.Exit(1)
		}
		fmt.Println(id)
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Maintain the instance cache",
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete expired cached instances and anti-forgery tokens",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if cfg.CacheStore != "sql" {
			fmt.Println("Instance cache is in memory; nothing to prune")
		} else {
			c, err := cache.New(cfg, requireProvider())
			if err != nil {
				slog.Error("Failed to open instance cache", "error", err)
				os.Exit(1)
			}
			removed, err := c.Prune(ctx)
			if err != nil {
				slog.Error("Failed to prune instance cache", "error", err)
				os.Exit(1)
			}
			fmt.Printf("Removed %d expired instances\n", removed)
		}

		if cfg.NonceStore == "sql" {
			removed, err := requireProvider().ExpireNonces(ctx, time.Now())
			if err != nil {
				slog.Error("Failed to expire tokens", "error", err)
				os.Exit(1)
			}
			fmt.Printf("Removed %d expired tokens\n", removed)
		}
	},
}

var qrOutput string

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview helpers",
}

var previewQRCmd = &cobra.Command{
	Use:   "qr <page-url>",
	Short: "Write a QR code linking to a page with test mode enabled",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		link, err := utils.WithQuery(args[0], cfg.TestModeParam, "1")
		if err != nil {
			slog.Error("Invalid page URL", "error", err, "url", args[0])
			os.Exit(1)
		}

		png, err := qrcode.Encode(link, qrcode.Medium, config.QR_IMAGE_SIZE)
		if err != nil {
			slog.Error("Error generating QR code", "error", err)
			os.Exit(1)
		}

		if qrOutput == "-" {
			os.Stdout.Write(png)
			return
		}
		if err := os.WriteFile(qrOutput, png, 0644); err != nil {
			slog.Error("Error saving QR code", "error", err, "file", qrOutput)
			os.Exit(1)
		}
		fmt.Printf("%s -> %s\n", link, qrOutput)
	},
}

func init() {
	previewQRCmd.Flags().StringVarP(&qrOutput, "output", "o", "preview_qr.png", "PNG file to write, - for stdout")

	instanceCmd.AddCommand(instanceNewCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	previewCmd.AddCommand(previewQRCmd)
	rootCmd.AddCommand(instanceCmd, cacheCmd, previewCmd)
}
