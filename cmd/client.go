package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/inbucket/html2text"
	"github.com/spf13/cobra"

	"advent-calendar/internal/client"
	"advent-calendar/internal/utils"
)

var (
	clientState    string
	clientInstance string
	clientTestMode bool
)

func loadCalendar(ctx context.Context, pageURL string) *client.Calendar {
	if clientTestMode {
		var err error
		if pageURL, err = utils.WithQuery(pageURL, cfg.TestModeParam, "1"); err != nil {
			slog.Error("Invalid page URL", "error", err)
			os.Exit(1)
		}
	}
	cal, err := client.Load(ctx, client.NewHTTPTransport(nil), pageURL, client.NewFileStorage(clientState))
	if err != nil {
		slog.Error("Failed to load calendar", "error", err, "url", pageURL)
		os.Exit(1)
	}
	return cal
}

var openCmd = &cobra.Command{
	Use:   "open <page-url> <day>",
	Short: "Open a door of a published calendar and print its content",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		day, err := strconv.Atoi(args[1])
		if err != nil {
			slog.Error("Day must be a number", "day", args[1])
			os.Exit(1)
		}

		ctrl, ok := loadCalendar(ctx, args[0]).Instance(clientInstance)
		if !ok {
			slog.Error("Calendar instance not found on page", "instance", clientInstance)
			os.Exit(1)
		}

		if err := ctrl.Open(ctx, day); err != nil {
			if errors.Is(err, client.ErrDoorLocked) {
				fmt.Printf("Door %d is still locked (available: %d)\n", day, ctrl.AvailableDay())
			} else {
				fmt.Println(ctrl.Status())
			}
			os.Exit(1)
		}

		modal := ctrl.Modal()
		text, err := html2text.FromString(modal.Content, html2text.Options{PrettyTables: true})
		if err != nil {
			text = modal.Content
		}
		fmt.Printf("%d. %s\n\n%s\n", modal.Day, modal.Title, strings.TrimSpace(text))
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <page-url>",
	Short: "Print the state of every door of a published calendar",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		cal := loadCalendar(ctx, args[0])
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "INSTANCE\tDAY\tSTATE\tTITLE")
		for _, ctrl := range cal.Controllers {
			if clientInstance != "" && ctrl.InstanceID() != clientInstance {
				continue
			}
			for _, d := range ctrl.Doors() {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", ctrl.InstanceID(), d.Day, ctrl.State(d.Day), d.Title)
			}
		}
		w.Flush()
	},
}

func init() {
	for _, c := range []*cobra.Command{openCmd, statusCmd} {
		c.Flags().StringVar(&clientState, "state", ".advent-state.json", "file holding opened doors")
		c.Flags().StringVar(&clientInstance, "instance", "", "calendar instance id (default first on page)")
		c.Flags().BoolVar(&clientTestMode, "test-mode", false, "request test mode for the page")
		rootCmd.AddCommand(c)
	}
}
