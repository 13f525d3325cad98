package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/inbucket/html2text"
	"github.com/spf13/cobra"

	"advent-calendar/internal/availability"
	"advent-calendar/internal/door"
	"advent-calendar/internal/pages"
)

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Inspect authored pages",
}

var pagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pages and their calendar blocks",
	Run: func(cmd *cobra.Command, args []string) {
		site := loadSite()
		if len(site.Pages) == 0 {
			fmt.Printf("No pages found in %s\n", cfg.PagesFile)
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSLUG\tTITLE\tINSTANCES")
		for _, p := range site.Pages {
			var ids []string
			for _, b := range p.Blocks {
				if b.InstanceID != "" {
					ids = append(ids, b.InstanceID)
				}
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.Slug, p.Title, strings.Join(ids, ","))
		}
		w.Flush()
	},
}

var doorsCmd = &cobra.Command{
	Use:   "doors",
	Short: "Inspect sanitized doors",
}

var doorsListCmd = &cobra.Command{
	Use:   "list <instance-id>",
	Short: "List the 24 sanitized doors of a calendar instance",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		block, ok := loadSite().Instances()[args[0]]
		if !ok {
			slog.Error("Unknown calendar instance", "instance", args[0])
			os.Exit(1)
		}

		sanitizer := door.NewSanitizer(cfg.Finale.DownloadURL, cfg.Finale.DownloadLabel)
		availableDay := availability.NewPolicy(cfg.Location()).AvailableDay()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DAY\tTYPE\tSTATE\tTITLE\tTARGET\tDESCRIPTION")
		for _, d := range sanitizer.Sanitize(block.Doors) {
			state := "unlocked"
			if d.Day > availableDay {
				state = "locked"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", d.Day, d.Type, state, d.Title, target(d), preview(d.Description, 40))
		}
		w.Flush()
	},
}

func loadSite() *pages.Site {
	site, err := pages.Load(cfg.PagesFile)
	if err != nil {
		slog.Error("Failed to load pages", "error", err, "file", cfg.PagesFile)
		os.Exit(1)
	}
	return site
}

func target(d door.Door) string {
	switch d.Type {
	case door.TypeVideo:
		return d.VideoURL
	case door.TypeDownload, door.TypeLink:
		return d.LinkURL
	default:
		return d.ImageURL
	}
}

// preview renders safe HTML as a single line of plain text.
func preview(html string, max int) string {
	text, err := html2text.FromString(html, html2text.Options{OmitLinks: true})
	if err != nil {
		return ""
	}
	text = strings.Join(strings.Fields(text), " ")
	if r := []rune(text); len(r) > max {
		return string(r[:max-1]) + "…"
	}
	return text
}

func init() {
	pagesCmd.AddCommand(pagesListCmd)
	doorsCmd.AddCommand(doorsListCmd)
	rootCmd.AddCommand(pagesCmd, doorsCmd)
}
