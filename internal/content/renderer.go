// Package content renders the display fragment of a revealed door.
package content

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"advent-calendar/internal/door"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

type fragment struct {
	Day         int
	Type        door.Type
	Title       string
	Description template.HTML
	Media       template.HTML
}

type media struct {
	URL   string
	Label string
	Alt   string
	Embed template.HTML
}

// Renderer turns sanitized doors into HTML fragments.
type Renderer struct {
	embedder Embedder
	md       goldmark.Markdown
	policy   *bluemonday.Policy
	tmpl     *template.Template
	logger   *slog.Logger
}

// NewRenderer builds a renderer. A nil embedder skips the oEmbed lookup and
// goes straight to URL pattern matching.
func NewRenderer(embedder Embedder) *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").OnElements("p", "span", "figure", "figcaption")
	policy.AllowElements("figure", "figcaption")
	policy.RequireNoFollowOnLinks(true)

	return &Renderer{
		embedder: embedder,
		md:       newParagrapher(),
		policy: policy,
		tmpl:   template.Must(template.ParseFS(templatesFS, "templates/*.tmpl")),
		logger: slog.With("component", "content"),
	}
}

// Render produces the fragment for d: title, description, then the
// type-specific media slot.
func (r *Renderer) Render(ctx context.Context, d door.Door) (template.HTML, error) {
	name, m := r.mediaFor(ctx, d)

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, m); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}

	f := fragment{
		Day:         d.Day,
		Type:        d.Type,
		Title:       d.Title,
		Description: r.Paragraphs(d.Description),
		Media:       template.HTML(strings.TrimSpace(buf.String())),
	}
	buf.Reset()
	if err := r.tmpl.ExecuteTemplate(&buf, "door", f); err != nil {
		return "", fmt.Errorf("render door %d: %w", d.Day, err)
	}
	return template.HTML(buf.String()), nil
}

func (r *Renderer) mediaFor(ctx context.Context, d door.Door) (string, media) {
	switch d.Type {
	case door.TypeVideo:
		return "media-video", r.video(ctx, d)
	case door.TypeDownload:
		return "media-download", media{URL: d.LinkURL, Label: d.DownloadLabel}
	case door.TypeLink:
		return "media-link", media{URL: d.LinkURL, Label: d.LinkLabel}
	case door.TypeImage:
		return "media-image", media{URL: d.ImageURL, Alt: imageAlt(d)}
	default:
		return "media-image", media{URL: d.ImageURL, Alt: imageAlt(d)}
	}
}

func (r *Renderer) video(ctx context.Context, d door.Door) media {
	m := media{Alt: d.Title}
	if d.VideoURL == "" {
		return m
	}
	if r.embedder != nil {
		markup, err := r.embedder.Embed(ctx, d.VideoURL)
		if err == nil && markup != "" {
			m.Embed = markup
			return m
		}
		r.logger.Debug("oEmbed lookup failed, matching URL patterns", "url", d.VideoURL, "error", err)
	}
	m.URL = EmbedURL(d.VideoURL)
	return m
}

func imageAlt(d door.Door) string {
	if d.Title != "" {
		return d.Title
	}
	return fmt.Sprintf("Door %d image", d.Day)
}

// newParagrapher builds a converter that only splits paragraphs and line
// breaks. Lists, headings, code blocks and emphasis are not parsed, so author
// text comes out as written. Author HTML is passed through and sanitized after
// conversion.
func newParagrapher() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithParser(parser.NewParser(
			parser.WithBlockParsers(
				util.Prioritized(parser.NewHTMLBlockParser(), 900),
				util.Prioritized(parser.NewParagraphParser(), 1000),
			),
			parser.WithInlineParsers(
				util.Prioritized(parser.NewRawHTMLParser(), 400),
			),
		)),
		goldmark.WithRendererOptions(
			goldmarkHTML.WithHardWraps(),
			goldmarkHTML.WithUnsafe(),
		),
	)
}

// Paragraphs converts line breaks of safe HTML text into paragraphs and
// breaks, and sanitizes the result.
func (r *Renderer) Paragraphs(text string) template.HTML {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(r.policy.Sanitize(template.HTMLEscapeString(text)))
	}
	return template.HTML(strings.TrimSpace(r.policy.Sanitize(buf.String())))
}
