// Package render produces calendar block markup and the per-request
// bootstrap payload.
package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"advent-calendar/internal/antiforgery"
	"advent-calendar/internal/assets"
	"advent-calendar/internal/availability"
	"advent-calendar/internal/cache"
	"advent-calendar/internal/door"
	"advent-calendar/internal/i18n"
	"advent-calendar/internal/reveal"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// BlockRequest describes one calendar block placed on a page.
type BlockRequest struct {
	InstanceID  string
	OwnerPageID int64
	Doors       []door.Raw
	TestMode    bool
	AjaxURL     string
	T           i18n.Translate
}

type button struct {
	Day         int
	Title       string
	Type        door.Type
	Locked      bool
	LockedTitle string
}

type blockView struct {
	InstanceID string
	TestMode   bool
	Doors      []button
	T          i18n.Translate
}

// Collector receives what a rendered block needs at the end of the page.
// *Frame implements it.
type Collector interface {
	assets.Enqueuer
	Add(instanceID string, b Bootstrap)
}

// BlockRenderer sanitizes a block, caches the instance and renders the grid.
type BlockRenderer struct {
	sanitizer *door.Sanitizer
	cache     cache.Cache
	tokens    antiforgery.AntiForgery
	policy    *availability.Policy
	tmpl      *template.Template
	logger    *slog.Logger
}

func NewBlockRenderer(sanitizer *door.Sanitizer, c cache.Cache, tokens antiforgery.AntiForgery, policy *availability.Policy) *BlockRenderer {
	if sanitizer == nil {
		sanitizer = door.NewSanitizer("", "")
	}
	return &BlockRenderer{
		sanitizer: sanitizer,
		cache:     c,
		tokens:    tokens,
		policy:    policy,
		tmpl:      template.Must(template.ParseFS(templatesFS, "templates/*.tmpl")),
		logger:    slog.With("component", "render"),
	}
}

// Render writes the block into the collector and returns its markup. An
// empty instance id renders nothing.
func (r *BlockRenderer) Render(ctx context.Context, frame Collector, req BlockRequest) (template.HTML, error) {
	instanceID := strings.TrimSpace(req.InstanceID)
	if instanceID == "" {
		return "", nil
	}
	t := req.T
	if t == nil {
		t = func(key string, args ...any) string { return key }
	}

	doors := r.sanitizer.Sanitize(req.Doors)
	if err := r.cache.Put(ctx, instanceID, req.OwnerPageID, doors); err != nil {
		return "", fmt.Errorf("cache instance %s: %w", instanceID, err)
	}

	token, err := r.tokens.Issue(ctx, reveal.Action)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	availableDay := r.policy.AvailableDay()
	effective := r.policy.Effective(req.TestMode)

	view := blockView{
		InstanceID: instanceID,
		TestMode:   req.TestMode,
		Doors:      make([]button, 0, len(doors)),
		T:          t,
	}
	for _, d := range doors {
		locked := d.Day > effective
		b := button{Day: d.Day, Title: d.Title, Type: d.Type, Locked: locked}
		if locked {
			b.LockedTitle = t("calendar.locked", d.Day)
		}
		view.Doors = append(view.Doors, b)
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "block", view); err != nil {
		return "", fmt.Errorf("render block %s: %w", instanceID, err)
	}

	frame.Add(instanceID, Bootstrap{
		PostID:       req.OwnerPageID,
		AjaxURL:      req.AjaxURL,
		Nonce:        token,
		TestMode:     req.TestMode,
		AvailableDay: availableDay,
		Doors:        doors.Metas(),
	})
	frame.Enqueue(assets.CalendarScript)

	r.logger.Debug("Rendered calendar block", "instance", instanceID, "available_day", availableDay, "test_mode", req.TestMode)
	return template.HTML(buf.String()), nil
}
