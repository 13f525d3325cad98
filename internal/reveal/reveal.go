// Package reveal authorizes and serves single door reveals.
package reveal

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"strconv"
	"strings"

	"advent-calendar/internal/antiforgery"
	"advent-calendar/internal/availability"
	"advent-calendar/internal/cache"
	"advent-calendar/internal/content"
	"advent-calendar/internal/door"
)

// Action is the anti-forgery action name reveal tokens are scoped to.
const Action = "advent_open_door"

var (
	ErrInvalidNonce   = errors.New("invalid anti-forgery token")
	ErrInvalidRequest = errors.New("invalid reveal request")
	ErrExpired        = errors.New("calendar instance expired")
	ErrMissingDoor    = errors.New("door not found")
	ErrLocked         = errors.New("door is locked")
)

// Request carries the untrusted reveal input. Day is kept as received.
type Request struct {
	InstanceID string
	Day        string
	Token      string
	TestMode   bool
}

// Door is a revealed door with its rendered fragment.
type Door struct {
	Day     int           `json:"day"`
	Title   string        `json:"title"`
	Type    door.Type     `json:"type"`
	Content template.HTML `json:"content"`
}

type Result struct {
	Door         Door `json:"door"`
	TestMode     bool `json:"testMode"`
	AvailableDay int  `json:"availableDay"`
}

// Service holds no per-request state. Reveals never mutate anything.
type Service struct {
	tokens   antiforgery.AntiForgery
	cache    cache.Cache
	policy   *availability.Policy
	renderer *content.Renderer
	logger   *slog.Logger
}

func NewService(tokens antiforgery.AntiForgery, c cache.Cache, policy *availability.Policy, renderer *content.Renderer) *Service {
	return &Service{
		tokens:   tokens,
		cache:    c,
		policy:   policy,
		renderer: renderer,
		logger:   slog.With("component", "reveal"),
	}
}

// ParseDay accepts an integer string in [1, door.Count].
func ParseDay(s string) (int, bool) {
	day, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || day < 1 || day > door.Count {
		return 0, false
	}
	return day, true
}

// Reveal runs the checks in order: token, input, cache, door, lock. The first
// failure stops processing and nothing of the door is returned.
func (s *Service) Reveal(ctx context.Context, req Request) (*Result, error) {
	if !s.tokens.Verify(ctx, Action, req.Token) {
		return nil, ErrInvalidNonce
	}

	instanceID := strings.TrimSpace(req.InstanceID)
	day, ok := ParseDay(req.Day)
	if instanceID == "" || !ok {
		return nil, ErrInvalidRequest
	}

	instance, found, err := s.cache.Get(ctx, instanceID)
	if err != nil {
		return nil, fmt.Errorf("instance lookup: %w", err)
	}
	if !found {
		return nil, ErrExpired
	}

	d, found := instance.Doors.Find(day)
	if !found {
		s.logger.Error("Cached instance is missing a door", "instance", instanceID, "day", day)
		return nil, ErrMissingDoor
	}

	availableDay := s.policy.AvailableDay()
	if !req.TestMode && day > availableDay {
		return nil, ErrLocked
	}

	html, err := s.renderer.Render(ctx, d)
	if err != nil {
		return nil, err
	}

	return &Result{
		Door: Door{
			Day:     d.Day,
			Title:   d.Title,
			Type:    d.Type,
			Content: html,
		},
		TestMode:     req.TestMode,
		AvailableDay: availableDay,
	}, nil
}
