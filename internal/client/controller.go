// Package client drives a rendered calendar the way its browser script does:
// per-door state, the reveal request, the opened set and the overlay.
package client

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"advent-calendar/internal/door"
	"advent-calendar/internal/render"
)

// State of a door button.
type State int

const (
	Locked State = iota
	Unlocked
	Opened
)

func (s State) String() string {
	switch s {
	case Locked:
		return "locked"
	case Unlocked:
		return "unlocked"
	case Opened:
		return "opened"
	default:
		return "unknown"
	}
}

var (
	ErrDoorLocked = errors.New("door is locked")
	ErrBusy       = errors.New("door is loading")
	ErrNoContent  = errors.New("reveal returned no content")
)

// DefaultFailureMessage is shown when the endpoint gave no message.
const DefaultFailureMessage = "The door could not be opened. Please try again."

// Modal is the overlay of one instance.
type Modal struct {
	Open    bool
	Day     int
	Title   string
	Content string
}

// Controller holds the client state of one calendar instance.
type Controller struct {
	instanceID string
	boot       render.Bootstrap
	storage    Storage
	transport  Transport
	logger     *slog.Logger

	mu           sync.Mutex
	availableDay int
	testMode     bool
	opened       map[int]bool
	loading      map[int]bool
	status       string
	modal        Modal
}

// NewController reads the opened set once. Storage failures yield an empty set.
func NewController(instanceID string, boot render.Bootstrap, storage Storage, transport Transport) *Controller {
	c := &Controller{
		instanceID:   instanceID,
		boot:         boot,
		storage:      storage,
		transport:    transport,
		logger:       slog.With("component", "client", "instance", instanceID),
		availableDay: boot.AvailableDay,
		testMode:     boot.TestMode,
		opened:       map[int]bool{},
		loading:      map[int]bool{},
	}
	if storage != nil {
		days, err := storage.Load(StorageKey(instanceID))
		if err != nil {
			c.logger.Warn("Opened doors unavailable", "error", err)
		}
		for _, day := range days {
			if day >= 1 && day <= door.Count {
				c.opened[day] = true
			}
		}
	}
	return c
}

func (c *Controller) InstanceID() string { return c.instanceID }

// Doors returns the bootstrap metadata of every door.
func (c *Controller) Doors() []door.Meta {
	return append([]door.Meta(nil), c.boot.Doors...)
}

func (c *Controller) effective() int {
	if c.testMode {
		return door.Count
	}
	return c.availableDay
}

func (c *Controller) state(day int) State {
	switch {
	case c.opened[day]:
		return Opened
	case day >= 1 && day <= c.effective():
		return Unlocked
	default:
		return Locked
	}
}

// State returns the display state of day. Opened doors stay opened even when
// the date would lock them.
func (c *Controller) State(day int) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state(day)
}

func (c *Controller) Loading(day int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading[day]
}

// Status is the text of the status region.
func (c *Controller) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller) AvailableDay() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.availableDay
}

func (c *Controller) Modal() Modal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modal
}

// Open reveals day. Locked doors are not wired and return ErrDoorLocked
// without a request. On any failure the door keeps its prior state and the
// status region shows the message.
func (c *Controller) Open(ctx context.Context, day int) error {
	c.mu.Lock()
	if c.state(day) == Locked {
		c.mu.Unlock()
		return ErrDoorLocked
	}
	if c.loading[day] {
		c.mu.Unlock()
		return ErrBusy
	}
	c.loading[day] = true
	c.status = ""
	c.mu.Unlock()

	result, err := c.transport.Reveal(ctx, RevealRequest{
		AjaxURL:    c.boot.AjaxURL,
		InstanceID: c.instanceID,
		Day:        day,
		Nonce:      c.boot.Nonce,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.loading, day)

	if err == nil && result.Door.Content == "" {
		err = ErrNoContent
	}
	if err != nil {
		c.status = failureMessage(err)
		c.logger.Debug("Reveal failed", "day", day, "error", err)
		return err
	}

	c.opened[day] = true
	c.persist()
	c.availableDay = result.AvailableDay
	c.testMode = result.TestMode
	c.modal = Modal{Open: true, Day: day, Title: result.Door.Title, Content: result.Door.Content}
	return nil
}

// persist rewrites the opened set. Errors are logged and ignored.
func (c *Controller) persist() {
	if c.storage == nil {
		return
	}
	if err := c.storage.Save(StorageKey(c.instanceID), sortedDays(c.opened)); err != nil {
		c.logger.Warn("Failed to persist opened doors", "error", err)
	}
}

// Close closes the overlay from the close control.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modal.Open = false
}

// ClickBackdrop closes the overlay.
func (c *Controller) ClickBackdrop() {
	c.Close()
}

// KeyDown closes the overlay on Escape while it is open. It reports whether
// the key was handled.
func (c *Controller) KeyDown(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if key != "Escape" || !c.modal.Open {
		return false
	}
	c.modal.Open = false
	return true
}

func failureMessage(err error) string {
	var rerr *RevealError
	if errors.As(err, &rerr) && rerr.Message != "" {
		return rerr.Message
	}
	return DefaultFailureMessage
}
