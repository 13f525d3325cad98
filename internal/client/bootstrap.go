package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"advent-calendar/internal/render"
)

var ErrNoCalendar = errors.New("page has no calendar")

// Page is what a rendered calendar page exposes to the controller.
type Page struct {
	Instances map[string]render.Bootstrap
	// Order lists instance ids in document order.
	Order []string
	// Buttons maps instance id to the door days present in its grid.
	Buttons map[string][]int
}

// ParseBootstrap extracts the bootstrap payload and block markup from a page.
func ParseBootstrap(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	script := doc.Find("script#" + render.BootstrapID)
	if script.Length() == 0 {
		return nil, ErrNoCalendar
	}
	page := &Page{Buttons: map[string][]int{}}
	if err := json.Unmarshal([]byte(script.First().Text()), &page.Instances); err != nil {
		return nil, fmt.Errorf("decode bootstrap: %w", err)
	}

	doc.Find("section[data-instance]").Each(func(_ int, s *goquery.Selection) {
		id := s.AttrOr("data-instance", "")
		if _, ok := page.Instances[id]; !ok {
			return
		}
		page.Order = append(page.Order, id)
		s.Find("button[data-day]").Each(func(_ int, b *goquery.Selection) {
			if day, err := strconv.Atoi(b.AttrOr("data-day", "")); err == nil {
				page.Buttons[id] = append(page.Buttons[id], day)
			}
		})
	})
	if len(page.Order) == 0 {
		return nil, ErrNoCalendar
	}
	return page, nil
}
