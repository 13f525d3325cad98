package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Calendar is a loaded page with one controller per instance.
type Calendar struct {
	URL         *url.URL
	Controllers []*Controller
}

// Load fetches pageURL, parses its bootstrap and builds controllers sharing
// storage and t.
func Load(ctx context.Context, t *HTTPTransport, pageURL string, storage Storage) (*Calendar, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	resp, err := t.Get(ctx, u.String())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	page, err := ParseBootstrap(resp.Body)
	if err != nil {
		return nil, err
	}
	if t.Base == nil {
		t.Base = u
	}

	cal := &Calendar{URL: u}
	for _, id := range page.Order {
		cal.Controllers = append(cal.Controllers, NewController(id, page.Instances[id], storage, t))
	}
	return cal, nil
}

// Instance returns the controller for id, or the first one when id is empty.
func (c *Calendar) Instance(id string) (*Controller, bool) {
	for _, ctrl := range c.Controllers {
		if id == "" || ctrl.InstanceID() == id {
			return ctrl, true
		}
	}
	return nil, false
}
