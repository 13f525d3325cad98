package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"

	"advent-calendar/internal/door"
	"advent-calendar/internal/reveal"
)

// RevealError is a failure reported by the reveal endpoint.
type RevealError struct {
	Status  int
	Code    string
	Message string
}

func (e *RevealError) Error() string {
	return fmt.Sprintf("reveal failed: %s (%d)", e.Code, e.Status)
}

// RevealResult is the success payload of a reveal.
type RevealResult struct {
	Door struct {
		Day     int       `json:"day"`
		Title   string    `json:"title"`
		Type    door.Type `json:"type"`
		Content string    `json:"content"`
	} `json:"door"`
	TestMode     bool `json:"testMode"`
	AvailableDay int  `json:"availableDay"`
}

type RevealRequest struct {
	AjaxURL    string
	InstanceID string
	Day        int
	Nonce      string
}

// Transport sends reveal requests.
type Transport interface {
	Reveal(ctx context.Context, req RevealRequest) (*RevealResult, error)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// HTTPTransport posts reveal forms. Relative ajax URLs resolve against Base.
// The cookie jar carries the test mode marker between page and reveal.
type HTTPTransport struct {
	Client *http.Client
	Base   *url.URL
}

func NewHTTPTransport(base *url.URL) *HTTPTransport {
	jar, _ := cookiejar.New(nil)
	return &HTTPTransport{Client: &http.Client{Jar: jar}, Base: base}
}

// Get fetches a page with the transport's client.
func (t *HTTPTransport) Get(ctx context.Context, pageURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	return t.Client.Do(req)
}

func (t *HTTPTransport) resolve(ajaxURL string) (string, error) {
	u, err := url.Parse(ajaxURL)
	if err != nil {
		return "", err
	}
	if t.Base != nil {
		u = t.Base.ResolveReference(u)
	}
	return u.String(), nil
}

func (t *HTTPTransport) Reveal(ctx context.Context, r RevealRequest) (*RevealResult, error) {
	endpoint, err := t.resolve(r.AjaxURL)
	if err != nil {
		return nil, err
	}
	form := url.Values{
		"action":   {reveal.Action},
		"instance": {r.InstanceID},
		"day":      {strconv.Itoa(r.Day)},
		"nonce":    {r.Nonce},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&env); err != nil {
		return nil, &RevealError{Status: resp.StatusCode, Code: "bad_response"}
	}
	if !env.Success {
		rerr := &RevealError{Status: resp.StatusCode}
		var data struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(env.Data, &data) == nil {
			rerr.Code, rerr.Message = data.Code, data.Message
		}
		return nil, rerr
	}

	var result RevealResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, fmt.Errorf("decode reveal: %w", err)
	}
	return &result, nil
}
