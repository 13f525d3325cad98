package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ErrNoProvider    = errors.New("no oEmbed provider for url")
	ErrEmptyResponse = errors.New("oEmbed response has no html")
)

// Embedder resolves a media page URL into embeddable HTML.
type Embedder interface {
	Embed(ctx context.Context, mediaURL string) (template.HTML, error)
}

// Provider is one oEmbed endpoint and the URL shapes it serves.
type Provider struct {
	Name     string
	Endpoint string
	Match    *regexp.Regexp
}

var DefaultProviders = []Provider{
	{
		Name:     "youtube",
		Endpoint: "https://www.youtube.com/oembed",
		Match:    regexp.MustCompile(`^https?://((www|m)\.)?(youtube\.com|youtu\.be)/`),
	},
	{
		Name:     "vimeo",
		Endpoint: "https://vimeo.com/api/oembed.json",
		Match:    regexp.MustCompile(`^https?://(www\.|player\.)?vimeo\.com/`),
	},
	{
		Name:     "dailymotion",
		Endpoint: "https://www.dailymotion.com/services/oembed",
		Match:    regexp.MustCompile(`^https?://(www\.)?(dailymotion\.com|dai\.ly)/`),
	},
}

type oembedResponse struct {
	Type string `json:"type"`
	HTML string `json:"html"`
}

// OEmbed is an Embedder backed by oEmbed HTTP endpoints. Returned markup is
// restricted to a single https iframe.
type OEmbed struct {
	Providers []Provider
	HTTP      *http.Client
	AppName   string
	policy    *bluemonday.Policy
}

func NewOEmbed(timeout time.Duration) *OEmbed {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &OEmbed{
		Providers: DefaultProviders,
		HTTP:      &http.Client{Timeout: timeout},
		AppName:   "advent-calendar",
		policy:    newIframePolicy(),
	}
}

func newIframePolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("iframe")
	p.AllowAttrs("width", "height").Matching(regexp.MustCompile(`^[0-9]{1,4}%?$`)).OnElements("iframe")
	p.AllowAttrs("title", "allow", "allowfullscreen", "frameborder", "referrerpolicy", "loading").OnElements("iframe")
	p.AllowAttrs("src").Matching(regexp.MustCompile(`^https://`)).OnElements("iframe")
	p.AllowURLSchemes("https")
	return p
}

func (o *OEmbed) provider(mediaURL string) (Provider, bool) {
	for _, p := range o.Providers {
		if p.Match.MatchString(mediaURL) {
			return p, true
		}
	}
	return Provider{}, false
}

func (o *OEmbed) Embed(ctx context.Context, mediaURL string) (template.HTML, error) {
	p, ok := o.provider(mediaURL)
	if !ok {
		return "", ErrNoProvider
	}

	endpoint, err := url.Parse(p.Endpoint)
	if err != nil {
		return "", err
	}
	q := endpoint.Query()
	q.Set("url", mediaURL)
	q.Set("format", "json")
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", o.AppName)

	resp, err := o.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("oEmbed %s: unexpected status %d", p.Name, resp.StatusCode)
	}

	var payload oembedResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return "", fmt.Errorf("oEmbed %s: %w", p.Name, err)
	}
	html := strings.TrimSpace(o.policy.Sanitize(payload.HTML))
	if html == "" {
		return "", ErrEmptyResponse
	}
	return template.HTML(html), nil
}

var reYouTubeID = regexp.MustCompile(`(?:youtube(?:-nocookie)?\.com/(?:watch\?(?:[^#]*&)?v=|embed/|shorts/|live/)|youtu\.be/)([A-Za-z0-9_-]{11})`)

// YouTubeID extracts a video id from common YouTube URL shapes.
func YouTubeID(videoURL string) (string, bool) {
	m := reYouTubeID.FindStringSubmatch(videoURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// EmbedURL builds a direct player URL for a recognized video URL, or returns
// the empty string.
func EmbedURL(videoURL string) string {
	if id, ok := YouTubeID(videoURL); ok {
		return "https://www.youtube.com/embed/" + id
	}
	return ""
}
