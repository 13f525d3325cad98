package content

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"advent-calendar/internal/door"
)

type stubEmbedder struct {
	html template.HTML
	err  error
}

func (s stubEmbedder) Embed(ctx context.Context, mediaURL string) (template.HTML, error) {
	return s.html, s.err
}

func parse(t *testing.T, html template.HTML) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	require.NoError(t, err)
	return doc
}

func sanitized(raw door.Raw) door.Door {
	d, _ := door.Sanitize([]door.Raw{raw}).Find(raw["day"].(int))
	return d
}

func TestRender_Image(t *testing.T) {
	r := NewRenderer(nil)
	out, err := r.Render(context.Background(), sanitized(door.Raw{
		"day": 1, "title": "Snow", "imageUrl": "https://example.com/snow.jpg",
	}))
	require.NoError(t, err)

	doc := parse(t, out)
	require.Equal(t, "Snow", doc.Find("h3.advent-door__title").Text())
	img := doc.Find("img")
	require.Equal(t, "https://example.com/snow.jpg", img.AttrOr("src", ""))
	require.Equal(t, "Snow", img.AttrOr("alt", ""))
}

func TestRender_ImageWithoutURL(t *testing.T) {
	r := NewRenderer(nil)
	out, err := r.Render(context.Background(), sanitized(door.Raw{"day": 1}))
	require.NoError(t, err)
	require.Equal(t, 0, parse(t, out).Find("img").Length())
}

func TestImageAlt(t *testing.T) {
	require.Equal(t, "Door 4 image", imageAlt(door.Door{Day: 4}))
	require.Equal(t, "Star", imageAlt(door.Door{Day: 4, Title: "Star"}))
}

func TestRender_TitleAndDescriptionPrecedeMedia(t *testing.T) {
	r := NewRenderer(nil)
	out, err := r.Render(context.Background(), sanitized(door.Raw{
		"day": 2, "type": "link", "title": "Read", "description": "Line one\nLine two\n\nSecond paragraph",
		"linkUrl": "https://example.com",
	}))
	require.NoError(t, err)

	s := string(out)
	require.Less(t, strings.Index(s, "advent-door__title"), strings.Index(s, "advent-door__description"))
	require.Less(t, strings.Index(s, "advent-door__description"), strings.Index(s, "advent-door__media"))

	doc := parse(t, out)
	require.Equal(t, 2, doc.Find(".advent-door__description p").Length())
	require.Equal(t, 1, doc.Find(".advent-door__description br").Length())
}

func TestParagraphs_KeepsAuthoredText(t *testing.T) {
	r := NewRenderer(nil)
	out := r.Paragraphs("24. Dezember ist Heiligabend.\nZeile 2\n\n# Tag 1 im Advent\n\n    eingerückte Zeile\n\n*Sternchen* und 2*3*4\n\n- kein Listenpunkt")

	doc := parse(t, out)
	require.Equal(t, 0, doc.Find("ol, ul, li, h1, pre, code, em").Length())

	p := doc.Find("p")
	require.Equal(t, 5, p.Length())
	require.Equal(t, "24. Dezember ist Heiligabend.\nZeile 2", p.Eq(0).Text())
	require.Equal(t, 1, p.Eq(0).Find("br").Length())
	require.Equal(t, "# Tag 1 im Advent", p.Eq(1).Text())
	require.Equal(t, "eingerückte Zeile", p.Eq(2).Text())
	require.Equal(t, "*Sternchen* und 2*3*4", p.Eq(3).Text())
	require.Equal(t, "- kein Listenpunkt", p.Eq(4).Text())
}

func TestParagraphs_PassesSafeMarkup(t *testing.T) {
	r := NewRenderer(nil)
	out := r.Paragraphs(`Ein <strong>fettes</strong> Wort<script>alert(1)</script>`)

	doc := parse(t, out)
	require.Equal(t, "fettes", doc.Find("p strong").Text())
	require.Equal(t, 0, doc.Find("script").Length())
}

func TestRender_Link(t *testing.T) {
	r := NewRenderer(nil)
	out, err := r.Render(context.Background(), sanitized(door.Raw{
		"day": 3, "type": "link", "linkUrl": "https://example.com/a", "linkLabel": "Go",
	}))
	require.NoError(t, err)

	a := parse(t, out).Find("a.advent-door__action--link")
	require.Equal(t, "https://example.com/a", a.AttrOr("href", ""))
	require.Equal(t, "_blank", a.AttrOr("target", ""))
	require.Contains(t, a.AttrOr("rel", ""), "noreferrer")
	require.Equal(t, "Go", a.Text())
}

func TestRender_Download(t *testing.T) {
	r := NewRenderer(nil)
	out, err := r.Render(context.Background(), door.Sanitize(nil)[23])
	require.NoError(t, err)

	a := parse(t, out).Find("a.advent-door__action--download")
	require.Equal(t, door.DefaultFinaleURL, a.AttrOr("href", ""))
	require.Equal(t, door.DefaultFinaleLabel, a.Text())

	out, err = r.Render(context.Background(), sanitized(door.Raw{"day": 5, "type": "download"}))
	require.NoError(t, err)
	require.Equal(t, 0, parse(t, out).Find("a").Length(), "no action without a url")
}

func TestRender_Video(t *testing.T) {
	d := sanitized(door.Raw{"day": 6, "type": "video", "videoUrl": "https://www.youtube.com/watch?v=dQw4w9WgXcQ"})

	embedded := NewRenderer(stubEmbedder{html: `<iframe src="https://www.youtube.com/embed/abc"></iframe>`})
	out, err := embedded.Render(context.Background(), d)
	require.NoError(t, err)
	require.Equal(t, "https://www.youtube.com/embed/abc", parse(t, out).Find("iframe").AttrOr("src", ""))

	fallback := NewRenderer(stubEmbedder{err: errors.New("offline")})
	out, err = fallback.Render(context.Background(), d)
	require.NoError(t, err)
	require.Equal(t, "https://www.youtube.com/embed/dQw4w9WgXcQ", parse(t, out).Find("iframe").AttrOr("src", ""))

	unknown := sanitized(door.Raw{"day": 6, "type": "video", "title": "Clip", "videoUrl": "https://example.com/clip.mp4"})
	out, err = fallback.Render(context.Background(), unknown)
	require.NoError(t, err)
	doc := parse(t, out)
	require.Equal(t, 0, doc.Find("iframe").Length())
	require.Equal(t, "Clip", doc.Find("h3").Text())
}

func TestYouTubeID(t *testing.T) {
	cases := map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":             "dQw4w9WgXcQ",
		"https://youtube.com/watch?feature=share&v=dQw4w9WgXcQ":   "dQw4w9WgXcQ",
		"https://www.youtube.com/embed/dQw4w9WgXcQ":               "dQw4w9WgXcQ",
		"https://www.youtube.com/shorts/dQw4w9WgXcQ":              "dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ?t=42":                       "dQw4w9WgXcQ",
		"https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ?rel=0": "dQw4w9WgXcQ",
	}
	for in, want := range cases {
		got, ok := YouTubeID(in)
		require.True(t, ok, in)
		require.Equal(t, want, got, in)
	}

	_, ok := YouTubeID("https://vimeo.com/123456")
	require.False(t, ok)
	require.Empty(t, EmbedURL("https://vimeo.com/123456"))
}

func TestOEmbed_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "https://video.test/v/1", r.URL.Query().Get("url"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"type":"video","html":"<iframe src=\"https://video.test/embed/1\" width=\"560\" onload=\"x()\"></iframe><script>alert(1)</script>"}`))
	}))
	defer srv.Close()

	o := NewOEmbed(0)
	o.Providers = []Provider{{Name: "test", Endpoint: srv.URL, Match: regexp.MustCompile(`^https://video\.test/`)}}

	html, err := o.Embed(context.Background(), "https://video.test/v/1")
	require.NoError(t, err)
	require.Contains(t, string(html), `src="https://video.test/embed/1"`)
	require.NotContains(t, string(html), "onload")
	require.NotContains(t, string(html), "script")

	_, err = o.Embed(context.Background(), "https://other.test/v/1")
	require.ErrorIs(t, err, ErrNoProvider)
}

func TestOEmbed_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	o := NewOEmbed(0)
	o.Providers = []Provider{{Name: "test", Endpoint: srv.URL, Match: regexp.MustCompile(`.`)}}
	_, err := o.Embed(context.Background(), "https://video.test/v/1")
	require.Error(t, err)
}
