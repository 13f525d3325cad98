package door

import (
	"html"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Raw is one authored door entry as decoded from block attributes.
type Raw map[string]any

const (
	DefaultFinaleURL     = "https://guideos.de/download/"
	DefaultFinaleLabel   = "Download"
	DefaultDownloadLabel = "Download"
	DefaultLinkLabel     = "Open link"
)

// Sanitizer normalizes authored entries. The zero value is not usable, use
// NewSanitizer.
type Sanitizer struct {
	FinaleURL   string
	FinaleLabel string

	strict *bluemonday.Policy
	rich   *bluemonday.Policy
}

// NewSanitizer builds a sanitizer whose last door defaults to a download of
// finaleURL labelled finaleLabel. Empty arguments use the package defaults.
func NewSanitizer(finaleURL, finaleLabel string) *Sanitizer {
	s := &Sanitizer{
		FinaleURL:   DefaultFinaleURL,
		FinaleLabel: DefaultFinaleLabel,
		strict:      bluemonday.StrictPolicy(),
		rich:        newDescriptionPolicy(),
	}
	if u := SafeURL(finaleURL); u != "" {
		s.FinaleURL = u
	}
	if l := strings.TrimSpace(finaleLabel); l != "" {
		s.FinaleLabel = l
	}
	return s
}

func newDescriptionPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").OnElements("p", "span", "figure", "figcaption")
	policy.AllowElements("figure", "figcaption")
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return policy
}

var defaultSanitizer = NewSanitizer("", "")

// Sanitize normalizes raw with the default sanitizer.
func Sanitize(raw []Raw) List {
	return defaultSanitizer.Sanitize(raw)
}

// Sanitize always yields Count doors, one per day in order. Entries are
// indexed by their claimed day, clamped to [1, Count]; the last entry wins on
// duplicates. Missing days are synthesized from defaults.
func (s *Sanitizer) Sanitize(raw []Raw) List {
	byDay := make(map[int]Raw, Count)
	for i, entry := range raw {
		if entry == nil {
			continue
		}
		day, ok := toInt(entry["day"])
		if !ok {
			day = i + 1
		}
		byDay[clampDay(day)] = entry
	}

	doors := make(List, 0, Count)
	for day := 1; day <= Count; day++ {
		doors = append(doors, s.sanitizeOne(day, byDay[day]))
	}
	return doors
}

func (s *Sanitizer) defaults(day int) Raw {
	d := Raw{
		"title": DefaultTitle(day),
		"type":  string(TypeImage),
	}
	if day == Count {
		d["type"] = string(TypeDownload)
	}
	return d
}

func (s *Sanitizer) sanitizeOne(day int, entry Raw) Door {
	merged := s.defaults(day)
	for k, v := range entry {
		if isBlank(v) {
			continue
		}
		merged[k] = v
	}

	d := Door{
		Day:           day,
		Title:         s.plainText(toString(merged["title"])),
		Type:          ParseType(strings.ToLower(strings.TrimSpace(toString(merged["type"])))),
		Description:   s.richText(toString(merged["description"])),
		ImageURL:      SafeURL(toString(merged["imageUrl"])),
		DownloadLabel: s.plainText(toString(merged["downloadLabel"])),
		LinkURL:       SafeURL(toString(merged["linkUrl"])),
		LinkLabel:     s.plainText(toString(merged["linkLabel"])),
		VideoURL:      SafeURL(toString(merged["videoUrl"])),
	}
	if id, ok := toInt(merged["imageId"]); ok && id > 0 {
		d.ImageID = id
	}

	if d.Title == "" {
		d.Title = DefaultTitle(day)
	}
	// The finale target only fills a last door that resolves to a download.
	if day == Count && d.Type == TypeDownload {
		if d.LinkURL == "" {
			d.LinkURL = s.FinaleURL
		}
		if d.DownloadLabel == "" {
			d.DownloadLabel = s.FinaleLabel
		}
	}

	switch d.Type {
	case TypeDownload:
		if d.DownloadLabel == "" {
			d.DownloadLabel = DefaultDownloadLabel
		}
	case TypeLink:
		if d.LinkLabel == "" {
			d.LinkLabel = DefaultLinkLabel
		}
	}
	return d
}

// plainText strips all markup and returns unescaped text, ready for
// contextual escaping at output time.
func (s *Sanitizer) plainText(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.strict.Sanitize(v)))
}

func (s *Sanitizer) richText(v string) string {
	return strings.TrimSpace(s.rich.Sanitize(v))
}

// SafeURL returns u when it is an absolute http(s) URL with a host, and the
// empty string otherwise.
func SafeURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" || strings.ContainsAny(u, " \t\r\n<>\"`") {
		return ""
	}
	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return parsed.String()
	default:
		return ""
	}
}

func clampDay(day int) int {
	switch {
	case day < 1:
		return 1
	case day > Count:
		return Count
	default:
		return day
	}
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		return false
	}
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case uint64:
		if t > math.MaxInt32 {
			return math.MaxInt32, true
		}
		return int(t), true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return int(math.Max(math.Min(t, math.MaxInt32), math.MinInt32)), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
