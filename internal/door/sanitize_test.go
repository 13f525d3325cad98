package door

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func requireCanonical(t *testing.T, doors List) {
	t.Helper()
	require.Len(t, doors, Count)
	for i, d := range doors {
		require.Equal(t, i+1, d.Day, "doors must be ordered by day")
		require.Contains(t, Types, d.Type)
		require.NotEmpty(t, d.Title)
	}
}

func TestSanitize_AlwaysYieldsTwentyFourDoors(t *testing.T) {
	t.Parallel()

	cases := map[string][]Raw{
		"nil":          nil,
		"empty":        {},
		"nil entries":  {nil, nil},
		"out of range": {{"day": 0}, {"day": -4}, {"day": 99}, {"day": "abc"}},
		"duplicates":   {{"day": 3, "title": "a"}, {"day": 3, "title": "b"}},
		"garbage":      {{"day": []int{1}, "type": 42, "title": map[string]any{}}},
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			requireCanonical(t, Sanitize(raw))
		})
	}
}

func TestSanitize_LastDuplicateWins(t *testing.T) {
	t.Parallel()

	doors := Sanitize([]Raw{
		{"day": 5, "title": "first"},
		{"day": "5", "title": "second"},
	})
	require.Equal(t, "second", doors[4].Title)
}

func TestSanitize_ClampsDay(t *testing.T) {
	t.Parallel()

	doors := Sanitize([]Raw{
		{"day": -3, "title": "low"},
		{"day": 31, "title": "high", "type": "link"},
	})
	require.Equal(t, "low", doors[0].Title)
	require.Equal(t, "high", doors[23].Title)
	require.Equal(t, TypeLink, doors[23].Type)
}

func TestSanitize_MissingDayUsesPosition(t *testing.T) {
	t.Parallel()

	doors := Sanitize([]Raw{{"title": "one"}, {"title": "two"}})
	require.Equal(t, "one", doors[0].Title)
	require.Equal(t, "two", doors[1].Title)
}

func TestSanitize_Defaults(t *testing.T) {
	t.Parallel()

	doors := Sanitize(nil)
	require.Equal(t, "Door 1", doors[0].Title)
	require.Equal(t, TypeImage, doors[0].Type)

	finale := doors[23]
	require.Equal(t, TypeDownload, finale.Type)
	require.Equal(t, DefaultFinaleURL, finale.LinkURL)
	require.Equal(t, DefaultFinaleLabel, finale.DownloadLabel)
}

func TestSanitize_FinaleCanBeOverridden(t *testing.T) {
	t.Parallel()

	doors := Sanitize([]Raw{{"day": 24, "type": "video", "videoUrl": "https://youtu.be/dQw4w9WgXcQ"}})
	require.Equal(t, TypeVideo, doors[23].Type)
	require.Equal(t, "https://youtu.be/dQw4w9WgXcQ", doors[23].VideoURL)

	custom := NewSanitizer("https://example.com/iso", "Get it").Sanitize(nil)
	require.Equal(t, "https://example.com/iso", custom[23].LinkURL)
	require.Equal(t, "Get it", custom[23].DownloadLabel)
}

func TestSanitize_FinaleDefaultsOnlyFillDownloads(t *testing.T) {
	t.Parallel()

	link := Sanitize([]Raw{{"day": 24, "type": "link", "linkLabel": "Unser Blog"}})[23]
	require.Equal(t, TypeLink, link.Type)
	require.Empty(t, link.LinkURL)
	require.Empty(t, link.DownloadLabel)
	require.Equal(t, "Unser Blog", link.LinkLabel)

	download := Sanitize([]Raw{{"day": 24, "title": "Finale"}})[23]
	require.Equal(t, TypeDownload, download.Type)
	require.Equal(t, DefaultFinaleURL, download.LinkURL)
	require.Equal(t, DefaultFinaleLabel, download.DownloadLabel)

	authored := Sanitize([]Raw{{"day": 24, "type": "download", "linkUrl": "https://example.com/a.zip"}})[23]
	require.Equal(t, "https://example.com/a.zip", authored.LinkURL)
	require.Equal(t, DefaultFinaleLabel, authored.DownloadLabel)
}

func TestSanitize_UnknownTypeBecomesImage(t *testing.T) {
	t.Parallel()

	doors := Sanitize([]Raw{{"day": 2, "type": "hologram"}, {"day": 3, "type": " LINK "}})
	require.Equal(t, TypeImage, doors[1].Type)
	require.Equal(t, TypeLink, doors[2].Type)
	require.Equal(t, DefaultLinkLabel, doors[2].LinkLabel)
}

func TestSanitize_Fields(t *testing.T) {
	t.Parallel()

	doors := Sanitize([]Raw{{
		"day":         1,
		"title":       "<b>Tom &amp; Jerry</b><script>x()</script>",
		"description": "<p onclick=\"evil()\">Hello <a href=\"https://example.com\">there</a></p><script>alert(1)</script>",
		"imageUrl":    "javascript:alert(1)",
		"imageId":     "17",
		"linkUrl":     "/relative/path",
		"videoUrl":    "https://vimeo.com/123",
	}})
	d := doors[0]
	require.Equal(t, "Tom & Jerry", d.Title)
	require.NotContains(t, d.Description, "script")
	require.NotContains(t, d.Description, "onclick")
	require.Contains(t, d.Description, `href="https://example.com"`)
	require.Empty(t, d.ImageURL)
	require.Empty(t, d.LinkURL)
	require.Equal(t, 17, d.ImageID)
	require.Equal(t, "https://vimeo.com/123", d.VideoURL)
}

func TestSanitize_BlankTitleFallsBack(t *testing.T) {
	t.Parallel()

	doors := Sanitize([]Raw{{"day": 7, "title": "  <img src=x>  "}})
	require.Equal(t, "Door 7", doors[6].Title)
}

func TestSafeURL(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"https://example.com/a?b=c": "https://example.com/a?b=c",
		"http://example.com":        "http://example.com",
		"ftp://example.com":         "",
		"//example.com":             "",
		"example.com":               "",
		"data:text/html,hi":         "",
		"https://exa mple.com":      "",
		"":                          "",
	}
	for in, want := range cases {
		require.Equal(t, want, SafeURL(in), in)
	}
}

func TestList_Find(t *testing.T) {
	t.Parallel()

	doors := Sanitize(nil)
	d, ok := doors.Find(12)
	require.True(t, ok)
	require.Equal(t, 12, d.Day)

	_, ok = doors.Find(25)
	require.False(t, ok)
	_, ok = List{}.Find(1)
	require.False(t, ok)

	require.Len(t, doors.Metas(), Count)
}
