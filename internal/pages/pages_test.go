package pages

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"advent-calendar/internal/door"
)

const sample = `
pages:
  - slug: /advent/
    title: Advent
    blocks:
      - instance_id: " cal-a "
        doors:
          - day: 1
            title: First
            type: link
            linkUrl: https://example.com
          - day: 24
            title: Last
  - id: 42
    slug: empty
    title: Empty
    blocks:
      - instance_id: ""
`

func TestParse(t *testing.T) {
	site, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, site.Pages, 2)

	p, err := site.BySlug("advent")
	require.NoError(t, err)
	require.Equal(t, int64(1), p.ID)
	require.Equal(t, "cal-a", p.Blocks[0].InstanceID)

	doors := door.Sanitize(p.Blocks[0].Doors)
	require.Equal(t, door.TypeLink, doors[0].Type)
	require.Equal(t, "Last", doors[23].Title)

	empty, err := site.BySlug("empty")
	require.NoError(t, err)
	require.Equal(t, int64(42), empty.ID)

	_, err = site.BySlug("missing")
	require.ErrorIs(t, err, ErrPageNotFound)

	instances := site.Instances()
	require.Len(t, instances, 1)
	require.Contains(t, instances, "cal-a")
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("pages:\n  - title: no slug\n"))
	require.Error(t, err)

	_, err = Parse([]byte("pages:\n  - slug: a\n  - slug: /a/\n"))
	require.Error(t, err)

	_, err = Parse([]byte("pages: ["))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	site, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Empty(t, site.Pages)

	path := filepath.Join(t.TempDir(), "pages.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))
	site, err = Load(path)
	require.NoError(t, err)
	require.Len(t, site.Pages, 2)
}
