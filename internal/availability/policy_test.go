package availability

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, loc)
}

func TestAvailableDay(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		at   time.Time
		want int
	}{
		{"january", date(2025, time.January, 15, time.UTC), 0},
		{"late november", date(2025, time.November, 26, time.UTC), 0},
		{"november 30", date(2025, time.November, 30, time.UTC), 0},
		{"december 1", date(2025, time.December, 1, time.UTC), 1},
		{"december 10", date(2025, time.December, 10, time.UTC), 10},
		{"december 24", date(2025, time.December, 24, time.UTC), 24},
		{"december 25", date(2025, time.December, 25, time.UTC), 24},
		{"new year's eve", date(2025, time.December, 31, time.UTC), 24},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, AvailableDay(tc.at, time.UTC))
		})
	}
}

func TestAvailableDay_MonotonicInDecember(t *testing.T) {
	t.Parallel()

	prev := 0
	for d := 1; d <= 24; d++ {
		got := AvailableDay(date(2025, time.December, d, time.UTC), time.UTC)
		require.Equal(t, d, got)
		require.GreaterOrEqual(t, got, prev)
		prev = got
	}
}

func TestAvailableDay_UsesReferenceZone(t *testing.T) {
	t.Parallel()

	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// 23:30 UTC on Nov 30 is already Dec 1 in Berlin.
	instant := time.Date(2025, time.November, 30, 23, 30, 0, 0, time.UTC)
	require.Equal(t, 0, AvailableDay(instant, time.UTC))
	require.Equal(t, 1, AvailableDay(instant, berlin))

	// The requester's own zone does not matter, only the instant.
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	require.Equal(t, 1, AvailableDay(instant.In(tokyo), berlin))
}

func TestPolicy_TestModeOverride(t *testing.T) {
	t.Parallel()

	p := &Policy{Location: time.UTC, Now: func() time.Time { return date(2025, time.November, 26, time.UTC) }}
	require.Equal(t, 0, p.AvailableDay())
	require.Equal(t, 0, p.Effective(false))
	require.Equal(t, 24, p.Effective(true))
	require.False(t, p.Unlocked(1, false))
	require.True(t, p.Unlocked(24, true))
	require.False(t, p.Unlocked(25, true))
	require.False(t, p.Unlocked(0, true))
}
