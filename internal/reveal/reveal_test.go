package reveal

import (
	"context"
	"strconv"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"

	"advent-calendar/internal/availability"
	"advent-calendar/internal/cache"
	"advent-calendar/internal/content"
	"advent-calendar/internal/door"
)

const instanceID = "cal-1"

type fakeTokens struct {
	valid string
	calls int
}

func (f *fakeTokens) Issue(ctx context.Context, action string) (string, error) {
	return f.valid, nil
}

func (f *fakeTokens) Verify(ctx context.Context, action, token string) bool {
	f.calls++
	return action == Action && token == f.valid
}

type countingCache struct {
	cache.Cache
	gets int
}

func (c *countingCache) Get(ctx context.Context, id string) (cache.Instance, bool, error) {
	c.gets++
	return c.Cache.Get(ctx, id)
}

type fixture struct {
	svc    *Service
	cache  *countingCache
	tokens *fakeTokens
	now    time.Time
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	f := &fixture{
		cache:  &countingCache{Cache: cache.NewMemory(time.Hour)},
		tokens: &fakeTokens{valid: "good"},
		now:    now,
	}
	policy := &availability.Policy{Location: loc, Now: func() time.Time { return f.now }}
	f.svc = NewService(f.tokens, f.cache, policy, content.NewRenderer(nil))

	raw := make([]door.Raw, 0, door.Count)
	for day := 1; day <= door.Count; day++ {
		raw = append(raw, door.Raw{"day": day, "type": "link", "linkUrl": "https://example.com/", "title": "Secret"})
	}
	require.NoError(t, f.cache.Put(context.Background(), instanceID, 7, door.Sanitize(raw)))
	return f
}

func (f *fixture) reveal(day string, testMode bool) (*Result, error) {
	return f.svc.Reveal(context.Background(), Request{InstanceID: instanceID, Day: day, Token: "good", TestMode: testMode})
}

func berlin(t *testing.T, month time.Month, day int) time.Time {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	return time.Date(2025, month, day, 12, 0, 0, 0, loc)
}

func TestReveal_Scenario(t *testing.T) {
	f := newFixture(t, berlin(t, time.November, 26))
	_, err := f.reveal("1", false)
	require.ErrorIs(t, err, ErrLocked)

	f.now = berlin(t, time.December, 10)
	res, err := f.reveal("10", false)
	require.NoError(t, err)
	require.Equal(t, 10, res.AvailableDay)
	require.Equal(t, 10, res.Door.Day)
	require.Contains(t, string(res.Door.Content), "https://example.com/")

	res, err = f.reveal("11", false)
	require.ErrorIs(t, err, ErrLocked)
	require.Nil(t, res)

	f.now = berlin(t, time.December, 31)
	for day := 1; day <= door.Count; day++ {
		res, err := f.reveal(strconv.Itoa(day), false)
		require.NoError(t, err, "day %d", day)
		require.Equal(t, door.Count, res.AvailableDay)
	}
}

func TestReveal_TestModeOpensEveryDoor(t *testing.T) {
	f := newFixture(t, berlin(t, time.November, 1))
	for day := 1; day <= door.Count; day++ {
		res, err := f.reveal(strconv.Itoa(day), true)
		require.NoError(t, err)
		require.True(t, res.TestMode)
		require.Equal(t, 0, res.AvailableDay)
	}
}

func TestReveal_InvalidTokenIsCheckedFirst(t *testing.T) {
	f := newFixture(t, berlin(t, time.December, 10))
	_, err := f.svc.Reveal(context.Background(), Request{InstanceID: "", Day: "99", Token: "forged"})
	require.ErrorIs(t, err, ErrInvalidNonce)
	require.Equal(t, 0, f.cache.gets)

	_, err = f.svc.Reveal(context.Background(), Request{InstanceID: instanceID, Day: "11", Token: ""})
	require.ErrorIs(t, err, ErrInvalidNonce)
}

func TestReveal_InvalidRequest(t *testing.T) {
	f := newFixture(t, berlin(t, time.December, 10))
	for _, req := range []Request{
		{InstanceID: "", Day: "1"},
		{InstanceID: "   ", Day: "1"},
		{InstanceID: instanceID, Day: "0"},
		{InstanceID: instanceID, Day: "25"},
		{InstanceID: instanceID, Day: "abc"},
		{InstanceID: instanceID, Day: ""},
	} {
		req.Token = "good"
		_, err := f.svc.Reveal(context.Background(), req)
		require.ErrorIs(t, err, ErrInvalidRequest, "%+v", req)
	}
	require.Equal(t, 0, f.cache.gets)
}

func TestReveal_ExpiredIsDistinctFromLocked(t *testing.T) {
	f := newFixture(t, berlin(t, time.December, 10))
	_, err := f.svc.Reveal(context.Background(), Request{InstanceID: "unknown", Day: "11", Token: "good"})
	require.ErrorIs(t, err, ErrExpired)
	require.NotErrorIs(t, err, ErrLocked)
}

func TestReveal_MissingDoor(t *testing.T) {
	f := newFixture(t, berlin(t, time.December, 10))
	require.NoError(t, f.cache.Put(context.Background(), "short", 1, door.Sanitize(nil)[:3]))

	_, err := f.svc.Reveal(context.Background(), Request{InstanceID: "short", Day: "5", Token: "good"})
	require.ErrorIs(t, err, ErrMissingDoor)
}

func TestReveal_Idempotent(t *testing.T) {
	f := newFixture(t, berlin(t, time.December, 10))
	first, err := f.reveal("3", false)
	require.NoError(t, err)
	second, err := f.reveal("3", false)
	require.NoError(t, err)
	require.Equal(t, first, second)

	instance, ok, err := f.cache.Get(context.Background(), instanceID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, instance.Doors, door.Count)
}

func TestParseDay(t *testing.T) {
	day, ok := ParseDay(" 24 ")
	require.True(t, ok)
	require.Equal(t, 24, day)

	_, ok = ParseDay("3.5")
	require.False(t, ok)
}
