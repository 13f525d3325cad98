package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"advent-calendar/internal/jwt"
)

func TestTestMode_IssueAndValidate(t *testing.T) {
	now := time.Date(2025, time.December, 1, 8, 0, 0, 0, time.UTC)
	signer := jwt.NewSigner("secret", jwt.PurposeTestMode).WithClock(func() time.Time { return now })
	tm := NewTestMode(signer, "example.com", 24*time.Hour)

	marker, err := tm.Issue()
	require.NoError(t, err)
	require.True(t, tm.Valid(marker))

	require.False(t, tm.Valid(""))
	require.False(t, tm.Valid("1"))
	require.False(t, tm.Valid(marker+"x"))

	now = now.Add(25 * time.Hour)
	require.False(t, tm.Valid(marker), "marker must expire after one day")
}

func TestTestMode_ScopedToSiteAndKey(t *testing.T) {
	signer := jwt.NewSigner("secret", jwt.PurposeTestMode)
	marker, err := NewTestMode(signer, "a.example", time.Hour).Issue()
	require.NoError(t, err)

	require.False(t, NewTestMode(signer, "b.example", time.Hour).Valid(marker))

	other := jwt.NewSigner("secret", jwt.PurposeAntiForgery)
	require.False(t, NewTestMode(other, "a.example", time.Hour).Valid(marker))
}

func TestTestMode_DefaultTTL(t *testing.T) {
	tm := NewTestMode(jwt.NewSigner("s", jwt.PurposeTestMode), "", 0)
	require.Equal(t, 24*time.Hour, tm.TTL())
}
