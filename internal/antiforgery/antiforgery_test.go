package antiforgery

import (
	"context"
	"testing"
	"time"

	"advent-calendar/internal/jwt"
	"advent-calendar/internal/nonce"

	"github.com/stretchr/testify/require"
)

func newTokens(t *testing.T) *Tokens {
	t.Helper()
	store := nonce.NewMemoryStore()
	t.Cleanup(store.Close)
	return New(jwt.NewSigner("secret", jwt.PurposeAntiForgery), store, time.Hour)
}

func TestTokens_IssueVerify(t *testing.T) {
	ctx := context.Background()
	tokens := newTokens(t)

	token, err := tokens.Issue(ctx, "advent_open_door")
	require.NoError(t, err)

	require.True(t, tokens.Verify(ctx, "advent_open_door", token))
	require.True(t, tokens.Verify(ctx, "advent_open_door", token), "tokens are reusable")
	require.False(t, tokens.Verify(ctx, "other_action", token))
	require.False(t, tokens.Verify(ctx, "advent_open_door", ""))
	require.False(t, tokens.Verify(ctx, "advent_open_door", token+"x"))
}

func TestTokens_UnknownID(t *testing.T) {
	ctx := context.Background()
	a := newTokens(t)
	b := newTokens(t)

	// Same key, but b's store never saw the id.
	token, err := a.Issue(ctx, "act")
	require.NoError(t, err)
	require.False(t, b.Verify(ctx, "act", token))
}
