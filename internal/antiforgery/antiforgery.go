// Package antiforgery issues and verifies action-scoped request tokens.
package antiforgery

import (
	"context"
	"log/slog"
	"time"

	"advent-calendar/internal/jwt"
	"advent-calendar/internal/nonce"
)

// AntiForgery is the capability the reveal protocol consumes.
type AntiForgery interface {
	Issue(ctx context.Context, action string) (string, error)
	Verify(ctx context.Context, action, token string) bool
}

// Tokens signs an ActionClaim whose jti is registered in a nonce store.
// Tokens are reusable until they expire; they are not consumed on verify.
type Tokens struct {
	signer *jwt.Signer
	store  nonce.NonceStoreInterface
	ttl    time.Duration
	logger *slog.Logger
}

func New(signer *jwt.Signer, store nonce.NonceStoreInterface, ttl time.Duration) *Tokens {
	return &Tokens{
		signer: signer,
		store:  store,
		ttl:    ttl,
		logger: slog.With("component", "antiforgery"),
	}
}

func (t *Tokens) Issue(ctx context.Context, action string) (string, error) {
	id, err := nonce.New(ctx, t.store, t.ttl)
	if err != nil {
		return "", err
	}
	return t.signer.Sign(&jwt.ActionClaim{
		Action:           action,
		RegisteredClaims: t.signer.RegisteredClaims(id, t.ttl),
	})
}

func (t *Tokens) Verify(ctx context.Context, action, token string) bool {
	if token == "" {
		return false
	}
	claims, err := jwt.Decode(t.signer, token, &jwt.ActionClaim{})
	if err != nil {
		t.logger.Debug("Rejected anti-forgery token", "error", err)
		return false
	}
	if claims.Action != action {
		t.logger.Warn("Anti-forgery token used for another action", "action", action, "token_action", claims.Action)
		return false
	}
	return t.store.Exists(ctx, claims.ID)
}
