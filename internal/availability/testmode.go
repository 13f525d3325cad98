package availability

import (
	"log/slog"
	"time"

	"advent-calendar/internal/jwt"
	"advent-calendar/internal/nonce"
)

// TestModeCookie is the name of the client-held test mode marker.
const TestModeCookie = "advent_test"

// TestMode issues and checks signed test mode markers for one site.
type TestMode struct {
	signer *jwt.Signer
	site   string
	ttl    time.Duration
	logger *slog.Logger
}

func NewTestMode(signer *jwt.Signer, site string, ttl time.Duration) *TestMode {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TestMode{
		signer: signer,
		site:   site,
		ttl:    ttl,
		logger: slog.With("component", "testmode"),
	}
}

// TTL is the lifetime of an issued marker.
func (t *TestMode) TTL() time.Duration {
	return t.ttl
}

// Issue returns a new marker valid for TTL.
func (t *TestMode) Issue() (string, error) {
	id, err := nonce.Generate()
	if err != nil {
		return "", err
	}
	return t.signer.Sign(&jwt.TestModeClaim{
		Site:             t.site,
		RegisteredClaims: t.signer.RegisteredClaims(id, t.ttl),
	})
}

// Valid reports whether marker is unexpired, correctly signed and issued for this site.
func (t *TestMode) Valid(marker string) bool {
	if marker == "" {
		return false
	}
	claims, err := jwt.Decode(t.signer, marker, &jwt.TestModeClaim{})
	if err != nil {
		t.logger.Debug("Ignoring test mode marker", "error", err)
		return false
	}
	return claims.Site == t.site
}
