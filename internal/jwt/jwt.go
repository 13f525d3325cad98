package jwt

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

var (
	ErrNonValidToken    = errors.New("token did not pass validation")
	ErrInvalidClaimType = errors.New("invalid claim type")
)

var tokenSignatureAlg = jwt.SigningMethodHS256

// Token purposes. Each purpose signs with its own key derived from the secret.
const (
	PurposeAntiForgery = "anti-forgery"
	PurposeTestMode    = "test-mode"
)

// ActionClaim scopes an anti-forgery token to a single action name. The jti
// is kept in the nonce store for the token lifetime.
type ActionClaim struct {
	Action string `json:"act"`
	jwt.RegisteredClaims
}

// TestModeClaim is the payload of the per-client test mode marker.
type TestModeClaim struct {
	Site string `json:"site"`
	jwt.RegisteredClaims
}

// Signer signs and verifies claims of one purpose.
type Signer struct {
	key []byte
	now func() time.Time
}

// NewSigner derives a purpose-bound HMAC key from secret.
func NewSigner(secret, purpose string) *Signer {
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("advent-calendar/"+purpose))
	if _, err := io.ReadFull(r, key); err != nil {
		panic(fmt.Sprintf("hkdf: %v", err))
	}
	return &Signer{key: key, now: time.Now}
}

// WithClock returns a copy of s reading time from now.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	return &Signer{key: s.key, now: now}
}

// Now returns the signer's current time.
func (s *Signer) Now() time.Time {
	return s.now()
}

// RegisteredClaims builds claims with id, issued-at and expiry now+ttl.
func (s *Signer) RegisteredClaims(id string, ttl time.Duration) jwt.RegisteredClaims {
	if ttl <= 0 {
		panic("invalid token TTL")
	}
	now := s.now().UTC()
	return jwt.RegisteredClaims{
		ID:        id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

// Sign serializes claims into a compact JWT.
func (s *Signer) Sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(tokenSignatureAlg, claims)
	return token.SignedString(s.key)
}

// Decode verifies tokenString and fills claimsType.
func Decode[T jwt.Claims](s *Signer, tokenString string, claimsType T) (T, error) {
	var zero T

	parsedToken, err := jwt.ParseWithClaims(tokenString, claimsType, func(token *jwt.Token) (interface{}, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{tokenSignatureAlg.Alg()}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())

	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrNonValidToken, err)
	} else if parsedToken == nil || !parsedToken.Valid {
		return zero, ErrNonValidToken
	} else if claims, ok := parsedToken.Claims.(T); ok {
		return claims, nil
	}

	return zero, ErrInvalidClaimType
}
