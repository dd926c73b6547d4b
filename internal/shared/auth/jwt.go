package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = fmt.Errorf("%w: token expired", ErrInvalidToken)
)

// Claims is the subset of the upstream API token this front-end cares about.
type Claims struct {
	Name  string `json:"name"`
	Roles any    `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Expiry returns the token expiry or the zero time when the token carries none.
func (c *Claims) Expiry() time.Time {
	if c == nil || c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// TokenInspector reads upstream bearer tokens before they are stored in a session.
type TokenInspector interface {
	Inspect(token string) (*Claims, error)
}

// JWTInspector verifies HMAC signatures when a secret is configured. Without a
// secret the token is decoded unverified and only its expiry is enforced; tokens
// that are not JWTs at all are treated as opaque and accepted.
type JWTInspector struct {
	secret []byte
	now    func() time.Time
}

func NewJWTInspector(secret string) *JWTInspector {
	return &JWTInspector{secret: []byte(strings.TrimSpace(secret)), now: time.Now}
}

// WithClock swaps the time source, used by tests.
func (v *JWTInspector) WithClock(now func() time.Time) *JWTInspector {
	if now != nil {
		v.now = now
	}
	return v
}

func (v *JWTInspector) Inspect(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}
	if len(v.secret) > 0 {
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return v.secret, nil
		}, jwt.WithLeeway(5*time.Second), jwt.WithTimeFunc(v.now))
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return nil, ErrExpiredToken
			}
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		if !parsed.Valid {
			return nil, ErrInvalidToken
		}
		return claims, nil
	}

	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// opaque token
		return &Claims{}, nil
	}
	if exp := claims.Expiry(); !exp.IsZero() && !exp.After(v.now()) {
		return nil, ErrExpiredToken
	}
	return claims, nil
}

var _ TokenInspector = (*JWTInspector)(nil)
