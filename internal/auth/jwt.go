package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer signs and validates the bearer tokens the API hands out at login.
type Issuer struct {
	secret        []byte
	tokenTTL      time.Duration
	rememberMeTTL time.Duration
}

type claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

func NewIssuer(secret string, tokenTTL, rememberMeTTL time.Duration) *Issuer {
	return &Issuer{
		secret:        []byte(secret),
		tokenTTL:      tokenTTL,
		rememberMeTTL: rememberMeTTL,
	}
}

// Issue signs a token for userID. rememberMe stretches the expiry for
// clients that asked to stay logged in.
func (i *Issuer) Issue(userID string, rememberMe bool) (string, error) {
	ttl := i.tokenTTL
	if rememberMe {
		ttl = i.rememberMeTTL
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Validate parses a token and returns the user id it was issued for.
// Expired, malformed, or foreign-signed tokens all fail.
func (i *Issuer) Validate(tokenString string) (string, error) {
	var c claims
	_, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return i.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parsing token: %w", err)
	}
	if c.UserID == "" {
		return "", fmt.Errorf("token has no user id")
	}
	return c.UserID, nil
}
