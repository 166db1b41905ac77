package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrAuthMissing = errors.New("auth token is missing")
	ErrAuthInvalid = errors.New("auth token is invalid")
	ErrAuthExpired = errors.New("auth token has expired")
)

// Gateway issues and verifies the bearer tokens guarding owner-only
// endpoints. Tokens are HS256 JWTs carrying the user id as subject.
type Gateway struct {
	secret   []byte
	validFor time.Duration
}

func NewGateway(secret string, validFor time.Duration) *Gateway {
	return &Gateway{secret: []byte(secret), validFor: validFor}
}

func (g *Gateway) Issue(userID uint) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(g.validFor)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
}

// Verify resolves a bearer token to the principal's user id. Callers
// never inspect token internals themselves; every failure is one of
// the three sentinel errors above.
func (g *Gateway) Verify(token string) (uint, error) {
	if len(token) == 0 {
		return 0, ErrAuthMissing
	}

	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return g.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrAuthExpired
		}
		return 0, ErrAuthInvalid
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return 0, ErrAuthInvalid
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrAuthInvalid
	}

	return uint(id), nil
}
