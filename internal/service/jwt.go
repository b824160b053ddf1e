package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrAuthDisabled = errors.New("jwt secret not configured")
)

// FeedTokenTTL is how long a minted gesture feed token stays valid.
const FeedTokenTTL = 24 * time.Hour

// TokenIssuer signs and checks the tokens gesture feeds present.
type TokenIssuer struct {
	secret []byte
}

// NewTokenIssuer returns nil for an empty secret: auth is then disabled.
func NewTokenIssuer(secret string) *TokenIssuer {
	if secret == "" {
		return nil
	}
	return &TokenIssuer{secret: []byte(secret)}
}

func (i *TokenIssuer) Enabled() bool {
	return i != nil
}

// Generate signs a token for the named feed (e.g. "camera-1").
func (i *TokenIssuer) Generate(subject string, ttl time.Duration) (string, error) {
	if !i.Enabled() {
		return "", ErrAuthDisabled
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Parse validates tokenString and returns its subject.
func (i *TokenIssuer) Parse(tokenString string) (string, error) {
	if !i.Enabled() {
		return "", ErrAuthDisabled
	}

	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return "", errors.Join(ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return "", errors.Join(ErrInvalidToken, errors.New("subject not found"))
	}
	return claims.Subject, nil
}
