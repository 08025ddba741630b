package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// cookieClaims はセッションCookieに載せるJWTのクレーム。
type cookieClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// signSessionID はセッションIDをHS256で署名したトークンを返す。
func signSessionID(secret []byte, sessionID string, now time.Time, ttl time.Duration) (string, error) {
	claims := cookieClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session cookie: %w", err)
	}
	return token, nil
}

// parseSessionID は署名と有効期限を検証してセッションIDを取り出す。
func parseSessionID(secret []byte, raw string, now time.Time) (string, error) {
	claims := &cookieClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return "", fmt.Errorf("invalid session cookie: %w", err)
	}
	if claims.SessionID == "" {
		return "", errors.New("invalid session cookie: missing sid")
	}
	return claims.SessionID, nil
}
