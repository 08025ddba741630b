package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignAndParseSessionID(t *testing.T) {
	secret := []byte("test-secret")
	now := time.Now()

	token, err := signSessionID(secret, "sid-1", now, time.Hour)
	if err != nil {
		t.Fatalf("sign returned error: %v", err)
	}

	sid, err := parseSessionID(secret, token, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	if sid != "sid-1" {
		t.Errorf("sid = %q, want %q", sid, "sid-1")
	}
}

func TestParseSessionID_Rejects(t *testing.T) {
	secret := []byte("test-secret")
	now := time.Now()
	valid, err := signSessionID(secret, "sid-1", now, time.Hour)
	if err != nil {
		t.Fatalf("sign returned error: %v", err)
	}

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, cookieClaims{
		SessionID:        "sid-1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to build none token: %v", err)
	}

	noSID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cookieClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	}).SignedString(secret)
	if err != nil {
		t.Fatalf("failed to build token: %v", err)
	}

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cookieClaims{SessionID: "sid-1"}).SignedString(secret)
	if err != nil {
		t.Fatalf("failed to build token: %v", err)
	}

	tests := []struct {
		name   string
		secret []byte
		token  string
		at     time.Time
	}{
		{"wrong secret", []byte("other-secret"), valid, now},
		{"expired", secret, valid, now.Add(2 * time.Hour)},
		{"garbage", secret, "not-a-jwt", now},
		{"alg none", secret, noneToken, now},
		{"missing sid", secret, noSID, now},
		{"missing exp", secret, noExp, now},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseSessionID(tt.secret, tt.token, tt.at); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
