package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testClientID = "test-client-id.apps.googleusercontent.com"

// testJWK はJWKSエンドポイントが返すRSA公開鍵の表現。
type testJWK struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// testIDTokenClaims は署名に使うIDトークンのクレーム。
type testIDTokenClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// testKey はテスト用のRSA署名鍵。
type testKey struct {
	kid  string
	priv *rsa.PrivateKey
}

func newTestKey(t *testing.T, kid string) *testKey {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate rsa key: %v", err)
	}
	return &testKey{kid: kid, priv: priv}
}

func (k *testKey) jwk() testJWK {
	return testJWK{
		Kty: "RSA",
		Kid: k.kid,
		Use: "sig",
		Alg: "RS256",
		N:   base64.RawURLEncoding.EncodeToString(k.priv.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(k.priv.E)).Bytes()),
	}
}

// sign はkidヘッダー付きのRS256トークンを返す。
func (k *testKey) sign(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = k.kid
	raw, err := token.SignedString(k.priv)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return raw
}

// validClaims はGoogleが発行する形式の有効なクレームを返す。
func validClaims(now time.Time) *testIDTokenClaims {
	return &testIDTokenClaims{
		Email:   "ana@gmail.com",
		Name:    "Ana",
		Picture: "https://lh3.googleusercontent.com/a/photo",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://accounts.google.com",
			Subject:   "109876543210",
			Audience:  jwt.ClaimStrings{testClientID},
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

// jwksServer は指定された鍵のJWKSを返すテストサーバー。リクエスト数を数える。
type jwksServer struct {
	*httptest.Server
	hits atomic.Int32
	keys atomic.Pointer[[]testJWK]
}

func newJWKSServer(t *testing.T, keys ...*testKey) *jwksServer {
	t.Helper()
	s := &jwksServer{}
	s.setKeys(keys...)
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string][]testJWK{"keys": *s.keys.Load()})
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *jwksServer) setKeys(keys ...*testKey) {
	jwks := make([]testJWK, 0, len(keys))
	for _, k := range keys {
		jwks = append(jwks, k.jwk())
	}
	s.keys.Store(&jwks)
}
