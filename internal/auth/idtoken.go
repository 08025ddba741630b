package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
)

const googleIssuer = "https://accounts.google.com"

// googleIssuers はGoogleが発行するIDトークンのiss値。
// Googleはスキームなしのissを返すことがあるため両方を受け付ける。
var googleIssuers = map[string]bool{
	"accounts.google.com": true,
	googleIssuer:          true,
}

// profileClaims はIDトークンから取り出すプロフィール項目。
type profileClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// IDTokenVerifier はRS256署名のIDトークンをGoogleの公開鍵で検証する。
// 公開鍵はJWKSエンドポイントから取得してキャッシュし、未知のkidを受けたときに取り直す。
type IDTokenVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewIDTokenVerifier はIDTokenVerifierを生成する。
// httpClientがnilの場合はhttp.DefaultClientで鍵を取得する。
func NewIDTokenVerifier(clientID, jwksURL string, httpClient *http.Client, now func() time.Time) *IDTokenVerifier {
	ctx := context.Background()
	if httpClient != nil {
		ctx = oidc.ClientContext(ctx, httpClient)
	}
	if now == nil {
		now = time.Now
	}

	keySet := oidc.NewRemoteKeySet(ctx, jwksURL)
	return &IDTokenVerifier{
		verifier: oidc.NewVerifier(googleIssuer, keySet, &oidc.Config{
			ClientID:             clientID,
			SupportedSigningAlgs: []string{oidc.RS256},
			SkipIssuerCheck:      true,
			Now:                  now,
		}),
	}
}

// Verify は署名・audience・発行者・有効期限を検証し、クレームを返す。
func (v *IDTokenVerifier) Verify(ctx context.Context, rawIDToken string) (*Claims, error) {
	token, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("invalid id token: %w", err)
	}

	if !googleIssuers[token.Issuer] {
		return nil, fmt.Errorf("invalid id token: unexpected issuer %q", token.Issuer)
	}
	if token.Subject == "" {
		return nil, errors.New("invalid id token: missing subject")
	}

	var profile profileClaims
	if err := token.Claims(&profile); err != nil {
		return nil, fmt.Errorf("invalid id token claims: %w", err)
	}

	return &Claims{
		Subject: token.Subject,
		Name:    profile.Name,
		Email:   profile.Email,
		Picture: profile.Picture,
	}, nil
}
