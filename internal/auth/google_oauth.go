package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const defaultGoogleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

// googleScopes はopenidに加えてメールとプロフィールを要求する。
var googleScopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}

// GoogleConfig はGoogle OAuthプロバイダーの設定。
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// テスト用にオーバーライド可能な値
	Endpoint   oauth2.Endpoint
	JWKSURL    string
	HTTPClient *http.Client
}

// GoogleProvider はGoogle OAuth 2.0 / OpenID Connectによる認証を提供する。
type GoogleProvider struct {
	oauth      *oauth2.Config
	verifier   *IDTokenVerifier
	httpClient *http.Client
}

// NewGoogleProvider はGoogleProviderを生成する。
func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	if cfg.Endpoint.AuthURL == "" {
		cfg.Endpoint = google.Endpoint
	}
	if cfg.JWKSURL == "" {
		cfg.JWKSURL = defaultGoogleJWKSURL
	}

	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     cfg.Endpoint,
			Scopes:       googleScopes,
		},
		verifier:   NewIDTokenVerifier(cfg.ClientID, cfg.JWKSURL, cfg.HTTPClient, nil),
		httpClient: cfg.HTTPClient,
	}
}

// AuthCodeURL はGoogleの同意画面のURLを生成する。
// リフレッシュトークンを受け取るため毎回同意を求める。
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
}

// Exchange は認可コードをトークンに交換し、IDトークンを返す。
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (string, error) {
	if p.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}

	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("token exchange failed: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return "", errors.New("id_token missing from token response")
	}
	return rawIDToken, nil
}

// VerifyIDToken はIDトークンを検証してクレームを返す。
func (p *GoogleProvider) VerifyIDToken(ctx context.Context, rawIDToken string) (*Claims, error) {
	return p.verifier.Verify(ctx, rawIDToken)
}

// compile-time interface check
var _ IdentityProvider = (*GoogleProvider)(nil)
