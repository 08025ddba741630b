// Package auth はGoogle OAuth認可コードフローとIDトークン検証を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/hitoshi/muebles/internal/model"
	"github.com/hitoshi/muebles/internal/security"
)

// Claims は検証済みIDトークンから取り出したユーザー情報。
type Claims struct {
	Subject string
	Name    string
	Email   string
	Picture string
}

// IdentityProvider は外部IDプロバイダーのインターフェース。
type IdentityProvider interface {
	// AuthCodeURL はstateを埋め込んだ同意画面のURLを返す。
	AuthCodeURL(state string) string
	// Exchange は認可コードをトークンに交換し、生のIDトークンを返す。
	Exchange(ctx context.Context, code string) (string, error)
	// VerifyIDToken はIDトークンの署名・発行者・audience・有効期限を検証する。
	VerifyIDToken(ctx context.Context, rawIDToken string) (*Claims, error)
}

// Service はOAuthログインのビジネスロジックを提供する。
// providerがnilの場合はOAuthが未設定として扱う。
type Service struct {
	provider IdentityProvider
}

// NewService はServiceを生成する。
func NewService(provider IdentityProvider) *Service {
	return &Service{provider: provider}
}

// Enabled はOAuthログインが利用可能かどうかを返す。
func (s *Service) Enabled() bool {
	return s.provider != nil
}

// BeginLogin は新しいstateを生成し、リダイレクト先の認可URLとともに返す。
// 呼び出し側はstateをセッションに保存すること。
func (s *Service) BeginLogin() (authURL, state string, err error) {
	if !s.Enabled() {
		return "", "", model.ErrOAuthNotConfigured
	}

	state, err = generateState()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate state: %w", err)
	}
	return s.provider.AuthCodeURL(state), state, nil
}

// CompleteLogin はコールバックを検証し、認証済みユーザーのクレームを返す。
// セッションにstateがない場合はトークン交換を行わずmodel.ErrStateMissingを返す。
// 交換・検証の失敗はmodel.ErrTokenVerificationでラップする。
func (s *Service) CompleteLogin(ctx context.Context, storedState, queryState, code string) (*Claims, error) {
	if storedState == "" {
		return nil, model.ErrStateMissing
	}
	if !s.Enabled() {
		return nil, model.ErrOAuthNotConfigured
	}
	if subtle.ConstantTimeCompare([]byte(storedState), []byte(queryState)) != 1 {
		return nil, model.ErrStateMismatch
	}
	if code == "" {
		return nil, fmt.Errorf("%w: missing authorization code", model.ErrTokenVerification)
	}

	rawIDToken, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange code: %w", model.ErrTokenVerification, err)
	}

	claims, err := s.provider.VerifyIDToken(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrTokenVerification, err)
	}

	// 画像URLはレイアウトのimg srcに出すため、表示できないものは捨てる
	if claims.Picture != "" {
		if err := security.ValidateImageURL(claims.Picture); err != nil {
			slog.Warn("dropping profile picture", slog.String("error", err.Error()))
			claims.Picture = ""
		}
	}

	slog.Info("google user authenticated",
		slog.String("subject", claims.Subject),
	)
	return claims, nil
}

// generateState は暗号的に安全なstateを生成する。
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
