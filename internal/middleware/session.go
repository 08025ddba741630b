// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/muebles/internal/model"
	"github.com/hitoshi/muebles/internal/session"
)

// LoginPath は未認証時のリダイレクト先。
const LoginPath = "/login"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// SessionLoader はCookieからセッションを復元するインターフェース。
type SessionLoader interface {
	Load(r *http.Request) *session.Session
}

// SessionSaver はセッションを保存するインターフェース。
type SessionSaver interface {
	Save(ctx context.Context, w http.ResponseWriter, s *session.Session) error
}

// NewSessionMiddleware はCookieからセッションを読み込み、
// リクエストコンテキストに注入するミドルウェアを返す。
// Cookieが無効な場合も空のセッションを注入し、リクエストは拒否しない。
func NewSessionMiddleware(loader SessionLoader) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := loader.Load(r)
			next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), s)))
		})
	}
}

// NewRequireAuthMiddleware は未認証リクエストに警告メッセージを積んで
// ログイン画面へリダイレクトするミドルウェアを返す。
func NewRequireAuthMiddleware(saver SessionSaver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := session.FromContext(r.Context())
			if s != nil && s.IsAuthenticated() {
				next.ServeHTTP(w, r)
				return
			}

			if s != nil {
				s.AddFlash(model.LevelWarning, model.MsgLoginRequired)
				if err := saver.Save(r.Context(), w, s); err != nil {
					slog.Error("failed to save session",
						slog.String("error", err.Error()),
					)
				}
			}
			http.Redirect(w, r, LoginPath, http.StatusFound)
		})
	}
}

// UserIDFromContext はリクエストコンテキストのセッションからユーザーIDを取得する。
// 未認証の場合はエラーを返す。
func UserIDFromContext(ctx context.Context) (string, error) {
	s := session.FromContext(ctx)
	if s == nil || !s.IsAuthenticated() {
		return "", fmt.Errorf("user ID not found in context")
	}
	return s.Data.UserID, nil
}
