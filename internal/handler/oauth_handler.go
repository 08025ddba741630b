package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/muebles/internal/metrics"
	"github.com/hitoshi/muebles/internal/middleware"
	"github.com/hitoshi/muebles/internal/model"
)

// OAuthHandler はGoogle OAuthフローのHTTPハンドラー。
type OAuthHandler struct {
	auth     AuthServiceInterface
	sessions SessionManager
	metrics  MetricsRecorder
}

// NewOAuthHandler はOAuthHandlerを生成する。
func NewOAuthHandler(auth AuthServiceInterface, sessions SessionManager, m MetricsRecorder) *OAuthHandler {
	return &OAuthHandler{
		auth:     auth,
		sessions: sessions,
		metrics:  m,
	}
}

// Login はstateをセッションに保存し、Googleの同意画面へリダイレクトする。
// クライアント情報が未設定の場合はログイン画面へ戻す。
// GET /auth/login
func (h *OAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	s := currentSession(r, h.sessions)

	authURL, state, err := h.auth.BeginLogin()
	if err != nil {
		if !errors.Is(err, model.ErrOAuthNotConfigured) {
			slog.Error("failed to begin oauth login", slog.String("error", err.Error()))
		}
		redirectWithNotice(w, r, h.sessions, s, model.NoticeForError(err), middleware.LoginPath)
		return
	}

	s.SetOAuthState(state)
	if err := h.sessions.Save(r.Context(), w, s); err != nil {
		slog.Error("failed to save oauth state", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback はGoogleからのコールバックを検証し、セッションにユーザー情報を設定する。
// セッションにstateがない場合はトークン交換を行わずにログイン画面へ戻す。
// 検証失敗の詳細は画面に出さない。
// GET /auth/callback?code=xxx&state=yyy
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	s := currentSession(r, h.sessions)
	storedState := s.OAuthState()
	s.ClearOAuthState()

	q := r.URL.Query()
	claims, err := h.auth.CompleteLogin(r.Context(), storedState, q.Get("state"), q.Get("code"))
	if err != nil {
		h.metrics.RecordLogin(metrics.MethodGoogle, metrics.OutcomeFailure)
		slog.Warn("oauth callback rejected",
			slog.String("error", err.Error()),
			slog.String("provider_error", q.Get("error")),
		)
		redirectWithNotice(w, r, h.sessions, s, model.NoticeForError(err), middleware.LoginPath)
		return
	}

	rotateSession(r, h.sessions, s)
	s.SetGoogleUser(claims.Subject, claims.Name, claims.Email, claims.Picture)
	h.metrics.RecordLogin(metrics.MethodGoogle, metrics.OutcomeSuccess)
	redirectWithNotice(w, r, h.sessions, s, model.NewNotice(model.LevelSuccess, model.MsgOAuthSuccess), "/")
}
