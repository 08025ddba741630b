// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/muebles/internal/metrics"
	"github.com/hitoshi/muebles/internal/middleware"
	"github.com/hitoshi/muebles/internal/model"
)

// credentialsForm はログイン・登録フォームの再表示用の値。パスワードは含めない。
type credentialsForm struct {
	Nombre string
	Email  string
}

// AuthHandler はローカル認証（ログイン・ログアウト・登録）のHTTPハンドラー。
type AuthHandler struct {
	users    UserServiceInterface
	sessions SessionManager
	renderer *Renderer
	metrics  MetricsRecorder
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(users UserServiceInterface, sessions SessionManager, renderer *Renderer, m MetricsRecorder) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		renderer: renderer,
		metrics:  m,
	}
}

// LoginForm はログインフォームを表示する。
// GET /login
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	s := currentSession(r, h.sessions)
	if s.IsAuthenticated() {
		redirectWithNotice(w, r, h.sessions, s, model.NewNotice(model.LevelInfo, model.MsgAlreadyLoggedIn), "/")
		return
	}
	h.renderer.Render(w, r, http.StatusOK, pageLogin, nil)
}

// Login はメールアドレスとパスワードで認証する。
// 失敗時はどちらが誤りかを区別しないメッセージでフォームを再表示する。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	s := currentSession(r, h.sessions)
	if s.IsAuthenticated() {
		redirectWithNotice(w, r, h.sessions, s, model.NewNotice(model.LevelInfo, model.MsgAlreadyLoggedIn), "/")
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	user, err := h.users.Authenticate(r.Context(), email, password)
	if err != nil {
		status := http.StatusOK
		if errors.Is(err, model.ErrInvalidCredentials) {
			h.metrics.RecordLogin(metrics.MethodLocal, metrics.OutcomeFailure)
		} else {
			slog.Error("local login failed", slog.String("error", err.Error()))
			status = http.StatusInternalServerError
		}
		s.AddNotice(model.NoticeForError(err))
		h.renderer.Render(w, r, status, pageLogin, credentialsForm{Email: email})
		return
	}

	rotateSession(r, h.sessions, s)
	s.SetLocalUser(user)
	h.metrics.RecordLogin(metrics.MethodLocal, metrics.OutcomeSuccess)
	slog.Info("user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("method", metrics.MethodLocal),
	)
	redirectWithNotice(w, r, h.sessions, s, model.NewNotice(model.LevelSuccess, model.MsgLoginSuccess), "/")
}

// Logout はセッションを全て破棄し、ログイン画面へリダイレクトする。
// GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	s := currentSession(r, h.sessions)
	userID, _ := middleware.UserIDFromContext(r.Context())

	if err := h.sessions.Destroy(r.Context(), s); err != nil {
		slog.Error("failed to destroy session", slog.String("error", err.Error()))
	}
	if userID != "" {
		slog.Info("user logged out", slog.String("user_id", userID))
	}
	redirectWithNotice(w, r, h.sessions, s, model.NewNotice(model.LevelInfo, model.MsgLoggedOut), middleware.LoginPath)
}

// RegisterForm は登録フォームを表示する。
// GET /registro
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, pageRegister, nil)
}

// Register は一般ユーザーを登録する。
// 重複メールや入力不備はフォームの再表示で知らせる。
// POST /registro
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	s := currentSession(r, h.sessions)
	form := credentialsForm{
		Nombre: r.PostFormValue("nombre"),
		Email:  r.PostFormValue("email"),
	}

	_, err := h.users.Register(r.Context(), form.Nombre, form.Email, r.PostFormValue("password"))
	switch {
	case err == nil:
		h.metrics.RecordRegistration(metrics.OutcomeSuccess)
		redirectWithNotice(w, r, h.sessions, s, model.NewNotice(model.LevelSuccess, model.MsgRegisterSuccess), middleware.LoginPath)
	case errors.Is(err, model.ErrEmailAlreadyExists):
		h.metrics.RecordRegistration(metrics.OutcomeDuplicate)
		s.AddNotice(model.NoticeForError(err))
		h.renderer.Render(w, r, http.StatusOK, pageRegister, form)
	case errors.Is(err, model.ErrInvalidInput):
		h.metrics.RecordRegistration(metrics.OutcomeInvalid)
		s.AddNotice(model.NoticeForError(err))
		h.renderer.Render(w, r, http.StatusOK, pageRegister, form)
	default:
		slog.Error("registration failed", slog.String("error", err.Error()))
		h.metrics.RecordRegistration(metrics.OutcomeFailure)
		s.AddNotice(model.NoticeForError(err))
		h.renderer.Render(w, r, http.StatusInternalServerError, pageRegister, form)
	}
}
