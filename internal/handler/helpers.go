package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/muebles/internal/model"
	"github.com/hitoshi/muebles/internal/session"
)

// currentSession はセッションミドルウェアが注入したセッションを返す。
// ミドルウェアを通らない呼び出しでも動くよう、空セッションを補う。
func currentSession(r *http.Request, sessions SessionManager) *session.Session {
	if s := session.FromContext(r.Context()); s != nil {
		return s
	}
	return sessions.Load(r)
}

// saveSession はセッションを保存する。失敗はログに残し、処理は続行する。
func saveSession(w http.ResponseWriter, r *http.Request, sessions SessionManager, s *session.Session) {
	if err := sessions.Save(r.Context(), w, s); err != nil {
		slog.Error("failed to save session",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
}

// redirectWithNotice はフラッシュを積んでセッションを保存し、リダイレクトする。
func redirectWithNotice(w http.ResponseWriter, r *http.Request, sessions SessionManager, s *session.Session, n *model.Notice, location string) {
	s.AddNotice(n)
	saveSession(w, r, sessions, s)
	http.Redirect(w, r, location, http.StatusFound)
}

// rotateSession はログイン成功時にセッションIDを振り直す。
func rotateSession(r *http.Request, sessions SessionManager, s *session.Session) {
	if err := sessions.Destroy(r.Context(), s); err != nil {
		slog.Warn("failed to rotate session",
			slog.String("error", err.Error()),
		)
	}
}

// noopMetrics はメトリクス未設定時に使う何もしない実装。
type noopMetrics struct{}

func (noopMetrics) RecordLogin(method, outcome string) {}
func (noopMetrics) RecordRegistration(outcome string) {}
func (noopMetrics) RecordHTTPStatus(statusCode int) {}
func (noopMetrics) RecordRequestLatency(time.Duration) {}
