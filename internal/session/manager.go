package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/muebles/internal/model"
)

// CookieName はセッションCookieの名前。
const CookieName = "session"

// Store はセッションの永続化に必要なインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type Store interface {
	Save(ctx context.Context, session *model.Session) error
	FindByID(ctx context.Context, id string) (*model.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

// Config はManagerの設定。
type Config struct {
	Secret       string
	MaxAge       time.Duration
	CookieSecure bool
}

// Manager はセッションの読み込み・保存・破棄を行う。
type Manager struct {
	store  Store
	secret []byte
	maxAge time.Duration
	secure bool
	now    func() time.Time
}

// NewManager はManagerを生成する。
func NewManager(store Store, cfg Config) *Manager {
	return &Manager{
		store:  store,
		secret: []byte(cfg.Secret),
		maxAge: cfg.MaxAge,
		secure: cfg.CookieSecure,
		now:    time.Now,
	}
}

// New は未保存の空セッションを返す。
func (m *Manager) New() *Session {
	return &Session{ID: uuid.NewString(), isNew: true}
}

// Load はCookieからセッションを復元する。
// Cookieがない、署名が不正、期限切れ、保存データが壊れている場合は空セッションを返す。
func (m *Manager) Load(r *http.Request) *Session {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return m.New()
	}

	sid, err := parseSessionID(m.secret, cookie.Value, m.now())
	if err != nil {
		slog.Debug("session cookie rejected",
			slog.String("error", err.Error()),
		)
		return m.New()
	}

	stored, err := m.store.FindByID(r.Context(), sid)
	if err != nil {
		slog.Error("failed to load session",
			slog.String("error", err.Error()),
		)
		return m.New()
	}
	if stored == nil {
		return m.New()
	}

	s := &Session{ID: stored.ID}
	if err := json.Unmarshal(stored.Data, &s.Data); err != nil {
		slog.Warn("failed to decode session data",
			slog.String("session_id", stored.ID),
			slog.String("error", err.Error()),
		)
		return m.New()
	}
	return s
}

// Save はセッションを保存し、署名付きCookieを書き込む。
// 新規かつ空のセッションは保存しない。
// ヘッダー送信前に呼び出すこと。
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if s.isNew && s.Data.isEmpty() {
		return nil
	}

	data, err := json.Marshal(s.Data)
	if err != nil {
		return fmt.Errorf("failed to encode session data: %w", err)
	}

	now := m.now()
	if err := m.store.Save(ctx, &model.Session{
		ID:        s.ID,
		Data:      data,
		ExpiresAt: now.Add(m.maxAge),
		CreatedAt: now,
	}); err != nil {
		return err
	}

	token, err := signSessionID(m.secret, s.ID, now, m.maxAge)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.isNew = false
	return nil
}

// Destroy は保存済みのセッションを削除し、sを新しい空セッションに置き換える。
// 置き換え後のsにフラッシュを追加してSaveすると、新しいIDで保存される。
func (m *Manager) Destroy(ctx context.Context, s *Session) error {
	if !s.isNew {
		if err := m.store.DeleteByID(ctx, s.ID); err != nil {
			return err
		}
	}

	*s = *m.New()
	return nil
}
