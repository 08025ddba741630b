package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/muebles/internal/model"
)

// memoryStore はテスト用のインメモリStore。
type memoryStore struct {
	sessions map[string]*model.Session
	saveErr  error
	findErr  error
	deleted  []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sessions: map[string]*model.Session{}}
}

func (m *memoryStore) Save(ctx context.Context, s *model.Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	copied := *s
	m.sessions[s.ID] = &copied
	return nil
}
func (m *memoryStore) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.sessions[id], nil
}
func (m *memoryStore) DeleteByID(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.sessions, id)
	return nil
}

func newTestManager(store Store) *Manager {
	return NewManager(store, Config{Secret: "test-secret", MaxAge: time.Hour})
}

// roundTrip はSaveで書かれたCookieを次のリクエストに載せる。
func roundTrip(t *testing.T, m *Manager, s *Session) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := m.Save(context.Background(), rec, s); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestManager_Load_NoCookieReturnsNew(t *testing.T) {
	m := newTestManager(newMemoryStore())

	s := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	if !s.IsNew() {
		t.Error("expected new session")
	}
	if s.ID == "" {
		t.Error("expected generated session id")
	}
	if s.IsAuthenticated() {
		t.Error("new session must not be authenticated")
	}
}

func TestManager_SaveAndLoad(t *testing.T) {
	store := newMemoryStore()
	m := newTestManager(store)

	s := m.New()
	s.SetLocalUser(&model.User{ID: 1, Name: "Inge"})
	s.AddFlash(model.LevelSuccess, model.MsgLoginSuccess)

	req := roundTrip(t, m, s)
	if s.IsNew() {
		t.Error("saved session must not be new")
	}

	loaded := m.Load(req)
	if loaded.ID != s.ID {
		t.Errorf("ID = %q, want %q", loaded.ID, s.ID)
	}
	if loaded.Data.UserID != "1" || loaded.Data.UserName != "Inge" {
		t.Errorf("Data = %+v", loaded.Data)
	}
	if len(loaded.Data.Flashes) != 1 {
		t.Errorf("len(Flashes) = %d, want 1", len(loaded.Data.Flashes))
	}
	if loaded.IsNew() {
		t.Error("loaded session must not be new")
	}
}

func TestManager_Save_CookieAttributes(t *testing.T) {
	m := NewManager(newMemoryStore(), Config{Secret: "s", MaxAge: 30 * time.Minute, CookieSecure: true})
	s := m.New()
	s.SetOAuthState("state")

	rec := httptest.NewRecorder()
	if err := m.Save(context.Background(), rec, s); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("len(cookies) = %d, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != CookieName {
		t.Errorf("Name = %q, want %q", c.Name, CookieName)
	}
	if c.Value == s.ID {
		t.Error("cookie must not carry the raw session id")
	}
	if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteLaxMode {
		t.Errorf("unexpected cookie flags: %+v", c)
	}
	if c.MaxAge != 1800 {
		t.Errorf("MaxAge = %d, want 1800", c.MaxAge)
	}
}

func TestManager_Save_SkipsNewEmptySession(t *testing.T) {
	store := newMemoryStore()
	m := newTestManager(store)

	rec := httptest.NewRecorder()
	if err := m.Save(context.Background(), rec, m.New()); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if len(store.sessions) != 0 {
		t.Error("empty new session must not be stored")
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("empty new session must not set a cookie")
	}
}

func TestManager_Save_StoreError(t *testing.T) {
	store := newMemoryStore()
	store.saveErr = errors.New("database is locked")
	m := newTestManager(store)

	s := m.New()
	s.AddFlash(model.LevelInfo, "x")
	rec := httptest.NewRecorder()
	if err := m.Save(context.Background(), rec, s); err == nil {
		t.Fatal("expected error, got nil")
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("cookie must not be written when store fails")
	}
}

func TestManager_Load_TamperedCookie(t *testing.T) {
	store := newMemoryStore()
	m := newTestManager(store)
	s := m.New()
	s.SetLocalUser(&model.User{ID: 1, Name: "Inge"})
	req := roundTrip(t, m, s)

	other := NewManager(store, Config{Secret: "other-secret", MaxAge: time.Hour})
	if loaded := other.Load(req); loaded.IsAuthenticated() {
		t.Error("cookie signed with another secret must be rejected")
	}
}

func TestManager_Load_StoreErrorReturnsNew(t *testing.T) {
	store := newMemoryStore()
	m := newTestManager(store)
	s := m.New()
	s.SetLocalUser(&model.User{ID: 1, Name: "Inge"})
	req := roundTrip(t, m, s)

	store.findErr = errors.New("disk I/O error")
	if loaded := m.Load(req); !loaded.IsNew() || loaded.IsAuthenticated() {
		t.Error("expected fresh session on store error")
	}
}

func TestManager_Load_CorruptDataReturnsNew(t *testing.T) {
	store := newMemoryStore()
	m := newTestManager(store)
	s := m.New()
	s.SetLocalUser(&model.User{ID: 1, Name: "Inge"})
	req := roundTrip(t, m, s)

	store.sessions[s.ID].Data = []byte("{not json")
	if loaded := m.Load(req); loaded.IsAuthenticated() {
		t.Error("corrupt data must yield unauthenticated session")
	}
}

func TestManager_Destroy(t *testing.T) {
	store := newMemoryStore()
	m := newTestManager(store)
	s := m.New()
	s.SetLocalUser(&model.User{ID: 1, Name: "Inge"})
	req := roundTrip(t, m, s)
	oldID := s.ID

	if err := m.Destroy(context.Background(), s); err != nil {
		t.Fatalf("Destroy returned error: %v", err)
	}
	if s.ID == oldID {
		t.Error("session id must rotate")
	}
	if s.IsAuthenticated() || !s.IsNew() {
		t.Errorf("destroyed session must be empty and new: %+v", s)
	}
	if len(store.deleted) != 1 || store.deleted[0] != oldID {
		t.Errorf("deleted = %v, want [%s]", store.deleted, oldID)
	}
	if loaded := m.Load(req); loaded.IsAuthenticated() {
		t.Error("old cookie must not restore a destroyed session")
	}
}

func TestManager_Destroy_NewSessionSkipsStore(t *testing.T) {
	store := newMemoryStore()
	m := newTestManager(store)

	if err := m.Destroy(context.Background(), m.New()); err != nil {
		t.Fatalf("Destroy returned error: %v", err)
	}
	if len(store.deleted) != 0 {
		t.Errorf("deleted = %v, want none", store.deleted)
	}
}
