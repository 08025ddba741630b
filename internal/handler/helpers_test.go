package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hitoshi/muebles/internal/auth"
	"github.com/hitoshi/muebles/internal/model"
	"github.com/hitoshi/muebles/internal/session"
)

const testCSRFToken = "test-csrf-token"

// --- モック ---

type mockUserService struct {
	listUsersFn    func(ctx context.Context) ([]*model.User, error)
	authenticateFn func(ctx context.Context, email, password string) (*model.User, error)
	registerFn     func(ctx context.Context, name, email, password string) (*model.User, error)
}

func (m *mockUserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(ctx)
	}
	return nil, nil
}

func (m *mockUserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, email, password)
	}
	return nil, model.ErrInvalidCredentials
}

func (m *mockUserService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, name, email, password)
	}
	return &model.User{ID: 1, Name: name, Email: email, Role: model.RoleUser}, nil
}

type mockCatalogService struct {
	listProductsFn func(ctx context.Context) ([]*model.Product, error)
}

func (m *mockCatalogService) ListProducts(ctx context.Context) ([]*model.Product, error) {
	if m.listProductsFn != nil {
		return m.listProductsFn(ctx)
	}
	return nil, nil
}

type mockAuthService struct {
	beginLoginFn    func() (string, string, error)
	completeLoginFn func(ctx context.Context, storedState, queryState, code string) (*auth.Claims, error)
}

func (m *mockAuthService) BeginLogin() (string, string, error) {
	if m.beginLoginFn != nil {
		return m.beginLoginFn()
	}
	return "", "", model.ErrOAuthNotConfigured
}

func (m *mockAuthService) CompleteLogin(ctx context.Context, storedState, queryState, code string) (*auth.Claims, error) {
	if m.completeLoginFn != nil {
		return m.completeLoginFn(ctx, storedState, queryState, code)
	}
	return nil, model.ErrOAuthNotConfigured
}

// recordingMetrics は記録された結果を保持する。
type recordingMetrics struct {
	noopMetrics
	mu            sync.Mutex
	logins        []string
	registrations []string
}

func (m *recordingMetrics) RecordLogin(method, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logins = append(m.logins, method+"/"+outcome)
}

func (m *recordingMetrics) RecordRegistration(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registrations = append(m.registrations, outcome)
}

// memoryStore はsession.Managerに渡すインメモリのStore。
type memoryStore struct {
	mu   sync.Mutex
	rows map[string]*model.Session
}

func (s *memoryStore) Save(ctx context.Context, m *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *m
	s.rows[m.ID] = &copied
	return nil
}

func (s *memoryStore) FindByID(ctx context.Context, id string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows[id], nil
}

func (s *memoryStore) DeleteByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}

// --- テスト環境 ---

// testEnv はNewRouterで組んだルーターと、Cookieを引き継ぐブラウザ役を持つ。
type testEnv struct {
	t       *testing.T
	router  http.Handler
	store   *memoryStore
	users   *mockUserService
	catalog *mockCatalogService
	auth    *mockAuthService
	metrics *recordingMetrics
	cookies map[string]*http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		t:       t,
		store:   &memoryStore{rows: map[string]*model.Session{}},
		users:   &mockUserService{},
		catalog: &mockCatalogService{},
		auth:    &mockAuthService{},
		metrics: &recordingMetrics{},
		cookies: map[string]*http.Cookie{
			"csrf_token": {Name: "csrf_token", Value: testCSRFToken},
		},
	}

	mgr := session.NewManager(env.store, session.Config{
		Secret: "handler-test-secret",
		MaxAge: time.Hour,
	})
	router, err := NewRouter(&RouterDeps{
		Sessions:       mgr,
		UserService:    env.users,
		CatalogService: env.catalog,
		AuthService:    env.auth,
		Metrics:        env.metrics,
	})
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}
	env.router = router
	return env
}

// do はリクエストを送り、レスポンスのCookieを次のリクエストへ引き継ぐ。
func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	e.t.Helper()
	for _, c := range e.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(e.cookies, c.Name)
			continue
		}
		e.cookies[c.Name] = &http.Cookie{Name: c.Name, Value: c.Value}
	}
	return w
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	e.t.Helper()
	return e.do(httptest.NewRequest(http.MethodGet, path, nil))
}

// postForm はCSRFトークンを付けてフォームを送信する。
func (e *testEnv) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	e.t.Helper()
	form.Set("csrf_token", testCSRFToken)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req)
}

// currentData はブラウザ役が持つセッションCookieに対応する保存データを返す。
func (e *testEnv) currentData() session.Data {
	e.t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range e.cookies {
		req.AddCookie(c)
	}
	mgr := session.NewManager(e.store, session.Config{Secret: "handler-test-secret", MaxAge: time.Hour})
	return mgr.Load(req).Data
}

// storedData は保存済みの全セッションデータを返す。
func (e *testEnv) storedData() []session.Data {
	e.t.Helper()
	e.store.mu.Lock()
	defer e.store.mu.Unlock()

	var all []session.Data
	for _, row := range e.store.rows {
		var d session.Data
		if err := json.Unmarshal(row.Data, &d); err != nil {
			e.t.Fatalf("failed to decode session row: %v", err)
		}
		all = append(all, d)
	}
	return all
}

// loginAs はローカルログインを成功させる。
func (e *testEnv) loginAs(user *model.User) {
	e.t.Helper()
	e.users.authenticateFn = func(ctx context.Context, email, password string) (*model.User, error) {
		return user, nil
	}
	w := e.postForm("/login", url.Values{"email": {user.Email}, "password": {"secret"}})
	if w.Code != http.StatusFound {
		e.t.Fatalf("login status = %d, want %d", w.Code, http.StatusFound)
	}
}

func assertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusFound)
	}
	if got := w.Header().Get("Location"); got != location {
		t.Fatalf("Location = %q, want %q", got, location)
	}
}

func assertBodyContains(t *testing.T, w *httptest.ResponseRecorder, want string) {
	t.Helper()
	if !strings.Contains(w.Body.String(), want) {
		t.Errorf("body does not contain %q:\n%s", want, w.Body.String())
	}
}

func newFormRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func newTestEnvManager() *session.Manager {
	return session.NewManager(&memoryStore{rows: map[string]*model.Session{}}, session.Config{
		Secret: "handler-test-secret",
		MaxAge: time.Hour,
	})
}
