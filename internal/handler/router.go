package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/muebles/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Sessions SessionManager
	CSRF     middleware.CSRFConfig
	Logger   *slog.Logger

	// サービス
	UserService    UserServiceInterface
	CatalogService CatalogServiceInterface
	AuthService    AuthServiceInterface

	// 運用
	Metrics        MetricsRecorder
	MetricsHandler http.Handler
	HealthChecker  HealthChecker
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → RequestID → Session → Logging → SecurityHeaders → CSRF(ページのみ)
//
// /health, /metrics, /static/ はCSRFの外に配置する。
func NewRouter(deps *RouterDeps) (http.Handler, error) {
	renderer, err := NewRenderer(deps.Sessions)
	if err != nil {
		return nil, fmt.Errorf("failed to build renderer: %w", err)
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var m MetricsRecorder = noopMetrics{}
	if deps.Metrics != nil {
		m = deps.Metrics
	}

	pageHandler := NewPageHandler(deps.UserService, deps.CatalogService, deps.Sessions, renderer)
	authHandler := NewAuthHandler(deps.UserService, deps.Sessions, renderer, m)
	oauthHandler := NewOAuthHandler(deps.AuthService, deps.Sessions, m)
	userHandler := NewUserHandler(renderer)

	r := chi.NewRouter()
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewSessionMiddleware(deps.Sessions))
	r.Use(middleware.NewLoggingMiddleware(logger, m))
	r.Use(middleware.NewSecurityHeadersMiddleware(middleware.SecurityHeadersConfig{
		StrictTransport: deps.CSRF.CookieSecure,
	}))

	// --- 運用エンドポイント ---
	r.Get("/health", Health(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}
	r.Handle("/static/*", staticHandler())

	// --- ページ ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCSRFMiddleware(deps.CSRF))

		r.Get("/", pageHandler.Index)
		r.Post("/submit", pageHandler.Submit)
		r.Get("/productos", pageHandler.Products)
		r.Get("/contacto", pageHandler.Contact)
		r.Get("/usuariosBD", pageHandler.UsersDB)
		r.Get("/users", userHandler.RedirectToList)
		r.Get("/users/", userHandler.List)

		// ローカル認証
		r.Get("/login", authHandler.LoginForm)
		r.Post("/login", authHandler.Login)
		r.Get("/logout", authHandler.Logout)
		r.Get("/registro", authHandler.RegisterForm)
		r.Post("/registro", authHandler.Register)

		// Google OAuth
		r.Route("/auth", func(r chi.Router) {
			r.Get("/login", oauthHandler.Login)
			r.Get("/callback", oauthHandler.Callback)
		})

		// --- ログインが必要なルート ---
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewRequireAuthMiddleware(deps.Sessions))
			r.Get("/home", pageHandler.Home)
		})
	})

	return r, nil
}
