package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/muebles/internal/auth"
	"github.com/hitoshi/muebles/internal/model"
	"github.com/hitoshi/muebles/internal/session"
)

// UserServiceInterface はユーザー関連ハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	ListUsers(ctx context.Context) ([]*model.User, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	Register(ctx context.Context, name, email, password string) (*model.User, error)
}

// CatalogServiceInterface は商品一覧ハンドラーが必要とするサービスインターフェース。
type CatalogServiceInterface interface {
	ListProducts(ctx context.Context) ([]*model.Product, error)
}

// AuthServiceInterface はOAuthハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	BeginLogin() (authURL, state string, err error)
	CompleteLogin(ctx context.Context, storedState, queryState, code string) (*auth.Claims, error)
}

// SessionManager はセッションの読み込み・保存・破棄を行うインターフェース。
// session.Managerが実装する。
type SessionManager interface {
	Load(r *http.Request) *session.Session
	Save(ctx context.Context, w http.ResponseWriter, s *session.Session) error
	Destroy(ctx context.Context, s *session.Session) error
}

// MetricsRecorder はログインと登録の結果を記録するインターフェース。
type MetricsRecorder interface {
	RecordLogin(method, outcome string)
	RecordRegistration(outcome string)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// HealthChecker はDB接続の疎通確認インターフェース。*sql.DBが実装する。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}
