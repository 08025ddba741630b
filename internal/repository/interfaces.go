// Package repository はデータ永続化のインターフェースとSQLite実装を提供する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/muebles/internal/model"
)

// UserRepository はユーザーデータ（usuarios）の永続化インターフェース。
type UserRepository interface {
	// ListAll は全ユーザーをID順に返す。
	ListAll(ctx context.Context) ([]*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// Create はハッシュ済みパスワードでユーザーを作成し、採番済みのユーザーを返す。
	// メールアドレスが重複する場合はmodel.ErrEmailAlreadyExistsを返し、既存行は変更しない。
	Create(ctx context.Context, name, email, passwordHash, role string) (*model.User, error)
}

// ProductRepository は商品データ（productos）の永続化インターフェース。
type ProductRepository interface {
	// ListAll は全商品をID順に返す。
	ListAll(ctx context.Context) ([]*model.Product, error)
}

// SessionRepository はサーバー側セッションの永続化インターフェース。
type SessionRepository interface {
	// Save はセッションを作成または上書きする。
	Save(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は指定時刻までに期限切れとなったセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
