// Package model はドメインモデルを定義する。
package model

import "time"

// ロール
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User は店舗のユーザーを表す（usuarios テーブル）。
// Google認証のみのユーザーはDBに保存されないため、PasswordHashは常にローカル認証用。
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         string
}

// IsAdmin は管理者ロールかどうかを返す。
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Product は家具商品を表す（productos テーブル）。
type Product struct {
	ID          int64
	Title       string
	Type        string
	Price       float64
	Description string
	Stock       int
}

// Sale は販売記録を表す（ventas テーブル）。
// スキーマのみ定義されており、現在これを読み書きする処理はない。
type Sale struct {
	ID        int64
	UserID    int64
	ProductID int64
	Date      time.Time
	Quantity  int
	Total     float64
}

// Session はサーバー側に保存されるブラウザセッションを表す。
// Dataはセッション内容をJSONで保持する。
type Session struct {
	ID        string
	Data      []byte
	ExpiresAt time.Time
	CreatedAt time.Time
}
