// Package database はSQLite接続とスキーマ初期化を提供する。
package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/hitoshi/muebles/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// 初期管理者ユーザー
const (
	AdminName     = "Inge"
	AdminEmail    = "inge@gmail.com"
	AdminPassword = "thomasito10"
)

// SeedProducts は初期投入する商品。タイトルで存在確認する。
var SeedProducts = []model.Product{
	{Title: "sillon de oficina", Type: "sillon", Price: 800000, Description: "Sillon comodo calidad premium"},
	{Title: "silla de playa", Type: "silla", Price: 250000, Description: "Silla ideal para la playa"},
	{Title: "sillon de living", Type: "sillon", Price: 1000000, Description: "Sillon ideal para la familia"},
}

// PasswordHasher は初期管理者のパスワードハッシュ化に必要なインターフェース。
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

// Bootstrap はテーブルを作成し、初期データを投入する。
// 何度呼んでも管理者1件・初期商品3件の状態になる（冪等）。
// 起動時に毎回呼び出すことを想定している。
func Bootstrap(ctx context.Context, db *sql.DB, hasher PasswordHasher) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if err := seedAdmin(ctx, tx, hasher); err != nil {
		return err
	}

	if err := seedProducts(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Info("database initialized")
	return nil
}

// seedAdmin は管理者ユーザーが存在しない場合に作成する。
func seedAdmin(ctx context.Context, tx *sql.Tx, hasher PasswordHasher) error {
	exists, err := rowExists(ctx, tx, `SELECT 1 FROM usuarios WHERE email = ?`, AdminEmail)
	if err != nil {
		return fmt.Errorf("failed to check admin user: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := hasher.Hash(AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO usuarios (nombre, email, password, rol) VALUES (?, ?, ?, ?)`,
		AdminName, AdminEmail, hash, model.RoleAdmin,
	); err != nil {
		return fmt.Errorf("failed to insert admin user: %w", err)
	}

	slog.Info("admin user seeded", slog.String("email", AdminEmail))
	return nil
}

// seedProducts は初期商品のうち未登録のものを作成する。
func seedProducts(ctx context.Context, tx *sql.Tx) error {
	for _, p := range SeedProducts {
		exists, err := rowExists(ctx, tx, `SELECT 1 FROM productos WHERE titulo = ?`, p.Title)
		if err != nil {
			return fmt.Errorf("failed to check product %q: %w", p.Title, err)
		}
		if exists {
			continue
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO productos (titulo, tipo, precio, descripcion) VALUES (?, ?, ?, ?)`,
			p.Title, p.Type, p.Price, p.Description,
		); err != nil {
			return fmt.Errorf("failed to insert product %q: %w", p.Title, err)
		}
	}
	return nil
}

func rowExists(ctx context.Context, tx *sql.Tx, query string, args ...any) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
