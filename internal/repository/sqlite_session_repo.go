package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/hitoshi/muebles/internal/model"
)

// SQLiteSessionRepo はSQLiteを使用したセッションリポジトリ。
// 有効期限はUNIX秒で保存する。
type SQLiteSessionRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteSessionRepo はSQLiteSessionRepoを生成する。
func NewSQLiteSessionRepo(db *sql.DB) *SQLiteSessionRepo {
	return &SQLiteSessionRepo{db: db, now: time.Now}
}

// Save はセッションを作成または上書きする。
// 既存セッションの作成日時は変更しない。
func (r *SQLiteSessionRepo) Save(ctx context.Context, session *model.Session) error {
	query, args, err := sq.Insert("sessions").
		Columns("id", "data", "expires_at", "created_at").
		Values(session.ID, session.Data, session.ExpiresAt.Unix(), session.CreatedAt.Unix()).
		Suffix("ON CONFLICT (id) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
func (r *SQLiteSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	query, args, err := sq.Select("id", "data", "expires_at", "created_at").
		From("sessions").
		Where(sq.Eq{"id": id}).
		Where(sq.Gt{"expires_at": r.now().Unix()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var (
		session            model.Session
		expiresAt, created int64
	)
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&session.ID, &session.Data, &expiresAt, &created)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	session.ExpiresAt = time.Unix(expiresAt, 0)
	session.CreatedAt = time.Unix(created, 0)
	return &session, nil
}

// DeleteByID は指定IDのセッションを削除する。
func (r *SQLiteSessionRepo) DeleteByID(ctx context.Context, id string) error {
	query, args, err := sq.Delete("sessions").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
func (r *SQLiteSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query, args, err := sq.Delete("sessions").Where(sq.LtOrEq{"expires_at": now.Unix()}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// compile-time interface check
var _ SessionRepository = (*SQLiteSessionRepo)(nil)
