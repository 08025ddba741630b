package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const driverName = "sqlite3"

// Open はSQLiteデータベースファイルを開き、接続を確認する。
// ファイルが存在しない場合はSQLiteが新規作成する。
// 外部キー制約を有効化し、書き込み競合時は最大5秒待機する。
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// インメモリDBは接続ごとに別DBになるため、接続を1本に固定する
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// dsn はmattn/go-sqlite3の接続文字列を組み立てる。
func dsn(path string) string {
	params := "_foreign_keys=on&_busy_timeout=5000"
	if strings.Contains(path, "?") {
		return path + "&" + params
	}
	return "file:" + path + "?" + params
}
