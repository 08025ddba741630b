package repository

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/hitoshi/muebles/internal/model"
)

// SQLiteProductRepo はSQLiteを使用した商品リポジトリ。
type SQLiteProductRepo struct {
	db *sql.DB
}

// NewSQLiteProductRepo はSQLiteProductRepoを生成する。
func NewSQLiteProductRepo(db *sql.DB) *SQLiteProductRepo {
	return &SQLiteProductRepo{db: db}
}

// ListAll は全商品をID順に返す。
// descripcionはNULL許容のため空文字に、stockはNULLの場合0に変換する。
func (r *SQLiteProductRepo) ListAll(ctx context.Context) ([]*model.Product, error) {
	query, args, err := sq.Select("id", "titulo", "tipo", "precio", "descripcion", "stock").
		From("productos").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		var (
			p           model.Product
			description sql.NullString
			stock       sql.NullInt64
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.Type, &p.Price, &description, &stock); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		p.Description = description.String
		p.Stock = int(stock.Int64)
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	return products, nil
}

// compile-time interface check
var _ ProductRepository = (*SQLiteProductRepo)(nil)
