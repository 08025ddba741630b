// Package catalog は商品カタログの参照ロジックを提供する。
package catalog

import (
	"context"
	"fmt"

	"github.com/hitoshi/muebles/internal/model"
	"github.com/hitoshi/muebles/internal/repository"
	"github.com/hitoshi/muebles/internal/security"
)

// Service は商品カタログのサービス層。
type Service struct {
	productRepo repository.ProductRepository
	sanitizer   security.DescriptionSanitizer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(productRepo repository.ProductRepository, sanitizer security.DescriptionSanitizer) *Service {
	return &Service{
		productRepo: productRepo,
		sanitizer:   sanitizer,
	}
}

// ListProducts は全商品を返す。説明文はサニタイズ済み。
func (s *Service) ListProducts(ctx context.Context) ([]*model.Product, error) {
	products, err := s.productRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("商品一覧の取得に失敗しました: %w", err)
	}

	for _, p := range products {
		p.Description = s.sanitizer.Sanitize(p.Description)
	}
	return products, nil
}
