// Package user はユーザー登録と認証のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/muebles/internal/model"
	"github.com/hitoshi/muebles/internal/repository"
)

// MinPasswordLength は登録時に要求するパスワードの最小文字数。
const MinPasswordLength = 6

// MaxPasswordLength はbcryptが扱える入力のバイト長の上限。
const MaxPasswordLength = 72

// PasswordHasher はパスワードのハッシュ化と照合のインターフェース。
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// Service はユーザー管理のサービス層。
type Service struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, hasher PasswordHasher) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
	}
}

// ListUsers は登録済みの全ユーザーを返す。
func (s *Service) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	return users, nil
}

// CreateUser は平文パスワードをハッシュ化してユーザーを作成する。
// 平文パスワードは保存しない。重複メールはmodel.ErrEmailAlreadyExistsを返す。
func (s *Service) CreateUser(ctx context.Context, name, email, password, role string) (*model.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	user, err := s.userRepo.Create(ctx, name, email, hash, role)
	if err != nil {
		if errors.Is(err, model.ErrEmailAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}
	return user, nil
}

// Register は入力を検証した上で一般ユーザー（role=user）を登録する。
func (s *Service) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	if name == "" || !strings.Contains(email, "@") || len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return nil, model.ErrInvalidInput
	}

	user, err := s.CreateUser(ctx, name, email, password, model.RoleUser)
	if err != nil {
		return nil, err
	}

	slog.Info("ユーザーを登録しました",
		slog.Int64("user_id", user.ID),
	)
	return user, nil
}

// Authenticate はメールアドレスとパスワードでユーザーを認証する。
// 未登録メールとパスワード不一致はどちらもmodel.ErrInvalidCredentialsを返す。
func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, model.ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil || !s.hasher.Verify(password, user.PasswordHash) {
		return nil, model.ErrInvalidCredentials
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
