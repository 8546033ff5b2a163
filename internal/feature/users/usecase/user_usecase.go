// Package usecase はusersフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"user_backend/internal/feature/users/domain/entity"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 8
	// maxNameLength は表示名の最大文字数です。
	maxNameLength = 100

	// DefaultLimit は一覧取得の件数が未指定の場合の件数です。
	DefaultLimit = 50
	// MaxLimit は一覧取得で一度に返す最大件数です。
	MaxLimit = 200
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// List はID昇順でユーザーを返します。
	List(ctx context.Context, offset, limit int) ([]entity.User, error)

	// Count は全ユーザー数を返します。
	Count(ctx context.Context) (int64, error)

	// FindByID は指定されたIDに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFound を返します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFound を返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// Create は新しいユーザーを永続化します。
	// メールアドレスが重複する場合、ErrEmailAlreadyExists を返します。
	Create(ctx context.Context, user *entity.User) error

	// Update は既存ユーザーの名前、メールアドレス、パスワードハッシュを更新します。
	Update(ctx context.Context, user *entity.User) error

	// Delete は指定されたIDのユーザーを削除します。
	Delete(ctx context.Context, id uint) error
}

// CreateUserInput はユーザー作成の入力です。
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
}

// UpdateUserInput はユーザー更新の入力です。nil のフィールドは変更しません。
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
}

// Page は一覧取得の範囲です。
type Page struct {
	Offset int
	Limit  int
}

// UserPage は一覧取得の結果です。
type UserPage struct {
	Items  []entity.User
	Total  int64
	Offset int
	Limit  int
}

// UserUsecase はユーザー操作のビジネスロジックを提供します。
type UserUsecase struct {
	users      UserRepository
	bcryptCost int
}

// NewUserUsecase は UserUsecase の新しいインスタンスを生成します。
func NewUserUsecase(users UserRepository) *UserUsecase {
	return NewUserUsecaseWithCost(users, bcrypt.DefaultCost)
}

// NewUserUsecaseWithCost はbcryptのコストを指定して UserUsecase を生成します。
func NewUserUsecaseWithCost(users UserRepository, cost int) *UserUsecase {
	return &UserUsecase{users: users, bcryptCost: cost}
}

// NormalizePage は一覧取得の範囲をデフォルト値と上限で補正します。
func NormalizePage(p Page) Page {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// ListUsers はユーザー一覧と総件数を返します。
func (u *UserUsecase) ListUsers(ctx context.Context, page Page) (*UserPage, error) {
	page = NormalizePage(page)

	items, err := u.users.List(ctx, page.Offset, page.Limit)
	if err != nil {
		return nil, err
	}
	total, err := u.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &UserPage{Items: items, Total: total, Offset: page.Offset, Limit: page.Limit}, nil
}

// GetUser はIDでユーザーを取得します。
func (u *UserUsecase) GetUser(ctx context.Context, id uint) (*entity.User, error) {
	return u.users.FindByID(ctx, id)
}

// CreateUser は入力を検証し、パスワードをハッシュ化してユーザーを作成します。
func (u *UserUsecase) CreateUser(ctx context.Context, in CreateUserInput) (*entity.User, error) {
	name, err := validateName(in.Name)
	if err != nil {
		return nil, err
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	hash, err := u.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	if err := u.ensureEmailAvailable(ctx, email, 0); err != nil {
		return nil, err
	}

	user := &entity.User{Name: name, Email: email, PasswordHash: hash}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUser は指定されたフィールドだけを更新します。
func (u *UserUsecase) UpdateUser(ctx context.Context, id uint, in UpdateUserInput) (*entity.User, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if user.Name, err = validateName(*in.Name); err != nil {
			return nil, err
		}
	}
	if in.Email != nil {
		email, err := normalizeEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		if email != user.Email {
			if err := u.ensureEmailAvailable(ctx, email, user.ID); err != nil {
				return nil, err
			}
		}
		user.Email = email
	}
	if in.Password != nil {
		if user.PasswordHash, err = u.hashPassword(*in.Password); err != nil {
			return nil, err
		}
	}

	if err := u.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser はユーザーを削除します。
func (u *UserUsecase) DeleteUser(ctx context.Context, id uint) error {
	return u.users.Delete(ctx, id)
}

// ensureEmailAvailable は email が ownerID 以外のユーザーに使われていれば ErrEmailAlreadyExists を返します。
// 同時実行時の重複は一意インデックスが検出します。
func (u *UserUsecase) ensureEmailAvailable(ctx context.Context, email string, ownerID uint) error {
	existing, err := u.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != ownerID:
		return ErrEmailAlreadyExists
	default:
		return nil
	}
}

func (u *UserUsecase) hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", fmt.Errorf("%w: password must be at least %d characters long", ErrInvalidInput, minPasswordLength)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), u.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len([]rune(name)) > maxNameLength {
		return "", fmt.Errorf("%w: name must be at most %d characters", ErrInvalidInput, maxNameLength)
	}
	return name, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}
	return email, nil
}
