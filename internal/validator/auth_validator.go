package validator

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"app/internal/usecase"
)

var (
	// 入力が不正。どの規則に引っかかったかは返すエラーで分かるようにする
	// （認証失敗と違って、validationは理由を隠さない）。
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrPasswordTooLong    = errors.New("password too long")
	ErrFirstNameRequired  = errors.New("first name is required")
	ErrLastNameRequired   = errors.New("last name is required")

	// refresh tokenが不正
	ErrInvalidRefresh = errors.New("invalid refresh")
)

// パスワード最低文字数（MVP: 8）
const minPasswordLength = 8

// bcryptは72バイトを超える入力を受け付けない
const maxPasswordLength = 72

type authValidator struct{}

// Usecaseは interface を依存注入。
// email重複チェックはここではやらない。unique indexが唯一の正で、
// 違反はrepoが ErrDuplicateEmail に変換する（check-then-insertの競合対策）。
func NewAuthValidator() usecase.AuthValidator {
	return &authValidator{}
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, email, password, firstName, lastName string) error {
	email = strings.TrimSpace(email)

	// email形式
	if email == "" || !isEmailLike(email) {
		return ErrInvalidEmailFormat
	}

	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > maxPasswordLength {
		return ErrPasswordTooLong
	}

	// 名前はtrim後に非空
	if strings.TrimSpace(firstName) == "" {
		return ErrFirstNameRequired
	}
	if strings.TrimSpace(lastName) == "" {
		return ErrLastNameRequired
	}

	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	// 必須チェック
	if email == "" || password == "" {
		return ErrInvalidEmailFormat
	}

	// email形式
	if !isEmailLike(email) {
		return ErrInvalidEmailFormat
	}

	return nil
}

// refresh 入力を検証
func (v *authValidator) ValidateRefresh(ctx context.Context, refreshToken string, userAgent string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return ErrInvalidRefresh
	}

	return nil
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	re := regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	return re.MatchString(s)
}
