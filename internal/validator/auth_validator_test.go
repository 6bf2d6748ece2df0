package validator

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRegister(t *testing.T) {
	ctx := context.Background()
	v := NewAuthValidator()

	cases := []struct {
		name      string
		email     string
		password  string
		firstName string
		lastName  string
		wantErr   error
	}{
		{"ok", "user@test.com", "Password1", "Taro", "Yamada", nil},
		{"ok with surrounding spaces", "  user@test.com  ", "Password1", "Taro", "Yamada", nil},
		{"empty email", "", "Password1", "Taro", "Yamada", ErrInvalidEmailFormat},
		{"no at mark", "usertest.com", "Password1", "Taro", "Yamada", ErrInvalidEmailFormat},
		{"no domain dot", "user@testcom", "Password1", "Taro", "Yamada", ErrInvalidEmailFormat},
		{"space inside", "us er@test.com", "Password1", "Taro", "Yamada", ErrInvalidEmailFormat},
		{"password 7 chars", "user@test.com", "Pass123", "Taro", "Yamada", ErrPasswordTooShort},
		{"password 8 chars ok", "user@test.com", "Pass1234", "Taro", "Yamada", nil},
		{"password over bcrypt limit", "user@test.com", strings.Repeat("a", 73), "Taro", "Yamada", ErrPasswordTooLong},
		{"password at bcrypt limit ok", "user@test.com", strings.Repeat("a", 72), "Taro", "Yamada", nil},
		{"first name blank", "user@test.com", "Password1", "   ", "Yamada", ErrFirstNameRequired},
		{"last name blank", "user@test.com", "Password1", "Taro", "", ErrLastNameRequired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.ValidateRegister(ctx, tc.email, tc.password, tc.firstName, tc.lastName)
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestValidateLogin(t *testing.T) {
	ctx := context.Background()
	v := NewAuthValidator()

	assert.NoError(t, v.ValidateLogin(ctx, "user@test.com", "whatever"))

	// loginは長さ規則を課さない（既存ユーザーを締め出さない）
	assert.NoError(t, v.ValidateLogin(ctx, "user@test.com", "short"))

	assert.ErrorIs(t, v.ValidateLogin(ctx, "", "whatever"), ErrInvalidEmailFormat)
	assert.ErrorIs(t, v.ValidateLogin(ctx, "user@test.com", ""), ErrInvalidEmailFormat)
	assert.ErrorIs(t, v.ValidateLogin(ctx, "not-an-email", "whatever"), ErrInvalidEmailFormat)
}

func TestValidateRefresh(t *testing.T) {
	ctx := context.Background()
	v := NewAuthValidator()

	assert.NoError(t, v.ValidateRefresh(ctx, "some-refresh-token", "UA"))
	assert.ErrorIs(t, v.ValidateRefresh(ctx, "", "UA"), ErrInvalidRefresh)
	assert.ErrorIs(t, v.ValidateRefresh(ctx, "   ", "UA"), ErrInvalidRefresh)
}
