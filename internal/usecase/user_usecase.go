package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"app/internal/repository"

	"github.com/rs/zerolog"
)

var (
	// 更新対象のフィールドが1つもない
	ErrEmptyUpdate = errors.New("no updatable fields")

	// 名前はtrim後に空ではいけない
	ErrInvalidName = errors.New("name must not be empty")

	// ユーザーがいない
	ErrUserNotFound = errors.New("user not found")
)

// プロフィールで更新を許すフィールド（allow-list）。
// emailとpasswordの変更はこのエンドポイントでは扱わない（別の厳格なフローが必要）。
var profileAllowList = map[string]string{
	"first_name": "first_name",
	"last_name":  "last_name",
}

type UserListOutput struct {
	Items []UserDTO `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

type UserUsecase struct {
	users  repository.UserRepository
	rtRepo repository.RefreshTokenRepository
	log    zerolog.Logger
}

// DI
func NewUserUsecase(users repository.UserRepository, rtRepo repository.RefreshTokenRepository, log zerolog.Logger) *UserUsecase {
	return &UserUsecase{users: users, rtRepo: rtRepo, log: log}
}

// GetProfile は自分のプロフィールを返す。
func (u *UserUsecase) GetProfile(ctx context.Context, userID int64) (*UserDTO, error) {
	if userID <= 0 {
		return nil, ErrUserNotFound
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		u.log.Error().Err(err).Msg("user lookup failed")
		return nil, ErrInternal
	}

	dto := toUserDTO(user)
	return &dto, nil
}

// UpdateProfile はallow-listにあるフィールドだけを部分更新する。
// 許可外のキーはエラーにせず黙って捨てる。フィルタ後に何も残らなければエラー。
func (u *UserUsecase) UpdateProfile(ctx context.Context, userID int64, fields map[string]string) (*UserDTO, error) {
	if userID <= 0 {
		return nil, ErrUserNotFound
	}

	filtered := make(map[string]any, len(fields))
	for key, value := range fields {
		column, ok := profileAllowList[key]
		if !ok {
			continue
		}

		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return nil, ErrInvalidName
		}
		filtered[column] = trimmed
	}

	if len(filtered) == 0 {
		return nil, ErrEmptyUpdate
	}

	user, err := u.users.UpdateFields(ctx, userID, filtered)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		u.log.Error().Err(err).Msg("profile update failed")
		return nil, ErrInternal
	}

	dto := toUserDTO(user)
	return &dto, nil
}

// ListUsers は管理者向けの一覧。作成日時降順・id降順で安定ページング。
func (u *UserUsecase) ListUsers(ctx context.Context, page int, limit int) (UserListOutput, error) {
	if page < 1 {
		return UserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return UserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	offset := (page - 1) * limit

	users, err := u.users.List(ctx, limit, offset)
	if err != nil {
		u.log.Error().Err(err).Msg("user list failed")
		return UserListOutput{}, ErrInternal
	}

	total, err := u.users.Count(ctx)
	if err != nil {
		return UserListOutput{}, ErrInternal
	}

	items := make([]UserDTO, 0, len(users))
	for i := range users {
		items = append(items, toUserDTO(&users[i]))
	}

	return UserListOutput{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

// DeleteUser は管理者向けの物理削除。refresh tokenも道連れにする。
func (u *UserUsecase) DeleteUser(ctx context.Context, targetUserID int64) error {
	if targetUserID <= 0 {
		return ErrUserNotFound
	}

	deleted, err := u.users.Delete(ctx, targetUserID)
	if err != nil {
		u.log.Error().Err(err).Msg("user delete failed")
		return ErrInternal
	}
	if !deleted {
		return ErrUserNotFound
	}

	if err := u.rtRepo.DeleteAllByUserID(ctx, targetUserID); err != nil {
		u.log.Error().Err(err).Msg("refresh token cleanup failed")
	}

	return nil
}
