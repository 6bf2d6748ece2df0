package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// emailのunique制約違反を統一
var ErrDuplicateEmail = errors.New("email already exists")

// ユーザーの保存・取得を約束
type UserRepository interface {
	// 新規ユーザー作成。email重複は ErrDuplicateEmail。
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	// メールからユーザーを1件取得する。emailは小文字で保存されている。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// ユーザー情報の更新（last_loginなど行丸ごと）
	Update(ctx context.Context, user *model.User) error
	// 許可されたカラムだけを部分更新する。updated_atも更新される。
	UpdateFields(ctx context.Context, userID int64, fields map[string]any) (*model.User, error)
	// 削除。行が消えたかどうかを返す（いないときはfalse、エラーではない）。
	Delete(ctx context.Context, userID int64) (bool, error)
	// 作成日時の降順（同時刻はid降順）で一覧
	List(ctx context.Context, limit int, offset int) ([]model.User, error)
	// 全件数
	Count(ctx context.Context) (int64, error)
}
