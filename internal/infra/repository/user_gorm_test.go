package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"app/internal/domain/model"
	domainrepo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserGorm_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	r := NewUserGormRepository(newTestDB(t))

	u := &model.User{
		Email:        "  Alice@Test.COM ",
		PasswordHash: "hashed",
		FirstName:    "Alice",
		LastName:     "Example",
		Role:         model.RoleUser,
		IsActive:     true,
	}
	require.NoError(t, r.Create(ctx, u))
	assert.NotZero(t, u.ID)

	// emailは小文字で保存される
	assert.Equal(t, "alice@test.com", u.Email)

	// 大文字混じりで検索しても同じ行に当たる
	found, err := r.FindByEmail(ctx, "ALICE@test.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = r.FindByEmail(ctx, "nobody@test.com")
	assert.ErrorIs(t, err, domainrepo.ErrUserNotFound)
}

func TestUserGorm_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	r := NewUserGormRepository(newTestDB(t))

	first := &model.User{Email: "dup@test.com", PasswordHash: "h", Role: model.RoleUser, IsActive: true}
	require.NoError(t, r.Create(ctx, first))

	// 大文字違いも同一扱い（小文字化してからinsertするため）
	second := &model.User{Email: "DUP@test.com", PasswordHash: "h", Role: model.RoleUser, IsActive: true}
	err := r.Create(ctx, second)
	assert.ErrorIs(t, err, domainrepo.ErrDuplicateEmail)
}

func TestUserGorm_UpdateFields(t *testing.T) {
	ctx := context.Background()
	r := NewUserGormRepository(newTestDB(t))

	u := &model.User{Email: "bob@test.com", PasswordHash: "h", FirstName: "Bob", LastName: "Old", Role: model.RoleUser, IsActive: true}
	require.NoError(t, r.Create(ctx, u))

	updated, err := r.UpdateFields(ctx, u.ID, map[string]any{"last_name": "New"})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.LastName)
	assert.Equal(t, "Bob", updated.FirstName)

	// 不在IDはErrUserNotFound
	_, err = r.UpdateFields(ctx, 99999, map[string]any{"last_name": "X"})
	assert.ErrorIs(t, err, domainrepo.ErrUserNotFound)
}

func TestUserGorm_Delete(t *testing.T) {
	ctx := context.Background()
	r := NewUserGormRepository(newTestDB(t))

	u := &model.User{Email: "gone@test.com", PasswordHash: "h", Role: model.RoleUser, IsActive: true}
	require.NoError(t, r.Create(ctx, u))

	deleted, err := r.Delete(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	// 2回目は0件
	deleted, err = r.Delete(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestUserGorm_ListPagination(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	r := NewUserGormRepository(db)

	// created_atを全員同時刻にして、第2キー（id desc）の安定性を見る
	sameTime := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		u := &model.User{
			Email:        fmt.Sprintf("user%02d@test.com", i),
			PasswordHash: "h",
			Role:         model.RoleUser,
			IsActive:     true,
			CreatedAt:    sameTime,
		}
		require.NoError(t, r.Create(ctx, u))
	}

	total, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)

	// 3ページ目（limit=10, offset=20）は残り5件
	page3, err := r.List(ctx, 10, 20)
	require.NoError(t, err)
	assert.Len(t, page3, 5)

	// id降順なので3ページ目の先頭は5番目に古いid
	page1, err := r.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, page1, 10)
	assert.Greater(t, page1[0].ID, page1[9].ID)
	assert.Greater(t, page1[9].ID, page3[0].ID)

	// ページ間で重複も欠落もない
	seen := make(map[int64]bool)
	for _, batch := range [][]model.User{page1, page3} {
		for _, u := range batch {
			assert.False(t, seen[u.ID])
			seen[u.ID] = true
		}
	}
}
