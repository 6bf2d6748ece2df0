package token_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"app/internal/domain/model"
	"app/internal/token"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// テスト用の固定クロック
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

const testSecret = "test-secret"

func newTestService(clock *fakeClock) (*token.Service, *token.MemoryDenylist) {
	denylist := token.NewMemoryDenylist(clock)
	return token.NewService(testSecret, 15*time.Minute, denylist, clock), denylist
}

func TestService_IssueAndVerify(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	svc, _ := newTestService(clock)

	raw, expiresAt, err := svc.Issue(42, "ann@example.com", model.RoleUser, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.Equal(t, clock.Now().Add(15*time.Minute), expiresAt)

	claims, err := svc.Verify(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "ann@example.com", claims.Email)
	assert.Equal(t, model.RoleUser, claims.Role)
	assert.Equal(t, expiresAt.Unix(), claims.ExpiresAt.Unix())
}

func TestService_Verify_Expired(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	svc, _ := newTestService(clock)

	// 発行時点で期限切れのtoken
	raw, _, err := svc.Issue(1, "a@example.com", model.RoleUser, -1*time.Second)
	require.NoError(t, err)

	_, verr := svc.Verify(ctx, raw)
	// 期限切れは署名エラーと区別できるエラーで返る
	assert.ErrorIs(t, verr, token.ErrTokenExpired)
	assert.NotErrorIs(t, verr, token.ErrTokenInvalid)
}

func TestService_Verify_BadSignature(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	svc, _ := newTestService(clock)

	other := token.NewService("other-secret", 15*time.Minute, token.NewMemoryDenylist(clock), clock)
	raw, _, err := other.Issue(1, "a@example.com", model.RoleUser, 0)
	require.NoError(t, err)

	_, verr := svc.Verify(ctx, raw)
	assert.ErrorIs(t, verr, token.ErrTokenInvalid)
}

func TestService_Verify_Malformed(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(newFakeClock())

	_, err := svc.Verify(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, token.ErrTokenInvalid)
}

func TestService_Verify_WrongType(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	svc, _ := newTestService(clock)

	// typ="refresh"のtokenを正しい鍵で作っても通らない
	now := clock.Now()
	claims := jwt.MapClaims{
		"sub":   int64(1),
		"email": "a@example.com",
		"role":  "USER",
		"typ":   "refresh",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, verr := svc.Verify(ctx, raw)
	assert.ErrorIs(t, verr, token.ErrTokenInvalid)
}

func TestService_Revoke(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	svc, _ := newTestService(clock)

	raw, _, err := svc.Issue(7, "b@example.com", model.RoleUser, 0)
	require.NoError(t, err)

	// 失効前は通る
	_, err = svc.Verify(ctx, raw)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, raw))

	// 期限内・署名正でも、失効済みなら拒否
	_, verr := svc.Verify(ctx, raw)
	assert.ErrorIs(t, verr, token.ErrTokenRevoked)

	revoked, err := svc.IsRevoked(ctx, raw)
	require.NoError(t, err)
	assert.True(t, revoked)

	// 2回目のrevokeもエラーにならない（冪等）
	assert.NoError(t, svc.Revoke(ctx, raw))
}

func TestService_Revoke_ExpiredTokenNotStored(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	svc, denylist := newTestService(clock)

	raw, _, err := svc.Issue(7, "b@example.com", model.RoleUser, time.Minute)
	require.NoError(t, err)

	// 期限を過ぎたtokenは期限チェックが落とすのでdeny-listに載せない
	clock.Advance(2 * time.Minute)
	require.NoError(t, svc.Revoke(ctx, raw))
	assert.Equal(t, 0, denylist.Len())
}

func TestService_RevokedEntryExpiresWithToken(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	svc, denylist := newTestService(clock)

	raw, _, err := svc.Issue(7, "b@example.com", model.RoleUser, time.Minute)
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, raw))
	assert.Equal(t, 1, denylist.Len())

	// tokenの寿命が尽きればdeny-listからも消える
	clock.Advance(2 * time.Minute)
	revoked, err := svc.IsRevoked(ctx, raw)
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Equal(t, 0, denylist.Len())
}

func TestNewRefreshToken(t *testing.T) {
	a, err := token.NewRefreshToken()
	require.NoError(t, err)
	b, err := token.NewRefreshToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.Len(t, b, 64)
	assert.NotEqual(t, a, b)
}
