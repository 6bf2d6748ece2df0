package token

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"app/internal/domain/model"

	"github.com/golang-jwt/jwt/v5"
)

// access tokenであることを示すtype claim。
// refreshなど別種のtokenを流用されないためのガード。
const TypeAccess = "access"

var (
	// 署名不一致・形式不正・type違い
	ErrTokenInvalid = errors.New("invalid token")
	// 有効期限切れ
	ErrTokenExpired = errors.New("token expired")
	// deny-listに載っている
	ErrTokenRevoked = errors.New("token revoked")
)

// 現在の時間
type Clock interface {
	Now() time.Time
}

// 失効済みtokenの置き場。プロセスをまたいで共有できる実装もある。
type Denylist interface {
	// tokenをttlの間だけ失効扱いにする。期限が来たら自然に消える。
	Add(ctx context.Context, token string, ttl time.Duration) error
	Contains(ctx context.Context, token string) (bool, error)
}

// 検証済みtokenの中身。
type Claims struct {
	UserID    int64
	Email     string
	Role      model.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// JWTの発行・検証・失効をまとめる。
type Service struct {
	secret    []byte
	accessTTL time.Duration
	denylist  Denylist
	clock     Clock
}

// DI
func NewService(secret string, accessTTL time.Duration, denylist Denylist, clock Clock) *Service {
	return &Service{
		secret:    []byte(secret),
		accessTTL: accessTTL,
		denylist:  denylist,
		clock:     clock,
	}
}

// Issue はaccess tokenを発行する。ttl=0ならデフォルトTTL。
// 負のttlはそのまま使う（発行時点で期限切れのtokenになる）。
func (s *Service) Issue(userID int64, email string, role model.Role, ttl time.Duration) (string, time.Time, error) {
	if ttl == 0 {
		ttl = s.accessTTL
	}

	now := s.clock.Now()
	expiresAt := now.Add(ttl)

	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  string(role),
		"typ":   TypeAccess,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// Verify はtokenを検証してclaimsを返す。
// 順番が大事：deny-list → 署名 → 期限 → type。
// 失効済みなら署名が正しくても通さない。
func (s *Service) Verify(ctx context.Context, raw string) (*Claims, error) {
	revoked, err := s.denylist.Contains(ctx, raw)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock.Now))

	if err != nil {
		// 期限切れだけは区別して返す（401の中身はhandlerで潰す）
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if parsed == nil || !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}

	// typ="access"以外は拒否
	typ, _ := mapClaims["typ"].(string)
	if typ != TypeAccess {
		return nil, ErrTokenInvalid
	}

	claims, err := claimsFromMap(mapClaims)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// Revoke はtokenをdeny-listに載せる。
// TTLはtokenの残り寿命にする：期限が過ぎれば期限チェックが拒否するので
// deny-list側に残し続ける必要がない。
// 2回呼んでもエラーにしない。
func (s *Service) Revoke(ctx context.Context, raw string) error {
	ttl := s.accessTTL

	// expを読めたら残り寿命をTTLにする（署名検証はここでは不要）
	if exp, ok := s.peekExpiry(raw); ok {
		remaining := exp.Sub(s.clock.Now())
		if remaining <= 0 {
			// 既に期限切れ。期限チェックが落とすので載せない
			return nil
		}
		ttl = remaining
	}

	return s.denylist.Add(ctx, raw, ttl)
}

// IsRevoked は副作用なしの membership check。
func (s *Service) IsRevoked(ctx context.Context, raw string) (bool, error) {
	return s.denylist.Contains(ctx, raw)
}

// 署名検証せずにexpだけ覗く。
func (s *Service) peekExpiry(raw string) (time.Time, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}

	return exp.Time, true
}

// MapClaimsから型付きClaimsへ。
func claimsFromMap(m jwt.MapClaims) (*Claims, error) {
	sub, ok := m["sub"].(float64)
	if !ok || sub <= 0 {
		return nil, errors.New("invalid sub")
	}

	email, ok := m["email"].(string)
	if !ok || email == "" {
		return nil, errors.New("invalid email")
	}

	role, ok := m["role"].(string)
	if !ok || role == "" {
		return nil, errors.New("invalid role")
	}

	iat, ok := m["iat"].(float64)
	if !ok {
		return nil, errors.New("invalid iat")
	}

	exp, ok := m["exp"].(float64)
	if !ok {
		return nil, errors.New("invalid exp")
	}

	return &Claims{
		UserID:    int64(sub),
		Email:     email,
		Role:      model.Role(role),
		IssuedAt:  time.Unix(int64(iat), 0),
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}

// NewRefreshToken は64文字のランダム文字列を作る。
// JWTとは無関係で、DBにはsha256のhexだけ保存する。
func NewRefreshToken() (string, error) {
	// 48バイト → base64 raw-url で64文字
	b := make([]byte, 48)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
