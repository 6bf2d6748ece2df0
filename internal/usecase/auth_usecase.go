package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"
	"app/internal/token"

	"github.com/rs/zerolog"
)

var (
	// メールまたはパスワードが違う。
	// 「ユーザーがいない」と「パスワード違い」を外から区別できないよう1つにする。
	ErrInvalidCredentials = errors.New("invalid email or password")

	// emailが既に使用済み
	ErrEmailAlreadyExists = errors.New("email already exists")

	// 停止済みユーザー
	ErrUserInactive = errors.New("user is inactive")

	// tokenが無効（失効・期限切れ・署名不正のどれかは外に漏らさない）
	ErrUnauthorized = errors.New("unauthorized")

	// refresh tokenの再利用など、攻撃の疑いがある失敗
	ErrSecurityIncident = errors.New("security incident")

	// 想定外の内部エラー
	ErrInternal = errors.New("internal error")
)

// API返却用。password_hashは絶対に載せない。
type UserDTO struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	FullName  string     `json:"full_name"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type JwtAccessTokenDTO struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type AuthRegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type AuthLoginInput struct {
	Email    string
	Password string
}

type AuthLoginResponse struct {
	User  UserDTO           `json:"user"`
	Token JwtAccessTokenDTO `json:"token"`
}

// handlerがCookieに詰めるために必要な値
type LoginResult struct {
	Body              AuthLoginResponse
	RefreshTokenPlain string
}

type RefreshResult struct {
	Body              JwtAccessTokenDTO
	RefreshTokenPlain string
}

type SuccessResponse struct {
	Message string `json:"message"`
}

type AuthUsecase struct {
	users      repository.UserRepository
	rtRepo     repository.RefreshTokenRepository
	tokens     *token.Service
	hasher     PasswordHasher
	verifier   PasswordVerifier
	validator  AuthValidator
	idGen      IDGenerator
	clock      Clock
	refreshTTL time.Duration
	log        zerolog.Logger
}

// DI
func NewAuthUsecase(
	users repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	tokens *token.Service,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	validator AuthValidator,
	idGen IDGenerator,
	clock Clock,
	refreshTTL time.Duration,
	log zerolog.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		users:      users,
		rtRepo:     rtRepo,
		tokens:     tokens,
		hasher:     hasher,
		verifier:   verifier,
		validator:  validator,
		idGen:      idGen,
		clock:      clock,
		refreshTTL: refreshTTL,
		log:        log,
	}
}

// Register は会員登録を実行する。
func (u *AuthUsecase) Register(ctx context.Context, in AuthRegisterInput) (*UserDTO, error) {
	// 入力検証（validatorに寄せる）
	if err := u.validator.ValidateRegister(ctx, in.Email, in.Password, in.FirstName, in.LastName); err != nil {
		return nil, err
	}

	// パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := u.hasher.Hash(in.Password)
	if err != nil {
		u.log.Error().Err(err).Msg("password hash failed")
		return nil, ErrInternal
	}

	user := &model.User{
		Email:        in.Email,
		PasswordHash: pwHash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         model.RoleUser, // 初期はUSER
		IsActive:     true,
	}

	// 保存。email重複はunique indexが唯一の正
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Error().Err(err).Msg("user create failed")
		return nil, ErrInternal
	}

	dto := toUserDTO(user)
	return &dto, nil
}

// Login はログインを実行し、access tokenとrefresh tokenを発行する。
func (u *AuthUsecase) Login(ctx context.Context, in AuthLoginInput, userAgent string) (*LoginResult, error) {
	// 入力検証
	if err := u.validator.ValidateLogin(ctx, in.Email, in.Password); err != nil {
		return nil, err
	}

	// emailでユーザー取得。
	// 不在とパスワード違いは同じエラーを返す（アカウント列挙の防止）。
	user, err := u.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		u.log.Error().Err(err).Msg("user lookup failed")
		return nil, ErrInternal
	}

	// 停止ユーザーはログイン不可
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// パスワード照合
	if ok := u.verifier.Verify(in.Password, user.PasswordHash); !ok {
		return nil, ErrInvalidCredentials
	}

	// AccessToken発行（role claimはユーザーのroleをそのまま入れる）
	now := u.clock.Now()
	accessToken, accessExp, err := u.tokens.Issue(user.ID, user.Email, user.Role, 0)
	if err != nil {
		u.log.Error().Err(err).Msg("access token issue failed")
		return nil, ErrInternal
	}

	// RefreshToken生成（DBにはhashだけ保存）
	plainRefresh, err := token.NewRefreshToken()
	if err != nil {
		return nil, ErrInternal
	}

	rt := &model.RefreshToken{
		ID:        u.idGen.NewID(),
		UserID:    user.ID,
		TokenHash: hashToken(plainRefresh),
		UserAgent: userAgent,
		ExpiresAt: now.Add(u.refreshTTL),
		UsedAt:    nil,
		RevokedAt: nil,
	}

	if err := u.rtRepo.Create(ctx, rt); err != nil {
		u.log.Error().Err(err).Msg("refresh token create failed")
		return nil, ErrInternal
	}

	// 最終ログイン時刻更新
	user.LastLoginAt = &now
	if err := u.users.Update(ctx, user); err != nil {
		u.log.Error().Err(err).Msg("last_login update failed")
		return nil, ErrInternal
	}

	return &LoginResult{
		Body: AuthLoginResponse{
			User: toUserDTO(user),
			Token: JwtAccessTokenDTO{
				AccessToken: accessToken,
				TokenType:   "bearer",
				ExpiresIn:   int(accessExp.Sub(now).Seconds()),
			},
		},
		RefreshTokenPlain: plainRefresh,
	}, nil
}

// VerifyToken はaccess tokenを検証してユーザーを返す。
// token自体が正しくても、subjectのユーザーが消えていたり停止していたら通さない。
func (u *AuthUsecase) VerifyToken(ctx context.Context, raw string) (*UserDTO, error) {
	claims, err := u.tokens.Verify(ctx, raw)
	if err != nil {
		// 失効・期限切れ・署名不正の区別は外に出さない
		return nil, ErrUnauthorized
	}

	user, err := u.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		u.log.Error().Err(err).Msg("user lookup failed")
		return nil, ErrInternal
	}
	if !user.IsActive {
		return nil, ErrUnauthorized
	}

	dto := toUserDTO(user)
	return &dto, nil
}

// Me はuserIDから自分のプロフィールを返す。
func (u *AuthUsecase) Me(ctx context.Context, userID int64) (*UserDTO, error) {
	if userID <= 0 {
		return nil, ErrUnauthorized
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, ErrInternal
	}
	if !user.IsActive {
		return nil, ErrUnauthorized
	}

	dto := toUserDTO(user)
	return &dto, nil
}

// Refresh はrefresh tokenをローテーションして新しいtokenペアを返す。
func (u *AuthUsecase) Refresh(ctx context.Context, refreshTokenPlain string, userAgent string) (*RefreshResult, error) {
	// 入力検証
	if err := u.validator.ValidateRefresh(ctx, refreshTokenPlain, userAgent); err != nil {
		return nil, ErrUnauthorized
	}

	// DB照合
	rt, err := u.rtRepo.FindByTokenHash(ctx, hashToken(refreshTokenPlain))
	if err != nil || rt == nil {
		return nil, ErrUnauthorized
	}

	now := u.clock.Now()

	// 期限切れ
	if rt.ExpiresAt.Before(now) {
		_ = u.rtRepo.DeleteByID(ctx, rt.ID)
		return nil, ErrUnauthorized
	}

	// revoked
	if rt.RevokedAt != nil {
		return nil, ErrUnauthorized
	}

	// used済みが来たら replay → そのユーザーのtokenを全削除
	if rt.UsedAt != nil {
		u.log.Warn().Int64("user_id", rt.UserID).Msg("refresh token replay detected")
		_ = u.rtRepo.DeleteAllByUserID(ctx, rt.UserID)
		return nil, ErrSecurityIncident
	}

	// user_agent違い（再認証扱い。全削除）
	if userAgent != "" && rt.UserAgent != "" && userAgent != rt.UserAgent {
		_ = u.rtRepo.DeleteAllByUserID(ctx, rt.UserID)
		return nil, ErrSecurityIncident
	}

	// user取得
	user, err := u.users.FindByID(ctx, rt.UserID)
	if err != nil || user == nil {
		return nil, ErrUnauthorized
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// 旧tokenをusedにする
	if err := u.rtRepo.MarkUsed(ctx, rt.ID, now); err != nil {
		_ = u.rtRepo.DeleteAllByUserID(ctx, rt.UserID)
		return nil, ErrSecurityIncident
	}

	// 新tokenを作って保存
	newPlain, err := token.NewRefreshToken()
	if err != nil {
		return nil, ErrInternal
	}

	newRT := &model.RefreshToken{
		ID:        u.idGen.NewID(),
		UserID:    user.ID,
		TokenHash: hashToken(newPlain),
		UserAgent: userAgent,
		ExpiresAt: now.Add(u.refreshTTL),
	}

	if err := u.rtRepo.Create(ctx, newRT); err != nil {
		u.log.Error().Err(err).Msg("refresh token create failed")
		return nil, ErrInternal
	}

	// access再発行
	accessToken, accessExp, err := u.tokens.Issue(user.ID, user.Email, user.Role, 0)
	if err != nil {
		return nil, ErrInternal
	}

	return &RefreshResult{
		Body: JwtAccessTokenDTO{
			AccessToken: accessToken,
			TokenType:   "bearer",
			ExpiresIn:   int(accessExp.Sub(now).Seconds()),
		},
		RefreshTokenPlain: newPlain,
	}, nil
}

// Logout はaccess tokenをdeny-listに載せ、refresh tokenを削除する。
// どちらも冪等：2回呼んでもエラーにしない。
func (u *AuthUsecase) Logout(ctx context.Context, accessTokenRaw string, refreshTokenPlain string) (*SuccessResponse, error) {
	if accessTokenRaw != "" {
		if err := u.tokens.Revoke(ctx, accessTokenRaw); err != nil {
			u.log.Error().Err(err).Msg("token revoke failed")
			return nil, ErrInternal
		}
	}

	if refreshTokenPlain != "" {
		rt, err := u.rtRepo.FindByTokenHash(ctx, hashToken(refreshTokenPlain))
		if err == nil && rt != nil {
			if err := u.rtRepo.DeleteByID(ctx, rt.ID); err != nil && !errors.Is(err, repository.ErrRefreshTokenNotFound) {
				return nil, ErrInternal
			}
		}
	}

	return &SuccessResponse{Message: "logout success"}, nil
}

// model.UserをAPI返却用DTOに変換。
func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// refresh tokenの保存用ハッシュ（sha256 hex）
func hashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
