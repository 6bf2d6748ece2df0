package handler

import (
	"errors"
	"net/http"
	"time"

	"app/internal/middleware"
	"app/internal/token"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/labstack/echo/v4"
)

const refreshCookieName = "refresh"

type AuthHandler struct {
	uc           *usecase.AuthUsecase
	tokens       *token.Service
	refreshTTL   time.Duration // refresh cookie の有効期限
	cookieSecure bool
}

// DIコンストラクタ
func NewAuthHandler(uc *usecase.AuthUsecase, tokens *token.Service, refreshTTL time.Duration, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		uc:           uc,
		tokens:       tokens,
		refreshTTL:   refreshTTL,
		cookieSecure: cookieSecure,
	}
}

// 認証系ルートを登録
func (h *AuthHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/auth/register", h.Register)
	e.POST("/auth/login", h.Login)
	e.POST("/auth/refresh", h.Refresh)

	// logout/meはbearer必須
	authed := e.Group("/auth", middleware.AuthJWT(h.tokens))
	authed.POST("/logout", h.Logout)
	authed.GET("/me", h.Me)
}

// /auth/register のリクエストボディ。
type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// /auth/login のリクエストボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterはPOST /auth/registerのハンドラ
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid request body"))
	}

	out, err := h.uc.Register(c.Request().Context(), usecase.AuthRegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return writeAuthError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

// LoginはPOST /auth/login のハンドラ。
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid request body"))
	}

	// User-Agentを取得（refresh tokenに紐付ける）
	userAgent := c.Request().Header.Get("User-Agent")

	out, err := h.uc.Login(c.Request().Context(), usecase.AuthLoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, userAgent)
	if err != nil {
		return writeAuthError(c, err)
	}

	// refresh cookie
	h.setRefreshCookie(c, out.RefreshTokenPlain)

	// JSONレスポンス（user + token）
	return c.JSON(http.StatusOK, out.Body)
}

// RefreshはPOST /auth/refresh のハンドラ。cookieのrefresh tokenをローテーションする。
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	userAgent := c.Request().Header.Get("User-Agent")

	out, uerr := h.uc.Refresh(c.Request().Context(), cookie.Value, userAgent)
	if uerr != nil {
		h.clearRefreshCookie(c)
		return writeAuthError(c, uerr)
	}

	h.setRefreshCookie(c, out.RefreshTokenPlain)
	return c.JSON(http.StatusOK, out.Body)
}

// LogoutはPOST /auth/logout のハンドラ。
// access tokenをdeny-listに載せ、refresh tokenを破棄する。
func (h *AuthHandler) Logout(c echo.Context) error {
	raw := middleware.RawTokenFrom(c)

	refreshPlain := ""
	if cookie, err := c.Cookie(refreshCookieName); err == nil {
		refreshPlain = cookie.Value
	}

	out, err := h.uc.Logout(c.Request().Context(), raw, refreshPlain)
	if err != nil {
		return writeAuthError(c, err)
	}

	h.clearRefreshCookie(c)
	return c.JSON(http.StatusOK, out)
}

// MeはGET /auth/me のハンドラ。tokenのsubjectを取り直して返す。
func (h *AuthHandler) Me(c echo.Context) error {
	userID := middleware.UserIDFrom(c)

	out, err := h.uc.Me(c.Request().Context(), userID)
	if err != nil {
		return writeAuthError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// refresh tokenをCookieにセット。
func (h *AuthHandler) setRefreshCookie(c echo.Context, plainRefresh string) {
	cookie := &http.Cookie{
		Name:     refreshCookieName,
		Value:    plainRefresh,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(h.refreshTTL),
	}
	c.SetCookie(cookie)
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	cookie := &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
	c.SetCookie(cookie)
}

// 認証系のsentinelエラーをHTTPに変換する。
// validationは理由を返し、認証失敗は理由を潰して返す。
func writeAuthError(c echo.Context, err error) error {
	switch {
	case isValidationError(err):
		return c.JSON(http.StatusBadRequest, errorJSON(err.Error()))
	case errors.Is(err, usecase.ErrEmailAlreadyExists):
		return c.JSON(http.StatusConflict, errorJSON("already exists"))
	case errors.Is(err, usecase.ErrInvalidCredentials):
		// 不在とパスワード違いで文字列を変えない
		return c.JSON(http.StatusUnauthorized, errorJSON(usecase.ErrInvalidCredentials.Error()))
	case errors.Is(err, usecase.ErrUserInactive):
		return c.JSON(http.StatusForbidden, errorJSON("account is deactivated"))
	case errors.Is(err, usecase.ErrUnauthorized),
		errors.Is(err, usecase.ErrSecurityIncident),
		errors.Is(err, validator.ErrInvalidRefresh):
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	default:
		return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, validator.ErrInvalidEmailFormat) ||
		errors.Is(err, validator.ErrPasswordTooShort) ||
		errors.Is(err, validator.ErrPasswordTooLong) ||
		errors.Is(err, validator.ErrFirstNameRequired) ||
		errors.Is(err, validator.ErrLastNameRequired)
}
