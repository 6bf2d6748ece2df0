package handler

import (
	"errors"
	"net/http"

	"app/internal/middleware"
	"app/internal/token"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /users/me のプロフィールAPI
type UserHandler struct {
	uc     *usecase.UserUsecase
	tokens *token.Service
}

// DI
func NewUserHandler(uc *usecase.UserUsecase, tokens *token.Service) *UserHandler {
	return &UserHandler{uc: uc, tokens: tokens}
}

func (h *UserHandler) RegisterRoutes(e *echo.Echo) {
	me := e.Group("/users/me", middleware.AuthJWT(h.tokens))
	me.GET("", h.GetProfile)
	me.PUT("", h.UpdateProfile)
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	userID := middleware.UserIDFrom(c)

	out, err := h.uc.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return writeProfileError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// UpdateProfileはPUT /users/me のハンドラ。
// bodyはJSONオブジェクトで、allow-list外のキーは黙って無視される。
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var fields map[string]string
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid request body"))
	}

	userID := middleware.UserIDFrom(c)

	out, err := h.uc.UpdateProfile(c.Request().Context(), userID, fields)
	if err != nil {
		return writeProfileError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func writeProfileError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, usecase.ErrEmptyUpdate),
		errors.Is(err, usecase.ErrInvalidName):
		return c.JSON(http.StatusBadRequest, errorJSON(err.Error()))
	case errors.Is(err, usecase.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, errorJSON("not found"))
	default:
		return writeError(c, err)
	}
}
