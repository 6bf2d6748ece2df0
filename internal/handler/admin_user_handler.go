package handler

import (
	"errors"
	"net/http"
	"strconv"

	"app/internal/middleware"
	"app/internal/token"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminUserHandler struct {
	uc     *usecase.UserUsecase
	tokens *token.Service
}

// DI
func NewAdminUserHandler(uc *usecase.UserUsecase, tokens *token.Service) *AdminUserHandler {
	return &AdminUserHandler{uc: uc, tokens: tokens}
}

func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo) {
	// /admin/users 配下は「JWT必須 + ADMIN限定」
	admin := e.Group(
		"/admin/users",
		middleware.AuthJWT(h.tokens),
		middleware.AdminRoleGuard(),
	)

	admin.GET("", h.ListUsers)
	admin.DELETE("/:id", h.DeleteUser)
}

func (h *AdminUserHandler) ListUsers(c echo.Context) error {
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorJSON("invalid page"))
		}
		page = p
	}

	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorJSON("invalid limit"))
		}
		limit = l
	}

	out, err := h.uc.ListUsers(c.Request().Context(), page, limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) DeleteUser(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid user_id"))
	}

	if err := h.uc.DeleteUser(c.Request().Context(), id); err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, errorJSON("not found"))
		}
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
