package server

import (
	"app/internal/handler"
	"app/internal/middleware"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Handlers はルート登録に必要なhandler一式。
type Handlers struct {
	Health       *handler.HealthHandler
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Product      *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
	AdminUser    *handler.AdminUserHandler
}

// New はechoを組み立てて全ルートを登録する。
func New(log zerolog.Logger, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLogger(log))

	h.Health.RegisterRoutes(e)
	h.Auth.RegisterRoutes(e)
	h.User.RegisterRoutes(e)
	h.Product.RegisterRoutes(e)
	h.AdminProduct.RegisterRoutes(e)
	h.AdminUser.RegisterRoutes(e)

	return e
}
