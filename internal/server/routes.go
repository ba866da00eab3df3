package server

import (
	"foodorder/internal/config"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	h.Auth.RegisterRoutes(e)
	h.Merchant.RegisterRoutes(e)
	h.Food.RegisterRoutes(e, cfg)
	h.Order.RegisterRoutes(e, cfg)
	h.Gateway.RegisterRoutes(e)
}
