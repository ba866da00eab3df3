package server

import (
	"foodorder/internal/config"
	"foodorder/internal/handler"
	"foodorder/internal/ws"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Handlers は起動時に配線する入口の束
type Handlers struct {
	Auth     *handler.AuthHandler
	Merchant *handler.MerchantHandler
	Food     *handler.FoodHandler
	Order    *handler.OrderHandler
	Gateway  *ws.OrderGateway
}

func New(cfg config.Config, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.FEURL},
		AllowCredentials: true,
	}))

	RegisterRoutes(e, cfg, h)
	return e
}

func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}
