package handler

import (
	"net/http"
	"strconv"

	"foodorder/internal/auth"
	"foodorder/internal/config"
	"foodorder/internal/middleware"
	"foodorder/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 注文の読み取りAPI。作成と更新はwebsocket側（ws.OrderGateway）が入口。
type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/orders")

	g.GET("/merchant/:merchantId", h.listForMerchant,
		middleware.RequireRole(auth.RoleMerchant, cfg.MerchantJWTSecret))
	g.GET("/customer/:customerId", h.listForCustomer,
		middleware.RequireRole(auth.RoleCustomer, cfg.JWTSecret))
}

func (h *OrderHandler) listForMerchant(c echo.Context) error {
	merchantID, err := strconv.ParseInt(c.Param("merchantId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid merchant id"})
	}

	//他店の注文は見せない
	subjectID, ok := middleware.SubjectIDFromContext(c)
	if !ok || subjectID != merchantID {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	}

	out, err := h.uc.ListForMerchant(c.Request().Context(), merchantID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) listForCustomer(c echo.Context) error {
	customerID, err := strconv.ParseInt(c.Param("customerId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid customer id"})
	}

	subjectID, ok := middleware.SubjectIDFromContext(c)
	if !ok || subjectID != customerID {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	}

	out, err := h.uc.ListForCustomer(c.Request().Context(), customerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
