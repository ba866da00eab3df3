package handler

import (
	"net/http"
	"strconv"

	"foodorder/internal/usecase"

	"github.com/labstack/echo/v4"
)

type MerchantHandler struct {
	uc *usecase.MerchantUsecase
}

func NewMerchantHandler(uc *usecase.MerchantUsecase) *MerchantHandler {
	return &MerchantHandler{uc: uc}
}

func (h *MerchantHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/merchants", h.list)
	e.GET("/merchants/available", h.listAvailable)
	e.GET("/merchants/:id", h.detail)
}

func (h *MerchantHandler) list(c echo.Context) error {
	merchants, err := h.uc.List(c.Request().Context(), false)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, merchants)
}

func (h *MerchantHandler) listAvailable(c echo.Context) error {
	merchants, err := h.uc.List(c.Request().Context(), true)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, merchants)
}

func (h *MerchantHandler) detail(c echo.Context) error {
	merchantID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	merchant, err := h.uc.Get(c.Request().Context(), merchantID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, merchant)
}
