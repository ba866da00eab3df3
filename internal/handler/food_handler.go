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

type FoodHandler struct {
	uc *usecase.FoodUsecase
}

func NewFoodHandler(uc *usecase.FoodUsecase) *FoodHandler {
	return &FoodHandler{uc: uc}
}

func (h *FoodHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	//公開（storefront用）
	e.GET("/foods/merchant/:merchantId", h.listByMerchant)
	e.GET("/foods/merchant/:merchantId/available", h.listAvailableByMerchant)
	e.GET("/foods/:id", h.detail)

	//マーチャント専用
	g := e.Group("/foods")
	g.Use(middleware.RequireRole(auth.RoleMerchant, cfg.MerchantJWTSecret))
	g.POST("", h.create)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.remove)
}

func (h *FoodHandler) listByMerchant(c echo.Context) error {
	merchantID, err := strconv.ParseInt(c.Param("merchantId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid merchant id"})
	}

	foods, err := h.uc.ListByMerchant(c.Request().Context(), merchantID, false)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, foods)
}

func (h *FoodHandler) listAvailableByMerchant(c echo.Context) error {
	merchantID, err := strconv.ParseInt(c.Param("merchantId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid merchant id"})
	}

	foods, err := h.uc.ListByMerchant(c.Request().Context(), merchantID, true)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, foods)
}

func (h *FoodHandler) detail(c echo.Context) error {
	foodID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	food, err := h.uc.Get(c.Request().Context(), foodID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, food)
}

func (h *FoodHandler) create(c echo.Context) error {
	merchantID, ok := middleware.SubjectIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req usecase.CreateFoodInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	food, err := h.uc.Create(c.Request().Context(), merchantID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, food)
}

func (h *FoodHandler) update(c echo.Context) error {
	merchantID, ok := middleware.SubjectIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	foodID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req usecase.UpdateFoodInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	food, err := h.uc.Update(c.Request().Context(), merchantID, foodID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, food)
}

func (h *FoodHandler) remove(c echo.Context) error {
	merchantID, ok := middleware.SubjectIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	foodID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.Delete(c.Request().Context(), merchantID, foodID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
