package handler

import (
	"encoding/json"
	"net/http"

	"ecommerce-admin/internal/middleware"
	"ecommerce-admin/internal/usecase"
	"ecommerce-admin/internal/validator"

	"github.com/labstack/echo/v4"
)

// 方法一覧は [{method,label,status}] か ["COD", ...]。省略すると今のまま。
type StoreSettingsRequest struct {
	Name            string          `json:"name" validate:"required,notblank,max=255"`
	PaymentMethods  json.RawMessage `json:"paymentMethods"`
	ShippingMethods json.RawMessage `json:"shippingMethods"`
}

type StoreHandler struct {
	uc *usecase.StoreUsecase
}

func NewStoreHandler(uc *usecase.StoreUsecase) *StoreHandler {
	return &StoreHandler{uc: uc}
}

// 公開の店舗情報（ストアフロントが支払い・配送方法を出すのに使う）
func (h *StoreHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/stores/:storeId", h.detail)
}

// g は /api/:storeId（認証・店舗オーナー確認済み）
func (h *StoreHandler) RegisterAdminRoutes(g *echo.Group) {
	g.PATCH("/settings", h.updateSettings)
}

func (h *StoreHandler) detail(c echo.Context) error {
	out, err := h.uc.Detail(c.Request().Context(), c.Param("storeId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *StoreHandler) updateSettings(c echo.Context) error {
	var req StoreSettingsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, validator.Message(err))
	}

	userID, ok := middleware.UserIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	store, ok, err := guardedStore(c)
	if !ok {
		return err
	}

	out, err := h.uc.UpdateSettings(c.Request().Context(), userID, store.ID, usecase.UpdateStoreSettingsInput{
		Name:            req.Name,
		PaymentMethods:  req.PaymentMethods,
		ShippingMethods: req.ShippingMethods,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
