package handler

import (
	"net/http"

	"ecommerce-admin/internal/middleware"
	"ecommerce-admin/internal/usecase"
	"ecommerce-admin/internal/validator"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ProductCreateRequest struct {
	Name       string          `json:"name" validate:"required,notblank,max=255"`
	Price      decimal.Decimal `json:"price" validate:"gt=0"`
	Quantity   *int64          `json:"quantity" validate:"required,gte=0"`
	CategoryID string          `json:"categoryId" validate:"max=36"`
	IsFeatured bool            `json:"isFeatured"`
	IsArchived bool            `json:"isArchived"`
}

// 両方必須
type ProductToggleRequest struct {
	IsFeatured *bool `json:"isFeatured" validate:"required"`
	IsArchived *bool `json:"isArchived" validate:"required"`
}

// 在庫数の直接設定
type QuantityUpdateRequest struct {
	Quantity *int64 `json:"quantity" validate:"required,gte=0"`
	Reason   string `json:"reason" validate:"required,notblank,max=255"`
}

type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// g は /api/:storeId（認証・店舗オーナー確認済み）
func (h *AdminProductHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/products", h.create)
	g.PATCH("/products/:productId/toggle", h.toggle)
	g.PUT("/products/:productId/quantity", h.updateQuantity)
}

func (h *AdminProductHandler) create(c echo.Context) error {
	var req ProductCreateRequest
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

	p, err := h.uc.Create(c.Request().Context(), userID, store.ID, usecase.CreateProductInput{
		Name:       req.Name,
		Price:      req.Price,
		Quantity:   *req.Quantity,
		CategoryID: req.CategoryID,
		IsFeatured: req.IsFeatured,
		IsArchived: req.IsArchived,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *AdminProductHandler) toggle(c echo.Context) error {
	var req ProductToggleRequest
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

	p, err := h.uc.Toggle(c.Request().Context(), userID, store.ID, c.Param("productId"), usecase.ToggleProductInput{
		IsFeatured: req.IsFeatured,
		IsArchived: req.IsArchived,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *AdminProductHandler) updateQuantity(c echo.Context) error {
	var req QuantityUpdateRequest
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

	if err := h.uc.SetQuantity(c.Request().Context(), userID, store.ID, c.Param("productId"), *req.Quantity, req.Reason); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "quantity updated"})
}
