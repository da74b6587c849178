package handler

import (
	"net/http"
	"strconv"

	"ecommerce-admin/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/:storeId/products の公開API
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// 公開商品のルートを登録
func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/:storeId/products", h.list)
}

func (h *ProductHandler) list(c echo.Context) error {
	page, limit, ok := pageParams(c, 20)
	if !ok {
		return badRequest(c, "invalid page or limit")
	}

	var isFeatured *bool
	if v := c.QueryParam("isFeatured"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return badRequest(c, "invalid isFeatured")
		}
		isFeatured = &b
	}

	out, err := h.uc.ListStoreProducts(c.Request().Context(), usecase.ListProductsInput{
		StoreID:    c.Param("storeId"),
		CategoryID: c.QueryParam("categoryId"),
		IsFeatured: isFeatured,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// page（default 1）と limit（default defLimit）
func pageParams(c echo.Context, defLimit int) (int, int, bool) {
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		page = p
	}

	limit := defLimit
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		limit = l
	}
	return page, limit, true
}
