package handler

import (
	"net/http"

	"ecommerce-admin/internal/middleware"
	"ecommerce-admin/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminOrderHandler struct {
	uc *usecase.AdminOrderUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

// g は /api/:storeId（認証・店舗オーナー確認済み）
func (h *AdminOrderHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/orders", h.list)
	g.GET("/orders/:orderId", h.detail)
	g.DELETE("/orders/:orderId", h.delete)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	page, limit, ok := pageParams(c, 50)
	if !ok {
		return badRequest(c, "invalid page or limit")
	}
	from, ok := parseDateParam(c.QueryParam("from"), false)
	if !ok {
		return badRequest(c, "invalid from")
	}
	to, ok := parseDateParam(c.QueryParam("to"), true)
	if !ok {
		return badRequest(c, "invalid to")
	}
	store, ok, err := guardedStore(c)
	if !ok {
		return err
	}

	out, err := h.uc.List(c.Request().Context(), usecase.OrderListInput{
		StoreID: store.ID,
		Page:    page,
		Limit:   limit,
		From:    from,
		To:      to,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) detail(c echo.Context) error {
	store, ok, err := guardedStore(c)
	if !ok {
		return err
	}

	out, err := h.uc.Detail(c.Request().Context(), store.ID, c.Param("orderId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) delete(c echo.Context) error {
	userID, ok := middleware.UserIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	store, ok, err := guardedStore(c)
	if !ok {
		return err
	}

	if err := h.uc.Delete(c.Request().Context(), userID, store.ID, c.Param("orderId")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
