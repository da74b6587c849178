package handler

import (
	"net/http"

	"ecommerce-admin/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CheckoutItemRequest struct {
	ProductID string  `json:"productId"`
	Quantity  int64   `json:"quantity"`
	Name      *string `json:"name"`
}

type CheckoutRequest struct {
	StoreID        string                `json:"storeId"`
	Items          []CheckoutItemRequest `json:"items"`
	CustomerName   *string               `json:"customerName"`
	Address        *string               `json:"address"`
	PaymentMethod  *string               `json:"paymentMethod"`
	ShippingMethod *string               `json:"shippingMethod"`
	ValidateOnly   bool                  `json:"validateOnly"`
}

type CheckoutResponse struct {
	OK    bool                 `json:"ok"`
	Order *usecase.OrderOutput `json:"order"`
}

type ValidateOnlyResponse struct {
	OK        bool                 `json:"ok"`
	Validated bool                 `json:"validated"`
	Failed    []usecase.FailedItem `json:"failed"`
}

// ストアフロントから呼ばれる公開API
type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase
}

func NewCheckoutHandler(uc *usecase.CheckoutUsecase) *CheckoutHandler {
	return &CheckoutHandler{uc: uc}
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/checkout", h.checkout)
}

func (h *CheckoutHandler) checkout(c echo.Context) error {
	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	in := usecase.CheckoutInput{
		StoreID:        req.StoreID,
		Items:          make([]usecase.CheckoutItemInput, 0, len(req.Items)),
		CustomerName:   req.CustomerName,
		Address:        req.Address,
		PaymentMethod:  req.PaymentMethod,
		ShippingMethod: req.ShippingMethod,
		ValidateOnly:   req.ValidateOnly,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, usecase.CheckoutItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Name:      it.Name,
		})
	}

	out, err := h.uc.Checkout(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}

	if out.Validated {
		return c.JSON(http.StatusOK, ValidateOnlyResponse{OK: true, Validated: true, Failed: []usecase.FailedItem{}})
	}
	return c.JSON(http.StatusOK, CheckoutResponse{OK: true, Order: out.Order})
}
