package usecase

import (
	"time"

	"ecommerce-admin/internal/domain/model"

	"github.com/shopspring/decimal"
)

type OrderItemOutput struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
}

type OrderOutput struct {
	ID            string            `json:"id"`
	OrderNumber   *int64            `json:"orderNumber"`
	StoreID       string            `json:"storeId"`
	Total         decimal.Decimal   `json:"total"`
	CustomerName  *string           `json:"customerName"`
	Address       *string           `json:"address"`
	PaymentMethod *string           `json:"paymentMethod"`
	CreatedAt     time.Time         `json:"createdAt"`
	Items         []OrderItemOutput `json:"items"`
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}

	return OrderOutput{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		StoreID:       o.StoreID,
		Total:         o.Total,
		CustomerName:  o.CustomerName,
		Address:       o.Address,
		PaymentMethod: o.PaymentMethod,
		CreatedAt:     o.CreatedAt,
		Items:         outItems,
	}
}
