package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 商品名・価格は購入時点のスナップショット。
// product_id は商品削除後も残す（外部キーにはしない）。
// position は注文内の行番号（リクエストの順）。
type OrderItem struct {
	ID        string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrderID   string          `gorm:"type:varchar(36);not null;index" json:"orderId"`
	ProductID string          `gorm:"type:varchar(36);not null;index" json:"productId"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price"`
	Quantity  int64           `gorm:"not null;check:chk_order_items_quantity,quantity > 0" json:"quantity"`
	Position  int             `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time       `gorm:"not null;autoCreateTime" json:"createdAt"`
}

func (it *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	return nil
}
