package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// order_number は画面に出す注文番号。一度振ったら変えない・再利用しない。
// 過去データは NULL のまま残っていることがある（backfillで埋める）。
type Order struct {
	ID            string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	StoreID       string          `gorm:"type:varchar(36);not null;index" json:"storeId"`
	OrderNumber   *int64          `gorm:"uniqueIndex" json:"orderNumber"`
	Total         decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total"`
	CustomerName  *string         `gorm:"type:varchar(255)" json:"customerName"`
	Address       *string         `gorm:"type:text" json:"address"`
	PaymentMethod *string         `gorm:"type:varchar(100)" json:"paymentMethod"`
	CreatedAt     time.Time       `gorm:"not null;autoCreateTime;index" json:"createdAt"`
	UpdatedAt     time.Time       `gorm:"not null;autoUpdateTime" json:"updatedAt"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
