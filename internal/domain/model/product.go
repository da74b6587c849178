package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// quantity は在庫数（checkoutで負にしてはいけない）。
type Product struct {
	ID         string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	StoreID    string          `gorm:"type:varchar(36);not null;index" json:"storeId"`
	CategoryID string          `gorm:"type:varchar(36);index" json:"categoryId"`
	Name       string          `gorm:"type:varchar(255);not null" json:"name"`
	Price      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price"`
	Quantity   int64           `gorm:"not null;default:0;check:chk_products_quantity,quantity >= 0" json:"quantity"`
	IsFeatured bool            `gorm:"not null;default:false" json:"isFeatured"`
	IsArchived bool            `gorm:"not null;default:false;index" json:"isArchived"`
	CreatedAt  time.Time       `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time       `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
