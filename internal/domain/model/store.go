package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 店舗。user_id は外部IdPのユーザー（店舗オーナー）。
// 支払い・配送方法は管理画面から自由形式のJSONで保存されるので、
// 読むときは ParseStoreMethods で正規化する。
type Store struct {
	ID              string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name            string         `gorm:"type:varchar(255);not null" json:"name"`
	UserID          string         `gorm:"type:varchar(255);not null;index" json:"userId"`
	PaymentMethods  datatypes.JSON `gorm:"type:jsonb" json:"paymentMethods"`
	ShippingMethods datatypes.JSON `gorm:"type:jsonb" json:"shippingMethods"`
	CreatedAt       time.Time      `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time      `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

func (s *Store) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func (s Store) Payments() StoreMethods {
	return ParseStoreMethods(s.PaymentMethods)
}

func (s Store) Shippings() StoreMethods {
	return ParseStoreMethods(s.ShippingMethods)
}
