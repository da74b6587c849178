package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditAction string

const (
	//在庫数を直接設定した操作
	AuditActionSetQuantity AuditAction = "SET_QUANTITY"
	//おすすめ/アーカイブの切り替え
	AuditActionToggleProduct AuditAction = "TOGGLE_PRODUCT"
	//注文の削除
	AuditActionDeleteOrder AuditAction = "DELETE_ORDER"
	//商品の登録
	AuditActionCreateProduct AuditAction = "CREATE_PRODUCT"
	//店舗名・支払い/配送方法の変更
	AuditActionUpdateStore AuditAction = "UPDATE_STORE"
)

type AuditResourceType string

const (
	AuditResourceProduct AuditResourceType = "product"
	AuditResourceOrder   AuditResourceType = "order"
	AuditResourceStore   AuditResourceType = "store"
)

// 管理者操作ログ。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID string `gorm:"type:varchar(36);primaryKey" json:"id"`

	//外部IdPのユーザーID
	ActorUserID string `gorm:"type:varchar(255);not null;index" json:"actorUserId"`

	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resourceType"`
	ResourceID   string            `gorm:"type:varchar(36);not null;index" json:"resourceId"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"beforeJson"`
	AfterJSON  string `gorm:"type:text" json:"afterJson"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
