package repository

import (
	"context"

	"ecommerce-admin/internal/domain/model"
)

// 監査ログの保存の約束。
type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
}
