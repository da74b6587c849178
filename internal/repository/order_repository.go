package repository

import (
	"context"
	"errors"
	"time"

	"ecommerce-admin/internal/domain/model"
)

// order_number のユニーク制約に当たった
var ErrDuplicateOrderNumber = errors.New("duplicate order number")

type OrderListFilter struct {
	StoreID string
	Page    int
	Limit   int
	From    *time.Time
	To      *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID string) (model.Order, error)
	//管理画面の注文一覧（新しい順）
	ListByStore(ctx context.Context, f OrderListFilter) ([]model.Order, int64, error)
	//(created_at, id) が (after, afterID) より後の注文（古い順、最大limit件）
	ListCreatedAfter(ctx context.Context, storeID string, after time.Time, afterID string, limit int) ([]model.Order, error)
	//売上集計用（from <= created_at <= to）
	ListForSummary(ctx context.Context, storeID string, from time.Time, to time.Time) ([]model.Order, error)

	Create(ctx context.Context, order model.Order) (string, error)
	//明細ごと削除
	Delete(ctx context.Context, orderID string) error

	//order_number が NULL の注文数
	CountMissingOrderNumber(ctx context.Context) (int64, error)
	//order_number が NULL の注文を古い順に limit 件
	ListMissingOrderNumber(ctx context.Context, limit int) ([]model.Order, error)
	//まだ NULL のときだけ設定する（設定できたら true）
	AssignOrderNumber(ctx context.Context, orderID string, orderNumber int64) (bool, error)
}
