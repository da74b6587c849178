package usecase

import (
	"context"
	"time"

	repo "ecommerce-admin/internal/repository"
)

// 1回のpollで返す最大件数
const orderFeedBatch = 20

// どこまで流したか。created_at が同じ注文は id 順に続きを取る。
type FeedMark struct {
	At time.Time
	ID string
}

// 新着注文の取得（SSE用）
type OrderFeedUsecase struct {
	orders repo.OrderRepository
}

func NewOrderFeedUsecase(orders repo.OrderRepository) *OrderFeedUsecase {
	return &OrderFeedUsecase{orders: orders}
}

// mark より後の注文を古い順に返す。2つ目の戻り値は次回の mark。
func (u *OrderFeedUsecase) Poll(ctx context.Context, storeID string, mark FeedMark) ([]OrderOutput, FeedMark, error) {
	orders, err := u.orders.ListCreatedAfter(ctx, storeID, mark.At, mark.ID, orderFeedBatch)
	if err != nil {
		return nil, mark, dbError(err)
	}

	outs := make([]OrderOutput, 0, len(orders))
	next := mark
	for _, o := range orders {
		outs = append(outs, toOrderOutput(o, nil))
		//(created_at, id) の昇順で来る
		next = FeedMark{At: o.CreatedAt, ID: o.ID}
	}
	return outs, next, nil
}
