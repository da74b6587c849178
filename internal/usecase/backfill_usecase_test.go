package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"ecommerce-admin/internal/domain/model"
	"ecommerce-admin/internal/logger"
	repo "ecommerce-admin/internal/repository"
	"ecommerce-admin/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackfill(db *memDB, batch int) *usecase.OrderNumberBackfill {
	return usecase.NewOrderNumberBackfill(db.Orders(), db.Sequence(), db.TxManager(), batch, logger.Discard())
}

func i64(n int64) *int64 { return &n }

// 古い注文ほど小さい番号
func TestBackfill_AssignsOldestFirst(t *testing.T) {
	db := newMemDB()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	//稼働中のcheckoutが既に5まで使っている
	db.seqValue = 5
	db.seqExists = true
	db.seedOrder(t, "s1", "live", base.Add(10*time.Hour), i64(5))

	db.seedOrder(t, "s1", "t3", base.Add(3*time.Hour), nil)
	db.seedOrder(t, "s2", "t1", base.Add(1*time.Hour), nil)
	db.seedOrder(t, "s1", "t2", base.Add(2*time.Hour), nil)

	res, err := newBackfill(db, 100).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, usecase.BackfillResult{Missing: 3, Assigned: 3, Skipped: 0, Processed: 3}, res)

	n1, n2, n3 := db.order("t1").OrderNumber, db.order("t2").OrderNumber, db.order("t3").OrderNumber
	require.NotNil(t, n1)
	require.NotNil(t, n2)
	require.NotNil(t, n3)
	assert.Less(t, *n1, *n2)
	assert.Less(t, *n2, *n3)
	assert.Greater(t, *n1, int64(5))
	assert.Equal(t, int64(5), *db.order("live").OrderNumber)
}

// 2回目は何もしない
func TestBackfill_SecondRunIsNoop(t *testing.T) {
	db := newMemDB()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		db.seedOrder(t, "s1", id, base.Add(time.Duration(i)*time.Minute), nil)
	}

	bf := newBackfill(db, 2)
	res, err := bf.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, res.Processed)
	assert.Equal(t, 5, res.Assigned)

	seqAfterFirst := db.seqValue

	res, err = bf.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, usecase.BackfillResult{}, res)
	assert.Equal(t, seqAfterFirst, db.seqValue)
}

// 同じ時刻なら id 順
func TestBackfill_TieBreaksByID(t *testing.T) {
	db := newMemDB()
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	db.seedOrder(t, "s1", "b", at, nil)
	db.seedOrder(t, "s1", "a", at, nil)

	_, err := newBackfill(db, 1).Run(context.Background())
	require.NoError(t, err)
	assert.Less(t, *db.order("a").OrderNumber, *db.order("b").OrderNumber)
}

// 読み直したら既に番号があった => 飛ばす（予約した番号は欠番）
func TestBackfill_SkipsRowAssignedConcurrently(t *testing.T) {
	db := newMemDB()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	db.seedOrder(t, "s1", "o1", base, nil)
	db.seedOrder(t, "s1", "o2", base.Add(time.Minute), nil)

	//o1 の tx が始まる直前に別プロセスが番号を入れる
	db.onTxStart = func(s *memState) {
		o := s.orders["o1"]
		if o.OrderNumber == nil {
			o.OrderNumber = i64(900)
			s.orders["o1"] = o
		}
	}

	res, err := newBackfill(db, 100).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Assigned)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 2, res.Processed)

	assert.Equal(t, int64(900), *db.order("o1").OrderNumber)
	//o1 用に予約した1は使われない
	assert.Equal(t, int64(2), *db.order("o2").OrderNumber)
}

// 採番できなければ全体を止める
func TestBackfill_AllocationErrorAborts(t *testing.T) {
	db := newMemDB()
	db.seedOrder(t, "s1", "o1", time.Now(), nil)
	db.nextErr = errors.New("connection reset")

	res, err := newBackfill(db, 100).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, usecase.ErrAllocation)
	assert.Equal(t, 0, res.Processed)
	assert.Nil(t, db.order("o1").OrderNumber)
}

func TestBackfill_EnsureErrorAborts(t *testing.T) {
	db := newMemDB()
	db.seedOrder(t, "s1", "o1", time.Now(), nil)
	db.ensureErr = errors.New("permission denied")

	_, err := newBackfill(db, 100).Run(context.Background())
	assert.ErrorIs(t, err, usecase.ErrAllocation)
	assert.Equal(t, 0, db.nextCalls)
}

// 一覧が古いままの行を返し続ける
type staleMissingOrders struct {
	repo.OrderRepository
	rows []model.Order
}

func (s *staleMissingOrders) ListMissingOrderNumber(ctx context.Context, limit int) ([]model.Order, error) {
	return s.rows, nil
}

// 同じ行が2回出てきたら無限ループにせずエラー
func TestBackfill_RowSeenTwiceFails(t *testing.T) {
	db := newMemDB()
	db.seedOrder(t, "s1", "o1", time.Now(), nil)
	db.seedOrder(t, "s1", "o2", time.Now(), i64(7))

	orders := &staleMissingOrders{
		OrderRepository: db.Orders(),
		rows:            []model.Order{{ID: "o2"}},
	}
	bf := usecase.NewOrderNumberBackfill(orders, db.Sequence(), db.TxManager(), 100, logger.Discard())

	res, err := bf.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "o2")
	assert.Equal(t, 1, res.Skipped)
}

func TestBackfill_ContextCanceled(t *testing.T) {
	db := newMemDB()
	db.seedOrder(t, "s1", "o1", time.Now(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newBackfill(db, 100).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, db.order("o1").OrderNumber)
}

// checkout と同時に流しても番号はぶつからない
func TestBackfill_ConcurrentWithCheckout_UniqueNumbers(t *testing.T) {
	db := newMemDB()
	db.seedStore(t, "s1", "owner", "", "")
	db.seedProduct(t, "s1", "p1", "A", 1000, 1000)
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		db.seedOrder(t, "s1", fmt.Sprintf("legacy-%02d", i), base.Add(time.Duration(i)*time.Hour), nil)
	}

	uc := newCheckoutUC(db)
	bf := newBackfill(db, 7)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := bf.Run(context.Background())
		assert.NoError(t, err)
	}()
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Checkout(context.Background(), usecase.CheckoutInput{StoreID: "s1", Items: one("p1", 1)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	seen := map[int64]string{}
	db.with(false, func(s *memState) {
		for id, o := range s.orders {
			if !assert.NotNil(t, o.OrderNumber, "order %s", id) {
				continue
			}
			prev, dup := seen[*o.OrderNumber]
			assert.False(t, dup, "order number %d used by %s and %s", *o.OrderNumber, prev, id)
			seen[*o.OrderNumber] = id
		}
	})
	assert.Len(t, seen, 50)
}
