package usecase

import (
	"context"
	"errors"
	"fmt"

	repo "ecommerce-admin/internal/repository"

	"github.com/sirupsen/logrus"
)

const DefaultBackfillBatchSize = 100

// order_number が NULL の過去注文に番号を振る。
// 稼働中の checkout と同じシーケンスを使うので番号はぶつからない。
type OrderNumberBackfill struct {
	orders    repo.OrderRepository
	seq       repo.OrderNumberSequence
	tx        repo.TransactionManager
	batchSize int
	log       logrus.FieldLogger
}

func NewOrderNumberBackfill(
	orders repo.OrderRepository,
	seq repo.OrderNumberSequence,
	tx repo.TransactionManager,
	batchSize int,
	log logrus.FieldLogger,
) *OrderNumberBackfill {
	if batchSize < 1 {
		batchSize = DefaultBackfillBatchSize
	}
	return &OrderNumberBackfill{
		orders:    orders,
		seq:       seq,
		tx:        tx,
		batchSize: batchSize,
		log:       log,
	}
}

type BackfillResult struct {
	//開始時点で番号がなかった件数
	Missing int64
	//番号を振った件数
	Assigned int
	//他で埋まっていて飛ばした件数（予約した番号は欠番）
	Skipped int
	//Assigned + Skipped
	Processed int
}

func (b *OrderNumberBackfill) Run(ctx context.Context) (BackfillResult, error) {
	var res BackfillResult

	if err := ensureSequence(ctx, b.seq); err != nil {
		return res, err
	}

	missing, err := b.orders.CountMissingOrderNumber(ctx)
	if err != nil {
		return res, fmt.Errorf("count missing order numbers: %w", err)
	}
	res.Missing = missing
	if missing == 0 {
		b.log.Info("no orders missing order_number")
		return res, nil
	}
	b.log.WithField("missing", missing).Info("backfill start")

	//同じ行がまた出てきたら更新が効いていない
	seen := make(map[string]struct{}, missing)

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		rows, err := b.orders.ListMissingOrderNumber(ctx, b.batchSize)
		if err != nil {
			return res, fmt.Errorf("list missing order numbers: %w", err)
		}
		if len(rows) == 0 {
			break
		}

		for _, o := range rows {
			if _, dup := seen[o.ID]; dup {
				return res, fmt.Errorf("order %s is still missing order_number after processing", o.ID)
			}
			seen[o.ID] = struct{}{}

			assigned, n, err := b.assignOne(ctx, o.ID)
			if err != nil {
				return res, fmt.Errorf("backfill order %s: %w", o.ID, err)
			}
			if assigned {
				res.Assigned++
			} else {
				res.Skipped++
				b.log.WithFields(logrus.Fields{"order_id": o.ID, "order_number": n}).Debug("already assigned, skipped")
			}
			res.Processed++
		}

		b.log.WithFields(logrus.Fields{
			"processed": res.Processed,
			"missing":   res.Missing,
		}).Info("backfill progress")
	}

	b.log.WithFields(logrus.Fields{
		"assigned":  res.Assigned,
		"skipped":   res.Skipped,
		"processed": res.Processed,
	}).Info("backfill done")
	return res, nil
}

// 番号はtxの外で取る。tx内で読み直してまだNULLなら書く。
func (b *OrderNumberBackfill) assignOne(ctx context.Context, orderID string) (bool, int64, error) {
	n, err := reserveOrderNumber(ctx, b.seq)
	if err != nil {
		return false, 0, err
	}

	assigned := false
	err = b.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			//消された
			return nil
		}
		if err != nil {
			return err
		}
		if o.OrderNumber != nil {
			return nil
		}

		ok, err := r.Orders().AssignOrderNumber(ctx, orderID, n)
		if err != nil {
			return err
		}
		assigned = ok
		return nil
	})
	if err != nil {
		return false, n, err
	}
	return assigned, n, nil
}
