package repository

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"gorm.io/gorm"
)

const orderNumberSeqName = "order_number_seq"

// DBのシーケンスで注文番号を採番する。全店舗で1本。
type OrderNumberGormSequence struct {
	db *gorm.DB
	//Ensure が一度成功したか（値はキャッシュしない）
	ensured *atomic.Bool
}

func NewOrderNumberGormSequence(db *gorm.DB) *OrderNumberGormSequence {
	return &OrderNumberGormSequence{db: db, ensured: new(atomic.Bool)}
}

// tx用に作り直す（ensuredは共有）
func (s *OrderNumberGormSequence) withDB(db *gorm.DB) *OrderNumberGormSequence {
	return &OrderNumberGormSequence{db: db, ensured: s.ensured}
}

func (s *OrderNumberGormSequence) Ensure(ctx context.Context) error {
	if s.ensured.Load() {
		return nil
	}

	err := s.db.WithContext(ctx).Exec("CREATE SEQUENCE IF NOT EXISTS " + orderNumberSeqName + " START 1").Error
	if err != nil {
		//同時に作ろうとして負けた側はカタログのユニーク違反になる
		switch pgErrorCode(err) {
		case pgUniqueViolation, pgDuplicateTable:
		default:
			return fmt.Errorf("create sequence %s: %w", orderNumberSeqName, err)
		}
	}

	s.ensured.Store(true)
	return nil
}

func (s *OrderNumberGormSequence) Next(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Raw("SELECT nextval('" + orderNumberSeqName + "')").Scan(&n).Error
	if err != nil {
		if pgErrorCode(err) == pgUndefinedTable {
			//消されていたら次のEnsureで作り直す
			s.ensured.Store(false)
		}
		return 0, fmt.Errorf("nextval %s: %w", orderNumberSeqName, err)
	}
	if n <= 0 {
		return 0, errors.New("nextval returned no value")
	}
	return n, nil
}
