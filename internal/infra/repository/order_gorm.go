package repository

import (
	"context"
	"errors"
	"time"

	"ecommerce-admin/internal/domain/model"
	repo "ecommerce-admin/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) ListByStore(ctx context.Context, f repo.OrderListFilter) ([]model.Order, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.Order{}).Where("store_id = ?", f.StoreID)

	//期間絞り込み
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	var items []model.Order
	offset := (f.Page - 1) * f.Limit
	if err := q.Order("created_at desc").Order("id desc").Limit(f.Limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.Order{}, 0, err
	}

	return items, total, nil
}

func (r *OrderGormRepository) ListCreatedAfter(ctx context.Context, storeID string, after time.Time, afterID string, limit int) ([]model.Order, error) {
	var items []model.Order
	//同じ created_at が limit 件を超えても取りこぼさないよう id で続きから
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND (created_at > ? OR (created_at = ? AND id > ?))", storeID, after, after, afterID).
		Order("created_at asc").
		Order("id asc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

func (r *OrderGormRepository) ListForSummary(ctx context.Context, storeID string, from time.Time, to time.Time) ([]model.Order, error) {
	var items []model.Order
	err := r.db.WithContext(ctx).
		Select("id", "store_id", "total", "created_at").
		Where("store_id = ? AND created_at >= ? AND created_at <= ?", storeID, from, to).
		Find(&items).Error
	if err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

// 明細はOrderItemRepository.CreateBulkで作る
func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (string, error) {
	order.Items = nil
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&order).Error; err != nil {
		if isUniqueViolationOn(err, "order_number") {
			return "", repo.ErrDuplicateOrderNumber
		}
		return "", err
	}
	return order.ID, nil
}

func (r *OrderGormRepository) Delete(ctx context.Context, orderID string) error {
	db := r.db.WithContext(ctx)

	//FKのCASCADEに頼らず明細も消す
	if err := db.Where("order_id = ?", orderID).Delete(&model.OrderItem{}).Error; err != nil {
		return err
	}

	res := db.Where("id = ?", orderID).Delete(&model.Order{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) CountMissingOrderNumber(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).Where("order_number IS NULL").Count(&n).Error
	return n, err
}

func (r *OrderGormRepository) ListMissingOrderNumber(ctx context.Context, limit int) ([]model.Order, error) {
	var items []model.Order
	err := r.db.WithContext(ctx).
		Where("order_number IS NULL").
		Order("created_at asc").
		Order("id asc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

func (r *OrderGormRepository) AssignOrderNumber(ctx context.Context, orderID string, orderNumber int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND order_number IS NULL", orderID).
		Update("order_number", orderNumber)

	if res.Error != nil {
		if isUniqueViolationOn(res.Error, "order_number") {
			return false, repo.ErrDuplicateOrderNumber
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
