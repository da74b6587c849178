package repository

import (
	"context"
	"errors"
	"strings"

	"ecommerce-admin/internal/domain/model"
	repo "ecommerce-admin/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 店舗のアーカイブされていない商品を、カテゴリ/おすすめ/ページング付きで返す。
func (r *ProductGormRepository) ListByStore(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("store_id = ? AND is_archived = ?", q.StoreID, false)

	if strings.TrimSpace(q.CategoryID) != "" {
		tx = tx.Where("category_id = ?", strings.TrimSpace(q.CategoryID))
	}
	if q.IsFeatured != nil {
		tx = tx.Where("is_featured = ?", *q.IsFeatured)
	}

	//total（件数）
	if err := tx.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.Order("created_at desc").Order("id desc").Offset(offset).Limit(q.Limit).Find(&products).Error; err != nil {
		return []model.Product{}, 0, err
	}

	return products, total, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) FindActiveByIDs(ctx context.Context, storeID string, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND is_archived = ? AND id IN ?", storeID, false, ids).
		Find(&products).Error
	if err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// 同名が複数あれば古いものを返す
func (r *ProductGormRepository) FindActiveByName(ctx context.Context, storeID string, name string) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND is_archived = ? AND LOWER(name) = LOWER(?)", storeID, false, strings.TrimSpace(name)).
		Order("created_at asc").
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) UpdateFlags(ctx context.Context, id string, isFeatured bool, isArchived bool) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_featured": isFeatured,
		"is_archived": isArchived,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
