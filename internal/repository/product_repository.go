package repository

import (
	"context"
	"errors"

	"ecommerce-admin/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 店舗の商品一覧の検索条件
type ProductListQuery struct {
	StoreID    string
	CategoryID string
	IsFeatured *bool
	Page       int
	Limit      int
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	//アーカイブされていない商品のみ
	ListByStore(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id string) (model.Product, error)

	//checkout用: 店舗内のアーカイブされていない商品をIDでまとめて取る
	FindActiveByIDs(ctx context.Context, storeID string, ids []string) ([]model.Product, error)
	//checkout用: 名前（大文字小文字無視の完全一致）で1件
	FindActiveByName(ctx context.Context, storeID string, name string) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	UpdateFlags(ctx context.Context, id string, isFeatured bool, isArchived bool) error
}
