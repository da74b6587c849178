package repository

import (
	"context"

	"ecommerce-admin/internal/domain/model"
)

type StoreRepository interface {
	FindByID(ctx context.Context, id string) (model.Store, error)
	//name / payment_methods / shipping_methods を更新する
	Update(ctx context.Context, s model.Store) error
}
