package repository

import (
	"context"

	repo "ecommerce-admin/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	stores       repo.StoreRepository
	orders       repo.OrderRepository
	orderItems   repo.OrderItemRepository
	products     repo.ProductRepository
	inventory    repo.InventoryRepository
	orderNumbers repo.OrderNumberSequence
	auditLogs    repo.AuditLogRepository
}

func (r *txReposGorm) Stores() repo.StoreRepository           { return r.stores }
func (r *txReposGorm) Orders() repo.OrderRepository           { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository   { return r.orderItems }
func (r *txReposGorm) Products() repo.ProductRepository       { return r.products }
func (r *txReposGorm) Inventory() repo.InventoryRepository    { return r.inventory }
func (r *txReposGorm) OrderNumbers() repo.OrderNumberSequence { return r.orderNumbers }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository     { return r.auditLogs }

type TxManagerGorm struct {
	db  *gorm.DB
	seq *OrderNumberGormSequence
}

func NewTxManagerGorm(db *gorm.DB, seq *OrderNumberGormSequence) *TxManagerGorm {
	return &TxManagerGorm{db: db, seq: seq}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			stores:       NewStoreGormRepository(tx),
			orders:       NewOrderGormRepository(tx),
			orderItems:   NewOrderItemGormRepository(tx),
			products:     NewProductGormRepository(tx),
			inventory:    NewInventoryGormRepository(tx),
			orderNumbers: tm.seq.withDB(tx),
			auditLogs:    NewAuditLogGormRepository(tx),
		}
		return fn(r)
	})
}
