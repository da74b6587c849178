package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ecommerce-admin/internal/domain/model"
	repo "ecommerce-admin/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
	tx          repo.TransactionManager
	log         logrus.FieldLogger
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository, tx repo.TransactionManager, log logrus.FieldLogger) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		tx:          tx,
		log:         log,
	}
}

// GET /api/:storeId/products の入力
type ListProductsInput struct {
	StoreID    string
	CategoryID string
	IsFeatured *bool
	Page       int
	Limit      int
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListStoreProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if strings.TrimSpace(in.StoreID) == "" {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "storeId required")
	}
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.productRepo.ListByStore(ctx, repo.ProductListQuery{
		StoreID:    strings.TrimSpace(in.StoreID),
		CategoryID: strings.TrimSpace(in.CategoryID),
		IsFeatured: in.IsFeatured,
		Page:       in.Page,
		Limit:      in.Limit,
	})
	if err != nil {
		return ProductListOutput{}, dbError(err)
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

type CreateProductInput struct {
	Name       string
	Price      decimal.Decimal
	Quantity   int64
	CategoryID string
	IsFeatured bool
	IsArchived bool
}

func (u *ProductUsecase) Create(ctx context.Context, actorUserID string, storeID string, in CreateProductInput) (model.Product, error) {
	if strings.TrimSpace(actorUserID) == "" {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Product{}, invalidRequest("name required")
	}
	if !in.Price.IsPositive() {
		return model.Product{}, invalidRequest("price must be > 0")
	}
	if in.Quantity < 0 {
		return model.Product{}, invalidRequest("quantity must be >= 0")
	}
	if in.IsFeatured && in.IsArchived {
		return model.Product{}, invalidRequest("archived product cannot be featured")
	}

	var out model.Product

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().Create(ctx, model.Product{
			StoreID:    storeID,
			CategoryID: strings.TrimSpace(in.CategoryID),
			Name:       name,
			Price:      in.Price.Round(2),
			Quantity:   in.Quantity,
			IsFeatured: in.IsFeatured,
			IsArchived: in.IsArchived,
		})
		if err != nil {
			return dbError(err)
		}

		after, _ := json.Marshal(p)
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorUserID,
			Action:       model.AuditActionCreateProduct,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   p.ID,
			AfterJSON:    string(after),
			CreatedAt:    time.Now(),
		}); err != nil {
			return dbError(err)
		}

		out = p
		return nil
	})
	if err != nil {
		return model.Product{}, err
	}

	u.log.WithFields(logrus.Fields{"store_id": storeID, "product_id": out.ID}).Info("product created")
	return out, nil
}

// 両方必須（nilは400）
type ToggleProductInput struct {
	IsFeatured *bool
	IsArchived *bool
}

// おすすめとアーカイブは同時にtrueにできない
func (u *ProductUsecase) Toggle(ctx context.Context, actorUserID string, storeID string, productID string, in ToggleProductInput) (model.Product, error) {
	if strings.TrimSpace(actorUserID) == "" {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.IsFeatured == nil || in.IsArchived == nil {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "isFeatured and isArchived required")
	}
	if *in.IsFeatured && *in.IsArchived {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "archived product cannot be featured")
	}

	var out model.Product

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := findStoreProduct(ctx, r, storeID, productID)
		if err != nil {
			return err
		}

		if err := r.Products().UpdateFlags(ctx, p.ID, *in.IsFeatured, *in.IsArchived); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return dbError(err)
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorUserID,
			Action:       model.AuditActionToggleProduct,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   p.ID,
			BeforeJSON:   fmt.Sprintf(`{"isFeatured":%t,"isArchived":%t}`, p.IsFeatured, p.IsArchived),
			AfterJSON:    fmt.Sprintf(`{"isFeatured":%t,"isArchived":%t}`, *in.IsFeatured, *in.IsArchived),
			CreatedAt:    time.Now(),
		}); err != nil {
			return dbError(err)
		}

		p.IsFeatured = *in.IsFeatured
		p.IsArchived = *in.IsArchived
		out = p
		return nil
	})
	if err != nil {
		return model.Product{}, err
	}
	return out, nil
}

// 在庫数を直接設定する（棚卸しなど）
func (u *ProductUsecase) SetQuantity(ctx context.Context, actorUserID string, storeID string, productID string, quantity int64, reason string) error {
	if strings.TrimSpace(actorUserID) == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if quantity < 0 {
		return NewHTTPError(http.StatusBadRequest, "quantity must be >= 0")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return NewHTTPError(http.StatusBadRequest, "reason required")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//変更前の在庫（before）
		p, err := findStoreProduct(ctx, r, storeID, productID)
		if err != nil {
			return err
		}

		if err := r.Inventory().SetStock(ctx, p.ID, quantity); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return dbError(err)
		}

		//監査ログ（理由も残す）
		after, _ := json.Marshal(map[string]interface{}{"quantity": quantity, "reason": reason})
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorUserID,
			Action:       model.AuditActionSetQuantity,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   p.ID,
			BeforeJSON:   fmt.Sprintf(`{"quantity":%d}`, p.Quantity),
			AfterJSON:    string(after),
			CreatedAt:    time.Now(),
		}); err != nil {
			return dbError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	u.log.WithFields(logrus.Fields{"store_id": storeID, "product_id": productID, "quantity": quantity}).Info("quantity set")
	return nil
}

func findStoreProduct(ctx context.Context, r repo.TxRepos, storeID string, productID string) (model.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	p, err := r.Products().FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, dbError(err)
	}
	if p.StoreID != storeID {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return p, nil
}
