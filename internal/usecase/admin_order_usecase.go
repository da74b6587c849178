package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"ecommerce-admin/internal/domain/model"
	repo "ecommerce-admin/internal/repository"

	"github.com/sirupsen/logrus"
)

type AdminOrderUsecase struct {
	tx  repo.TransactionManager
	log logrus.FieldLogger
}

func NewAdminOrderUsecase(tx repo.TransactionManager, log logrus.FieldLogger) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, log: log}
}

// From / To は created_at の範囲（両端を含む、nil なら制限なし）
type OrderListInput struct {
	StoreID string
	Page    int
	Limit   int
	From    *time.Time
	To      *time.Time
}

// 注文一覧（新しい順）
func (u *AdminOrderUsecase) List(ctx context.Context, in OrderListInput) (OrderListOutput, error) {
	if in.Page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if in.From != nil && in.To != nil && in.From.After(*in.To) {
		return OrderListOutput{}, invalidRequest("from must be before to")
	}

	out := OrderListOutput{Page: in.Page, Limit: in.Limit}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListByStore(ctx, repo.OrderListFilter{
			StoreID: in.StoreID,
			Page:    in.Page,
			Limit:   in.Limit,
			From:    in.From,
			To:      in.To,
		})
		if err != nil {
			return dbError(err)
		}

		out.Total = total
		out.Items = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return dbError(err)
			}
			out.Items = append(out.Items, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

func (u *AdminOrderUsecase) Detail(ctx context.Context, storeID string, orderID string) (OrderOutput, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := findStoreOrder(ctx, r, storeID, orderID)
		if err != nil {
			return err
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return dbError(err)
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 注文を明細ごと削除して監査ログを残す
func (u *AdminOrderUsecase) Delete(ctx context.Context, actorUserID string, storeID string, orderID string) error {
	if strings.TrimSpace(actorUserID) == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := findStoreOrder(ctx, r, storeID, orderID)
		if err != nil {
			return err
		}
		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return dbError(err)
		}

		if err := r.Orders().Delete(ctx, orderID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return dbError(err)
		}

		before, _ := json.Marshal(toOrderOutput(o, items))
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorUserID,
			Action:       model.AuditActionDeleteOrder,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   string(before),
			AfterJSON:    "null",
			CreatedAt:    time.Now(),
		}); err != nil {
			return dbError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	u.log.WithFields(logrus.Fields{"store_id": storeID, "order_id": orderID, "actor": actorUserID}).Info("order deleted")
	return nil
}

// 他の店舗の注文は「存在しない扱い」にする
func findStoreOrder(ctx context.Context, r repo.TxRepos, storeID string, orderID string) (model.Order, error) {
	o, err := r.Orders().FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Order{}, dbError(err)
	}
	if o.StoreID != storeID {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return o, nil
}
