package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"ecommerce-admin/internal/domain/model"
	repo "ecommerce-admin/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

type StoreUsecase struct {
	stores repo.StoreRepository
	tx     repo.TransactionManager
	log    logrus.FieldLogger
}

// DI
func NewStoreUsecase(stores repo.StoreRepository, tx repo.TransactionManager, log logrus.FieldLogger) *StoreUsecase {
	return &StoreUsecase{stores: stores, tx: tx, log: log}
}

// ストアフロント向けの店舗情報。方法一覧は正規化済み。
type StoreOutput struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	PaymentMethods  model.StoreMethods `json:"paymentMethods"`
	ShippingMethods model.StoreMethods `json:"shippingMethods"`
}

func toStoreOutput(s model.Store) StoreOutput {
	return StoreOutput{
		ID:              s.ID,
		Name:            s.Name,
		PaymentMethods:  s.Payments(),
		ShippingMethods: s.Shippings(),
	}
}

func (u *StoreUsecase) Detail(ctx context.Context, storeID string) (StoreOutput, error) {
	storeID = strings.TrimSpace(storeID)
	if storeID == "" {
		return StoreOutput{}, invalidRequest("storeId required")
	}

	s, err := u.stores.FindByID(ctx, storeID)
	if errors.Is(err, repo.ErrNotFound) {
		return StoreOutput{}, newCodedError(http.StatusNotFound, CodeStoreNotFound, "store not found", ErrStoreNotFound)
	}
	if err != nil {
		return StoreOutput{}, dbError(err)
	}
	return toStoreOutput(s), nil
}

// 方法一覧は省略（null）なら今の値のまま
type UpdateStoreSettingsInput struct {
	Name            string
	PaymentMethods  json.RawMessage
	ShippingMethods json.RawMessage
}

func (u *StoreUsecase) UpdateSettings(ctx context.Context, actorUserID string, storeID string, in UpdateStoreSettingsInput) (StoreOutput, error) {
	if strings.TrimSpace(actorUserID) == "" {
		return StoreOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return StoreOutput{}, invalidRequest("name required")
	}
	payments, err := normalizeMethodsParam(in.PaymentMethods)
	if err != nil {
		return StoreOutput{}, invalidRequest("paymentMethods: " + err.Error())
	}
	shippings, err := normalizeMethodsParam(in.ShippingMethods)
	if err != nil {
		return StoreOutput{}, invalidRequest("shippingMethods: " + err.Error())
	}

	var out StoreOutput

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		s, err := r.Stores().FindByID(ctx, storeID)
		if errors.Is(err, repo.ErrNotFound) {
			return newCodedError(http.StatusNotFound, CodeStoreNotFound, "store not found", ErrStoreNotFound)
		}
		if err != nil {
			return dbError(err)
		}
		if s.UserID != actorUserID {
			return NewHTTPError(http.StatusForbidden, "forbidden")
		}

		before := storeSettingsJSON(s)

		s.Name = name
		if payments != nil {
			s.PaymentMethods = payments
		}
		if shippings != nil {
			s.ShippingMethods = shippings
		}
		if err := r.Stores().Update(ctx, s); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return newCodedError(http.StatusNotFound, CodeStoreNotFound, "store not found", ErrStoreNotFound)
			}
			return dbError(err)
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorUserID,
			Action:       model.AuditActionUpdateStore,
			ResourceType: model.AuditResourceStore,
			ResourceID:   s.ID,
			BeforeJSON:   before,
			AfterJSON:    storeSettingsJSON(s),
			CreatedAt:    time.Now(),
		}); err != nil {
			return dbError(err)
		}

		out = toStoreOutput(s)
		return nil
	})
	if err != nil {
		return StoreOutput{}, err
	}

	u.log.WithFields(logrus.Fields{"store_id": storeID, "user_id": actorUserID}).Info("store settings updated")
	return out, nil
}

// 保存する形にそろえる。nil は「変更なし」。
func normalizeMethodsParam(raw json.RawMessage) (datatypes.JSON, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	ms, err := model.NormalizeStoreMethods(raw)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(ms)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

func storeSettingsJSON(s model.Store) string {
	b, _ := json.Marshal(map[string]interface{}{
		"name":            s.Name,
		"paymentMethods":  s.Payments(),
		"shippingMethods": s.Shippings(),
	})
	return string(b)
}
