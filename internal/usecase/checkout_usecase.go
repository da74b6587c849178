package usecase

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"ecommerce-admin/internal/domain/model"
	repo "ecommerce-admin/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type CheckoutUsecase struct {
	tx       repo.TransactionManager
	stores   repo.StoreRepository
	products repo.ProductRepository
	seq      repo.OrderNumberSequence
	log      logrus.FieldLogger
	now      func() time.Time
}

// DI
func NewCheckoutUsecase(
	tx repo.TransactionManager,
	stores repo.StoreRepository,
	products repo.ProductRepository,
	seq repo.OrderNumberSequence,
	log logrus.FieldLogger,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:       tx,
		stores:   stores,
		products: products,
		seq:      seq,
		log:      log,
		now:      time.Now,
	}
}

type CheckoutItemInput struct {
	ProductID string
	Quantity  int64
	//idで見つからないときだけ使う
	Name *string
}

type CheckoutInput struct {
	StoreID        string
	Items          []CheckoutItemInput
	CustomerName   *string
	Address        *string
	PaymentMethod  *string
	ShippingMethod *string
	ValidateOnly   bool
}

// ValidateOnly のときは Order が nil
type CheckoutOutput struct {
	Validated bool
	Order     *OrderOutput
}

// 解決済みの明細（価格はこの時点の値で確定）
type resolvedItem struct {
	idx     int
	req     CheckoutItemInput
	product model.Product
}

// リクエスト内の位置つきの失敗
type itemFailure struct {
	idx  int
	item FailedItem
}

func (u *CheckoutUsecase) Checkout(ctx context.Context, in CheckoutInput) (CheckoutOutput, error) {
	storeID := strings.TrimSpace(in.StoreID)
	if storeID == "" {
		return CheckoutOutput{}, invalidRequest("storeId required")
	}
	if len(in.Items) == 0 {
		return CheckoutOutput{}, invalidRequest("items required")
	}
	items := make([]CheckoutItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		it.ProductID = strings.TrimSpace(it.ProductID)
		if it.ProductID == "" {
			return CheckoutOutput{}, invalidRequest("productId required")
		}
		if it.Quantity <= 0 {
			return CheckoutOutput{}, invalidRequest("quantity must be > 0")
		}
		items = append(items, it)
	}

	store, err := u.stores.FindByID(ctx, storeID)
	if errors.Is(err, repo.ErrNotFound) {
		return CheckoutOutput{}, newCodedError(http.StatusNotFound, CodeStoreNotFound, "store not found", ErrStoreNotFound)
	}
	if err != nil {
		return CheckoutOutput{}, dbError(err)
	}

	paymentMethod := trimmedOrNil(in.PaymentMethod)
	if paymentMethod != nil {
		m, ok := store.Payments().Find(*paymentMethod)
		if !ok || !m.IsActive() {
			return CheckoutOutput{}, newCodedError(http.StatusBadRequest, CodePaymentMethodInactive, "payment method is not active", ErrPaymentMethodInactive)
		}
	}
	if shipping := trimmedOrNil(in.ShippingMethod); shipping != nil {
		m, ok := store.Shippings().Find(*shipping)
		if !ok || !m.IsActive() {
			return CheckoutOutput{}, newCodedError(http.StatusBadRequest, CodeShippingMethodInactive, "shipping method is not active", ErrShippingMethodInactive)
		}
	}

	resolved, failed, err := u.resolveItems(ctx, storeID, items)
	if err != nil {
		return CheckoutOutput{}, dbError(err)
	}
	failed = append(failed, checkStock(storeID, resolved)...)

	if len(failed) > 0 {
		he := newCodedError(http.StatusBadRequest, CodeInsufficientStock, "insufficient stock", ErrInsufficientStock)
		for _, f := range failed {
			if f.item.Reason == FailedNotFound {
				he = newCodedError(http.StatusBadRequest, CodeProductNotFound, "product not found", ErrProductNotFound)
				break
			}
		}
		sort.SliceStable(failed, func(i, j int) bool { return failed[i].idx < failed[j].idx })
		he.Failed = make([]FailedItem, 0, len(failed))
		for _, f := range failed {
			he.Failed = append(he.Failed, f.item)
		}
		return CheckoutOutput{}, he
	}

	if in.ValidateOnly {
		return CheckoutOutput{Validated: true}, nil
	}

	total := decimal.Zero
	for _, r := range resolved {
		total = total.Add(r.product.Price.Mul(decimal.NewFromInt(r.req.Quantity)))
	}

	//CREATE SEQUENCE はtxの外（失敗するとtx全体が使えなくなる）
	if err := ensureSequence(ctx, u.seq); err != nil {
		u.log.WithError(err).WithField("store_id", storeID).Error("ensure order number sequence")
		return CheckoutOutput{}, allocationHTTPError(err)
	}

	var out OrderOutput

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orderNumber, err := reserveOrderNumber(ctx, r.OrderNumbers())
		if err != nil {
			return allocationHTTPError(err)
		}

		//在庫を条件付きで減らす（足りなければ全部戻す）
		for _, ri := range resolved {
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, ri.product.ID, ri.req.Quantity)
			if err != nil {
				return dbError(err)
			}
			if ok {
				continue
			}

			available := int64(0)
			if p, err := r.Products().FindByID(ctx, ri.product.ID); err == nil {
				available = p.Quantity
			}
			he := newCodedError(http.StatusConflict, CodeInsufficientStock, "insufficient stock", ErrInsufficientStock)
			he.Failed = []FailedItem{insufficientItem(storeID, ri, available)}
			return he
		}

		order := model.Order{
			StoreID:       storeID,
			OrderNumber:   &orderNumber,
			Total:         total,
			CustomerName:  trimmedOrNil(in.CustomerName),
			Address:       trimmedOrNil(in.Address),
			PaymentMethod: paymentMethod,
			CreatedAt:     u.now(),
		}
		orderID, err := r.Orders().Create(ctx, order)
		if errors.Is(err, repo.ErrDuplicateOrderNumber) {
			return allocationHTTPError(err)
		}
		if err != nil {
			return dbError(err)
		}
		order.ID = orderID

		orderItems := make([]model.OrderItem, 0, len(resolved))
		for _, ri := range resolved {
			orderItems = append(orderItems, model.OrderItem{
				OrderID:   orderID,
				ProductID: ri.product.ID,
				Name:      ri.product.Name,
				Price:     ri.product.Price,
				Quantity:  ri.req.Quantity,
				CreatedAt: order.CreatedAt,
			})
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return dbError(err)
		}

		out = toOrderOutput(order, orderItems)
		return nil
	})
	if err != nil {
		if he, ok := AsHTTPError(err); ok && he.Status == http.StatusConflict {
			u.log.WithField("store_id", storeID).Info("checkout lost stock race")
		}
		return CheckoutOutput{}, err
	}

	u.log.WithFields(logrus.Fields{
		"store_id":     storeID,
		"order_id":     out.ID,
		"order_number": *out.OrderNumber,
		"total":        out.Total.String(),
	}).Info("order created")

	return CheckoutOutput{Order: &out}, nil
}

// idでまとめて引いて、見つからないものは名前で探す
func (u *CheckoutUsecase) resolveItems(ctx context.Context, storeID string, items []CheckoutItemInput) ([]resolvedItem, []itemFailure, error) {
	ids := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}

	found, err := u.products.FindActiveByIDs(ctx, storeID, ids)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[string]model.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	byName := map[string]*model.Product{}
	resolved := make([]resolvedItem, 0, len(items))
	var failed []itemFailure

	for i, it := range items {
		if p, ok := byID[it.ProductID]; ok {
			resolved = append(resolved, resolvedItem{idx: i, req: it, product: p})
			continue
		}

		name := trimmedOrNil(it.Name)
		if name != nil {
			key := strings.ToLower(*name)
			hit, cached := byName[key]
			if !cached {
				p, err := u.products.FindActiveByName(ctx, storeID, *name)
				switch {
				case err == nil:
					hit = &p
				case errors.Is(err, repo.ErrNotFound):
				default:
					return nil, nil, err
				}
				byName[key] = hit
			}
			if hit != nil {
				resolved = append(resolved, resolvedItem{idx: i, req: it, product: *hit})
				continue
			}
		}

		failed = append(failed, itemFailure{idx: i, item: FailedItem{
			Reason:             FailedNotFound,
			RequestedProductID: it.ProductID,
			RequestedName:      it.Name,
			Available:          0,
			StoreID:            storeID,
		}})
	}

	return resolved, failed, nil
}

// 同じ商品が複数行あるときは残りの在庫から順に引く
func checkStock(storeID string, resolved []resolvedItem) []itemFailure {
	remaining := make(map[string]int64, len(resolved))
	for _, r := range resolved {
		remaining[r.product.ID] = r.product.Quantity
	}

	var failed []itemFailure
	for _, r := range resolved {
		left := remaining[r.product.ID]
		if left < r.req.Quantity {
			failed = append(failed, itemFailure{idx: r.idx, item: insufficientItem(storeID, r, left)})
			continue
		}
		remaining[r.product.ID] = left - r.req.Quantity
	}
	return failed
}

func insufficientItem(storeID string, r resolvedItem, available int64) FailedItem {
	id := r.product.ID
	return FailedItem{
		Reason:             FailedInsufficient,
		RequestedProductID: r.req.ProductID,
		RequestedName:      r.req.Name,
		ResolvedProductID:  &id,
		Available:          available,
		StoreID:            storeID,
	}
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
