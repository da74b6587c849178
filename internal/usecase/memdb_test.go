package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ecommerce-admin/internal/domain/model"
	repo "ecommerce-admin/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// =====================
// インメモリDB（tx は1本ずつ、失敗したらスナップショットに戻す）
// シーケンスは tx の外にあるのでロールバックされない
// =====================

type memState struct {
	stores   map[string]model.Store
	products map[string]model.Product
	orders   map[string]model.Order
	items    map[string][]model.OrderItem
	audits   []model.AuditLog
}

func newMemState() *memState {
	return &memState{
		stores:   map[string]model.Store{},
		products: map[string]model.Product{},
		orders:   map[string]model.Order{},
		items:    map[string][]model.OrderItem{},
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.stores {
		c.stores[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.orders {
		if v.OrderNumber != nil {
			n := *v.OrderNumber
			v.OrderNumber = &n
		}
		c.orders[k] = v
	}
	for k, v := range s.items {
		c.items[k] = append([]model.OrderItem(nil), v...)
	}
	c.audits = append([]model.AuditLog(nil), s.audits...)
	return c
}

type memDB struct {
	mu    sync.Mutex
	state *memState

	seqMu       sync.Mutex
	seqValue    int64
	seqExists   bool
	ensureCalls int
	nextCalls   int
	ensureErr   error
	nextErr     error

	txCalls atomic.Int64
	idSeq   atomic.Int64

	//tx開始時（ロック中、スナップショットの前）に呼ぶ。別の処理が先にコミットした状態を作る。
	onTxStart func(s *memState)
}

func newMemDB() *memDB {
	return &memDB{state: newMemState()}
}

func (d *memDB) newID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, d.idSeq.Add(1))
}

func (d *memDB) with(inTx bool, fn func(s *memState)) {
	if !inTx {
		d.mu.Lock()
		defer d.mu.Unlock()
	}
	fn(d.state)
}

// ---- seed helpers ----

func (d *memDB) seedStore(t *testing.T, id string, owner string, payments string, shippings string) model.Store {
	t.Helper()
	s := model.Store{ID: id, Name: "store " + id, UserID: owner}
	if payments != "" {
		s.PaymentMethods = datatypes.JSON(payments)
	}
	if shippings != "" {
		s.ShippingMethods = datatypes.JSON(shippings)
	}
	d.with(false, func(st *memState) { st.stores[id] = s })
	return s
}

func (d *memDB) seedProduct(t *testing.T, storeID string, id string, name string, price int64, qty int64) model.Product {
	t.Helper()
	p := model.Product{
		ID:        id,
		StoreID:   storeID,
		Name:      name,
		Price:     decimal.NewFromInt(price),
		Quantity:  qty,
		CreatedAt: time.Now(),
	}
	d.with(false, func(st *memState) { st.products[id] = p })
	return p
}

func (d *memDB) seedOrder(t *testing.T, storeID string, id string, createdAt time.Time, orderNumber *int64) model.Order {
	t.Helper()
	o := model.Order{
		ID:          id,
		StoreID:     storeID,
		OrderNumber: orderNumber,
		Total:       decimal.NewFromInt(100),
		CreatedAt:   createdAt,
	}
	d.with(false, func(st *memState) { st.orders[id] = o })
	return o
}

func (d *memDB) product(id string) model.Product {
	var p model.Product
	d.with(false, func(st *memState) { p = st.products[id] })
	return p
}

func (d *memDB) order(id string) model.Order {
	var o model.Order
	d.with(false, func(st *memState) { o = st.orders[id] })
	return o
}

func (d *memDB) orderCount() int {
	n := 0
	d.with(false, func(st *memState) { n = len(st.orders) })
	return n
}

func (d *memDB) store(id string) model.Store {
	var s model.Store
	d.with(false, func(st *memState) { s = st.stores[id] })
	return s
}

func (d *memDB) auditLogs() []model.AuditLog {
	var out []model.AuditLog
	d.with(false, func(st *memState) { out = append(out, st.audits...) })
	return out
}

// ---- repos ----

func (d *memDB) Stores() repo.StoreRepository         { return &memStoreRepo{d: d} }
func (d *memDB) Products() repo.ProductRepository     { return &memProductRepo{d: d} }
func (d *memDB) Orders() repo.OrderRepository         { return &memOrderRepo{d: d} }
func (d *memDB) OrderItems() repo.OrderItemRepository { return &memOrderItemRepo{d: d} }
func (d *memDB) Sequence() repo.OrderNumberSequence   { return &memSequence{d: d} }
func (d *memDB) TxManager() repo.TransactionManager   { return &memTxManager{d: d} }

type memTxManager struct{ d *memDB }

func (m *memTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	d := m.d
	d.mu.Lock()
	defer d.mu.Unlock()
	d.txCalls.Add(1)

	if d.onTxStart != nil {
		d.onTxStart(d.state)
	}
	snap := d.state.clone()

	err := fn(&memTxRepos{d: d})
	if err != nil {
		d.state = snap
	}
	return err
}

type memTxRepos struct{ d *memDB }

func (r *memTxRepos) Stores() repo.StoreRepository           { return &memStoreRepo{d: r.d, inTx: true} }
func (r *memTxRepos) Orders() repo.OrderRepository           { return &memOrderRepo{d: r.d, inTx: true} }
func (r *memTxRepos) OrderItems() repo.OrderItemRepository   { return &memOrderItemRepo{d: r.d, inTx: true} }
func (r *memTxRepos) Products() repo.ProductRepository       { return &memProductRepo{d: r.d, inTx: true} }
func (r *memTxRepos) Inventory() repo.InventoryRepository    { return &memInventoryRepo{d: r.d, inTx: true} }
func (r *memTxRepos) OrderNumbers() repo.OrderNumberSequence { return &memSequence{d: r.d} }
func (r *memTxRepos) AuditLogs() repo.AuditLogRepository     { return &memAuditRepo{d: r.d, inTx: true} }

type memSequence struct{ d *memDB }

func (s *memSequence) Ensure(ctx context.Context) error {
	s.d.seqMu.Lock()
	defer s.d.seqMu.Unlock()
	s.d.ensureCalls++
	if s.d.ensureErr != nil {
		return s.d.ensureErr
	}
	s.d.seqExists = true
	return nil
}

func (s *memSequence) Next(ctx context.Context) (int64, error) {
	s.d.seqMu.Lock()
	defer s.d.seqMu.Unlock()
	s.d.nextCalls++
	if s.d.nextErr != nil {
		return 0, s.d.nextErr
	}
	if !s.d.seqExists {
		return 0, errors.New(`relation "order_number_seq" does not exist`)
	}
	s.d.seqValue++
	return s.d.seqValue, nil
}

type memStoreRepo struct {
	d    *memDB
	inTx bool
}

func (r *memStoreRepo) FindByID(ctx context.Context, id string) (model.Store, error) {
	var (
		s  model.Store
		ok bool
	)
	r.d.with(r.inTx, func(st *memState) { s, ok = st.stores[id] })
	if !ok {
		return model.Store{}, repo.ErrNotFound
	}
	return s, nil
}

func (r *memStoreRepo) Update(ctx context.Context, s model.Store) error {
	var err error
	r.d.with(r.inTx, func(st *memState) {
		cur, ok := st.stores[s.ID]
		if !ok {
			err = repo.ErrNotFound
			return
		}
		cur.Name = s.Name
		cur.PaymentMethods = s.PaymentMethods
		cur.ShippingMethods = s.ShippingMethods
		st.stores[s.ID] = cur
	})
	return err
}

type memProductRepo struct {
	d    *memDB
	inTx bool
}

func (r *memProductRepo) ListByStore(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var all []model.Product
	r.d.with(r.inTx, func(st *memState) {
		for _, p := range st.products {
			if p.StoreID != q.StoreID || p.IsArchived {
				continue
			}
			if q.CategoryID != "" && p.CategoryID != q.CategoryID {
				continue
			}
			if q.IsFeatured != nil && p.IsFeatured != *q.IsFeatured {
				continue
			}
			all = append(all, p)
		}
	})
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	start := (q.Page - 1) * q.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + q.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *memProductRepo) FindByID(ctx context.Context, id string) (model.Product, error) {
	var (
		p  model.Product
		ok bool
	)
	r.d.with(r.inTx, func(st *memState) { p, ok = st.products[id] })
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (r *memProductRepo) FindActiveByIDs(ctx context.Context, storeID string, ids []string) ([]model.Product, error) {
	var out []model.Product
	r.d.with(r.inTx, func(st *memState) {
		for _, id := range ids {
			p, ok := st.products[id]
			if ok && p.StoreID == storeID && !p.IsArchived {
				out = append(out, p)
			}
		}
	})
	return out, nil
}

func (r *memProductRepo) FindActiveByName(ctx context.Context, storeID string, name string) (model.Product, error) {
	var found []model.Product
	r.d.with(r.inTx, func(st *memState) {
		for _, p := range st.products {
			if p.StoreID == storeID && !p.IsArchived && strings.EqualFold(p.Name, strings.TrimSpace(name)) {
				found = append(found, p)
			}
		}
	})
	if len(found) == 0 {
		return model.Product{}, repo.ErrNotFound
	}
	sort.Slice(found, func(i, j int) bool { return found[i].CreatedAt.Before(found[j].CreatedAt) })
	return found[0], nil
}

func (r *memProductRepo) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if p.ID == "" {
		p.ID = r.d.newID("product")
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	r.d.with(r.inTx, func(st *memState) { st.products[p.ID] = p })
	return p, nil
}

func (r *memProductRepo) UpdateFlags(ctx context.Context, id string, isFeatured bool, isArchived bool) error {
	var err error
	r.d.with(r.inTx, func(st *memState) {
		p, ok := st.products[id]
		if !ok {
			err = repo.ErrNotFound
			return
		}
		p.IsFeatured = isFeatured
		p.IsArchived = isArchived
		st.products[id] = p
	})
	return err
}

type memInventoryRepo struct {
	d    *memDB
	inTx bool
}

func (r *memInventoryRepo) SetStock(ctx context.Context, productID string, newStock int64) error {
	var err error
	r.d.with(r.inTx, func(st *memState) {
		p, ok := st.products[productID]
		if !ok {
			err = repo.ErrNotFound
			return
		}
		p.Quantity = newStock
		st.products[productID] = p
	})
	return err
}

func (r *memInventoryRepo) DecreaseStockIfEnough(ctx context.Context, productID string, qty int64) (bool, error) {
	ok := false
	r.d.with(r.inTx, func(st *memState) {
		p, found := st.products[productID]
		if !found || p.Quantity < qty {
			return
		}
		p.Quantity -= qty
		st.products[productID] = p
		ok = true
	})
	return ok, nil
}

type memOrderRepo struct {
	d    *memDB
	inTx bool
}

func (r *memOrderRepo) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	var (
		o  model.Order
		ok bool
	)
	r.d.with(r.inTx, func(st *memState) { o, ok = st.orders[orderID] })
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (r *memOrderRepo) sorted(filter func(o model.Order) bool, asc bool) []model.Order {
	var out []model.Order
	r.d.with(r.inTx, func(st *memState) {
		for _, o := range st.orders {
			if filter(o) {
				out = append(out, o)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			if asc {
				return out[i].ID < out[j].ID
			}
			return out[i].ID > out[j].ID
		}
		if asc {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *memOrderRepo) ListByStore(ctx context.Context, f repo.OrderListFilter) ([]model.Order, int64, error) {
	all := r.sorted(func(o model.Order) bool {
		if o.StoreID != f.StoreID {
			return false
		}
		if f.From != nil && o.CreatedAt.Before(*f.From) {
			return false
		}
		return f.To == nil || !o.CreatedAt.After(*f.To)
	}, false)
	total := int64(len(all))
	start := (f.Page - 1) * f.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *memOrderRepo) ListCreatedAfter(ctx context.Context, storeID string, after time.Time, afterID string, limit int) ([]model.Order, error) {
	all := r.sorted(func(o model.Order) bool {
		if o.StoreID != storeID {
			return false
		}
		return o.CreatedAt.After(after) || (o.CreatedAt.Equal(after) && o.ID > afterID)
	}, true)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *memOrderRepo) ListForSummary(ctx context.Context, storeID string, from time.Time, to time.Time) ([]model.Order, error) {
	return r.sorted(func(o model.Order) bool {
		return o.StoreID == storeID && !o.CreatedAt.Before(from) && !o.CreatedAt.After(to)
	}, true), nil
}

func (r *memOrderRepo) Create(ctx context.Context, order model.Order) (string, error) {
	var err error
	r.d.with(r.inTx, func(st *memState) {
		if order.OrderNumber != nil {
			for _, o := range st.orders {
				if o.OrderNumber != nil && *o.OrderNumber == *order.OrderNumber {
					err = repo.ErrDuplicateOrderNumber
					return
				}
			}
		}
		if order.ID == "" {
			order.ID = r.d.newID("order")
		}
		if order.CreatedAt.IsZero() {
			order.CreatedAt = time.Now()
		}
		order.Items = nil
		st.orders[order.ID] = order
	})
	if err != nil {
		return "", err
	}
	return order.ID, nil
}

func (r *memOrderRepo) Delete(ctx context.Context, orderID string) error {
	var err error
	r.d.with(r.inTx, func(st *memState) {
		if _, ok := st.orders[orderID]; !ok {
			err = repo.ErrNotFound
			return
		}
		delete(st.orders, orderID)
		delete(st.items, orderID)
	})
	return err
}

func (r *memOrderRepo) CountMissingOrderNumber(ctx context.Context) (int64, error) {
	return int64(len(r.sorted(func(o model.Order) bool { return o.OrderNumber == nil }, true))), nil
}

func (r *memOrderRepo) ListMissingOrderNumber(ctx context.Context, limit int) ([]model.Order, error) {
	all := r.sorted(func(o model.Order) bool { return o.OrderNumber == nil }, true)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *memOrderRepo) AssignOrderNumber(ctx context.Context, orderID string, orderNumber int64) (bool, error) {
	var (
		ok  bool
		err error
	)
	r.d.with(r.inTx, func(st *memState) {
		o, found := st.orders[orderID]
		if !found || o.OrderNumber != nil {
			return
		}
		for _, other := range st.orders {
			if other.OrderNumber != nil && *other.OrderNumber == orderNumber {
				err = repo.ErrDuplicateOrderNumber
				return
			}
		}
		n := orderNumber
		o.OrderNumber = &n
		st.orders[orderID] = o
		ok = true
	})
	return ok, err
}

type memOrderItemRepo struct {
	d    *memDB
	inTx bool
}

func (r *memOrderItemRepo) CreateBulk(ctx context.Context, orderID string, items []model.OrderItem) error {
	r.d.with(r.inTx, func(st *memState) {
		for i, it := range items {
			it.ID = r.d.newID("item")
			it.OrderID = orderID
			it.Position = i
			st.items[orderID] = append(st.items[orderID], it)
		}
	})
	return nil
}

func (r *memOrderItemRepo) ListByOrderID(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	var out []model.OrderItem
	r.d.with(r.inTx, func(st *memState) { out = append(out, st.items[orderID]...) })
	return out, nil
}

type memAuditRepo struct {
	d    *memDB
	inTx bool
}

func (r *memAuditRepo) Create(ctx context.Context, log model.AuditLog) error {
	r.d.with(r.inTx, func(st *memState) { st.audits = append(st.audits, log) })
	return nil
}

var (
	_ repo.TransactionManager  = (*memTxManager)(nil)
	_ repo.TxRepos             = (*memTxRepos)(nil)
	_ repo.StoreRepository     = (*memStoreRepo)(nil)
	_ repo.ProductRepository   = (*memProductRepo)(nil)
	_ repo.InventoryRepository = (*memInventoryRepo)(nil)
	_ repo.OrderRepository     = (*memOrderRepo)(nil)
	_ repo.OrderItemRepository = (*memOrderItemRepo)(nil)
	_ repo.OrderNumberSequence = (*memSequence)(nil)
	_ repo.AuditLogRepository  = (*memAuditRepo)(nil)
)
