package orders_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/comercia-api/internal/domain/entity"
	"github.com/jhoicas/comercia-api/internal/domain/repository"
)

// memStore estado compartido de los fakes en memoria. RunOrder emula el
// Commit/Rollback transaccional con snapshot y restore, para poder afirmar
// que un conflicto no deja escrituras parciales.
type memStore struct {
	variants    map[string]*entity.ProductVariant
	movements   []*entity.StockMovement
	orders      map[string]*entity.Order
	orderNumber int64
}

func newMemStore() *memStore {
	return &memStore{
		variants: make(map[string]*entity.ProductVariant),
		orders:   make(map[string]*entity.Order),
	}
}

func (s *memStore) addVariant(id, sku, name, stock, avgCost, price string) *entity.ProductVariant {
	v := &entity.ProductVariant{
		ID:             id,
		ProductID:      "prod-1",
		SKU:            sku,
		Name:           name,
		Stock:          decimal.RequireFromString(stock),
		AverageCostUSD: decimal.RequireFromString(avgCost),
		PriceUSD:       decimal.RequireFromString(price),
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	s.variants[id] = v
	return v
}

func cloneOrder(o *entity.Order) *entity.Order {
	cp := *o
	cp.Items = make([]*entity.OrderItem, len(o.Items))
	for i, it := range o.Items {
		itCp := *it
		cp.Items[i] = &itCp
	}
	return &cp
}

type memSnapshot struct {
	variants    map[string]*entity.ProductVariant
	movements   []*entity.StockMovement
	orders      map[string]*entity.Order
	orderNumber int64
}

func (s *memStore) snapshot() memSnapshot {
	vs := make(map[string]*entity.ProductVariant, len(s.variants))
	for id, v := range s.variants {
		cp := *v
		vs[id] = &cp
	}
	ms := make([]*entity.StockMovement, len(s.movements))
	copy(ms, s.movements)
	os := make(map[string]*entity.Order, len(s.orders))
	for id, o := range s.orders {
		os[id] = cloneOrder(o)
	}
	return memSnapshot{variants: vs, movements: ms, orders: os, orderNumber: s.orderNumber}
}

func (s *memStore) restore(snap memSnapshot) {
	s.variants = snap.variants
	s.movements = snap.movements
	s.orders = snap.orders
	s.orderNumber = snap.orderNumber
}

// memVariantRepo fake de repository.ProductVariantRepository.
type memVariantRepo struct {
	s *memStore
}

func (r *memVariantRepo) Create(v *entity.ProductVariant) error {
	r.s.variants[v.ID] = v
	return nil
}

func (r *memVariantRepo) GetByID(id string) (*entity.ProductVariant, error) {
	v, ok := r.s.variants[id]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (r *memVariantRepo) GetForUpdate(id string) (*entity.ProductVariant, error) {
	return r.GetByID(id)
}

func (r *memVariantRepo) UpdateStockAndCost(id string, stock, averageCostUSD decimal.Decimal) error {
	v := r.s.variants[id]
	v.Stock = stock
	v.AverageCostUSD = averageCostUSD
	v.UpdatedAt = time.Now()
	return nil
}

func (r *memVariantRepo) ListByProduct(productID string) ([]*entity.ProductVariant, error) {
	var list []*entity.ProductVariant
	for _, v := range r.s.variants {
		if v.ProductID == productID {
			cp := *v
			list = append(list, &cp)
		}
	}
	return list, nil
}

// memMovementRepo fake de repository.StockMovementRepository.
type memMovementRepo struct {
	s *memStore
}

func (r *memMovementRepo) Create(m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	r.s.movements = append(r.s.movements, m)
	return nil
}

func (r *memMovementRepo) ListByVariant(variantID string, limit, offset int) ([]*entity.StockMovement, error) {
	var all []*entity.StockMovement
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		if r.s.movements[i].ProductVariantID == variantID {
			all = append(all, r.s.movements[i])
		}
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *memMovementRepo) GetLastByVariant(variantID string) (*entity.StockMovement, error) {
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		if r.s.movements[i].ProductVariantID == variantID {
			return r.s.movements[i], nil
		}
	}
	return nil, nil
}

func (r *memMovementRepo) SumQuantityByVariant(variantID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, m := range r.s.movements {
		if m.ProductVariantID == variantID {
			sum = sum.Add(m.Quantity)
		}
	}
	return sum, nil
}

// memOrderRepo fake de repository.OrderRepository.
type memOrderRepo struct {
	s *memStore
}

func (r *memOrderRepo) Create(o *entity.Order) error {
	r.s.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *memOrderRepo) GetByID(id string) (*entity.Order, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	return cloneOrder(o), nil
}

func (r *memOrderRepo) Update(o *entity.Order) error {
	stored, ok := r.s.orders[o.ID]
	if !ok {
		return nil
	}
	items := stored.Items
	cp := cloneOrder(o)
	cp.Items = items
	r.s.orders[o.ID] = cp
	return nil
}

func (r *memOrderRepo) ReplaceItems(orderID string, items []*entity.OrderItem) error {
	stored, ok := r.s.orders[orderID]
	if !ok {
		return nil
	}
	stored.Items = make([]*entity.OrderItem, len(items))
	for i, it := range items {
		cp := *it
		stored.Items[i] = &cp
	}
	return nil
}

func (r *memOrderRepo) NextOrderNumber() (int64, error) {
	r.s.orderNumber++
	return r.s.orderNumber, nil
}

func (r *memOrderRepo) List(limit, offset int) ([]*entity.Order, error) {
	var list []*entity.Order
	for _, o := range r.s.orders {
		list = append(list, cloneOrder(o))
	}
	return list, nil
}

// memTxRunner fake de inventory.TxRunner y orders.TxRunner.
type memTxRunner struct {
	s *memStore
}

func (r *memTxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	variantRepo repository.ProductVariantRepository,
) error) error {
	snap := r.s.snapshot()
	if err := fn(&memMovementRepo{s: r.s}, &memVariantRepo{s: r.s}); err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}

func (r *memTxRunner) RunOrder(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	variantRepo repository.ProductVariantRepository,
	orderRepo repository.OrderRepository,
) error) error {
	snap := r.s.snapshot()
	if err := fn(&memMovementRepo{s: r.s}, &memVariantRepo{s: r.s}, &memOrderRepo{s: r.s}); err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}
