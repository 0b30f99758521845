package inventory_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/comercia-api/internal/domain/entity"
	"github.com/jhoicas/comercia-api/internal/domain/repository"
)

// memStore estado compartido de los fakes en memoria. Run emula el
// Commit/Rollback transaccional con snapshot y restore.
type memStore struct {
	variants  map[string]*entity.ProductVariant
	movements []*entity.StockMovement
}

func newMemStore() *memStore {
	return &memStore{variants: make(map[string]*entity.ProductVariant)}
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

type memSnapshot struct {
	variants  map[string]*entity.ProductVariant
	movements []*entity.StockMovement
}

func (s *memStore) snapshot() memSnapshot {
	vs := make(map[string]*entity.ProductVariant, len(s.variants))
	for id, v := range s.variants {
		cp := *v
		vs[id] = &cp
	}
	ms := make([]*entity.StockMovement, len(s.movements))
	copy(ms, s.movements)
	return memSnapshot{variants: vs, movements: ms}
}

func (s *memStore) restore(snap memSnapshot) {
	s.variants = snap.variants
	s.movements = snap.movements
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

// memTxRunner fake de inventory.TxRunner: snapshot antes de fn, restore si falla.
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
