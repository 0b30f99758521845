package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/comercia-api/internal/domain"
	"github.com/jhoicas/comercia-api/internal/domain/entity"
	"github.com/jhoicas/comercia-api/internal/domain/repository"
)

var _ repository.ProductVariantRepository = (*ProductVariantRepo)(nil)

// ProductVariantRepo implementación sobre PostgreSQL (usable con pool o tx).
type ProductVariantRepo struct {
	q Querier
}

// NewProductVariantRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductVariantRepository(q Querier) *ProductVariantRepo {
	return &ProductVariantRepo{q: q}
}

const variantColumns = `id, product_id, sku, name, stock, average_cost_usd, price_usd, created_at, updated_at`

// Create persiste una variante nueva. Stock y costo promedio inician en 0.
func (r *ProductVariantRepo) Create(variant *entity.ProductVariant) error {
	if variant.ID == "" {
		variant.ID = uuid.New().String()
	}
	query := `
		INSERT INTO product_variants (` + variantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		variant.ID, variant.ProductID, variant.SKU, variant.Name,
		variant.Stock, variant.AverageCostUSD, variant.PriceUSD,
		variant.CreatedAt, variant.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create variant: %w", err)
	}
	return nil
}

func scanVariant(row pgx.Row) (*entity.ProductVariant, error) {
	var v entity.ProductVariant
	err := row.Scan(
		&v.ID, &v.ProductID, &v.SKU, &v.Name,
		&v.Stock, &v.AverageCostUSD, &v.PriceUSD,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetByID obtiene una variante; nil si no existe.
func (r *ProductVariantRepo) GetByID(id string) (*entity.ProductVariant, error) {
	query := `SELECT ` + variantColumns + ` FROM product_variants WHERE id = $1`
	v, err := scanVariant(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get variant: %w", err)
	}
	return v, nil
}

// GetForUpdate obtiene la variante y bloquea la fila (SELECT FOR UPDATE) para
// serializar escritores concurrentes sobre el mismo stock.
func (r *ProductVariantRepo) GetForUpdate(id string) (*entity.ProductVariant, error) {
	query := `SELECT ` + variantColumns + ` FROM product_variants WHERE id = $1 FOR UPDATE`
	v, err := scanVariant(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get variant for update: %w", err)
	}
	return v, nil
}

// UpdateStockAndCost actualiza la proyección (stock, costo promedio). Solo el
// motor de inventario llama aquí, en la misma tx que inserta el movimiento.
func (r *ProductVariantRepo) UpdateStockAndCost(id string, stock, averageCostUSD decimal.Decimal) error {
	query := `
		UPDATE product_variants
		SET stock = $2, average_cost_usd = $3, updated_at = $4
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, stock, averageCostUSD, time.Now())
	if err != nil {
		return fmt.Errorf("update stock and cost: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByProduct lista las variantes de un producto.
func (r *ProductVariantRepo) ListByProduct(productID string) ([]*entity.ProductVariant, error) {
	query := `SELECT ` + variantColumns + ` FROM product_variants WHERE product_id = $1 ORDER BY sku`
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductVariant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		list = append(list, v)
	}
	return list, rows.Err()
}
