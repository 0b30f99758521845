package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/comercia-api/internal/domain/entity"
	"github.com/jhoicas/comercia-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
// La tabla stock_movements es solo-inserción: no existe Update ni Delete.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, product_variant_id, type, reason, quantity, unit_cost, total_cost,
		previous_stock, new_stock, previous_avg_cost, new_avg_cost, reference, notes, created_by, created_at`

// Create persiste un asiento del libro.
func (r *StockMovementRepo) Create(movement *entity.StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.ProductVariantID, movement.Type, movement.Reason,
		movement.Quantity, movement.UnitCost, movement.TotalCost,
		movement.PreviousStock, movement.NewStock, movement.PreviousAvgCost, movement.NewAvgCost,
		nullIfEmpty(movement.Reference), nullIfEmpty(movement.Notes), nullIfEmpty(movement.CreatedBy),
		movement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var reference, notes, createdBy *string
	err := row.Scan(
		&m.ID, &m.ProductVariantID, &m.Type, &m.Reason,
		&m.Quantity, &m.UnitCost, &m.TotalCost,
		&m.PreviousStock, &m.NewStock, &m.PreviousAvgCost, &m.NewAvgCost,
		&reference, &notes, &createdBy, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if reference != nil {
		m.Reference = *reference
	}
	if notes != nil {
		m.Notes = *notes
	}
	if createdBy != nil {
		m.CreatedBy = *createdBy
	}
	return &m, nil
}

// ListByVariant lista el historial de una variante, del más reciente al más antiguo.
func (r *StockMovementRepo) ListByVariant(productVariantID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements WHERE product_variant_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, productVariantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// GetLastByVariant devuelve el último asiento de la variante; nil si no tiene historial.
func (r *StockMovementRepo) GetLastByVariant(productVariantID string) (*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements WHERE product_variant_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`
	m, err := scanMovement(r.q.QueryRow(context.Background(), query, productVariantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get last movement: %w", err)
	}
	return m, nil
}

// SumQuantityByVariant suma las cantidades del historial (verificación de consistencia libro-proyección).
func (r *StockMovementRepo) SumQuantityByVariant(productVariantID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM stock_movements WHERE product_variant_id = $1`
	var sum decimal.Decimal
	if err := r.q.QueryRow(context.Background(), query, productVariantID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum movements: %w", err)
	}
	return sum, nil
}
