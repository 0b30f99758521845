package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/comercia-api/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia del libro de
// movimientos. Solo inserción y lectura: los asientos jamás se modifican.
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	// ListByVariant devuelve el historial del más reciente al más antiguo.
	ListByVariant(productVariantID string, limit, offset int) ([]*entity.StockMovement, error)
	// GetLastByVariant devuelve el último asiento; nil si la variante no tiene historial.
	GetLastByVariant(productVariantID string) (*entity.StockMovement, error)
	// SumQuantityByVariant suma las cantidades del historial (verificación de consistencia).
	SumQuantityByVariant(productVariantID string) (decimal.Decimal, error)
}
