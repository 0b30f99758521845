package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/comercia-api/internal/domain/entity"
)

// ProductVariantRepository define el puerto de persistencia para variantes.
// UpdateStockAndCost lo invoca únicamente el motor de inventario, dentro de la
// misma transacción que inserta el movimiento correspondiente.
type ProductVariantRepository interface {
	Create(variant *entity.ProductVariant) error
	GetByID(id string) (*entity.ProductVariant, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE) dentro de la tx vigente.
	GetForUpdate(id string) (*entity.ProductVariant, error)
	UpdateStockAndCost(id string, stock, averageCostUSD decimal.Decimal) error
	ListByProduct(productID string) ([]*entity.ProductVariant, error)
}
