package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductVariant representa una variante vendible de un producto (SKU físico).
// Stock y AverageCostUSD son una proyección del libro de movimientos: en todo
// punto de reposo Stock == suma de Quantity del historial y AverageCostUSD ==
// NewAvgCost del último movimiento. Solo el motor de inventario escribe estos
// dos campos; el resto del sistema los lee.
type ProductVariant struct {
	ID             string
	ProductID      string
	SKU            string // único por producto
	Name           string
	Stock          decimal.Decimal // >= 0 siempre
	AverageCostUSD decimal.Decimal // costo promedio ponderado, 2 decimales
	PriceUSD       decimal.Decimal // precio de venta vigente
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
