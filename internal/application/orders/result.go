package orders

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/comercia-api/internal/domain/entity"
)

// StockConflictItem faltante de una variante al intentar reservar stock:
// lo que la orden requiere contra lo que hay disponible.
type StockConflictItem struct {
	ProductVariantID string
	SKU              string
	ProductName      string
	RequiredQuantity decimal.Decimal
	AvailableStock   decimal.Decimal
}

// Result resultado de una mutación de orden. Un conflicto de stock no es un
// error: es un desenlace esperado que el caller debe resolver (agregar stock,
// reducir cantidad o dejar la orden en estado liberado). Si Conflicts no está
// vacío, la orden quedó intacta y no se escribió nada.
type Result struct {
	Order     *entity.Order
	Conflicts []StockConflictItem
}

// HasConflicts indica si la mutación fue rechazada por faltantes de stock.
func (r *Result) HasConflicts() bool {
	return len(r.Conflicts) > 0
}
