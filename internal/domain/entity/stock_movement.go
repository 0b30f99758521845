package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de inventario.
const (
	MovementTypeENTRY      = "ENTRY"      // entrada (compra, devolución)
	MovementTypeEXIT       = "EXIT"       // salida (venta, daño, robo)
	MovementTypeADJUSTMENT = "ADJUSTMENT" // ajuste por conteo físico (cantidad con signo)
	MovementTypeINITIAL    = "INITIAL"    // carga inicial de stock
)

// Razones de movimiento.
const (
	ReasonPurchase            = "PURCHASE"
	ReasonSale                = "SALE"
	ReasonReturn              = "RETURN"
	ReasonDamage              = "DAMAGE"
	ReasonTheft               = "THEFT"
	ReasonInventoryAdjustment = "INVENTORY_ADJUSTMENT"
	ReasonInitialStock        = "INITIAL_STOCK"
)

// StockMovement representa un asiento inmutable del libro de inventario.
// Nunca se actualiza ni se borra: las correcciones son movimientos nuevos.
// Cada asiento lleva la foto previa y posterior de stock y costo promedio,
// de modo que el historial completo es auditable sin recalcular.
type StockMovement struct {
	ID               string
	ProductVariantID string
	Type             string          // ENTRY, EXIT, ADJUSTMENT, INITIAL
	Reason           string          // PURCHASE, SALE, RETURN, DAMAGE, THEFT, INVENTORY_ADJUSTMENT, INITIAL_STOCK
	Quantity         decimal.Decimal // negativa para salidas; NewStock = PreviousStock + Quantity
	UnitCost         decimal.Decimal // para salidas: costo promedio vigente (costo de venta)
	TotalCost        decimal.Decimal // Quantity * UnitCost (negativo en salidas)
	PreviousStock    decimal.Decimal
	NewStock         decimal.Decimal
	PreviousAvgCost  decimal.Decimal
	NewAvgCost       decimal.Decimal
	Reference        string // orden, factura, nota de ajuste, etc.
	Notes            string
	CreatedBy        string // UserID del actor autenticado
	CreatedAt        time.Time
}

// ValidEntryReason indica si la razón aplica a una entrada de stock.
func ValidEntryReason(reason string) bool {
	switch reason {
	case ReasonPurchase, ReasonReturn, ReasonInitialStock, ReasonInventoryAdjustment:
		return true
	}
	return false
}

// ValidExitReason indica si la razón aplica a una salida de stock.
func ValidExitReason(reason string) bool {
	switch reason {
	case ReasonSale, ReasonDamage, ReasonTheft, ReasonInventoryAdjustment, ReasonReturn:
		return true
	}
	return false
}

// CostRequired indica si la razón exige costo unitario explícito en la entrada.
// RETURN y ajustes pueden reutilizar el costo promedio vigente.
func CostRequired(reason string) bool {
	return reason == ReasonPurchase || reason == ReasonInitialStock
}
