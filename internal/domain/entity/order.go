package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus estado de una orden de venta.
type OrderStatus string

const (
	OrderStatusProcessing     OrderStatus = "PROCESSING"
	OrderStatusOnHold         OrderStatus = "ON_HOLD"
	OrderStatusPendingPayment OrderStatus = "PENDING_PAYMENT"
	OrderStatusCompleted      OrderStatus = "COMPLETED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
	OrderStatusRefunded       OrderStatus = "REFUNDED"
)

// IsValid indica si el valor es un estado conocido.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusProcessing, OrderStatusOnHold, OrderStatusPendingPayment,
		OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// String devuelve la representación textual del estado.
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo indica si la transición de estado está permitida.
// CANCELLED y REFUNDED son terminales; la única salida de COMPLETED es REFUNDED.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusProcessing:
		return target == OrderStatusOnHold || target == OrderStatusPendingPayment || target == OrderStatusCancelled
	case OrderStatusOnHold:
		return target == OrderStatusPendingPayment || target == OrderStatusCompleted || target == OrderStatusCancelled
	case OrderStatusPendingPayment:
		return target == OrderStatusOnHold || target == OrderStatusCompleted || target == OrderStatusCancelled
	case OrderStatusCompleted:
		return target == OrderStatusRefunded
	case OrderStatusCancelled, OrderStatusRefunded:
		return false // estados terminales
	}
	return false
}

// StockReservation clasificación de un estado respecto al stock físico.
type StockReservation string

const (
	// ReservationReserved la orden mantiene el stock descontado de sus variantes.
	ReservationReserved StockReservation = "RESERVED"
	// ReservationReleased el stock de la orden fue devuelto al inventario.
	ReservationReleased StockReservation = "RELEASED"
)

// Reservation devuelve la clasificación de reserva del estado. Solo el cruce
// entre clasificaciones mueve stock; transiciones dentro de la misma
// clasificación cambian únicamente el campo de estado.
func (s OrderStatus) Reservation() StockReservation {
	switch s {
	case OrderStatusProcessing, OrderStatusOnHold, OrderStatusCompleted:
		return ReservationReserved
	}
	return ReservationReleased
}

// OrderItem línea de una orden. Costo y precio quedan congelados al momento
// de la mutación de la orden (foto puntual), desacoplados del costo promedio
// y del precio vigentes de la variante, que siguen cambiando.
type OrderItem struct {
	ID                 string
	OrderID            string
	ProductVariantID   string
	SKU                string
	ProductName        string
	Quantity           decimal.Decimal
	CostUSDAtPurchase  decimal.Decimal
	PriceUSDAtPurchase decimal.Decimal
	SubTotal           decimal.Decimal // PriceUSDAtPurchase * Quantity
	GainUSD            decimal.Decimal // (PriceUSDAtPurchase - CostUSDAtPurchase) * Quantity
}

// Recalculate actualiza SubTotal y GainUSD a partir de cantidad, precio y costo congelados.
func (it *OrderItem) Recalculate() {
	it.SubTotal = it.PriceUSDAtPurchase.Mul(it.Quantity)
	it.GainUSD = it.PriceUSDAtPurchase.Sub(it.CostUSDAtPurchase).Mul(it.Quantity)
}

// Order raíz de agregado de una orden de venta.
type Order struct {
	ID                string
	OrderNumber       int64 // consecutivo único
	CustomerName      string
	ShippingAddressID string // referencia opaca al módulo de direcciones
	Status            OrderStatus
	Items             []*OrderItem
	SubTotal          decimal.Decimal
	DiscountUSD       decimal.Decimal
	TotalAmount       decimal.Decimal
	TotalGainUSD      decimal.Decimal
	Notes             string
	CreatedBy         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// RecalculateTotals recalcula subtotal, total y ganancia desde los ítems.
func (o *Order) RecalculateTotals() {
	subTotal := decimal.Zero
	gain := decimal.Zero
	for _, it := range o.Items {
		it.Recalculate()
		subTotal = subTotal.Add(it.SubTotal)
		gain = gain.Add(it.GainUSD)
	}
	o.SubTotal = subTotal
	o.TotalAmount = subTotal.Sub(o.DiscountUSD)
	o.TotalGainUSD = gain
}

// ItemByVariant busca la línea de una variante; nil si no existe.
func (o *Order) ItemByVariant(productVariantID string) *OrderItem {
	for _, it := range o.Items {
		if it.ProductVariantID == productVariantID {
			return it
		}
	}
	return nil
}
