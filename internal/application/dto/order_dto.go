package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemRequest línea de orden en requests. PriceUSD vacío toma el precio
// vigente de la variante al momento de la mutación.
type OrderItemRequest struct {
	ProductVariantID string           `json:"product_variant_id"`
	Quantity         decimal.Decimal  `json:"quantity"`
	PriceUSD         *decimal.Decimal `json:"price_usd,omitempty"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	CustomerName      string             `json:"customer_name,omitempty"`
	ShippingAddressID string             `json:"shipping_address_id,omitempty"`
	DiscountUSD       *decimal.Decimal   `json:"discount_usd,omitempty"`
	Notes             string             `json:"notes,omitempty"`
	Items             []OrderItemRequest `json:"items"`
}

// UpdateOrderRequest body para PATCH /api/orders/:id. Campos nil no cambian;
// Items nil deja las líneas intactas, Items vacío no está permitido.
type UpdateOrderRequest struct {
	OrderStatus *string            `json:"order_status,omitempty"`
	Items       []OrderItemRequest `json:"items,omitempty"`
	DiscountUSD *decimal.Decimal   `json:"discount_usd,omitempty"`
	Notes       *string            `json:"notes,omitempty"`
}

// ChangeStatusRequest body para PATCH /api/orders/:id/status.
type ChangeStatusRequest struct {
	OrderStatus string `json:"order_status"`
}

// BulkStatusRequest body para PATCH /api/orders/bulk-status.
// El esquema limita el lote a [1..100] órdenes.
type BulkStatusRequest struct {
	OrderIDs  []string `json:"order_ids" validate:"min=1,max=100"`
	NewStatus string   `json:"new_status"`
}

// StockConflictDTO faltante detectado al intentar reservar stock.
type StockConflictDTO struct {
	ProductVariantID string          `json:"product_variant_id"`
	SKU              string          `json:"sku"`
	ProductName      string          `json:"product_name"`
	RequiredQuantity decimal.Decimal `json:"required_quantity"`
	AvailableStock   decimal.Decimal `json:"available_stock"`
}

// ConflictResponse respuesta cuando una transición RELEASED→RESERVED no puede
// satisfacerse por completo. No es un error: el caller decide la remediación.
type ConflictResponse struct {
	Success        bool               `json:"success"`
	Message        string             `json:"message"`
	StockConflicts []StockConflictDTO `json:"stock_conflicts"`
}

// AvailabilityResponse respuesta de GET /api/orders/:id/stock-availability.
type AvailabilityResponse struct {
	HasConflicts bool               `json:"has_conflicts"`
	Conflicts    []StockConflictDTO `json:"conflicts"`
}

// BulkFailureDTO fallo individual dentro de un lote.
type BulkFailureDTO struct {
	OrderID   string             `json:"order_id"`
	Error     string             `json:"error"`
	Conflicts []StockConflictDTO `json:"conflicts,omitempty"`
}

// BulkStatusResponse resultado del lote con aislamiento por orden.
type BulkStatusResponse struct {
	SuccessfulUpdates []string         `json:"successful_updates"`
	FailedUpdates     []BulkFailureDTO `json:"failed_updates"`
	TotalRequested    int              `json:"total_requested"`
	TotalSuccessful   int              `json:"total_successful"`
	TotalFailed       int              `json:"total_failed"`
}

// OrderItemResponse línea de orden en respuestas.
type OrderItemResponse struct {
	ID                 string          `json:"id"`
	ProductVariantID   string          `json:"product_variant_id"`
	SKU                string          `json:"sku"`
	ProductName        string          `json:"product_name"`
	Quantity           decimal.Decimal `json:"quantity"`
	CostUSDAtPurchase  decimal.Decimal `json:"cost_usd_at_purchase"`
	PriceUSDAtPurchase decimal.Decimal `json:"price_usd_at_purchase"`
	SubTotal           decimal.Decimal `json:"sub_total"`
	GainUSD            decimal.Decimal `json:"gain_usd"`
}

// OrderResponse orden completa en respuestas.
type OrderResponse struct {
	ID                string              `json:"id"`
	OrderNumber       int64               `json:"order_number"`
	CustomerName      string              `json:"customer_name,omitempty"`
	ShippingAddressID string              `json:"shipping_address_id,omitempty"`
	OrderStatus       string              `json:"order_status"`
	Items             []OrderItemResponse `json:"items"`
	SubTotal          decimal.Decimal     `json:"sub_total"`
	DiscountUSD       decimal.Decimal     `json:"discount_usd"`
	TotalAmount       decimal.Decimal     `json:"total_amount"`
	TotalGainUSD      decimal.Decimal     `json:"total_gain_usd"`
	Notes             string              `json:"notes,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// VariantResponse variante en respuestas (lookup de colaboradores).
type VariantResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	Stock          decimal.Decimal `json:"stock"`
	AverageCostUSD decimal.Decimal `json:"average_cost_usd"`
	PriceUSD       decimal.Decimal `json:"price_usd"`
}
