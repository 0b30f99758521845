package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockEntryRequest body para POST /api/inventory/entries.
// UnitCost es obligatorio para PURCHASE e INITIAL_STOCK; RETURN y ajustes
// pueden omitirlo para reutilizar el costo promedio vigente.
type StockEntryRequest struct {
	ProductVariantID string           `json:"product_variant_id"`
	Quantity         decimal.Decimal  `json:"quantity"`
	UnitCost         *decimal.Decimal `json:"unit_cost,omitempty"`
	Reason           string           `json:"reason"`
	Reference        string           `json:"reference,omitempty"`
	Notes            string           `json:"notes,omitempty"`
}

// StockExitRequest body para POST /api/inventory/exits.
type StockExitRequest struct {
	ProductVariantID string          `json:"product_variant_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	Reason           string          `json:"reason"`
	Reference        string          `json:"reference,omitempty"`
	Notes            string          `json:"notes,omitempty"`
}

// StockAdjustmentRequest body para POST /api/inventory/adjustments.
// Quantity lleva signo: positivo entra stock, negativo lo retira.
type StockAdjustmentRequest struct {
	ProductVariantID string           `json:"product_variant_id"`
	Quantity         decimal.Decimal  `json:"quantity"`
	UnitCost         *decimal.Decimal `json:"unit_cost,omitempty"`
	Reference        string           `json:"reference,omitempty"`
	Notes            string           `json:"notes,omitempty"`
}

// MovementResponse representa un asiento del libro en respuestas HTTP.
type MovementResponse struct {
	ID               string          `json:"id"`
	ProductVariantID string          `json:"product_variant_id"`
	Type             string          `json:"type"`
	Reason           string          `json:"reason"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	PreviousStock    decimal.Decimal `json:"previous_stock"`
	NewStock         decimal.Decimal `json:"new_stock"`
	PreviousAvgCost  decimal.Decimal `json:"previous_avg_cost"`
	NewAvgCost       decimal.Decimal `json:"new_avg_cost"`
	Reference        string          `json:"reference,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	CreatedBy        string          `json:"created_by,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// VariantSummaryDTO resumen de stock de una variante.
type VariantSummaryDTO struct {
	ProductVariantID string            `json:"product_variant_id"`
	SKU              string            `json:"sku"`
	Name             string            `json:"name"`
	CurrentStock     decimal.Decimal   `json:"current_stock"`
	AverageCostUSD   decimal.Decimal   `json:"average_cost_usd"`
	TotalValue       decimal.Decimal   `json:"total_value"` // CurrentStock * AverageCostUSD
	LastMovement     *MovementResponse `json:"last_movement,omitempty"`
}

// StockSummaryResponse resumen por variante para GET /api/inventory/summary/:productId.
type StockSummaryResponse struct {
	ProductID string              `json:"product_id"`
	Variants  []VariantSummaryDTO `json:"variants"`
}
