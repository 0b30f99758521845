package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/comercia-api/internal/application/dto"
	"github.com/jhoicas/comercia-api/internal/application/inventory"
	"github.com/jhoicas/comercia-api/internal/domain"
	"github.com/jhoicas/comercia-api/internal/domain/entity"
	"github.com/jhoicas/comercia-api/internal/domain/repository"
)

// CreateOrderUseCase crea una orden en PROCESSING descontando el stock de
// todas sus líneas en la misma transacción. Un faltante en cualquier línea
// aborta la creación completa y devuelve el reporte de conflictos.
type CreateOrderUseCase struct {
	txRunner TxRunner
	engine   InventoryEngine
}

// NewCreateOrderUseCase construye el caso de uso.
func NewCreateOrderUseCase(txRunner TxRunner, engine InventoryEngine) *CreateOrderUseCase {
	return &CreateOrderUseCase{txRunner: txRunner, engine: engine}
}

// Create valida las líneas, bloquea y verifica todas las variantes, reserva
// el consecutivo, persiste la orden con fotos de costo/precio y aplica las
// salidas SALE referenciando la orden.
func (uc *CreateOrderUseCase) Create(ctx context.Context, userID string, in dto.CreateOrderRequest) (*Result, error) {
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}
	if in.DiscountUSD != nil && in.DiscountUSD.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	var result *Result
	err := uc.txRunner.RunOrder(ctx, func(
		movRepo repository.StockMovementRepository,
		variantRepo repository.ProductVariantRepository,
		orderRepo repository.OrderRepository,
	) error {
		now := time.Now()

		// fase 1: bloquear todas las variantes en el orden de las líneas y
		// verificar disponibilidad antes de cualquier escritura
		type pick struct {
			variant *entity.ProductVariant
			req     dto.OrderItemRequest
		}
		picks := make([]pick, 0, len(in.Items))
		var conflicts []StockConflictItem
		for _, rq := range in.Items {
			variant, err := variantRepo.GetForUpdate(rq.ProductVariantID)
			if err != nil {
				return err
			}
			if variant == nil {
				return domain.ErrNotFound
			}
			picks = append(picks, pick{variant: variant, req: rq})
			if variant.Stock.LessThan(rq.Quantity) {
				conflicts = append(conflicts, StockConflictItem{
					ProductVariantID: variant.ID,
					SKU:              variant.SKU,
					ProductName:      variant.Name,
					RequiredQuantity: rq.Quantity,
					AvailableStock:   variant.Stock,
				})
			}
		}
		if len(conflicts) > 0 {
			result = &Result{Conflicts: conflicts}
			return errStockConflict
		}

		number, err := orderRepo.NextOrderNumber()
		if err != nil {
			return err
		}
		order := &entity.Order{
			ID:                uuid.New().String(),
			OrderNumber:       number,
			CustomerName:      in.CustomerName,
			ShippingAddressID: in.ShippingAddressID,
			Status:            entity.OrderStatusProcessing,
			Notes:             in.Notes,
			CreatedBy:         userID,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if in.DiscountUSD != nil {
			order.DiscountUSD = *in.DiscountUSD
		}
		for _, p := range picks {
			price := p.variant.PriceUSD
			if p.req.PriceUSD != nil {
				price = *p.req.PriceUSD
			}
			item := &entity.OrderItem{
				ID:                 uuid.New().String(),
				OrderID:            order.ID,
				ProductVariantID:   p.variant.ID,
				SKU:                p.variant.SKU,
				ProductName:        p.variant.Name,
				Quantity:           p.req.Quantity,
				CostUSDAtPurchase:  p.variant.AverageCostUSD,
				PriceUSDAtPurchase: price,
			}
			order.Items = append(order.Items, item)
		}
		order.RecalculateTotals()

		if err := orderRepo.Create(order); err != nil {
			return err
		}

		ref := orderReference(order)
		for _, p := range picks {
			if _, err := uc.engine.ExitInTx(movRepo, variantRepo, inventory.ExitInput{
				ProductVariantID: p.variant.ID,
				Quantity:         p.req.Quantity,
				Reason:           entity.ReasonSale,
				Reference:        ref,
				UserID:           userID,
			}, now); err != nil {
				return err
			}
		}
		result = &Result{Order: order}
		return nil
	})
	if err != nil && !errors.Is(err, errStockConflict) {
		return nil, err
	}
	return result, nil
}
