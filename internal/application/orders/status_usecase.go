package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/comercia-api/internal/application/dto"
	"github.com/jhoicas/comercia-api/internal/application/inventory"
	"github.com/jhoicas/comercia-api/internal/domain"
	"github.com/jhoicas/comercia-api/internal/domain/entity"
	"github.com/jhoicas/comercia-api/internal/domain/repository"
)

// errStockConflict sentinela interno: fuerza el rollback de la transacción
// cuando se detectan faltantes, de modo que ninguna escritura previa (edición
// de ítems, movimientos) sobreviva a un conflicto. Nunca sale del paquete.
var errStockConflict = errors.New("conflicto de stock")

// OrderStatusUseCase gobierna la máquina de estados de la orden y coordina
// los movimientos de stock que cada transición exige. La orden y sus
// movimientos se escriben en una sola transacción: o todo o nada.
type OrderStatusUseCase struct {
	txRunner    TxRunner
	engine      InventoryEngine
	orderRepo   repository.OrderRepository
	variantRepo repository.ProductVariantRepository
}

// NewOrderStatusUseCase construye el caso de uso. orderRepo y variantRepo
// atados al pool se usan solo para lecturas (disponibilidad, consultas).
func NewOrderStatusUseCase(
	txRunner TxRunner,
	engine InventoryEngine,
	orderRepo repository.OrderRepository,
	variantRepo repository.ProductVariantRepository,
) *OrderStatusUseCase {
	return &OrderStatusUseCase{
		txRunner:    txRunner,
		engine:      engine,
		orderRepo:   orderRepo,
		variantRepo: variantRepo,
	}
}

// reservation cantidad requerida de una variante dentro de una transacción.
type reservation struct {
	ProductVariantID string
	Quantity         decimal.Decimal
}

// orderReference referencia que llevan los movimientos generados por una orden.
func orderReference(o *entity.Order) string {
	return fmt.Sprintf("ORD-%06d", o.OrderNumber)
}

// ChangeStatus aplica una transición de estado. Una transición ilegal retorna
// ErrInvalidTransition sin escrituras; una transición RELEASED→RESERVED con
// faltantes retorna un Result con los conflictos y la orden queda intacta.
func (uc *OrderStatusUseCase) ChangeStatus(ctx context.Context, orderID string, newStatus entity.OrderStatus, userID string) (*Result, error) {
	if orderID == "" || !newStatus.IsValid() {
		return nil, domain.ErrInvalidInput
	}
	var result *Result
	err := uc.txRunner.RunOrder(ctx, func(
		movRepo repository.StockMovementRepository,
		variantRepo repository.ProductVariantRepository,
		orderRepo repository.OrderRepository,
	) error {
		order, err := orderRepo.GetByID(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		now := time.Now()
		conflicts, err := uc.applyTransitionLocked(movRepo, variantRepo, order, newStatus, userID, now)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			result = &Result{Conflicts: conflicts}
			return errStockConflict
		}
		if err := orderRepo.Update(order); err != nil {
			return err
		}
		result = &Result{Order: order}
		return nil
	})
	if err != nil && !errors.Is(err, errStockConflict) {
		return nil, err
	}
	return result, nil
}

// CheckAvailability verificación de solo lectura: qué faltaría para llevar la
// orden a un estado con reserva. Una orden ya reservada no tiene conflictos.
func (uc *OrderStatusUseCase) CheckAvailability(ctx context.Context, orderID string) ([]StockConflictItem, error) {
	if orderID == "" {
		return nil, domain.ErrInvalidInput
	}
	order, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if order.Status.Reservation() == entity.ReservationReserved {
		return nil, nil
	}
	var conflicts []StockConflictItem
	for _, it := range order.Items {
		variant, err := uc.variantRepo.GetByID(it.ProductVariantID)
		if err != nil {
			return nil, err
		}
		if variant == nil {
			return nil, domain.ErrNotFound
		}
		if variant.Stock.LessThan(it.Quantity) {
			conflicts = append(conflicts, StockConflictItem{
				ProductVariantID: variant.ID,
				SKU:              variant.SKU,
				ProductName:      variant.Name,
				RequiredQuantity: it.Quantity,
				AvailableStock:   variant.Stock,
			})
		}
	}
	return conflicts, nil
}

// UpdateOrder aplica la edición de ítems y/o la transición de estado en una
// sola transacción. Con la orden en estado reservado cada edición de ítems
// mueve stock de inmediato; en estado liberado solo cambia la contabilidad de
// la orden y el stock se toca recién al reentrar a un estado con reserva.
func (uc *OrderStatusUseCase) UpdateOrder(ctx context.Context, orderID string, in dto.UpdateOrderRequest, userID string) (*Result, error) {
	if orderID == "" {
		return nil, domain.ErrInvalidInput
	}
	var newStatus *entity.OrderStatus
	if in.OrderStatus != nil {
		st := entity.OrderStatus(*in.OrderStatus)
		if !st.IsValid() {
			return nil, domain.ErrInvalidInput
		}
		newStatus = &st
	}
	if in.OrderStatus == nil && in.Items == nil && in.DiscountUSD == nil && in.Notes == nil {
		return nil, domain.ErrInvalidInput
	}
	if in.Items != nil {
		if err := validateItems(in.Items); err != nil {
			return nil, err
		}
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
		order, err := orderRepo.GetByID(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		now := time.Now()

		if in.Items != nil {
			conflicts, err := uc.applyItemEditsLocked(movRepo, variantRepo, order, in.Items, userID, now)
			if err != nil {
				return err
			}
			if len(conflicts) > 0 {
				result = &Result{Conflicts: conflicts}
				return errStockConflict
			}
		}
		if in.DiscountUSD != nil {
			order.DiscountUSD = *in.DiscountUSD
		}
		if in.Notes != nil {
			order.Notes = *in.Notes
		}
		order.RecalculateTotals()

		if newStatus != nil {
			conflicts, err := uc.applyTransitionLocked(movRepo, variantRepo, order, *newStatus, userID, now)
			if err != nil {
				return err
			}
			if len(conflicts) > 0 {
				result = &Result{Conflicts: conflicts}
				return errStockConflict
			}
		}

		order.UpdatedAt = now
		if in.Items != nil {
			if err := orderRepo.ReplaceItems(order.ID, order.Items); err != nil {
				return err
			}
		}
		if err := orderRepo.Update(order); err != nil {
			return err
		}
		result = &Result{Order: order}
		return nil
	})
	if err != nil && !errors.Is(err, errStockConflict) {
		return nil, err
	}
	return result, nil
}

// applyTransitionLocked mueve el stock que exige el cruce de clasificación y
// actualiza el estado en memoria; el caller persiste la orden. Con faltantes
// devuelve los conflictos sin mutar la orden.
func (uc *OrderStatusUseCase) applyTransitionLocked(
	movRepo repository.StockMovementRepository,
	variantRepo repository.ProductVariantRepository,
	order *entity.Order,
	newStatus entity.OrderStatus,
	userID string,
	now time.Time,
) ([]StockConflictItem, error) {
	if !order.Status.CanTransitionTo(newStatus) {
		return nil, domain.ErrInvalidTransition
	}
	from := order.Status.Reservation()
	to := newStatus.Reservation()
	ref := orderReference(order)

	switch {
	case from == to:
		// misma clasificación: solo cambia el campo de estado
	case from == entity.ReservationReserved:
		// devolver stock nunca se bloquea por disponibilidad
		for _, it := range order.Items {
			if _, err := uc.engine.EntryInTx(movRepo, variantRepo, inventory.EntryInput{
				ProductVariantID: it.ProductVariantID,
				Quantity:         it.Quantity,
				Reason:           entity.ReasonReturn,
				Reference:        ref,
				UserID:           userID,
			}, now); err != nil {
				return nil, err
			}
		}
	default:
		reqs := make([]reservation, 0, len(order.Items))
		for _, it := range order.Items {
			reqs = append(reqs, reservation{ProductVariantID: it.ProductVariantID, Quantity: it.Quantity})
		}
		conflicts, err := uc.reserveLocked(movRepo, variantRepo, reqs, ref, userID, now)
		if err != nil || len(conflicts) > 0 {
			return conflicts, err
		}
	}

	order.Status = newStatus
	order.UpdatedAt = now
	return nil, nil
}

// reserveLocked reserva stock para un conjunto de variantes: primero bloquea
// y verifica TODAS las filas, después aplica las salidas. Un faltante tardío
// no puede dejar variantes anteriores ya mutadas.
func (uc *OrderStatusUseCase) reserveLocked(
	movRepo repository.StockMovementRepository,
	variantRepo repository.ProductVariantRepository,
	reqs []reservation,
	reference, userID string,
	now time.Time,
) ([]StockConflictItem, error) {
	var conflicts []StockConflictItem
	for _, rq := range reqs {
		variant, err := variantRepo.GetForUpdate(rq.ProductVariantID)
		if err != nil {
			return nil, err
		}
		if variant == nil {
			return nil, domain.ErrNotFound
		}
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
		return conflicts, nil
	}
	for _, rq := range reqs {
		if _, err := uc.engine.ExitInTx(movRepo, variantRepo, inventory.ExitInput{
			ProductVariantID: rq.ProductVariantID,
			Quantity:         rq.Quantity,
			Reason:           entity.ReasonSale,
			Reference:        reference,
			UserID:           userID,
		}, now); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// applyItemEditsLocked reemplaza las líneas de la orden por el conjunto
// pedido. En estado reservado los aumentos salen del stock (verificando todos
// antes de escribir) y las reducciones/eliminaciones lo devuelven; en estado
// liberado solo cambia la contabilidad. Las líneas nuevas congelan costo y
// precio de la variante al momento de la edición.
func (uc *OrderStatusUseCase) applyItemEditsLocked(
	movRepo repository.StockMovementRepository,
	variantRepo repository.ProductVariantRepository,
	order *entity.Order,
	reqs []dto.OrderItemRequest,
	userID string,
	now time.Time,
) ([]StockConflictItem, error) {
	reserved := order.Status.Reservation() == entity.ReservationReserved
	ref := orderReference(order)

	newItems := make([]*entity.OrderItem, 0, len(reqs))
	var increases, decreases []reservation
	seen := make(map[string]bool, len(reqs))

	for _, rq := range reqs {
		seen[rq.ProductVariantID] = true
		if existing := order.ItemByVariant(rq.ProductVariantID); existing != nil {
			it := *existing
			delta := rq.Quantity.Sub(existing.Quantity)
			if delta.GreaterThan(decimal.Zero) {
				increases = append(increases, reservation{ProductVariantID: it.ProductVariantID, Quantity: delta})
			} else if delta.LessThan(decimal.Zero) {
				decreases = append(decreases, reservation{ProductVariantID: it.ProductVariantID, Quantity: delta.Neg()})
			}
			it.Quantity = rq.Quantity
			if rq.PriceUSD != nil {
				it.PriceUSDAtPurchase = *rq.PriceUSD
			}
			it.Recalculate()
			newItems = append(newItems, &it)
			continue
		}
		variant, err := variantRepo.GetByID(rq.ProductVariantID)
		if err != nil {
			return nil, err
		}
		if variant == nil {
			return nil, domain.ErrNotFound
		}
		price := variant.PriceUSD
		if rq.PriceUSD != nil {
			price = *rq.PriceUSD
		}
		it := &entity.OrderItem{
			ID:                 uuid.New().String(),
			OrderID:            order.ID,
			ProductVariantID:   variant.ID,
			SKU:                variant.SKU,
			ProductName:        variant.Name,
			Quantity:           rq.Quantity,
			CostUSDAtPurchase:  variant.AverageCostUSD,
			PriceUSDAtPurchase: price,
		}
		it.Recalculate()
		newItems = append(newItems, it)
		increases = append(increases, reservation{ProductVariantID: variant.ID, Quantity: rq.Quantity})
	}

	// líneas eliminadas devuelven su cantidad completa
	for _, it := range order.Items {
		if !seen[it.ProductVariantID] {
			decreases = append(decreases, reservation{ProductVariantID: it.ProductVariantID, Quantity: it.Quantity})
		}
	}

	if reserved {
		conflicts, err := uc.reserveLocked(movRepo, variantRepo, increases, ref, userID, now)
		if err != nil || len(conflicts) > 0 {
			return conflicts, err
		}
		for _, d := range decreases {
			if _, err := uc.engine.EntryInTx(movRepo, variantRepo, inventory.EntryInput{
				ProductVariantID: d.ProductVariantID,
				Quantity:         d.Quantity,
				Reason:           entity.ReasonReturn,
				Reference:        ref,
				UserID:           userID,
			}, now); err != nil {
				return nil, err
			}
		}
	}

	order.Items = newItems
	order.RecalculateTotals()
	return nil, nil
}

// validateItems valida el conjunto de líneas de un request.
func validateItems(items []dto.OrderItemRequest) error {
	if len(items) == 0 {
		return domain.ErrInvalidInput
	}
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if it.ProductVariantID == "" || !it.Quantity.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
		if it.PriceUSD != nil && it.PriceUSD.LessThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
		if seen[it.ProductVariantID] {
			return domain.ErrDuplicate
		}
		seen[it.ProductVariantID] = true
	}
	return nil
}
