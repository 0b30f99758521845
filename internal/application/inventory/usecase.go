package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/comercia-api/internal/domain"
	"github.com/jhoicas/comercia-api/internal/domain/entity"
	"github.com/jhoicas/comercia-api/internal/domain/inventory"
	"github.com/jhoicas/comercia-api/internal/domain/repository"
)

// RegisterMovementUseCase es el motor de inventario: único escritor de
// (Stock, AverageCostUSD) en las variantes. Cada operación corre en una
// transacción con bloqueo de fila (SELECT FOR UPDATE), inserta el asiento en
// el libro y actualiza la proyección; cualquier fallo revierte ambos.
type RegisterMovementUseCase struct {
	txRunner    TxRunner
	movRepo     repository.StockMovementRepository
	variantRepo repository.ProductVariantRepository
}

// NewRegisterMovementUseCase construye el caso de uso. movRepo y variantRepo
// atados al pool se usan solo para lecturas (historial, resumen).
func NewRegisterMovementUseCase(
	txRunner TxRunner,
	movRepo repository.StockMovementRepository,
	variantRepo repository.ProductVariantRepository,
) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{
		txRunner:    txRunner,
		movRepo:     movRepo,
		variantRepo: variantRepo,
	}
}

// EntryInput entrada de stock. UnitCost obligatorio para PURCHASE/INITIAL_STOCK;
// nil en RETURN/ajustes significa reutilizar el costo promedio vigente.
type EntryInput struct {
	ProductVariantID string
	Quantity         decimal.Decimal
	UnitCost         *decimal.Decimal
	Reason           string
	Reference        string
	Notes            string
	UserID           string
}

// ExitInput salida de stock (cantidad positiva; el asiento la registra con signo).
type ExitInput struct {
	ProductVariantID string
	Quantity         decimal.Decimal
	Reason           string
	Reference        string
	Notes            string
	UserID           string
}

// AdjustmentInput ajuste por conteo físico; Quantity lleva signo.
type AdjustmentInput struct {
	ProductVariantID string
	Quantity         decimal.Decimal
	UnitCost         *decimal.Decimal
	Reference        string
	Notes            string
	UserID           string
}

// RegisterEntry registra una entrada: recalcula el costo promedio ponderado,
// suma stock y guarda el asiento, todo en una transacción.
func (uc *RegisterMovementUseCase) RegisterEntry(ctx context.Context, in EntryInput) (*entity.StockMovement, error) {
	if in.ProductVariantID == "" || !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if !entity.ValidEntryReason(in.Reason) {
		return nil, domain.ErrInvalidInput
	}
	if in.UnitCost == nil && entity.CostRequired(in.Reason) {
		return nil, domain.ErrInvalidInput
	}
	if in.UnitCost != nil && in.UnitCost.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		variantRepo repository.ProductVariantRepository,
	) error {
		var err error
		mov, err = uc.EntryInTx(movRepo, variantRepo, in, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// RegisterExit registra una salida: verifica stock suficiente, resta cantidad
// y asienta al costo promedio vigente (costo de venta). El promedio no cambia.
func (uc *RegisterMovementUseCase) RegisterExit(ctx context.Context, in ExitInput) (*entity.StockMovement, error) {
	if in.ProductVariantID == "" || !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if !entity.ValidExitReason(in.Reason) {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		variantRepo repository.ProductVariantRepository,
	) error {
		var err error
		mov, err = uc.ExitInTx(movRepo, variantRepo, in, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// RegisterAdjustment registra un ajuste con cantidad firmada: positivo entra
// como una entrada al costo indicado (o al promedio vigente), negativo sale
// como una salida. El asiento queda con tipo ADJUSTMENT en ambos casos.
func (uc *RegisterMovementUseCase) RegisterAdjustment(ctx context.Context, in AdjustmentInput) (*entity.StockMovement, error) {
	if in.ProductVariantID == "" || in.Quantity.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	if in.UnitCost != nil && in.UnitCost.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		variantRepo repository.ProductVariantRepository,
	) error {
		variant, err := variantRepo.GetForUpdate(in.ProductVariantID)
		if err != nil {
			return err
		}
		if variant == nil {
			return domain.ErrNotFound
		}
		if in.Quantity.GreaterThan(decimal.Zero) {
			mov, err = uc.entryLocked(movRepo, variantRepo, variant, lockedEntry{
				quantity:  in.Quantity,
				unitCost:  in.UnitCost,
				movType:   entity.MovementTypeADJUSTMENT,
				reason:    entity.ReasonInventoryAdjustment,
				reference: in.Reference,
				notes:     in.Notes,
				userID:    in.UserID,
			}, now)
			return err
		}
		mov, err = uc.exitLocked(movRepo, variantRepo, variant, lockedExit{
			quantity:  in.Quantity.Neg(),
			movType:   entity.MovementTypeADJUSTMENT,
			reason:    entity.ReasonInventoryAdjustment,
			reference: in.Reference,
			notes:     in.Notes,
			userID:    in.UserID,
		}, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// EntryInTx ejecuta una entrada usando los repositorios del caller (misma
// transacción). Lo usa el coordinador de órdenes para devolver stock (RETURN)
// dentro de la transacción de la transición de estado.
func (uc *RegisterMovementUseCase) EntryInTx(
	movRepo repository.StockMovementRepository,
	variantRepo repository.ProductVariantRepository,
	in EntryInput,
	now time.Time,
) (*entity.StockMovement, error) {
	variant, err := variantRepo.GetForUpdate(in.ProductVariantID)
	if err != nil {
		return nil, err
	}
	if variant == nil {
		return nil, domain.ErrNotFound
	}
	movType := entity.MovementTypeENTRY
	if in.Reason == entity.ReasonInitialStock {
		movType = entity.MovementTypeINITIAL
	}
	return uc.entryLocked(movRepo, variantRepo, variant, lockedEntry{
		quantity:  in.Quantity,
		unitCost:  in.UnitCost,
		movType:   movType,
		reason:    in.Reason,
		reference: in.Reference,
		notes:     in.Notes,
		userID:    in.UserID,
	}, now)
}

// ExitInTx ejecuta una salida usando los repositorios del caller (misma
// transacción). Lo usa el coordinador de órdenes para reservar stock (SALE);
// si retorna ErrInsufficientStock el caller debe hacer rollback.
func (uc *RegisterMovementUseCase) ExitInTx(
	movRepo repository.StockMovementRepository,
	variantRepo repository.ProductVariantRepository,
	in ExitInput,
	now time.Time,
) (*entity.StockMovement, error) {
	variant, err := variantRepo.GetForUpdate(in.ProductVariantID)
	if err != nil {
		return nil, err
	}
	if variant == nil {
		return nil, domain.ErrNotFound
	}
	return uc.exitLocked(movRepo, variantRepo, variant, lockedExit{
		quantity:  in.Quantity,
		movType:   entity.MovementTypeEXIT,
		reason:    in.Reason,
		reference: in.Reference,
		notes:     in.Notes,
		userID:    in.UserID,
	}, now)
}

type lockedEntry struct {
	quantity  decimal.Decimal
	unitCost  *decimal.Decimal
	movType   string
	reason    string
	reference string
	notes     string
	userID    string
}

type lockedExit struct {
	quantity  decimal.Decimal
	movType   string
	reason    string
	reference string
	notes     string
	userID    string
}

// entryLocked aplica una entrada sobre la variante ya bloqueada: calcula el
// nuevo costo promedio, inserta el asiento y actualiza la proyección.
func (uc *RegisterMovementUseCase) entryLocked(
	movRepo repository.StockMovementRepository,
	variantRepo repository.ProductVariantRepository,
	variant *entity.ProductVariant,
	in lockedEntry,
	now time.Time,
) (*entity.StockMovement, error) {
	unitCost := variant.AverageCostUSD
	if in.unitCost != nil {
		unitCost = *in.unitCost
	}
	prevStock := variant.Stock
	prevAvg := variant.AverageCostUSD
	newStock := prevStock.Add(in.quantity)
	newAvg := inventory.CostCalculator(prevStock, prevAvg, in.quantity, unitCost)

	mov := &entity.StockMovement{
		ID:               uuid.New().String(),
		ProductVariantID: variant.ID,
		Type:             in.movType,
		Reason:           in.reason,
		Quantity:         in.quantity,
		UnitCost:         unitCost,
		TotalCost:        in.quantity.Mul(unitCost),
		PreviousStock:    prevStock,
		NewStock:         newStock,
		PreviousAvgCost:  prevAvg,
		NewAvgCost:       newAvg,
		Reference:        in.reference,
		Notes:            in.notes,
		CreatedBy:        in.userID,
		CreatedAt:        now,
	}
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}
	if err := variantRepo.UpdateStockAndCost(variant.ID, newStock, newAvg); err != nil {
		return nil, err
	}
	variant.Stock = newStock
	variant.AverageCostUSD = newAvg
	return mov, nil
}

// exitLocked aplica una salida sobre la variante ya bloqueada. Verifica
// StockActual >= CantidadSolicitada antes de escribir; el costo promedio no
// se toca y el asiento registra el promedio vigente como costo de venta.
func (uc *RegisterMovementUseCase) exitLocked(
	movRepo repository.StockMovementRepository,
	variantRepo repository.ProductVariantRepository,
	variant *entity.ProductVariant,
	in lockedExit,
	now time.Time,
) (*entity.StockMovement, error) {
	if variant.Stock.LessThan(in.quantity) {
		return nil, domain.ErrInsufficientStock
	}
	prevStock := variant.Stock
	avg := variant.AverageCostUSD
	newStock := prevStock.Sub(in.quantity)

	mov := &entity.StockMovement{
		ID:               uuid.New().String(),
		ProductVariantID: variant.ID,
		Type:             in.movType,
		Reason:           in.reason,
		Quantity:         in.quantity.Neg(),
		UnitCost:         avg,
		TotalCost:        in.quantity.Neg().Mul(avg),
		PreviousStock:    prevStock,
		NewStock:         newStock,
		PreviousAvgCost:  avg,
		NewAvgCost:       avg,
		Reference:        in.reference,
		Notes:            in.notes,
		CreatedBy:        in.userID,
		CreatedAt:        now,
	}
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}
	if err := variantRepo.UpdateStockAndCost(variant.ID, newStock, avg); err != nil {
		return nil, err
	}
	variant.Stock = newStock
	return mov, nil
}

// History devuelve el historial de una variante, del más reciente al más antiguo.
func (uc *RegisterMovementUseCase) History(ctx context.Context, productVariantID string, limit, offset int) ([]*entity.StockMovement, error) {
	if productVariantID == "" {
		return nil, domain.ErrInvalidInput
	}
	variant, err := uc.variantRepo.GetByID(productVariantID)
	if err != nil {
		return nil, err
	}
	if variant == nil {
		return nil, domain.ErrNotFound
	}
	return uc.movRepo.ListByVariant(productVariantID, limit, offset)
}

// VariantSummary resumen de stock de una variante: stock y costo promedio de
// la proyección, valor total y último asiento del libro.
type VariantSummary struct {
	Variant      *entity.ProductVariant
	TotalValue   decimal.Decimal
	LastMovement *entity.StockMovement
}

// Summary devuelve el resumen de todas las variantes de un producto.
func (uc *RegisterMovementUseCase) Summary(ctx context.Context, productID string) ([]VariantSummary, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	variants, err := uc.variantRepo.ListByProduct(productID)
	if err != nil {
		return nil, err
	}
	if len(variants) == 0 {
		return nil, domain.ErrNotFound
	}
	summaries := make([]VariantSummary, 0, len(variants))
	for _, v := range variants {
		last, err := uc.movRepo.GetLastByVariant(v.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, VariantSummary{
			Variant:      v,
			TotalValue:   v.Stock.Mul(v.AverageCostUSD),
			LastMovement: last,
		})
	}
	return summaries, nil
}
