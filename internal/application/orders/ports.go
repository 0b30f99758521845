package orders

import (
	"context"
	"time"

	"github.com/jhoicas/comercia-api/internal/application/inventory"
	"github.com/jhoicas/comercia-api/internal/domain/entity"
	"github.com/jhoicas/comercia-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción que incluye los
// repositorios de inventario y de órdenes: la mutación de la orden y sus
// movimientos de stock comparten el mismo Commit/Rollback.
type TxRunner interface {
	RunOrder(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		variantRepo repository.ProductVariantRepository,
		orderRepo repository.OrderRepository,
	) error) error
}

// InventoryEngine puerto hacia el motor de inventario dentro de la
// transacción del caller. EntryInTx devuelve stock de la orden (RETURN);
// ExitInTx lo reserva (SALE) y retorna ErrInsufficientStock si no alcanza,
// en cuyo caso el caller debe hacer rollback.
// Lo implementa inventory.RegisterMovementUseCase.
type InventoryEngine interface {
	EntryInTx(
		movRepo repository.StockMovementRepository,
		variantRepo repository.ProductVariantRepository,
		in inventory.EntryInput,
		now time.Time,
	) (*entity.StockMovement, error)
	ExitInTx(
		movRepo repository.StockMovementRepository,
		variantRepo repository.ProductVariantRepository,
		in inventory.ExitInput,
		now time.Time,
	) (*entity.StockMovement, error)
}
