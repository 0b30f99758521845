package orders

import (
	"context"

	"github.com/jhoicas/comercia-api/internal/domain"
	"github.com/jhoicas/comercia-api/internal/domain/entity"
)

// BulkStatusUseCase aplica una transición de estado a muchas órdenes. Cada
// orden corre en su propia transacción: el fallo de una (transición ilegal,
// conflicto de stock, no encontrada) se registra y el lote continúa.
type BulkStatusUseCase struct {
	status *OrderStatusUseCase
}

// NewBulkStatusUseCase construye el caso de uso sobre el de transiciones.
func NewBulkStatusUseCase(status *OrderStatusUseCase) *BulkStatusUseCase {
	return &BulkStatusUseCase{status: status}
}

// BulkFailure fallo individual dentro del lote.
type BulkFailure struct {
	OrderID   string
	Reason    string
	Conflicts []StockConflictItem
}

// BulkResult órdenes actualizadas y fallos, en el orden del request.
type BulkResult struct {
	Successful []string
	Failed     []BulkFailure
}

// ChangeStatusBulk procesa el lote secuencialmente; el tope del tamaño lo
// impone el esquema HTTP, no este caso de uso.
func (uc *BulkStatusUseCase) ChangeStatusBulk(ctx context.Context, orderIDs []string, newStatus entity.OrderStatus, userID string) (*BulkResult, error) {
	if len(orderIDs) == 0 || !newStatus.IsValid() {
		return nil, domain.ErrInvalidInput
	}
	res := &BulkResult{}
	for _, id := range orderIDs {
		r, err := uc.status.ChangeStatus(ctx, id, newStatus, userID)
		if err != nil {
			res.Failed = append(res.Failed, BulkFailure{OrderID: id, Reason: err.Error()})
			continue
		}
		if r.HasConflicts() {
			res.Failed = append(res.Failed, BulkFailure{
				OrderID:   id,
				Reason:    domain.ErrInsufficientStock.Error(),
				Conflicts: r.Conflicts,
			})
			continue
		}
		res.Successful = append(res.Successful, id)
	}
	return res, nil
}
