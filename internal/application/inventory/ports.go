package inventory

import (
	"context"

	"github.com/jhoicas/comercia-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que el asiento del libro y la
// proyección de la variante se escriben juntos o no se escriben.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		variantRepo repository.ProductVariantRepository,
	) error) error
}
