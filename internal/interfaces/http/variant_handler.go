package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/comercia-api/internal/application/dto"
	"github.com/jhoicas/comercia-api/internal/domain/repository"
)

// VariantHandler lookup de variantes para módulos colaboradores (protegido).
type VariantHandler struct {
	variantRepo repository.ProductVariantRepository
}

// NewVariantHandler construye el handler.
func NewVariantHandler(variantRepo repository.ProductVariantRepository) *VariantHandler {
	return &VariantHandler{variantRepo: variantRepo}
}

// GetByID godoc
// @Summary      Consultar una variante (stock y costo promedio vigentes)
// @Tags         variants
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la variante"
// @Success      200  {object}  dto.VariantResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/variants/{id} [get]
func (h *VariantHandler) GetByID(c *fiber.Ctx) error {
	variant, err := h.variantRepo.GetByID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if variant == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "variante no encontrada"})
	}
	return c.JSON(dto.VariantResponse{
		ID:             variant.ID,
		ProductID:      variant.ProductID,
		SKU:            variant.SKU,
		Name:           variant.Name,
		Stock:          variant.Stock,
		AverageCostUSD: variant.AverageCostUSD,
		PriceUSD:       variant.PriceUSD,
	})
}
