package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/comercia-api/internal/application/dto"
	"github.com/jhoicas/comercia-api/internal/application/inventory"
	"github.com/jhoicas/comercia-api/internal/domain"
	"github.com/jhoicas/comercia-api/internal/domain/entity"
)

// InventoryHandler maneja las peticiones HTTP del libro de movimientos (protegido).
type InventoryHandler struct {
	uc *inventory.RegisterMovementUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.RegisterMovementUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

func movementToDTO(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:               m.ID,
		ProductVariantID: m.ProductVariantID,
		Type:             m.Type,
		Reason:           m.Reason,
		Quantity:         m.Quantity,
		UnitCost:         m.UnitCost,
		TotalCost:        m.TotalCost,
		PreviousStock:    m.PreviousStock,
		NewStock:         m.NewStock,
		PreviousAvgCost:  m.PreviousAvgCost,
		NewAvgCost:       m.NewAvgCost,
		Reference:        m.Reference,
		Notes:            m.Notes,
		CreatedBy:        m.CreatedBy,
		CreatedAt:        m.CreatedAt,
	}
}

// inventoryError traduce los sentinelas del dominio a respuestas HTTP.
func inventoryError(c *fiber.Ctx, err error) error {
	if err == domain.ErrInvalidInput {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	}
	if err == domain.ErrNotFound {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "variante no encontrada"})
	}
	if err == domain.ErrInsufficientStock {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

// RegisterEntry godoc
// @Summary      Registrar entrada de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockEntryRequest  true  "product_variant_id, quantity, reason, unit_cost (PURCHASE/INITIAL_STOCK)"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/entries [post]
func (h *InventoryHandler) RegisterEntry(c *fiber.Ctx) error {
	var in dto.StockEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, err := h.uc.RegisterEntry(c.Context(), inventory.EntryInput{
		ProductVariantID: in.ProductVariantID,
		Quantity:         in.Quantity,
		UnitCost:         in.UnitCost,
		Reason:           in.Reason,
		Reference:        in.Reference,
		Notes:            in.Notes,
		UserID:           GetUserID(c),
	})
	if err != nil {
		return inventoryError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(movementToDTO(mov))
}

// RegisterExit godoc
// @Summary      Registrar salida de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockExitRequest  true  "product_variant_id, quantity, reason"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/exits [post]
func (h *InventoryHandler) RegisterExit(c *fiber.Ctx) error {
	var in dto.StockExitRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, err := h.uc.RegisterExit(c.Context(), inventory.ExitInput{
		ProductVariantID: in.ProductVariantID,
		Quantity:         in.Quantity,
		Reason:           in.Reason,
		Reference:        in.Reference,
		Notes:            in.Notes,
		UserID:           GetUserID(c),
	})
	if err != nil {
		return inventoryError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(movementToDTO(mov))
}

// RegisterAdjustment godoc
// @Summary      Registrar ajuste de inventario (cantidad firmada)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockAdjustmentRequest  true  "product_variant_id, quantity con signo, unit_cost opcional"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) RegisterAdjustment(c *fiber.Ctx) error {
	var in dto.StockAdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, err := h.uc.RegisterAdjustment(c.Context(), inventory.AdjustmentInput{
		ProductVariantID: in.ProductVariantID,
		Quantity:         in.Quantity,
		UnitCost:         in.UnitCost,
		Reference:        in.Reference,
		Notes:            in.Notes,
		UserID:           GetUserID(c),
	})
	if err != nil {
		return inventoryError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(movementToDTO(mov))
}

// ListMovements godoc
// @Summary      Historial de movimientos de una variante (más reciente primero)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        variantId  path   string  true   "ID de la variante"
// @Param        limit      query  int     false  "Tamaño de página (default 20, max 100)"
// @Param        offset     query  int     false  "Desplazamiento"
// @Success      200  {array}   dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{variantId} [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	movements, err := h.uc.History(c.Context(), c.Params("variantId"), page.Limit, page.Offset)
	if err != nil {
		return inventoryError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, movementToDTO(m))
	}
	return c.JSON(fiber.Map{
		"movements": out,
		"page":      dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// StockSummary godoc
// @Summary      Resumen de stock por variante de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockSummaryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/summary/{productId} [get]
func (h *InventoryHandler) StockSummary(c *fiber.Ctx) error {
	productID := c.Params("productId")
	summaries, err := h.uc.Summary(c.Context(), productID)
	if err != nil {
		return inventoryError(c, err)
	}
	out := dto.StockSummaryResponse{ProductID: productID}
	for _, s := range summaries {
		v := dto.VariantSummaryDTO{
			ProductVariantID: s.Variant.ID,
			SKU:              s.Variant.SKU,
			Name:             s.Variant.Name,
			CurrentStock:     s.Variant.Stock,
			AverageCostUSD:   s.Variant.AverageCostUSD,
			TotalValue:       s.TotalValue,
		}
		if s.LastMovement != nil {
			m := movementToDTO(s.LastMovement)
			v.LastMovement = &m
		}
		out.Variants = append(out.Variants, v)
	}
	return c.JSON(out)
}
