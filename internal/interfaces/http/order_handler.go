package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/comercia-api/internal/application/dto"
	"github.com/jhoicas/comercia-api/internal/application/orders"
	"github.com/jhoicas/comercia-api/internal/domain"
	"github.com/jhoicas/comercia-api/internal/domain/entity"
	"github.com/jhoicas/comercia-api/internal/domain/repository"
)

// OrderHandler maneja las peticiones HTTP de órdenes (protegido).
type OrderHandler struct {
	createUC  *orders.CreateOrderUseCase
	statusUC  *orders.OrderStatusUseCase
	bulkUC    *orders.BulkStatusUseCase
	orderRepo repository.OrderRepository
	bulkMax   int
}

// NewOrderHandler construye el handler. orderRepo atado al pool se usa solo
// para consultas.
func NewOrderHandler(
	createUC *orders.CreateOrderUseCase,
	statusUC *orders.OrderStatusUseCase,
	bulkUC *orders.BulkStatusUseCase,
	orderRepo repository.OrderRepository,
	bulkMax int,
) *OrderHandler {
	if bulkMax <= 0 {
		bulkMax = 100
	}
	return &OrderHandler{
		createUC:  createUC,
		statusUC:  statusUC,
		bulkUC:    bulkUC,
		orderRepo: orderRepo,
		bulkMax:   bulkMax,
	}
}

func orderToDTO(o *entity.Order) dto.OrderResponse {
	out := dto.OrderResponse{
		ID:                o.ID,
		OrderNumber:       o.OrderNumber,
		CustomerName:      o.CustomerName,
		ShippingAddressID: o.ShippingAddressID,
		OrderStatus:       o.Status.String(),
		Items:             make([]dto.OrderItemResponse, 0, len(o.Items)),
		SubTotal:          o.SubTotal,
		DiscountUSD:       o.DiscountUSD,
		TotalAmount:       o.TotalAmount,
		TotalGainUSD:      o.TotalGainUSD,
		Notes:             o.Notes,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, dto.OrderItemResponse{
			ID:                 it.ID,
			ProductVariantID:   it.ProductVariantID,
			SKU:                it.SKU,
			ProductName:        it.ProductName,
			Quantity:           it.Quantity,
			CostUSDAtPurchase:  it.CostUSDAtPurchase,
			PriceUSDAtPurchase: it.PriceUSDAtPurchase,
			SubTotal:           it.SubTotal,
			GainUSD:            it.GainUSD,
		})
	}
	return out
}

func conflictsToDTO(items []orders.StockConflictItem) []dto.StockConflictDTO {
	out := make([]dto.StockConflictDTO, 0, len(items))
	for _, it := range items {
		out = append(out, dto.StockConflictDTO{
			ProductVariantID: it.ProductVariantID,
			SKU:              it.SKU,
			ProductName:      it.ProductName,
			RequiredQuantity: it.RequiredQuantity,
			AvailableStock:   it.AvailableStock,
		})
	}
	return out
}

// orderError traduce los sentinelas del dominio a respuestas HTTP.
func orderError(c *fiber.Ctx, err error) error {
	if err == domain.ErrInvalidInput {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	}
	if err == domain.ErrDuplicate {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "DUPLICATE_ITEM", Message: "variante repetida en las líneas"})
	}
	if err == domain.ErrNotFound {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "orden o variante no encontrada"})
	}
	if err == domain.ErrInvalidTransition {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: "transición de estado no permitida"})
	}
	if err == domain.ErrInsufficientStock {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

// conflictJSON responde 409 con el detalle de faltantes. No es un error de la
// API: el cuerpo lleva los conflictos para que el caller decida.
func conflictJSON(c *fiber.Ctx, conflicts []orders.StockConflictItem) error {
	return c.Status(fiber.StatusConflict).JSON(dto.ConflictResponse{
		Success:        false,
		Message:        "stock insuficiente para completar la operación",
		StockConflicts: conflictsToDTO(conflicts),
	})
}

// Create godoc
// @Summary      Crear orden (nace en PROCESSING descontando stock)
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "items con product_variant_id y quantity"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ConflictResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.createUC.Create(c.Context(), GetUserID(c), in)
	if err != nil {
		return orderError(c, err)
	}
	if result.HasConflicts() {
		return conflictJSON(c, result.Conflicts)
	}
	return c.Status(fiber.StatusCreated).JSON(orderToDTO(result.Order))
}

// GetByID godoc
// @Summary      Consultar una orden con sus líneas
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	order, err := h.orderRepo.GetByID(c.Params("id"))
	if err != nil {
		return orderError(c, err)
	}
	if order == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "orden no encontrada"})
	}
	return c.JSON(orderToDTO(order))
}

// List godoc
// @Summary      Listar órdenes (más recientes primero)
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Tamaño de página (default 20, max 100)"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {array}  dto.OrderResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.orderRepo.List(page.Limit, page.Offset)
	if err != nil {
		return orderError(c, err)
	}
	out := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, orderToDTO(o))
	}
	return c.JSON(fiber.Map{
		"orders": out,
		"page":   dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// Update godoc
// @Summary      Editar una orden (líneas, descuento, notas y/o estado)
// @Description  La edición de líneas y la transición de estado corren en una
//
//	sola transacción; con la orden reservada los deltas de cantidad
//	mueven stock de inmediato.
//
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la orden"
// @Param        body  body  dto.UpdateOrderRequest  true  "campos a cambiar; nil no cambia"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ConflictResponse
// @Router       /api/orders/{id} [patch]
func (h *OrderHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.statusUC.UpdateOrder(c.Context(), c.Params("id"), in, GetUserID(c))
	if err != nil {
		return orderError(c, err)
	}
	if result.HasConflicts() {
		return conflictJSON(c, result.Conflicts)
	}
	return c.JSON(orderToDTO(result.Order))
}

// ChangeStatus godoc
// @Summary      Transicionar el estado de una orden
// @Description  Solo el cruce entre clasificaciones de reserva mueve stock;
//
//	los faltantes responden 409 con el detalle y la orden queda intacta.
//
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID de la orden"
// @Param        body  body  dto.ChangeStatusRequest  true  "order_status destino"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ConflictResponse
// @Router       /api/orders/{id}/status [patch]
func (h *OrderHandler) ChangeStatus(c *fiber.Ctx) error {
	var in dto.ChangeStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.statusUC.ChangeStatus(c.Context(), c.Params("id"), entity.OrderStatus(in.OrderStatus), GetUserID(c))
	if err != nil {
		return orderError(c, err)
	}
	if result.HasConflicts() {
		return conflictJSON(c, result.Conflicts)
	}
	return c.JSON(orderToDTO(result.Order))
}

// Availability godoc
// @Summary      Verificar disponibilidad de stock para reservar una orden
// @Description  Solo lectura: no bloquea filas ni escribe. El resultado puede
//
//	quedar obsoleto frente a escritores concurrentes.
//
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.AvailabilityResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/stock-availability [get]
func (h *OrderHandler) Availability(c *fiber.Ctx) error {
	conflicts, err := h.statusUC.CheckAvailability(c.Context(), c.Params("id"))
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(dto.AvailabilityResponse{
		HasConflicts: len(conflicts) > 0,
		Conflicts:    conflictsToDTO(conflicts),
	})
}

// BulkStatus godoc
// @Summary      Transicionar el estado de un lote de órdenes
// @Description  Cada orden corre en su propia transacción; un fallo individual
//
//	no afecta al resto. El lote admite entre 1 y 100 órdenes.
//
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkStatusRequest  true  "order_ids (1..100) y new_status"
// @Success      200   {object}  dto.BulkStatusResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/orders/bulk-status [patch]
func (h *OrderHandler) BulkStatus(c *fiber.Ctx) error {
	var in dto.BulkStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.OrderIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "order_ids requerido"})
	}
	if len(in.OrderIDs) > h.bulkMax {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "el lote excede el máximo de órdenes permitido"})
	}
	newStatus := entity.OrderStatus(in.NewStatus)
	if !newStatus.IsValid() {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "estado destino inválido"})
	}
	result, err := h.bulkUC.ChangeStatusBulk(c.Context(), in.OrderIDs, newStatus, GetUserID(c))
	if err != nil {
		return orderError(c, err)
	}
	out := dto.BulkStatusResponse{
		SuccessfulUpdates: result.Successful,
		TotalRequested:    len(in.OrderIDs),
		TotalSuccessful:   len(result.Successful),
		TotalFailed:       len(result.Failed),
	}
	if out.SuccessfulUpdates == nil {
		out.SuccessfulUpdates = []string{}
	}
	out.FailedUpdates = make([]dto.BulkFailureDTO, 0, len(result.Failed))
	for _, f := range result.Failed {
		out.FailedUpdates = append(out.FailedUpdates, dto.BulkFailureDTO{
			OrderID:   f.OrderID,
			Error:     f.Reason,
			Conflicts: conflictsToDTO(f.Conflicts),
		})
	}
	return c.JSON(out)
}
