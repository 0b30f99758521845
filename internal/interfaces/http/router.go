package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/comercia-api/internal/application/inventory"
	"github.com/jhoicas/comercia-api/internal/application/orders"
	"github.com/jhoicas/comercia-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RegisterMovement *inventory.RegisterMovementUseCase
	CreateOrder      *orders.CreateOrderUseCase
	OrderStatus      *orders.OrderStatusUseCase
	BulkStatus       *orders.BulkStatusUseCase
	OrderRepo        repository.OrderRepository
	VariantRepo      repository.ProductVariantRepository
	JWTSecret        string
	BulkMaxOrders    int
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Inventory (protegido)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement)
	invGroup.Post("/entries", inventoryHandler.RegisterEntry)
	invGroup.Post("/exits", inventoryHandler.RegisterExit)
	invGroup.Post("/adjustments", RequireRole("admin", "bodeguero"), inventoryHandler.RegisterAdjustment)
	invGroup.Get("/movements/:variantId", inventoryHandler.ListMovements)
	invGroup.Get("/summary/:productId", inventoryHandler.StockSummary)

	// Orders (protegido)
	ordersGroup := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.CreateOrder, deps.OrderStatus, deps.BulkStatus, deps.OrderRepo, deps.BulkMaxOrders)
	// bulk-status antes que /:id para que Fiber no lo capture como parámetro
	ordersGroup.Patch("/bulk-status", orderHandler.BulkStatus)
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Get("/:id", orderHandler.GetByID)
	ordersGroup.Patch("/:id", orderHandler.Update)
	ordersGroup.Patch("/:id/status", orderHandler.ChangeStatus)
	ordersGroup.Get("/:id/stock-availability", orderHandler.Availability)

	// Variants (protegido, lookup para módulos colaboradores)
	variants := protected.Group("/variants")
	variantHandler := NewVariantHandler(deps.VariantRepo)
	variants.Get("/:id", variantHandler.GetByID)
}
