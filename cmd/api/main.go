package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/comercia-api/internal/application/inventory"
	"github.com/jhoicas/comercia-api/internal/application/orders"
	"github.com/jhoicas/comercia-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/comercia-api/internal/interfaces/http"
	"github.com/jhoicas/comercia-api/pkg/config"
	"github.com/jhoicas/comercia-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repos atados al pool: solo lecturas. Las escrituras pasan por el TxRunner.
	movementRepo := postgres.NewStockMovementRepository(pool)
	variantRepo := postgres.NewProductVariantRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	registerMovementUC := inventory.NewRegisterMovementUseCase(txRunner, movementRepo, variantRepo)
	orderStatusUC := orders.NewOrderStatusUseCase(txRunner, registerMovementUC, orderRepo, variantRepo)
	createOrderUC := orders.NewCreateOrderUseCase(txRunner, registerMovementUC)
	bulkStatusUC := orders.NewBulkStatusUseCase(orderStatusUC)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Comercia API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		RegisterMovement: registerMovementUC,
		CreateOrder:      createOrderUC,
		OrderStatus:      orderStatusUC,
		BulkStatus:       bulkStatusUC,
		OrderRepo:        orderRepo,
		VariantRepo:      variantRepo,
		JWTSecret:        cfg.JWT.Secret,
		BulkMaxOrders:    cfg.Orders.BulkMaxOrders,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
