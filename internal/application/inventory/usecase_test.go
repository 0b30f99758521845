package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/comercia-api/internal/application/inventory"
	"github.com/jhoicas/comercia-api/internal/domain"
	"github.com/jhoicas/comercia-api/internal/domain/entity"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newUseCase(s *memStore) *inventory.RegisterMovementUseCase {
	return inventory.NewRegisterMovementUseCase(
		&memTxRunner{s: s},
		&memMovementRepo{s: s},
		&memVariantRepo{s: s},
	)
}

// ──────────────────────────────────────────────────────────────────────────────
// Entradas
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterEntry_CompraActualizaStockYPromedio(t *testing.T) {
	s := newMemStore()
	s.addVariant("v1", "SKU-1", "Camisa M", "0", "0", "25.00")
	uc := newUseCase(s)

	mov, err := uc.RegisterEntry(context.Background(), inventory.EntryInput{
		ProductVariantID: "v1",
		Quantity:         dec("10"),
		UnitCost:         decPtr("5.00"),
		Reason:           entity.ReasonPurchase,
		UserID:           "user-1",
	})
	require.NoError(t, err)
	require.NotNil(t, mov)

	assert.Equal(t, entity.MovementTypeENTRY, mov.Type)
	assert.True(t, dec("0").Equal(mov.PreviousStock))
	assert.True(t, dec("10").Equal(mov.NewStock))
	assert.True(t, dec("5.00").Equal(mov.NewAvgCost))
	assert.True(t, dec("50.00").Equal(mov.TotalCost))

	// el asiento y la proyección deben coincidir
	v := s.variants["v1"]
	assert.True(t, mov.NewStock.Equal(v.Stock))
	assert.True(t, mov.NewAvgCost.Equal(v.AverageCostUSD))
}

func TestRegisterEntry_SegundaCompraRecalculaPromedio(t *testing.T) {
	s := newMemStore()
	s.addVariant("v1", "SKU-1", "Camisa M", "10", "5.00", "25.00")
	uc := newUseCase(s)

	mov, err := uc.RegisterEntry(context.Background(), inventory.EntryInput{
		ProductVariantID: "v1",
		Quantity:         dec("5"),
		UnitCost:         decPtr("8.00"),
		Reason:           entity.ReasonPurchase,
	})
	require.NoError(t, err)

	// (10*5 + 5*8) / 15 = 6.00
	assert.True(t, dec("6.00").Equal(mov.NewAvgCost), "promedio %s", mov.NewAvgCost)
	assert.True(t, dec("15").Equal(s.variants["v1"].Stock))
	assert.True(t, dec("6.00").Equal(s.variants["v1"].AverageCostUSD))
}

func TestRegisterEntry_CargaInicialQuedaComoINITIAL(t *testing.T) {
	s := newMemStore()
	s.addVariant("v1", "SKU-1", "Camisa M", "0", "0", "25.00")
	uc := newUseCase(s)

	mov, err := uc.RegisterEntry(context.Background(), inventory.EntryInput{
		ProductVariantID: "v1",
		Quantity:         dec("30"),
		UnitCost:         decPtr("2.50"),
		Reason:           entity.ReasonInitialStock,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeINITIAL, mov.Type)
	assert.True(t, dec("2.50").Equal(mov.NewAvgCost))
}

func TestRegisterEntry_DevolucionSinCostoReutilizaPromedio(t *testing.T) {
	s := newMemStore()
	s.addVariant("v1", "SKU-1", "Camisa M", "8", "4.00", "25.00")
	uc := newUseCase(s)

	mov, err := uc.RegisterEntry(context.Background(), inventory.EntryInput{
		ProductVariantID: "v1",
		Quantity:         dec("2"),
		Reason:           entity.ReasonReturn,
	})
	require.NoError(t, err)
	assert.True(t, dec("4.00").Equal(mov.UnitCost))
	// promedio no cambia al reingresar al mismo costo
	assert.True(t, dec("4.00").Equal(s.variants["v1"].AverageCostUSD))
	assert.True(t, dec("10").Equal(s.variants["v1"].Stock))
}

func TestRegisterEntry_CompraSinCostoFalla(t *testing.T) {
	s := newMemStore()
	s.addVariant("v1", "SKU-1", "Camisa M", "0", "0", "25.00")
	uc := newUseCase(s)

	for _, reason := range []string{entity.ReasonPurchase, entity.ReasonInitialStock} {
		_, err := uc.RegisterEntry(context.Background(), inventory.EntryInput{
			ProductVariantID: "v1",
			Quantity:         dec("1"),
			Reason:           reason,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "razón %s exige costo unitario", reason)
	}
	assert.Empty(t, s.movements, "no debe quedar ningún asiento")
}

func TestRegisterEntry_ValidacionesBasicas(t *testing.T) {
	s := newMemStore()
	s.addVariant("v1", "SKU-1", "Camisa M", "0", "0", "25.00")
	uc := newUseCase(s)
	ctx := context.Background()

	_, err := uc.RegisterEntry(ctx, inventory.EntryInput{Quantity: dec("1"), Reason: entity.ReasonPurchase, UnitCost: decPtr("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "variante vacía")

	_, err = uc.RegisterEntry(ctx, inventory.EntryInput{ProductVariantID: "v1", Quantity: dec("0"), Reason: entity.ReasonPurchase, UnitCost: decPtr("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero")

	_, err = uc.RegisterEntry(ctx, inventory.EntryInput{ProductVariantID: "v1", Quantity: dec("1"), Reason: entity.ReasonSale, UnitCost: decPtr("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "SALE no es razón de entrada")

	_, err = uc.RegisterEntry(ctx, inventory.EntryInput{ProductVariantID: "v1", Quantity: dec("1"), Reason: entity.ReasonPurchase, UnitCost: decPtr("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "costo negativo")

	_, err = uc.RegisterEntry(ctx, inventory.EntryInput{ProductVariantID: "no-existe", Quantity: dec("1"), Reason: entity.ReasonPurchase, UnitCost: decPtr("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Salidas
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterExit_SaleAlCostoPromedioVigente(t *testing.T) {
	s := newMemStore()
	s.addVariant("v1", "SKU-1", "Camisa M", "15", "6.00", "25.00")
	uc := newUseCase(s)

	mov, err := uc.RegisterExit(context.Background(), inventory.ExitInput{
		ProductVariantID: "v1",
		Quantity:         dec("4"),
		Reason:           entity.ReasonSale,
		Reference:        "ORD-000001",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.MovementTypeEXIT, mov.Type)
	assert.True(t, dec("-4").Equal(mov.Quantity), "la salida se asienta con signo negativo")
	assert.True(t, dec("6.00").Equal(mov.UnitCost), "costo de venta = promedio vigente")
	assert.True(t, dec("-24.00").Equal(mov.TotalCost))
	assert.True(t, dec("11").Equal(mov.NewStock))
	// la salida nunca mueve el promedio
	assert.True(t, mov.PreviousAvgCost.Equal(mov.NewAvgCost))
	assert.True(t, dec("6.00").Equal(s.variants["v1"].AverageCostUSD))
}

func TestRegisterExit_StockInsuficienteNoEscribe(t *testing.T) {
	s := newMemStore()
	s.addVariant("v1", "SKU-1", "Camisa M", "3", "6.00", "25.00")
	uc := newUseCase(s)

	_, err := uc.RegisterExit(context.Background(), inventory.ExitInput{
		ProductVariantID: "v1",
		Quantity:         dec("5"),
		Reason:           entity.ReasonSale,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, dec("3").Equal(s.variants["v1"].Stock), "el stock no debe cambiar")
	assert.Empty(t, s.movements, "no debe quedar ningún asiento")
}

func TestRegisterExit_RazonInvalida(t *testing.T) {
	s := newMemStore()
	s.addVariant("v1", "SKU-1", "Camisa M", "10", "6.00", "25.00")
	uc := newUseCase(s)

	_, err := uc.RegisterExit(context.Background(), inventory.ExitInput{
		ProductVariantID: "v1",
		Quantity:         dec("1"),
		Reason:           entity.ReasonPurchase,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterAdjustment_PositivoEntraStock(t *testing.T) {
	s := newMemStore()
	s.addVariant("v1", "SKU-1", "Camisa M", "10", "5.00", "25.00")
	uc := newUseCase(s)

	mov, err := uc.RegisterAdjustment(context.Background(), inventory.AdjustmentInput{
		ProductVariantID: "v1",
		Quantity:         dec("2"),
		Notes:            "conteo físico",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeADJUSTMENT, mov.Type)
	assert.Equal(t, entity.ReasonInventoryAdjustment, mov.Reason)
	assert.True(t, dec("12").Equal(s.variants["v1"].Stock))
	// sin costo explícito entra al promedio vigente: el promedio no cambia
	assert.True(t, dec("5.00").Equal(s.variants["v1"].AverageCostUSD))
}

func TestRegisterAdjustment_NegativoSacaStock(t *testing.T) {
	s := newMemStore()
	s.addVariant("v1", "SKU-1", "Camisa M", "10", "5.00", "25.00")
	uc := newUseCase(s)

	mov, err := uc.RegisterAdjustment(context.Background(), inventory.AdjustmentInput{
		ProductVariantID: "v1",
		Quantity:         dec("-3"),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeADJUSTMENT, mov.Type)
	assert.True(t, dec("-3").Equal(mov.Quantity))
	assert.True(t, dec("7").Equal(s.variants["v1"].Stock))
}

func TestRegisterAdjustment_NegativoMayorQueStockFalla(t *testing.T) {
	s := newMemStore()
	s.addVariant("v1", "SKU-1", "Camisa M", "2", "5.00", "25.00")
	uc := newUseCase(s)

	_, err := uc.RegisterAdjustment(context.Background(), inventory.AdjustmentInput{
		ProductVariantID: "v1",
		Quantity:         dec("-5"),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, dec("2").Equal(s.variants["v1"].Stock))
}

func TestRegisterAdjustment_CantidadCeroFalla(t *testing.T) {
	s := newMemStore()
	uc := newUseCase(s)

	_, err := uc.RegisterAdjustment(context.Background(), inventory.AdjustmentInput{
		ProductVariantID: "v1",
		Quantity:         decimal.Zero,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consistencia libro-proyección
// ──────────────────────────────────────────────────────────────────────────────

// Tras cualquier secuencia de operaciones, el stock de la proyección debe ser
// la suma de las cantidades del libro y el promedio debe ser el del último asiento.
func TestLedger_ProyeccionConsistenteTrasSecuencia(t *testing.T) {
	s := newMemStore()
	s.addVariant("v1", "SKU-1", "Camisa M", "0", "0", "25.00")
	uc := newUseCase(s)
	ctx := context.Background()

	ops := []func() error{
		func() error {
			_, err := uc.RegisterEntry(ctx, inventory.EntryInput{ProductVariantID: "v1", Quantity: dec("10"), UnitCost: decPtr("5.00"), Reason: entity.ReasonPurchase})
			return err
		},
		func() error {
			_, err := uc.RegisterExit(ctx, inventory.ExitInput{ProductVariantID: "v1", Quantity: dec("4"), Reason: entity.ReasonSale})
			return err
		},
		func() error {
			_, err := uc.RegisterEntry(ctx, inventory.EntryInput{ProductVariantID: "v1", Quantity: dec("6"), UnitCost: decPtr("8.00"), Reason: entity.ReasonPurchase})
			return err
		},
		func() error {
			_, err := uc.RegisterAdjustment(ctx, inventory.AdjustmentInput{ProductVariantID: "v1", Quantity: dec("-2")})
			return err
		},
	}
	for _, op := range ops {
		require.NoError(t, op())
	}

	movRepo := &memMovementRepo{s: s}
	sum, err := movRepo.SumQuantityByVariant("v1")
	require.NoError(t, err)
	v := s.variants["v1"]
	assert.True(t, sum.Equal(v.Stock), "stock %s vs suma del libro %s", v.Stock, sum)

	last, err := movRepo.GetLastByVariant("v1")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, last.NewAvgCost.Equal(v.AverageCostUSD))
	assert.True(t, last.NewStock.Equal(v.Stock))
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestHistory_MasRecientePrimero(t *testing.T) {
	s := newMemStore()
	s.addVariant("v1", "SKU-1", "Camisa M", "0", "0", "25.00")
	uc := newUseCase(s)
	ctx := context.Background()

	_, err := uc.RegisterEntry(ctx, inventory.EntryInput{
		ProductVariantID: "v1", Quantity: dec("10"), UnitCost: decPtr("5.00"), Reason: entity.ReasonPurchase,
	})
	require.NoError(t, err)
	_, err = uc.RegisterExit(ctx, inventory.ExitInput{
		ProductVariantID: "v1", Quantity: dec("4"), Reason: entity.ReasonSale,
	})
	require.NoError(t, err)

	movs, err := uc.History(ctx, "v1", 10, 0)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementTypeEXIT, movs[0].Type)
	assert.Equal(t, entity.MovementTypeENTRY, movs[1].Type)
}

func TestHistory_VarianteInexistente(t *testing.T) {
	s := newMemStore()
	uc := newUseCase(s)

	_, err := uc.History(context.Background(), "no-existe", 10, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSummary_ValorTotalYUltimoMovimiento(t *testing.T) {
	s := newMemStore()
	s.addVariant("v1", "SKU-1", "Camisa M", "0", "0", "25.00")
	uc := newUseCase(s)
	ctx := context.Background()

	_, err := uc.RegisterEntry(ctx, inventory.EntryInput{
		ProductVariantID: "v1", Quantity: dec("10"), UnitCost: decPtr("5.00"), Reason: entity.ReasonPurchase,
	})
	require.NoError(t, err)

	summaries, err := uc.Summary(ctx, "prod-1")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.True(t, dec("50.00").Equal(summaries[0].TotalValue))
	require.NotNil(t, summaries[0].LastMovement)
	assert.Equal(t, entity.MovementTypeENTRY, summaries[0].LastMovement.Type)
}

func TestSummary_ProductoSinVariantes(t *testing.T) {
	s := newMemStore()
	uc := newUseCase(s)

	_, err := uc.Summary(context.Background(), "prod-x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
