package inventory

import "github.com/shopspring/decimal"

// Precisión monetaria fija del costo promedio (2 decimales).
const costScale = 2

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// redondeado a 2 decimales. Si el stock resultante es cero o negativo (entrada
// sobre stock vacío por ajuste), el nuevo costo es el costo de la entrada.
// Las salidas nunca pasan por aquí: el costo promedio solo se mueve con entradas.
func CostCalculator(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return costoEntrada.Round(costScale)
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum).Round(costScale)
}
