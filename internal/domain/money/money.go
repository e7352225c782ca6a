// Package money implementa la aritmética de precisión fija del motor:
// dinero y cantidades siempre con 2 decimales (NUMERIC(10,2) en el esquema),
// nunca punto flotante binario, para que los campos derivados no acumulen drift.
package money

import "github.com/shopspring/decimal"

// Scale decimales de dinero y cantidades en todo el motor.
const Scale = 2

// Round normaliza un valor a la escala del motor (half-up, como NUMERIC).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Mul multiplica y normaliza (quantity * price_per_unit, etc.).
func Mul(a, b decimal.Decimal) decimal.Decimal {
	return Round(a.Mul(b))
}

// PercentOf devuelve base * rate/100 normalizado (impuestos y descuentos porcentuales).
func PercentOf(base, rate decimal.Decimal) decimal.Decimal {
	return Round(base.Mul(rate).Div(decimal.NewFromInt(100)))
}

// IsNonNegative true si d >= 0.
func IsNonNegative(d decimal.Decimal) bool {
	return !d.LessThan(decimal.Zero)
}

// IsPositive true si d > 0.
func IsPositive(d decimal.Decimal) bool {
	return d.GreaterThan(decimal.Zero)
}
