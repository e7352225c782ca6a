// Package sales contiene el cálculo puro de totales de venta (servicio de dominio).
// Todas las fórmulas de los campos derivados de la línea viven aquí y solo aquí.
package sales

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/money"
)

// LineInput entrada mínima para calcular una línea: cantidad y precios ya
// copiados del producto, más el descuento solicitado.
type LineInput struct {
	Quantity      decimal.Decimal
	SellPrice     decimal.Decimal
	PurchasePrice decimal.Decimal
	TaxRate       decimal.Decimal
	Discount      decimal.Decimal
	DiscountType  string // flat | percentage
}

// LineTotals campos derivados de una línea.
type LineTotals struct {
	TotalPrice    decimal.Decimal // quantity * sell_price
	TaxAmount     decimal.Decimal // total_price * tax_rate/100
	TotalDiscount decimal.Decimal // flat: literal; percentage: quantity * sell_price * discount/100
	Profit        decimal.Decimal // (sell_price - purchase_price) * quantity
}

// ComputeLine calcula los derivados de una línea en decimal de precisión fija.
func ComputeLine(in LineInput) (LineTotals, error) {
	if !money.IsPositive(in.Quantity) {
		return LineTotals{}, domain.ErrInvalidInput
	}
	if !money.IsNonNegative(in.SellPrice) || !money.IsNonNegative(in.PurchasePrice) ||
		!money.IsNonNegative(in.TaxRate) || !money.IsNonNegative(in.Discount) {
		return LineTotals{}, domain.ErrInvalidInput
	}

	total := money.Mul(in.Quantity, in.SellPrice)
	t := LineTotals{
		TotalPrice: total,
		TaxAmount:  money.PercentOf(total, in.TaxRate),
		Profit:     money.Mul(in.SellPrice.Sub(in.PurchasePrice), in.Quantity),
	}

	switch in.DiscountType {
	case entity.DiscountFlat, "":
		t.TotalDiscount = money.Round(in.Discount)
	case entity.DiscountPercentage:
		t.TotalDiscount = money.PercentOf(total, in.Discount)
	default:
		return LineTotals{}, domain.ErrInvalidInput
	}
	if t.TotalDiscount.GreaterThan(total) {
		return LineTotals{}, domain.ErrInvalidInput
	}
	return t, nil
}

// SaleTotals agregados de la cabecera a partir de las líneas ya calculadas.
type SaleTotals struct {
	Total    decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
}

// SumLines suma las líneas en la cabecera: total = Σ(total_price - total_discount),
// con impuestos y descuentos acumulados aparte.
func SumLines(lines []entity.SaleLine) SaleTotals {
	var s SaleTotals
	s.Total, s.Tax, s.Discount = decimal.Zero, decimal.Zero, decimal.Zero
	for i := range lines {
		s.Total = s.Total.Add(lines[i].TotalPrice).Sub(lines[i].TotalDiscount)
		s.Tax = s.Tax.Add(lines[i].TaxAmount)
		s.Discount = s.Discount.Add(lines[i].TotalDiscount)
	}
	s.Total = money.Round(s.Total)
	s.Tax = money.Round(s.Tax)
	s.Discount = money.Round(s.Discount)
	return s
}
