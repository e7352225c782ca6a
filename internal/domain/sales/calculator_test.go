package sales_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/sales"
)

// TestComputeLine_TresUnidades 3 unidades a 100 con tax 10%:
// total_price=300, tax_amount=30.
func TestComputeLine_TresUnidades(t *testing.T) {
	got, err := sales.ComputeLine(sales.LineInput{
		Quantity:      decimal.NewFromInt(3),
		SellPrice:     decimal.NewFromInt(100),
		PurchasePrice: decimal.NewFromInt(60),
		TaxRate:       decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	assert.True(t, got.TotalPrice.Equal(decimal.NewFromInt(300)), "total_price = 3 * 100")
	assert.True(t, got.TaxAmount.Equal(decimal.NewFromInt(30)), "tax_amount = 300 * 10%%")
	assert.True(t, got.Profit.Equal(decimal.NewFromInt(120)), "profit = (100-60) * 3")
	assert.True(t, got.TotalDiscount.IsZero())
}

// TestComputeLine_DescuentoFlat el descuento flat se toma literal.
func TestComputeLine_DescuentoFlat(t *testing.T) {
	got, err := sales.ComputeLine(sales.LineInput{
		Quantity:     decimal.NewFromInt(2),
		SellPrice:    decimal.NewFromInt(50),
		TaxRate:      decimal.Zero,
		Discount:     decimal.NewFromInt(15),
		DiscountType: entity.DiscountFlat,
	})
	require.NoError(t, err)
	assert.True(t, got.TotalDiscount.Equal(decimal.NewFromInt(15)))
}

// TestComputeLine_DescuentoPorcentual percentage aplica sobre quantity * sell_price.
func TestComputeLine_DescuentoPorcentual(t *testing.T) {
	got, err := sales.ComputeLine(sales.LineInput{
		Quantity:     decimal.NewFromInt(4),
		SellPrice:    decimal.NewFromInt(25),
		Discount:     decimal.NewFromInt(10),
		DiscountType: entity.DiscountPercentage,
	})
	require.NoError(t, err)
	assert.True(t, got.TotalDiscount.Equal(decimal.NewFromInt(10)), "10%% de 100")
}

// TestComputeLine_Invalidos cantidad no positiva, negativos y descuento mayor
// al total fallan con ErrInvalidInput.
func TestComputeLine_Invalidos(t *testing.T) {
	cases := []sales.LineInput{
		{Quantity: decimal.Zero, SellPrice: decimal.NewFromInt(10)},
		{Quantity: decimal.NewFromInt(-1), SellPrice: decimal.NewFromInt(10)},
		{Quantity: decimal.NewFromInt(1), SellPrice: decimal.NewFromInt(-10)},
		{Quantity: decimal.NewFromInt(1), SellPrice: decimal.NewFromInt(10), Discount: decimal.NewFromInt(-1)},
		{Quantity: decimal.NewFromInt(1), SellPrice: decimal.NewFromInt(10), Discount: decimal.NewFromInt(11)},
		{Quantity: decimal.NewFromInt(1), SellPrice: decimal.NewFromInt(10), DiscountType: "otro"},
	}
	for _, in := range cases {
		_, err := sales.ComputeLine(in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

// TestSumLines_Cabecera total = Σ(total_price - total_discount), impuestos aparte.
func TestSumLines_Cabecera(t *testing.T) {
	lines := []entity.SaleLine{
		{TotalPrice: decimal.NewFromInt(300), TaxAmount: decimal.NewFromInt(30), TotalDiscount: decimal.Zero},
		{TotalPrice: decimal.NewFromInt(100), TaxAmount: decimal.NewFromInt(5), TotalDiscount: decimal.NewFromInt(20)},
	}
	got := sales.SumLines(lines)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(380)))
	assert.True(t, got.Tax.Equal(decimal.NewFromInt(35)))
	assert.True(t, got.Discount.Equal(decimal.NewFromInt(20)))
}
