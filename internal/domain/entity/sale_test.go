package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// TestSale_MaquinaDeEstados pending -> {completed, cancelled};
// completed -> refunded; todo lo demás es inválido.
func TestSale_MaquinaDeEstados(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{entity.SaleStatusPending, entity.SaleStatusCompleted, true},
		{entity.SaleStatusPending, entity.SaleStatusCancelled, true},
		{entity.SaleStatusPending, entity.SaleStatusRefunded, false},
		{entity.SaleStatusCompleted, entity.SaleStatusRefunded, true},
		{entity.SaleStatusCompleted, entity.SaleStatusCancelled, false},
		{entity.SaleStatusCompleted, entity.SaleStatusPending, false},
		{entity.SaleStatusCancelled, entity.SaleStatusCompleted, false},
		{entity.SaleStatusRefunded, entity.SaleStatusCompleted, false},
	}
	for _, c := range cases {
		s := &entity.Sale{SaleStatus: c.from}
		err := s.Transition(c.to)
		if c.ok {
			assert.NoError(t, err, "%s -> %s debe ser legal", c.from, c.to)
			assert.Equal(t, c.to, s.SaleStatus)
		} else {
			assert.ErrorIs(t, err, domain.ErrInvalidTransition, "%s -> %s debe ser ilegal", c.from, c.to)
			assert.Equal(t, c.from, s.SaleStatus, "una transición ilegal no muta el estado")
		}
	}
}

// TestSale_RecomputePayment payment_status se deriva de paid vs total.
func TestSale_RecomputePayment(t *testing.T) {
	s := &entity.Sale{TotalAmount: decimal.NewFromInt(300), PaidAmount: decimal.NewFromInt(100)}
	s.RecomputePayment()
	assert.Equal(t, entity.PaymentPartiallyPaid, s.PaymentStatus)
	assert.True(t, s.RemainingAmount.Equal(decimal.NewFromInt(200)))

	s.PaidAmount = decimal.NewFromInt(300)
	s.RecomputePayment()
	assert.Equal(t, entity.PaymentCompleted, s.PaymentStatus)
	assert.True(t, s.RemainingAmount.IsZero())

	s.PaidAmount = decimal.Zero
	s.RecomputePayment()
	assert.Equal(t, entity.PaymentPending, s.PaymentStatus)
}

// TestCustomerDue_ApplyYRecompute remaining_amount es siempre total_due - total_paid.
func TestCustomerDue_ApplyYRecompute(t *testing.T) {
	d := &entity.CustomerDue{}
	d.Apply(&entity.DueTransaction{Type: entity.DueTxDue, Amount: decimal.NewFromInt(200)})
	assert.True(t, d.RemainingAmount.Equal(decimal.NewFromInt(200)))

	d.Apply(&entity.DueTransaction{Type: entity.DueTxPayment, Amount: decimal.NewFromInt(50)})
	assert.True(t, d.RemainingAmount.Equal(decimal.NewFromInt(150)))

	d.Apply(&entity.DueTransaction{Type: entity.DueTxRefund, Amount: decimal.NewFromInt(20)})
	assert.True(t, d.TotalPaid.Equal(decimal.NewFromInt(30)))
	assert.True(t, d.RemainingAmount.Equal(decimal.NewFromInt(170)))

	d.Apply(&entity.DueTransaction{Type: entity.DueTxAdjustment, Amount: decimal.NewFromInt(-70)})
	assert.True(t, d.TotalDue.Equal(decimal.NewFromInt(130)))
	assert.True(t, d.RemainingAmount.Equal(decimal.NewFromInt(100)))
}

// TestCustomerDue_WouldOverpay el pago que excede el saldo se detecta antes de aplicar.
func TestCustomerDue_WouldOverpay(t *testing.T) {
	d := &entity.CustomerDue{TotalDue: decimal.NewFromInt(100), TotalPaid: decimal.NewFromInt(80)}
	assert.False(t, d.WouldOverpay(decimal.NewFromInt(20)), "pagar exacto no es overpay")
	assert.True(t, d.WouldOverpay(decimal.RequireFromString("20.01")))
}

// TestInventory_Invariante quantity_in_stock = available + reserved + damaged
// después de cada Recompute.
func TestInventory_Invariante(t *testing.T) {
	inv := &entity.Inventory{
		AvailableQuantity: decimal.NewFromInt(7),
		ReservedQuantity:  decimal.NewFromInt(2),
		DamagedQuantity:   decimal.NewFromInt(1),
	}
	inv.Recompute()
	assert.True(t, inv.QuantityInStock.Equal(decimal.NewFromInt(10)))
	assert.True(t, inv.CheckInvariant())
	assert.False(t, inv.IsOutOfStock)

	inv.AvailableQuantity = decimal.Zero
	inv.Recompute()
	assert.True(t, inv.IsOutOfStock)
	assert.True(t, inv.CheckInvariant())
}

// TestStockMovement_SignedQuantity out y damage restan disponible, in suma.
func TestStockMovement_SignedQuantity(t *testing.T) {
	m := &entity.StockMovement{Direction: entity.DirectionIn, Quantity: decimal.NewFromInt(5)}
	assert.True(t, m.SignedQuantity().Equal(decimal.NewFromInt(5)))

	m.Direction = entity.DirectionOut
	assert.True(t, m.SignedQuantity().Equal(decimal.NewFromInt(-5)))

	m.Direction = entity.DirectionDamage
	assert.True(t, m.SignedQuantity().Equal(decimal.NewFromInt(-5)))
}

// TestStockMovement_DireccionPorDefecto purchase/return entran, sale/internal_use salen,
// adjustment y transfer exigen dirección explícita.
func TestStockMovement_DireccionPorDefecto(t *testing.T) {
	assert.Equal(t, entity.DirectionIn, entity.DefaultDirection(entity.MovementPurchase))
	assert.Equal(t, entity.DirectionIn, entity.DefaultDirection(entity.MovementReturn))
	assert.Equal(t, entity.DirectionOut, entity.DefaultDirection(entity.MovementSale))
	assert.Equal(t, entity.DirectionOut, entity.DefaultDirection(entity.MovementInternalUse))
	assert.Equal(t, "", entity.DefaultDirection(entity.MovementAdjustment))
	assert.Equal(t, "", entity.DefaultDirection(entity.MovementTransfer))
}
