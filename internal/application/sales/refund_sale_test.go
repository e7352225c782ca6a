package sales_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/infrastructure/memory"
)

// vendeA crea una venta completada de qty unidades del producto A pagando paid.
func vendeA(t *testing.T, f *fixture, qty, paid int64) *entity.Sale {
	t.Helper()
	sale, err := f.uc.CreateSale(context.Background(), testActor, testStore, dto.CreateSaleRequest{
		Lines:      []dto.SaleLineRequest{{ProductID: testProductA, Quantity: decimal.NewFromInt(qty)}},
		PaidAmount: decimal.NewFromInt(paid),
	})
	require.NoError(t, err)
	return sale
}

// siembraPendiente inserta una venta en estado pending directo al engine, sin
// pasar por CreateSale (que siempre completa).
func siembraPendiente(t *testing.T, f *fixture) *entity.Sale {
	t.Helper()
	now := time.Now()
	sale := &entity.Sale{
		ID:            uuid.New().String(),
		StoreID:       testStore,
		TotalAmount:   decimal.NewFromInt(110),
		PaidAmount:    decimal.NewFromInt(110),
		SaleStatus:    entity.SaleStatusPending,
		PaymentMethod: entity.PayCash,
		SaleDate:      now,
		SaleType:      entity.SaleTypeCustomer,
		CreatedBy:     testActor,
		CreatedAt:     now,
		UpdatedAt:     now,
		Lines: []entity.SaleLine{{
			ID: uuid.New().String(), StoreID: testStore, ProductID: testProductA,
			Quantity: decimal.NewFromInt(1), SellPrice: decimal.NewFromInt(100),
			TotalPrice: decimal.NewFromInt(100), CreatedAt: now,
		}},
	}
	sale.RecomputePayment()
	require.NoError(t, memory.NewSaleRepository(f.engine, nil).Create(sale))
	return sale
}

// TestRefundSale_Completa refund total de una venta completada: stock
// restaurado, movimientos return en el diario, líneas marcadas y estado refunded.
func TestRefundSale_Completa(t *testing.T) {
	f := newFixture(t, 10, 0)
	sale := vendeA(t, f, 2, 220)
	require.True(t, f.available(t, testProductA).Equal(decimal.NewFromInt(8)))

	refunded, err := f.uc.RefundSale(context.Background(), testActor, testStore, sale.ID, decimal.Zero)
	require.NoError(t, err)

	assert.Equal(t, entity.SaleStatusRefunded, refunded.SaleStatus)
	assert.True(t, refunded.IsRefunded)
	assert.True(t, refunded.RefundAmount.Equal(decimal.NewFromInt(220)), "monto cero = refund por el total")
	require.NotNil(t, refunded.RefundedAt)
	assert.True(t, refunded.Lines[0].IsReturned)

	assert.True(t, f.available(t, testProductA).Equal(decimal.NewFromInt(10)), "stock restaurado")

	movs, _, err := memory.NewStockMovementRepository(f.engine, nil).ListByProduct(testStore, testProductA, nil, nil, nil, 10)
	require.NoError(t, err)
	require.Len(t, movs, 2, "salida de venta + entrada de return")
	assert.Equal(t, entity.MovementReturn, movs[1].MovementType)
	assert.Equal(t, entity.DirectionIn, movs[1].Direction)
	assert.Equal(t, sale.ID, movs[1].Reference)
}

// TestRefundSale_PendienteFalla refund sobre pending es transición inválida y
// no toca inventario.
func TestRefundSale_PendienteFalla(t *testing.T) {
	f := newFixture(t, 10, 0)
	sale := siembraPendiente(t, f)

	_, err := f.uc.RefundSale(context.Background(), testActor, testStore, sale.ID, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	assert.True(t, f.available(t, testProductA).Equal(decimal.NewFromInt(10)))
	kept, err := memory.NewSaleRepository(f.engine, nil).GetByID(testStore, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusPending, kept.SaleStatus)
}

// TestRefundSale_Parcial refund de la mitad del total devuelve la mitad de
// las unidades; la línea no queda marcada como devuelta por completo.
func TestRefundSale_Parcial(t *testing.T) {
	f := newFixture(t, 10, 0)
	sale := vendeA(t, f, 2, 220)

	refunded, err := f.uc.RefundSale(context.Background(), testActor, testStore, sale.ID, decimal.NewFromInt(110))
	require.NoError(t, err)

	assert.True(t, refunded.RefundAmount.Equal(decimal.NewFromInt(110)))
	assert.False(t, refunded.Lines[0].IsReturned)
	assert.True(t, refunded.Lines[0].ReturnAmount.Equal(decimal.NewFromInt(100)), "1 unidad a sell price 100")
	assert.True(t, f.available(t, testProductA).Equal(decimal.NewFromInt(9)), "regresó 1 de las 2 unidades")
}

// TestRefundSale_MontoMayorAlTotal refund por encima del total es inválido.
func TestRefundSale_MontoMayorAlTotal(t *testing.T) {
	f := newFixture(t, 10, 0)
	sale := vendeA(t, f, 1, 110)
	_, err := f.uc.RefundSale(context.Background(), testActor, testStore, sale.ID, decimal.NewFromInt(500))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// TestRefundSale_Doble la segunda devolución de la misma venta falla.
func TestRefundSale_Doble(t *testing.T) {
	f := newFixture(t, 10, 0)
	sale := vendeA(t, f, 1, 110)
	_, err := f.uc.RefundSale(context.Background(), testActor, testStore, sale.ID, decimal.Zero)
	require.NoError(t, err)

	_, err = f.uc.RefundSale(context.Background(), testActor, testStore, sale.ID, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.True(t, f.available(t, testProductA).Equal(decimal.NewFromInt(10)), "el stock no se re-acredita")
}

// TestRefundSale_ReBaseaSaldo una venta con saldo abierto que se devuelve
// postea un adjustment negativo que cierra el remanente.
func TestRefundSale_ReBaseaSaldo(t *testing.T) {
	f := newFixture(t, 0, 20)
	sale, err := f.uc.CreateSale(context.Background(), testActor, testStore, dto.CreateSaleRequest{
		Lines:        []dto.SaleLineRequest{{ProductID: testProductB, Quantity: decimal.NewFromInt(6)}},
		PaidAmount:   decimal.NewFromInt(100),
		CustomerName: "Cliente Uno",
	})
	require.NoError(t, err)
	require.NotEmpty(t, sale.CustomerDueID)

	_, err = f.uc.RefundSale(context.Background(), testActor, testStore, sale.ID, decimal.Zero)
	require.NoError(t, err)

	dueRepo := memory.NewCustomerDueRepository(f.engine, nil)
	due, err := dueRepo.GetByID(testStore, sale.CustomerDueID)
	require.NoError(t, err)
	assert.True(t, due.RemainingAmount.IsZero(), "el remanente quedó saldado por el refund")

	txs, _, err := dueRepo.ListTransactions(testStore, due.ID, nil, 10)
	require.NoError(t, err)
	require.Len(t, txs, 2, "apertura + adjustment del refund")
	assert.Equal(t, entity.DueTxAdjustment, txs[1].Type)
	assert.True(t, txs[1].Amount.Equal(decimal.NewFromInt(-200)))
	assert.Equal(t, int64(1), txs[1].Seq)
}

// TestCancelSale transiciones de cancelación: pending cancela, completed no.
func TestCancelSale(t *testing.T) {
	f := newFixture(t, 10, 0)

	pendiente := siembraPendiente(t, f)
	cancelled, err := f.uc.CancelSale(context.Background(), testActor, testStore, pendiente.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusCancelled, cancelled.SaleStatus)

	completada := vendeA(t, f, 1, 110)
	_, err = f.uc.CancelSale(context.Background(), testActor, testStore, completada.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// TestRefundSale_NoExiste venta inexistente es not found.
func TestRefundSale_NoExiste(t *testing.T) {
	f := newFixture(t, 10, 0)
	_, err := f.uc.RefundSale(context.Background(), testActor, testStore, "no-such", decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
