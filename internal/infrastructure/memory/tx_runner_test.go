package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
	"github.com/jhoicas/pos-ledger/internal/infrastructure/memory"
)

func seedEngine(wait time.Duration) *memory.Engine {
	e := memory.NewEngineWithLockWait(wait)
	e.SeedStore(&entity.Store{ID: "s1", Name: "Tienda", IsActive: true})
	e.SeedProduct(&entity.Product{ID: "p1", StoreID: "s1", SKU: "X1", Name: "Producto", IsActive: true})
	e.SeedInventory(&entity.Inventory{
		StoreID: "s1", ProductID: "p1",
		AvailableQuantity: decimal.NewFromInt(10),
	})
	return e
}

// TestTxRunner_ContencionDeFila mientras una tx retiene el lock de la fila,
// otra que lo quiere recibe ErrContention reintentable dentro de la espera acotada.
func TestTxRunner_ContencionDeFila(t *testing.T) {
	e := seedEngine(50 * time.Millisecond)
	runner := memory.NewTxRunner(e)

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- runner.Run(context.Background(), func(
			_ repository.StockMovementRepository,
			invRepo repository.InventoryRepository,
		) error {
			if _, err := invRepo.GetForUpdate("s1", "p1"); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()

	<-locked
	err := runner.Run(context.Background(), func(
		_ repository.StockMovementRepository,
		invRepo repository.InventoryRepository,
	) error {
		_, err := invRepo.GetForUpdate("s1", "p1")
		return err
	})
	require.ErrorIs(t, err, domain.ErrContention)
	assert.True(t, domain.Retryable(err), "la contención se reporta como reintentable")

	close(release)
	require.NoError(t, <-done)
}

// TestTxRunner_RollbackDescarta si fn falla, nada del buffer llega al motor.
func TestTxRunner_RollbackDescarta(t *testing.T) {
	e := seedEngine(memory.DefaultLockWait)
	runner := memory.NewTxRunner(e)

	boom := errors.New("boom")
	err := runner.Run(context.Background(), func(
		movRepo repository.StockMovementRepository,
		invRepo repository.InventoryRepository,
	) error {
		inv, err := invRepo.GetForUpdate("s1", "p1")
		if err != nil {
			return err
		}
		inv.AvailableQuantity = decimal.NewFromInt(3)
		inv.Recompute()
		if err := invRepo.Upsert(inv); err != nil {
			return err
		}
		if err := movRepo.Create(&entity.StockMovement{
			ID: "m1", ProductID: "p1", StoreID: "s1",
			MovementType: entity.MovementAdjustment, Direction: entity.DirectionOut,
			Quantity: decimal.NewFromInt(7), MovementDate: time.Now(),
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	inv, err := memory.NewInventoryRepository(e, nil).Get("s1", "p1")
	require.NoError(t, err)
	assert.True(t, inv.AvailableQuantity.Equal(decimal.NewFromInt(10)), "el stock sigue intacto")

	movs, _, err := memory.NewStockMovementRepository(e, nil).ListByProduct("s1", "p1", nil, nil, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, movs, "el diario no registró nada")
}

// TestTxRunner_CommitAtomico el buen camino publica stock y diario juntos y
// suelta el lock para la siguiente tx.
func TestTxRunner_CommitAtomico(t *testing.T) {
	e := seedEngine(memory.DefaultLockWait)
	runner := memory.NewTxRunner(e)

	run := func(qty int64) error {
		return runner.Run(context.Background(), func(
			movRepo repository.StockMovementRepository,
			invRepo repository.InventoryRepository,
		) error {
			inv, err := invRepo.GetForUpdate("s1", "p1")
			if err != nil {
				return err
			}
			inv.AvailableQuantity = inv.AvailableQuantity.Sub(decimal.NewFromInt(qty))
			inv.Recompute()
			if err := invRepo.Upsert(inv); err != nil {
				return err
			}
			return movRepo.Create(&entity.StockMovement{
				ID: "m-" + time.Now().Format(time.RFC3339Nano), ProductID: "p1", StoreID: "s1",
				MovementType: entity.MovementSale, Direction: entity.DirectionOut,
				Quantity: decimal.NewFromInt(qty), MovementDate: time.Now(),
			})
		})
	}

	require.NoError(t, run(4))
	require.NoError(t, run(2), "el lock quedó libre tras el primer commit")

	inv, err := memory.NewInventoryRepository(e, nil).Get("s1", "p1")
	require.NoError(t, err)
	assert.True(t, inv.AvailableQuantity.Equal(decimal.NewFromInt(4)))

	movs, _, err := memory.NewStockMovementRepository(e, nil).ListByProduct("s1", "p1", nil, nil, nil, 10)
	require.NoError(t, err)
	assert.Len(t, movs, 2)
}

// TestTxRunner_RelockMismaTx re-tomar el lock dentro de la misma tx no bloquea.
func TestTxRunner_RelockMismaTx(t *testing.T) {
	e := seedEngine(50 * time.Millisecond)
	runner := memory.NewTxRunner(e)

	err := runner.Run(context.Background(), func(
		_ repository.StockMovementRepository,
		invRepo repository.InventoryRepository,
	) error {
		if _, err := invRepo.GetForUpdate("s1", "p1"); err != nil {
			return err
		}
		_, err := invRepo.GetForUpdate("s1", "p1")
		return err
	})
	require.NoError(t, err)
}

// TestTxRunner_DuplicadoDeDueTx la unicidad (due, tipo, fecha, seq) corta el
// segundo append idéntico.
func TestTxRunner_DuplicadoDeDueTx(t *testing.T) {
	e := seedEngine(memory.DefaultLockWait)
	repo := memory.NewCustomerDueRepository(e, nil)

	now := time.Now()
	due := &entity.CustomerDue{
		ID: "d1", SaleID: "sale-1", StoreID: "s1",
		TotalDue: decimal.NewFromInt(100), CreatedAt: now, UpdatedAt: now,
	}
	due.Recompute()
	require.NoError(t, repo.Create(due))

	tx := &entity.DueTransaction{
		ID: "t1", CustomerDueID: "d1", StoreID: "s1",
		Type: entity.DueTxPayment, Amount: decimal.NewFromInt(10),
		TransactionDate: now, Seq: 0, CreatedAt: now,
	}
	require.NoError(t, repo.AppendTransaction(tx))

	dup := *tx
	dup.ID = "t2"
	err := repo.AppendTransaction(&dup)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}
