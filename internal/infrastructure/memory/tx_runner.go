package memory

import (
	"context"

	"github.com/jhoicas/pos-ledger/internal/application/dues"
	"github.com/jhoicas/pos-ledger/internal/application/inventory"
	"github.com/jhoicas/pos-ledger/internal/application/sales"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)
var _ sales.TxRunner = (*TxRunner)(nil)
var _ dues.TxRunner = (*TxRunner)(nil)

// TxRunner transacciones en memoria: escrituras en buffer, publicadas de forma
// atómica al commit. Los locks de fila tomados durante la tx se sueltan al
// terminar, con commit o sin él.
type TxRunner struct {
	e *Engine
}

// NewTxRunner construye el runner sobre el motor.
func NewTxRunner(e *Engine) *TxRunner {
	return &TxRunner{e: e}
}

// Run transacción del ledger de inventario: diario + stock.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	invRepo repository.InventoryRepository,
) error) error {
	t := newTxn(r.e)
	defer t.finish()

	if err := fn(NewStockMovementRepository(r.e, t), NewInventoryRepository(r.e, t)); err != nil {
		return err
	}
	t.commit()
	return nil
}

// RunSale transacción de ventas: diario + stock + venta + saldos.
func (r *TxRunner) RunSale(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	invRepo repository.InventoryRepository,
	saleRepo repository.SaleRepository,
	dueRepo repository.CustomerDueRepository,
) error) error {
	t := newTxn(r.e)
	defer t.finish()

	err := fn(
		NewStockMovementRepository(r.e, t),
		NewInventoryRepository(r.e, t),
		NewSaleRepository(r.e, t),
		NewCustomerDueRepository(r.e, t),
	)
	if err != nil {
		return err
	}
	t.commit()
	return nil
}

// RunDue transacción del ledger de saldos.
func (r *TxRunner) RunDue(ctx context.Context, fn func(dueRepo repository.CustomerDueRepository) error) error {
	t := newTxn(r.e)
	defer t.finish()

	if err := fn(NewCustomerDueRepository(r.e, t)); err != nil {
		return err
	}
	t.commit()
	return nil
}

// txn buffer de escrituras de una transacción más los locks de fila que tomó.
type txn struct {
	e         *Engine
	held      map[string]bool
	heldOrder []string
	committed bool

	invWrites   map[string]*entity.Inventory
	movWrites   []*entity.StockMovement
	saleWrites  map[string]*entity.Sale
	dueWrites   map[string]*entity.CustomerDue
	dueTxWrites []*entity.DueTransaction
}

func newTxn(e *Engine) *txn {
	return &txn{
		e:          e,
		held:       make(map[string]bool),
		invWrites:  make(map[string]*entity.Inventory),
		saleWrites: make(map[string]*entity.Sale),
		dueWrites:  make(map[string]*entity.CustomerDue),
	}
}

// lockRow toma el lock de la fila con espera acotada. Re-tomar un lock ya
// tomado por esta misma tx es un no-op, igual que FOR UPDATE en la misma tx.
func (t *txn) lockRow(key string) error {
	if t.held[key] {
		return nil
	}
	if err := t.e.locks.acquire(key, t.e.lockWait); err != nil {
		return err
	}
	t.held[key] = true
	t.heldOrder = append(t.heldOrder, key)
	return nil
}

// commit publica el buffer de escrituras bajo el lock global del motor.
func (t *txn) commit() {
	e := t.e
	e.mu.Lock()
	for key, inv := range t.invWrites {
		e.inventories[key] = cloneInventory(inv)
	}
	for _, m := range t.movWrites {
		e.movements = append(e.movements, cloneMovement(m))
	}
	for id, s := range t.saleWrites {
		e.sales[id] = cloneSale(s)
	}
	for id, d := range t.dueWrites {
		e.dues[id] = cloneDue(d)
	}
	for _, tx := range t.dueTxWrites {
		e.dueTxs = append(e.dueTxs, cloneDueTx(tx))
		e.dueTxKeys[dueTxKey(tx)] = true
	}
	e.mu.Unlock()
	t.committed = true
}

// finish suelta los locks; sin commit previo el buffer simplemente se descarta.
func (t *txn) finish() {
	for i := len(t.heldOrder) - 1; i >= 0; i-- {
		t.e.locks.release(t.heldOrder[i])
	}
	t.held = nil
	t.heldOrder = nil
}
