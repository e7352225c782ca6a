package repository

import "github.com/jhoicas/pos-ledger/internal/domain/entity"

// DueCursor clave de reanudación para el historial de transacciones de un due.
type DueCursor struct {
	AfterSeq int64
}

// CustomerDueRepository puerto del ledger de saldos de clientes.
// Las transacciones son append-only; el due se recalcula, nunca se fija a mano.
type CustomerDueRepository interface {
	Create(due *entity.CustomerDue) error
	GetByID(storeID, id string) (*entity.CustomerDue, error)
	GetBySaleID(storeID, saleID string) (*entity.CustomerDue, error)
	// GetForUpdate serializa los posteos por due (pago + refund concurrentes no compiten).
	GetForUpdate(storeID, id string) (*entity.CustomerDue, error)
	Update(due *entity.CustomerDue) error
	AppendTransaction(tx *entity.DueTransaction) error
	// ListTransactions página ordenada ascendente por seq; cursor nil al agotar.
	ListTransactions(storeID, dueID string, after *DueCursor, limit int) ([]*entity.DueTransaction, *DueCursor, error)
}
