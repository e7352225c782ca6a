package sales

import (
	"context"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

// TxRunner transacción con los repositorios que una venta necesita mutar:
// diario, stock, cabecera/líneas y saldos. Commit o rollback como unidad.
type TxRunner interface {
	RunSale(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		invRepo repository.InventoryRepository,
		saleRepo repository.SaleRepository,
		dueRepo repository.CustomerDueRepository,
	) error) error
}

// Authorizer gate de autorización consultado antes de cada mutación.
type Authorizer interface {
	Authorize(ctx context.Context, actorID, action, storeID string) error
}

// Acciones del procesador de ventas.
const (
	ActionCreateSale = "sale:create"
	ActionRefundSale = "sale:refund"
	ActionCancelSale = "sale:cancel"
	ActionReadSale   = "sale:read"
)

// ReceiptGenerator puerto de generación del recibo de venta (PDF).
type ReceiptGenerator interface {
	GenerateSaleReceipt(ctx context.Context, sale *entity.Sale, store *entity.Store) ([]byte, error)
}
