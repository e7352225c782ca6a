package inventory

import (
	"context"

	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios
// atados a esa tx. La mutación de stock y el append al diario son una unidad
// todo-o-nada: si cualquiera falla, ambos quedan sin efecto.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		invRepo repository.InventoryRepository,
	) error) error
}

// Authorizer gate de autorización consultado antes de cada mutación.
type Authorizer interface {
	Authorize(ctx context.Context, actorID, action, storeID string) error
}

// Acciones del ledger de inventario.
const (
	ActionApplyMovement = "inventory:move"
	ActionReadInventory = "inventory:read"
)
