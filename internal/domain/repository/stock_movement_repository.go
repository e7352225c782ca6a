package repository

import (
	"time"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// MovementCursor clave de reanudación para el listado del diario: el consumidor
// guarda el último (movement_date, id) visto y puede reanudar desde ahí.
type MovementCursor struct {
	AfterDate time.Time
	AfterID   string
}

// StockMovementRepository puerto del diario de stock. Append-only: no existe
// update ni delete; las correcciones son movimientos compensatorios nuevos.
type StockMovementRepository interface {
	Create(m *entity.StockMovement) error
	// ListByProduct página del diario ordenada ascendente por (movement_date, id).
	// Devuelve el cursor para la página siguiente; nil al agotar la secuencia.
	ListByProduct(storeID, productID string, from, to *time.Time, after *MovementCursor, limit int) ([]*entity.StockMovement, *MovementCursor, error)
}
