package repository

import "github.com/jhoicas/pos-ledger/internal/domain/entity"

// InventoryRepository puerto para la fila de stock por (tienda, producto).
// Usado dentro de transacciones para garantizar consistencia.
type InventoryRepository interface {
	Get(storeID, productID string) (*entity.Inventory, error)
	// GetForUpdate bloquea la fila para la transacción en curso (SELECT FOR UPDATE
	// en Postgres, lock por clave en memoria). Espera acotada: ErrContention al vencer.
	GetForUpdate(storeID, productID string) (*entity.Inventory, error)
	Upsert(inv *entity.Inventory) error
	// ListLowStock filas con available <= reorder_level (reporte de reposición).
	ListLowStock(storeID string) ([]*entity.Inventory, error)
}
