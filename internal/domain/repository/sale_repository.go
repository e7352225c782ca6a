package repository

import "github.com/jhoicas/pos-ledger/internal/domain/entity"

// SaleRepository puerto de ventas. Create persiste cabecera y líneas como una
// unidad; Update solo toca cabecera (estado, refund) y marcas de devolución de
// línea; las líneas son inmutables fuera de pending.
type SaleRepository interface {
	Create(sale *entity.Sale) error
	GetByID(storeID, id string) (*entity.Sale, error)
	// GetForUpdate bloquea la cabecera para transiciones de estado concurrentes.
	GetForUpdate(storeID, id string) (*entity.Sale, error)
	Update(sale *entity.Sale) error
}
