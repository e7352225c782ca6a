package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/domain/money"
)

// Inventory representa el stock de un producto en una tienda (una fila por producto+tienda).
// QuantityInStock e IsOutOfStock son derivados: se recalculan con Recompute después de
// cada mutación y nunca se aceptan como entrada del caller.
type Inventory struct {
	ID                string
	ProductID         string
	StoreID           string
	QuantityInStock   decimal.Decimal // derivado: available + reserved + damaged
	AvailableQuantity decimal.Decimal
	ReservedQuantity  decimal.Decimal
	DamagedQuantity   decimal.Decimal
	ReorderLevel      decimal.Decimal
	ReorderQuantity   decimal.Decimal
	IsOutOfStock      bool // derivado: available <= 0
	LastStockUpdate   time.Time
	UpdatedBy         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Recompute recalcula los campos derivados a partir de los campos fuente.
// Único punto de cálculo: la invariante quantity_in_stock = available + reserved + damaged
// se mantiene porque nadie más escribe QuantityInStock.
func (i *Inventory) Recompute() {
	i.QuantityInStock = money.Round(i.AvailableQuantity.Add(i.ReservedQuantity).Add(i.DamagedQuantity))
	i.IsOutOfStock = !i.AvailableQuantity.GreaterThan(decimal.Zero)
}

// CheckInvariant verifica la invariante de stock; útil en tests y replay.
func (i *Inventory) CheckInvariant() bool {
	sum := i.AvailableQuantity.Add(i.ReservedQuantity).Add(i.DamagedQuantity)
	return i.QuantityInStock.Equal(money.Round(sum))
}

// NeedsReorder true si el disponible cayó al punto de reorden o por debajo.
func (i *Inventory) NeedsReorder() bool {
	return money.IsPositive(i.ReorderLevel) && !i.AvailableQuantity.GreaterThan(i.ReorderLevel)
}
