package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/money"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

// replayPageSize tamaño de página al plegar el diario.
const replayPageSize = 500

// RebuildSnapshot pliega el diario completo de (tienda, producto) desde cero y
// reconstruye las cantidades. Por la propiedad de replay idempotente, el
// resultado debe coincidir exactamente con la fila materializada.
func (uc *ApplyMovementUseCase) RebuildSnapshot(ctx context.Context, actorID, storeID, productID string) (*entity.Inventory, error) {
	if err := uc.gate.Authorize(ctx, actorID, ActionReadInventory, storeID); err != nil {
		return nil, err
	}
	return FoldJournal(uc.movRepo, storeID, productID)
}

// FoldJournal reducer puro sobre el diario ordenado: empezando de cero,
// acumula cada movimiento y recalcula los derivados al final.
func FoldJournal(movRepo repository.StockMovementRepository, storeID, productID string) (*entity.Inventory, error) {
	inv := &entity.Inventory{
		ProductID:         productID,
		StoreID:           storeID,
		AvailableQuantity: decimal.Zero,
		ReservedQuantity:  decimal.Zero,
		DamagedQuantity:   decimal.Zero,
	}
	var after *repository.MovementCursor
	for {
		page, next, err := movRepo.ListByProduct(storeID, productID, nil, nil, after, replayPageSize)
		if err != nil {
			return nil, err
		}
		for _, m := range page {
			inv.AvailableQuantity = money.Round(inv.AvailableQuantity.Add(m.SignedQuantity()))
			if m.Direction == entity.DirectionDamage {
				inv.DamagedQuantity = money.Round(inv.DamagedQuantity.Add(m.Quantity))
			}
			inv.LastStockUpdate = m.MovementDate
		}
		if next == nil {
			break
		}
		after = next
	}
	inv.Recompute()
	return inv, nil
}
