package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/money"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

// ApplyMovementUseCase aplica movimientos de stock de forma transaccional sobre
// la fila (tienda, producto): bloqueo de fila, verificación de suficiencia para
// salidas, recálculo de derivados y append al diario en una sola unidad.
type ApplyMovementUseCase struct {
	txRunner    TxRunner
	gate        Authorizer
	storeRepo   repository.StoreRepository
	productRepo repository.ProductRepository
	invRepo     repository.InventoryRepository
	movRepo     repository.StockMovementRepository
}

// NewApplyMovementUseCase construye el caso de uso.
func NewApplyMovementUseCase(
	txRunner TxRunner,
	gate Authorizer,
	storeRepo repository.StoreRepository,
	productRepo repository.ProductRepository,
	invRepo repository.InventoryRepository,
	movRepo repository.StockMovementRepository,
) *ApplyMovementUseCase {
	return &ApplyMovementUseCase{
		txRunner:    txRunner,
		gate:        gate,
		storeRepo:   storeRepo,
		productRepo: productRepo,
		invRepo:     invRepo,
		movRepo:     movRepo,
	}
}

// ApplyMovementInput entrada para aplicar un movimiento.
// Direction es obligatoria para adjustment y transfer; implícita en el resto.
type ApplyMovementInput struct {
	StoreID      string
	ActorID      string
	ProductID    string
	MovementType string
	Direction    string
	Quantity     decimal.Decimal
	PricePerUnit *decimal.Decimal
	MarkDamaged  bool // ajuste por daño: mueve disponible a dañado
	Reference    string
	Notes        string
}

// ApplyMovement valida, autoriza, bloquea la fila (tienda, producto), aplica el
// crédito o débito y appendea exactamente un StockMovement, todo en una tx.
// Salidas con disponible insuficiente fallan con ErrInsufficientStock sin tocar nada.
func (uc *ApplyMovementUseCase) ApplyMovement(ctx context.Context, input ApplyMovementInput) (*entity.Inventory, error) {
	direction, err := resolveDirection(input)
	if err != nil {
		return nil, err
	}
	if err := uc.gate.Authorize(ctx, input.ActorID, ActionApplyMovement, input.StoreID); err != nil {
		return nil, err
	}

	store, err := uc.storeRepo.GetByID(input.StoreID)
	if err != nil || store == nil || !store.IsActive {
		return nil, domain.ErrNotFound
	}
	product, err := uc.productRepo.GetByID(input.ProductID)
	if err != nil || product == nil {
		return nil, domain.ErrNotFound
	}
	if product.StoreID != input.StoreID {
		return nil, domain.ErrForbidden
	}
	if !product.IsActive {
		return nil, domain.ErrInvalidInput
	}

	price := defaultPrice(product, direction)
	if input.PricePerUnit != nil {
		if input.PricePerUnit.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		price = *input.PricePerUnit
	}

	now := time.Now()
	var result *entity.Inventory
	err = uc.txRunner.Run(ctx, func(movRepo repository.StockMovementRepository, invRepo repository.InventoryRepository) error {
		inv, err := invRepo.GetForUpdate(input.StoreID, input.ProductID)
		if err != nil {
			return err
		}
		if err := applyToInventory(inv, direction, input.Quantity, input.MarkDamaged); err != nil {
			return err
		}
		inv.LastStockUpdate = now
		inv.UpdatedBy = input.ActorID
		inv.UpdatedAt = now
		inv.Recompute()
		if err := invRepo.Upsert(inv); err != nil {
			return err
		}

		mov := &entity.StockMovement{
			ID:           uuid.New().String(),
			ProductID:    input.ProductID,
			StoreID:      input.StoreID,
			MovementType: input.MovementType,
			Direction:    direction,
			Quantity:     money.Round(input.Quantity),
			UnitType:     product.UnitType,
			UnitValue:    product.UnitValue,
			PricePerUnit: money.Round(price),
			MovementDate: now,
			Reference:    input.Reference,
			Notes:        input.Notes,
			CreatedBy:    input.ActorID,
			CreatedAt:    now,
		}
		mov.ComputeTotal()
		if err := movRepo.Create(mov); err != nil {
			return err
		}
		result = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Snapshot instantánea actual de la fila (tienda, producto).
func (uc *ApplyMovementUseCase) Snapshot(ctx context.Context, actorID, storeID, productID string) (*entity.Inventory, error) {
	if err := uc.gate.Authorize(ctx, actorID, ActionReadInventory, storeID); err != nil {
		return nil, err
	}
	inv, err := uc.invRepo.Get(storeID, productID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

// LowStock filas en o bajo su punto de reorden, con cantidad sugerida de pedido.
func (uc *ApplyMovementUseCase) LowStock(ctx context.Context, actorID, storeID string) ([]*entity.Inventory, error) {
	if err := uc.gate.Authorize(ctx, actorID, ActionReadInventory, storeID); err != nil {
		return nil, err
	}
	return uc.invRepo.ListLowStock(storeID)
}

// ListMovements página del diario para pantallas de auditoría.
func (uc *ApplyMovementUseCase) ListMovements(ctx context.Context, actorID, storeID, productID string, from, to *time.Time, after *repository.MovementCursor, limit int) ([]*entity.StockMovement, *repository.MovementCursor, error) {
	if err := uc.gate.Authorize(ctx, actorID, ActionReadInventory, storeID); err != nil {
		return nil, nil, err
	}
	return uc.movRepo.ListByProduct(storeID, productID, from, to, after, limit)
}

func resolveDirection(input ApplyMovementInput) (string, error) {
	if !entity.ValidMovementType(input.MovementType) {
		return "", domain.ErrInvalidInput
	}
	if !money.IsPositive(input.Quantity) {
		return "", domain.ErrInvalidInput
	}
	direction := entity.DefaultDirection(input.MovementType)
	if direction == "" {
		direction = input.Direction
	}
	if input.MarkDamaged {
		if input.MovementType != entity.MovementAdjustment {
			return "", domain.ErrInvalidInput
		}
		direction = entity.DirectionDamage
	}
	switch direction {
	case entity.DirectionIn, entity.DirectionOut, entity.DirectionDamage:
		return direction, nil
	}
	return "", domain.ErrInvalidInput
}

// applyToInventory muta los campos fuente; el caller recalcula derivados.
// La verificación disponible >= cantidad y el débito son atómicos porque la
// fila está bloqueada por la transacción en curso.
func applyToInventory(inv *entity.Inventory, direction string, qty decimal.Decimal, _ bool) error {
	qty = money.Round(qty)
	switch direction {
	case entity.DirectionIn:
		inv.AvailableQuantity = money.Round(inv.AvailableQuantity.Add(qty))
	case entity.DirectionOut:
		if inv.AvailableQuantity.LessThan(qty) {
			return domain.ErrInsufficientStock
		}
		inv.AvailableQuantity = money.Round(inv.AvailableQuantity.Sub(qty))
	case entity.DirectionDamage:
		if inv.AvailableQuantity.LessThan(qty) {
			return domain.ErrInsufficientStock
		}
		inv.AvailableQuantity = money.Round(inv.AvailableQuantity.Sub(qty))
		inv.DamagedQuantity = money.Round(inv.DamagedQuantity.Add(qty))
	default:
		return domain.ErrInvalidInput
	}
	return nil
}

func defaultPrice(p *entity.Product, direction string) decimal.Decimal {
	if direction == entity.DirectionIn {
		return p.PurchasePrice
	}
	return p.SellPrice
}
