package sales

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/money"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

// RefundSale devuelve una venta completada: postea movimientos compensatorios
// de tipo return por línea (prorrateados por el monto, restauración total con
// refund completo), marca los campos de refund y transiciona a refunded.
// Solo es legal desde completed; cualquier otro estado es ErrInvalidTransition.
func (uc *SalesUseCase) RefundSale(ctx context.Context, actorID, storeID, saleID string, amount decimal.Decimal) (*entity.Sale, error) {
	if err := uc.gate.Authorize(ctx, actorID, ActionRefundSale, storeID); err != nil {
		return nil, err
	}
	if amount.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	var result *entity.Sale
	err := uc.txRunner.RunSale(ctx, func(
		movRepo repository.StockMovementRepository,
		invRepo repository.InventoryRepository,
		saleRepo repository.SaleRepository,
		dueRepo repository.CustomerDueRepository,
	) error {
		sale, err := saleRepo.GetForUpdate(storeID, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		if !sale.CanTransition(entity.SaleStatusRefunded) {
			return domain.ErrInvalidTransition
		}

		// Monto cero = refund total.
		if amount.IsZero() {
			amount = sale.TotalAmount
		}
		if amount.GreaterThan(sale.TotalAmount) {
			return domain.ErrInvalidInput
		}
		full := amount.Equal(sale.TotalAmount)
		ratio := decimal.NewFromInt(1)
		if !full && money.IsPositive(sale.TotalAmount) {
			ratio = amount.Div(sale.TotalAmount)
		}

		ordered := make([]*entity.SaleLine, len(sale.Lines))
		for i := range sale.Lines {
			ordered[i] = &sale.Lines[i]
		}
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].ProductID < ordered[j].ProductID })

		for _, line := range ordered {
			returnQty := line.Quantity
			if !full {
				returnQty = money.Round(line.Quantity.Mul(ratio))
			}
			if !money.IsPositive(returnQty) {
				continue
			}
			inv, err := invRepo.GetForUpdate(storeID, line.ProductID)
			if err != nil {
				return err
			}
			inv.AvailableQuantity = money.Round(inv.AvailableQuantity.Add(returnQty))
			inv.LastStockUpdate = now
			inv.UpdatedBy = actorID
			inv.UpdatedAt = now
			inv.Recompute()
			if err := invRepo.Upsert(inv); err != nil {
				return err
			}
			mov := &entity.StockMovement{
				ID:           uuid.New().String(),
				ProductID:    line.ProductID,
				StoreID:      storeID,
				MovementType: entity.MovementReturn,
				Direction:    entity.DirectionIn,
				Quantity:     returnQty,
				PricePerUnit: line.SellPrice,
				MovementDate: now,
				Reference:    saleID,
				CreatedBy:    actorID,
				CreatedAt:    now,
			}
			mov.ComputeTotal()
			if err := movRepo.Create(mov); err != nil {
				return err
			}
			line.IsReturned = full
			line.ReturnAmount = money.Round(line.ReturnAmount.Add(money.Mul(returnQty, line.SellPrice)))
		}

		if err := sale.Transition(entity.SaleStatusRefunded); err != nil {
			return err
		}
		sale.IsRefunded = true
		sale.RefundAmount = money.Round(amount)
		sale.RefundedAt = &now
		sale.UpdatedAt = now
		if err := saleRepo.Update(sale); err != nil {
			return err
		}

		// Si la venta abrió un saldo, se re-basa por el monto devuelto.
		if sale.CustomerDueID != "" {
			due, err := dueRepo.GetForUpdate(storeID, sale.CustomerDueID)
			if err != nil {
				return err
			}
			if due != nil && money.IsPositive(due.RemainingAmount) {
				delta := decimal.Min(due.RemainingAmount, amount)
				adj := &entity.DueTransaction{
					ID:              uuid.New().String(),
					CustomerDueID:   due.ID,
					StoreID:         storeID,
					Type:            entity.DueTxAdjustment,
					Amount:          delta.Neg(),
					Remarks:         "refund de venta " + saleID,
					TransactionDate: now,
					Seq:             due.NextSeq,
					CreatedBy:       actorID,
					CreatedAt:       now,
				}
				due.NextSeq++
				due.Apply(adj)
				due.UpdatedAt = now
				if err := dueRepo.AppendTransaction(adj); err != nil {
					return err
				}
				if err := dueRepo.Update(due); err != nil {
					return err
				}
			}
		}

		result = sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CancelSale cancela una venta pendiente. Pending aún no posteó movimientos,
// así que la cancelación es una transición pura de estado.
func (uc *SalesUseCase) CancelSale(ctx context.Context, actorID, storeID, saleID string) (*entity.Sale, error) {
	if err := uc.gate.Authorize(ctx, actorID, ActionCancelSale, storeID); err != nil {
		return nil, err
	}
	now := time.Now()
	var result *entity.Sale
	err := uc.txRunner.RunSale(ctx, func(
		_ repository.StockMovementRepository,
		_ repository.InventoryRepository,
		saleRepo repository.SaleRepository,
		_ repository.CustomerDueRepository,
	) error {
		sale, err := saleRepo.GetForUpdate(storeID, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		if err := sale.Transition(entity.SaleStatusCancelled); err != nil {
			return err
		}
		sale.UpdatedAt = now
		if err := saleRepo.Update(sale); err != nil {
			return err
		}
		result = sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
