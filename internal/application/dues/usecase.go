// Package dues implementa el ledger de saldos de clientes: transacciones
// append-only por due con recálculo del saldo pendiente en cada posteo.
package dues

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

// TxRunner transacción sobre el repositorio de dues.
type TxRunner interface {
	RunDue(ctx context.Context, fn func(dueRepo repository.CustomerDueRepository) error) error
}

// Authorizer gate de autorización consultado antes de cada mutación.
type Authorizer interface {
	Authorize(ctx context.Context, actorID, action, storeID string) error
}

// Acciones del ledger de saldos.
const (
	ActionPostDueTx = "due:post"
	ActionReadDue   = "due:read"
)

// DueUseCase postea transacciones sobre saldos pendientes, serializado por due:
// el bloqueo de fila evita que un pago y un refund concurrentes se pisen.
type DueUseCase struct {
	txRunner TxRunner
	gate     Authorizer
	dueRepo  repository.CustomerDueRepository
}

// NewDueUseCase construye el caso de uso.
func NewDueUseCase(txRunner TxRunner, gate Authorizer, dueRepo repository.CustomerDueRepository) *DueUseCase {
	return &DueUseCase{txRunner: txRunner, gate: gate, dueRepo: dueRepo}
}

// PostTransaction postea una transacción y recalcula remaining_amount.
// payment que dejaría total_paid > total_due falla con ErrOverpayment: solo
// adjustment puede re-basar el saldo. Dos eventos del mismo tipo en el mismo
// instante se desambiguan con el contador monotónico por due, nunca se pierden.
func (uc *DueUseCase) PostTransaction(ctx context.Context, actorID, storeID, dueID, txType string, amount decimal.Decimal, remarks string) (*entity.CustomerDue, error) {
	if err := uc.gate.Authorize(ctx, actorID, ActionPostDueTx, storeID); err != nil {
		return nil, err
	}
	if !entity.ValidDueTxType(txType) {
		return nil, domain.ErrInvalidInput
	}
	// adjustment admite delta con signo; el resto exige monto positivo.
	if txType == entity.DueTxAdjustment {
		if amount.IsZero() {
			return nil, domain.ErrInvalidInput
		}
	} else if !money.IsPositive(amount) {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	var result *entity.CustomerDue
	err := uc.txRunner.RunDue(ctx, func(dueRepo repository.CustomerDueRepository) error {
		due, err := dueRepo.GetForUpdate(storeID, dueID)
		if err != nil {
			return err
		}
		if due == nil {
			return domain.ErrNotFound
		}

		switch txType {
		case entity.DueTxPayment:
			if due.WouldOverpay(amount) {
				return domain.ErrOverpayment
			}
		case entity.DueTxRefund:
			if amount.GreaterThan(due.TotalPaid) {
				return domain.ErrInvalidInput
			}
		case entity.DueTxAdjustment:
			if due.TotalDue.Add(amount).LessThan(decimal.Zero) {
				return domain.ErrInvalidInput
			}
		}

		tx := &entity.DueTransaction{
			ID:              uuid.New().String(),
			CustomerDueID:   due.ID,
			StoreID:         storeID,
			Type:            txType,
			Amount:          money.Round(amount),
			Remarks:         remarks,
			TransactionDate: now,
			Seq:             due.NextSeq,
			CreatedBy:       actorID,
			CreatedAt:       now,
		}
		due.NextSeq++
		due.Apply(tx)
		due.UpdatedAt = now

		if err := dueRepo.AppendTransaction(tx); err != nil {
			return err
		}
		if err := dueRepo.Update(due); err != nil {
			return err
		}
		result = due
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetDue lectura del estado actual de un saldo.
func (uc *DueUseCase) GetDue(ctx context.Context, actorID, storeID, dueID string) (*entity.CustomerDue, error) {
	if err := uc.gate.Authorize(ctx, actorID, ActionReadDue, storeID); err != nil {
		return nil, err
	}
	due, err := uc.dueRepo.GetByID(storeID, dueID)
	if err != nil {
		return nil, err
	}
	if due == nil {
		return nil, domain.ErrNotFound
	}
	return due, nil
}

// ListTransactions página del historial para pantallas de auditoría.
func (uc *DueUseCase) ListTransactions(ctx context.Context, actorID, storeID, dueID string, after *repository.DueCursor, limit int) ([]*entity.DueTransaction, *repository.DueCursor, error) {
	if err := uc.gate.Authorize(ctx, actorID, ActionReadDue, storeID); err != nil {
		return nil, nil, err
	}
	return uc.dueRepo.ListTransactions(storeID, dueID, after, limit)
}
