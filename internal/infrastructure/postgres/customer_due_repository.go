package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var _ repository.CustomerDueRepository = (*CustomerDueRepo)(nil)

// CustomerDueRepo implementación de CustomerDueRepository sobre PostgreSQL.
// Las transacciones del ledger solo se insertan, nunca se actualizan ni borran.
type CustomerDueRepo struct {
	q Querier
}

// NewCustomerDueRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerDueRepository(q Querier) *CustomerDueRepo {
	return &CustomerDueRepo{q: q}
}

const dueColumns = `id, sale_id, store_id, customer_name, customer_contact, customer_address,
	total_due, total_paid, remaining_amount, remarks, next_seq, created_at, updated_at`

// Create persiste un saldo pendiente nuevo.
func (r *CustomerDueRepo) Create(due *entity.CustomerDue) error {
	if due.ID == "" {
		due.ID = uuid.New().String()
	}
	query := `
		INSERT INTO customer_dues (` + dueColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())`
	_, err := r.q.Exec(context.Background(), query,
		due.ID, due.SaleID, due.StoreID, due.CustomerName, due.CustomerContact,
		due.CustomerAddress, due.TotalDue, due.TotalPaid, due.RemainingAmount,
		due.Remarks, due.NextSeq,
	)
	if err != nil {
		return translateError(fmt.Errorf("create customer due: %w", err))
	}
	return nil
}

// GetByID obtiene un saldo dentro de la tienda indicada.
func (r *CustomerDueRepo) GetByID(storeID, id string) (*entity.CustomerDue, error) {
	query := `SELECT ` + dueColumns + ` FROM customer_dues WHERE store_id = $1 AND id = $2`
	return r.scanOne(query, storeID, id)
}

// GetBySaleID obtiene el saldo asociado a una venta a crédito.
func (r *CustomerDueRepo) GetBySaleID(storeID, saleID string) (*entity.CustomerDue, error) {
	query := `SELECT ` + dueColumns + ` FROM customer_dues WHERE store_id = $1 AND sale_id = $2`
	return r.scanOne(query, storeID, saleID)
}

// GetForUpdate bloquea el saldo (SELECT FOR UPDATE). El posteo concurrente de
// pago y refund sobre el mismo due se serializa aquí.
func (r *CustomerDueRepo) GetForUpdate(storeID, id string) (*entity.CustomerDue, error) {
	query := `SELECT ` + dueColumns + ` FROM customer_dues WHERE store_id = $1 AND id = $2 FOR UPDATE`
	return r.scanOne(query, storeID, id)
}

func (r *CustomerDueRepo) scanOne(query string, args ...any) (*entity.CustomerDue, error) {
	var d entity.CustomerDue
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&d.ID, &d.SaleID, &d.StoreID, &d.CustomerName, &d.CustomerContact,
		&d.CustomerAddress, &d.TotalDue, &d.TotalPaid, &d.RemainingAmount,
		&d.Remarks, &d.NextSeq, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, translateError(fmt.Errorf("get customer due: %w", err))
	}
	return &d, nil
}

// Update persiste los agregados recalculados del saldo (total_due, total_paid,
// remaining_amount y el contador next_seq).
func (r *CustomerDueRepo) Update(due *entity.CustomerDue) error {
	query := `
		UPDATE customer_dues SET total_due = $3, total_paid = $4, remaining_amount = $5,
			remarks = $6, next_seq = $7, updated_at = now()
		WHERE store_id = $1 AND id = $2`
	tag, err := r.q.Exec(context.Background(), query,
		due.StoreID, due.ID, due.TotalDue, due.TotalPaid, due.RemainingAmount,
		due.Remarks, due.NextSeq,
	)
	if err != nil {
		return translateError(fmt.Errorf("update customer due: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AppendTransaction inserta un evento inmutable del ledger. El índice único
// (due_id, type, transaction_date, seq) convierte el replay duplicado en ErrDuplicate.
func (r *CustomerDueRepo) AppendTransaction(tx *entity.DueTransaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	query := `
		INSERT INTO customer_due_transactions (id, customer_due_id, store_id, type, amount,
			remarks, transaction_date, seq, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())`
	createdBy := (*string)(nil)
	if tx.CreatedBy != "" {
		createdBy = &tx.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		tx.ID, tx.CustomerDueID, tx.StoreID, tx.Type, tx.Amount,
		tx.Remarks, tx.TransactionDate, tx.Seq, createdBy,
	)
	if err != nil {
		return translateError(fmt.Errorf("append due transaction: %w", err))
	}
	return nil
}

// ListTransactions página del historial ordenada ascendente por seq, con cursor
// keyset para reanudar desde el último seq visto.
func (r *CustomerDueRepo) ListTransactions(storeID, dueID string, after *repository.DueCursor, limit int) ([]*entity.DueTransaction, *repository.DueCursor, error) {
	query := `
		SELECT id, customer_due_id, store_id, type, amount, remarks, transaction_date,
			seq, created_by, created_at
		FROM customer_due_transactions
		WHERE store_id = $1 AND customer_due_id = $2`
	args := []any{storeID, dueID}
	if after != nil {
		query += ` AND seq > $3 ORDER BY seq ASC LIMIT $4`
		args = append(args, after.AfterSeq, limit)
	} else {
		query += ` ORDER BY seq ASC LIMIT $3`
		args = append(args, limit)
	}
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, nil, translateError(fmt.Errorf("list due transactions: %w", err))
	}
	defer rows.Close()

	var list []*entity.DueTransaction
	for rows.Next() {
		var t entity.DueTransaction
		var createdBy *string
		if err := rows.Scan(
			&t.ID, &t.CustomerDueID, &t.StoreID, &t.Type, &t.Amount, &t.Remarks,
			&t.TransactionDate, &t.Seq, &createdBy, &t.CreatedAt,
		); err != nil {
			return nil, nil, fmt.Errorf("scan due transaction: %w", err)
		}
		if createdBy != nil {
			t.CreatedBy = *createdBy
		}
		list = append(list, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	var next *repository.DueCursor
	if len(list) == limit {
		next = &repository.DueCursor{AfterSeq: list[len(list)-1].Seq}
	}
	return list, next, nil
}
