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

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository sobre PostgreSQL.
// Cabecera y líneas se persisten en la misma transacción del caller.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, store_id, customer_due_id, total_amount, paid_amount, remaining_amount,
	sale_status, payment_method, payment_status, sale_date, discount, tax_amount,
	sale_type, is_refunded, refund_amount, refunded_at, created_by, created_at, updated_at`

const saleLineColumns = `id, sale_id, store_id, product_id, quantity, purchase_price, sell_price,
	total_price, tax_rate, tax_amount, discount, discount_type, total_discount,
	profit, is_returned, return_amount, notes, created_at`

// Create persiste la cabecera y todas sus líneas.
func (r *SaleRepo) Create(sale *entity.Sale) error {
	if sale.ID == "" {
		sale.ID = uuid.New().String()
	}
	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, now(), now())`
	_, err := r.q.Exec(context.Background(), query,
		sale.ID, sale.StoreID, nullable(sale.CustomerDueID), sale.TotalAmount, sale.PaidAmount,
		sale.RemainingAmount, sale.SaleStatus, sale.PaymentMethod, sale.PaymentStatus,
		sale.SaleDate, sale.Discount, sale.TaxAmount, sale.SaleType,
		sale.IsRefunded, sale.RefundAmount, sale.RefundedAt, nullable(sale.CreatedBy),
	)
	if err != nil {
		return translateError(fmt.Errorf("create sale: %w", err))
	}
	for i := range sale.Lines {
		if err := r.insertLine(sale.ID, sale.StoreID, &sale.Lines[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *SaleRepo) insertLine(saleID, storeID string, line *entity.SaleLine) error {
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	line.SaleID = saleID
	line.StoreID = storeID
	query := `
		INSERT INTO sale_items (` + saleLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, now())`
	_, err := r.q.Exec(context.Background(), query,
		line.ID, line.SaleID, line.StoreID, line.ProductID, line.Quantity,
		line.PurchasePrice, line.SellPrice, line.TotalPrice, line.TaxRate, line.TaxAmount,
		line.Discount, line.DiscountType, line.TotalDiscount, line.Profit,
		line.IsReturned, line.ReturnAmount, line.Notes,
	)
	if err != nil {
		return translateError(fmt.Errorf("create sale item: %w", err))
	}
	return nil
}

// GetByID obtiene una venta con sus líneas dentro de la tienda indicada.
func (r *SaleRepo) GetByID(storeID, id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE store_id = $1 AND id = $2`
	return r.scanOne(query, storeID, id)
}

// GetForUpdate bloquea la cabecera (SELECT FOR UPDATE) para serializar
// transiciones de estado concurrentes sobre la misma venta.
func (r *SaleRepo) GetForUpdate(storeID, id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE store_id = $1 AND id = $2 FOR UPDATE`
	return r.scanOne(query, storeID, id)
}

func (r *SaleRepo) scanOne(query, storeID, id string) (*entity.Sale, error) {
	var s entity.Sale
	var dueID, createdBy *string
	err := r.q.QueryRow(context.Background(), query, storeID, id).Scan(
		&s.ID, &s.StoreID, &dueID, &s.TotalAmount, &s.PaidAmount, &s.RemainingAmount,
		&s.SaleStatus, &s.PaymentMethod, &s.PaymentStatus, &s.SaleDate, &s.Discount,
		&s.TaxAmount, &s.SaleType, &s.IsRefunded, &s.RefundAmount, &s.RefundedAt,
		&createdBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, translateError(fmt.Errorf("get sale: %w", err))
	}
	if dueID != nil {
		s.CustomerDueID = *dueID
	}
	if createdBy != nil {
		s.CreatedBy = *createdBy
	}
	lines, err := r.listLines(s.ID)
	if err != nil {
		return nil, err
	}
	s.Lines = lines
	return &s, nil
}

func (r *SaleRepo) listLines(saleID string) ([]entity.SaleLine, error) {
	query := `SELECT ` + saleLineColumns + ` FROM sale_items WHERE sale_id = $1 ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(context.Background(), query, saleID)
	if err != nil {
		return nil, translateError(fmt.Errorf("list sale items: %w", err))
	}
	defer rows.Close()

	var lines []entity.SaleLine
	for rows.Next() {
		var l entity.SaleLine
		if err := rows.Scan(
			&l.ID, &l.SaleID, &l.StoreID, &l.ProductID, &l.Quantity, &l.PurchasePrice,
			&l.SellPrice, &l.TotalPrice, &l.TaxRate, &l.TaxAmount, &l.Discount,
			&l.DiscountType, &l.TotalDiscount, &l.Profit, &l.IsReturned, &l.ReturnAmount,
			&l.Notes, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// Update actualiza cabecera y marcas de devolución de línea. Los montos de
// línea no se tocan: son inmutables una vez la venta sale de pending.
func (r *SaleRepo) Update(sale *entity.Sale) error {
	query := `
		UPDATE sales SET customer_due_id = $3, paid_amount = $4, remaining_amount = $5,
			sale_status = $6, payment_status = $7, is_refunded = $8, refund_amount = $9,
			refunded_at = $10, updated_at = now()
		WHERE store_id = $1 AND id = $2`
	tag, err := r.q.Exec(context.Background(), query,
		sale.StoreID, sale.ID, nullable(sale.CustomerDueID), sale.PaidAmount,
		sale.RemainingAmount, sale.SaleStatus, sale.PaymentStatus,
		sale.IsRefunded, sale.RefundAmount, sale.RefundedAt,
	)
	if err != nil {
		return translateError(fmt.Errorf("update sale: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	for i := range sale.Lines {
		l := &sale.Lines[i]
		lineQuery := `UPDATE sale_items SET is_returned = $2, return_amount = $3 WHERE id = $1`
		if _, err := r.q.Exec(context.Background(), lineQuery, l.ID, l.IsReturned, l.ReturnAmount); err != nil {
			return translateError(fmt.Errorf("update sale item: %w", err))
		}
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
