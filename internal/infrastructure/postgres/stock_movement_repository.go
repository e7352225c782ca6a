package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo adaptador del diario de stock sobre PostgreSQL.
// Solo INSERT y SELECT: el diario es append-only por contrato.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create appendea un movimiento al diario.
func (r *StockMovementRepo) Create(m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (id, product_id, store_id, movement_type, direction,
			quantity, unit_type, unit_value, price_per_unit, total_price,
			movement_date, reference, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	createdBy := (*string)(nil)
	if m.CreatedBy != "" {
		createdBy = &m.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.ProductID, m.StoreID, m.MovementType, m.Direction,
		m.Quantity, m.UnitType, m.UnitValue, m.PricePerUnit, m.TotalPrice,
		m.MovementDate, m.Reference, m.Notes, createdBy, m.CreatedAt,
	)
	if err != nil {
		return translateError(fmt.Errorf("create stock movement: %w", err))
	}
	return nil
}

// ListByProduct página del diario ordenada ascendente por (movement_date, id),
// con cursor keyset: el consumidor puede reanudar desde el último par visto.
func (r *StockMovementRepo) ListByProduct(storeID, productID string, from, to *time.Time, after *repository.MovementCursor, limit int) ([]*entity.StockMovement, *repository.MovementCursor, error) {
	query := `
		SELECT id, product_id, store_id, movement_type, direction, quantity, unit_type,
			unit_value, price_per_unit, total_price, movement_date, reference, notes,
			created_by, created_at
		FROM stock_movements WHERE store_id = $1 AND product_id = $2`
	args := []any{storeID, productID}
	pos := 3
	if from != nil {
		query += fmt.Sprintf(" AND movement_date >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND movement_date <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	if after != nil {
		query += fmt.Sprintf(" AND (movement_date, id) > ($%d, $%d)", pos, pos+1)
		args = append(args, after.AfterDate, after.AfterID)
		pos += 2
	}
	query += fmt.Sprintf(" ORDER BY movement_date ASC, id ASC LIMIT $%d", pos)
	args = append(args, limit)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, nil, translateError(fmt.Errorf("list movements: %w", err))
	}
	defer rows.Close()

	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var createdBy *string
		if err := rows.Scan(
			&m.ID, &m.ProductID, &m.StoreID, &m.MovementType, &m.Direction, &m.Quantity,
			&m.UnitType, &m.UnitValue, &m.PricePerUnit, &m.TotalPrice, &m.MovementDate,
			&m.Reference, &m.Notes, &createdBy, &m.CreatedAt,
		); err != nil {
			return nil, nil, fmt.Errorf("scan movement: %w", err)
		}
		if createdBy != nil {
			m.CreatedBy = *createdBy
		}
		list = append(list, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	var next *repository.MovementCursor
	if len(list) == limit {
		last := list[len(list)-1]
		next = &repository.MovementCursor{AfterDate: last.MovementDate, AfterID: last.ID}
	}
	return list, next, nil
}
