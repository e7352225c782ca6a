package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo implementación de InventoryRepository sobre PostgreSQL (usable con pool o tx).
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

const inventoryColumns = `id, product_id, store_id, quantity_in_stock, available_quantity,
	reserved_quantity, damaged_quantity, reorder_level, reorder_quantity,
	is_out_of_stock, last_stock_update, updated_by, created_at, updated_at`

// Get obtiene la fila de stock de un producto en una tienda.
// Fila inexistente = stock cero (el primer movimiento la materializa).
func (r *InventoryRepo) Get(storeID, productID string) (*entity.Inventory, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory WHERE store_id = $1 AND product_id = $2`
	return r.scanOne(query, storeID, productID)
}

// GetForUpdate obtiene la fila y la bloquea (SELECT FOR UPDATE). Espera acotada
// por lock_timeout: al vencer, translateError devuelve ErrContention.
func (r *InventoryRepo) GetForUpdate(storeID, productID string) (*entity.Inventory, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory WHERE store_id = $1 AND product_id = $2 FOR UPDATE`
	return r.scanOne(query, storeID, productID)
}

func (r *InventoryRepo) scanOne(query, storeID, productID string) (*entity.Inventory, error) {
	var inv entity.Inventory
	var updatedBy *string
	err := r.q.QueryRow(context.Background(), query, storeID, productID).Scan(
		&inv.ID, &inv.ProductID, &inv.StoreID, &inv.QuantityInStock, &inv.AvailableQuantity,
		&inv.ReservedQuantity, &inv.DamagedQuantity, &inv.ReorderLevel, &inv.ReorderQuantity,
		&inv.IsOutOfStock, &inv.LastStockUpdate, &updatedBy, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zeroInventory(storeID, productID), nil
		}
		return nil, translateError(fmt.Errorf("get inventory: %w", err))
	}
	if updatedBy != nil {
		inv.UpdatedBy = *updatedBy
	}
	return &inv, nil
}

// Upsert inserta o actualiza la fila de stock por (tienda, producto).
func (r *InventoryRepo) Upsert(inv *entity.Inventory) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory (id, product_id, store_id, quantity_in_stock, available_quantity,
			reserved_quantity, damaged_quantity, reorder_level, reorder_quantity,
			is_out_of_stock, last_stock_update, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
		ON CONFLICT (store_id, product_id)
		DO UPDATE SET quantity_in_stock = EXCLUDED.quantity_in_stock,
			available_quantity = EXCLUDED.available_quantity,
			reserved_quantity = EXCLUDED.reserved_quantity,
			damaged_quantity = EXCLUDED.damaged_quantity,
			reorder_level = EXCLUDED.reorder_level,
			reorder_quantity = EXCLUDED.reorder_quantity,
			is_out_of_stock = EXCLUDED.is_out_of_stock,
			last_stock_update = EXCLUDED.last_stock_update,
			updated_by = EXCLUDED.updated_by,
			updated_at = now()`
	updatedBy := (*string)(nil)
	if inv.UpdatedBy != "" {
		updatedBy = &inv.UpdatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		inv.ID, inv.ProductID, inv.StoreID, inv.QuantityInStock, inv.AvailableQuantity,
		inv.ReservedQuantity, inv.DamagedQuantity, inv.ReorderLevel, inv.ReorderQuantity,
		inv.IsOutOfStock, inv.LastStockUpdate, updatedBy,
	)
	if err != nil {
		return translateError(fmt.Errorf("upsert inventory: %w", err))
	}
	return nil
}

// ListLowStock filas en o bajo su punto de reorden (reporte de reposición).
func (r *InventoryRepo) ListLowStock(storeID string) ([]*entity.Inventory, error) {
	query := `SELECT ` + inventoryColumns + `
		FROM inventory
		WHERE store_id = $1 AND reorder_level > 0 AND available_quantity <= reorder_level
		ORDER BY available_quantity ASC`
	rows, err := r.q.Query(context.Background(), query, storeID)
	if err != nil {
		return nil, translateError(fmt.Errorf("list low stock: %w", err))
	}
	defer rows.Close()

	var list []*entity.Inventory
	for rows.Next() {
		var inv entity.Inventory
		var updatedBy *string
		if err := rows.Scan(
			&inv.ID, &inv.ProductID, &inv.StoreID, &inv.QuantityInStock, &inv.AvailableQuantity,
			&inv.ReservedQuantity, &inv.DamagedQuantity, &inv.ReorderLevel, &inv.ReorderQuantity,
			&inv.IsOutOfStock, &inv.LastStockUpdate, &updatedBy, &inv.CreatedAt, &inv.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		if updatedBy != nil {
			inv.UpdatedBy = *updatedBy
		}
		list = append(list, &inv)
	}
	return list, rows.Err()
}

func zeroInventory(storeID, productID string) *entity.Inventory {
	inv := &entity.Inventory{
		ProductID:         productID,
		StoreID:           storeID,
		AvailableQuantity: decimal.Zero,
		ReservedQuantity:  decimal.Zero,
		DamagedQuantity:   decimal.Zero,
		ReorderLevel:      decimal.Zero,
		ReorderQuantity:   decimal.Zero,
	}
	inv.Recompute()
	return inv
}
