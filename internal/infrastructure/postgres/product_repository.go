package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo lectura de productos sobre PostgreSQL.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador.
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, store_id, sku, name, description, purchase_price, sell_price,
	unit_type, unit_value, tax_rate, is_discountable, is_active, min_order_quantity,
	created_at, updated_at`

// GetByID obtiene un producto por id.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.scanOne(query, id)
}

// GetBySKU obtiene un producto por SKU dentro de una tienda.
func (r *ProductRepo) GetBySKU(storeID, sku string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE store_id = $1 AND sku = $2`
	return r.scanOne(query, storeID, sku)
}

func (r *ProductRepo) scanOne(query string, args ...any) (*entity.Product, error) {
	var p entity.Product
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&p.ID, &p.StoreID, &p.SKU, &p.Name, &p.Description, &p.PurchasePrice,
		&p.SellPrice, &p.UnitType, &p.UnitValue, &p.TaxRate, &p.IsDiscountable,
		&p.IsActive, &p.MinOrderQuantity, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, translateError(fmt.Errorf("get product: %w", err))
	}
	return &p, nil
}
