package repository

import "github.com/jhoicas/pos-ledger/internal/domain/entity"

// ProductRepository puerto de lectura de productos.
// El motor nunca muta productos: los precios se copian a la línea al postear.
type ProductRepository interface {
	GetByID(id string) (*entity.Product, error)
	GetBySKU(storeID, sku string) (*entity.Product, error)
}
