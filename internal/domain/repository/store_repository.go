package repository

import "github.com/jhoicas/pos-ledger/internal/domain/entity"

// StoreRepository puerto de lectura de tiendas (frontera de tenant).
type StoreRepository interface {
	GetByID(id string) (*entity.Store, error)
}
