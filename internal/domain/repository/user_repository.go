package repository

import "github.com/jhoicas/pos-ledger/internal/domain/entity"

// UserRepository puerto de lectura de usuarios (login y resolución de actor).
type UserRepository interface {
	GetByID(id string) (*entity.User, error)
	GetByUsername(username string) (*entity.User, error)
}
