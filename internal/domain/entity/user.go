package entity

import "time"

// Estados de cuenta de usuario.
const (
	UserActive    = "active"
	UserInactive  = "inactive"
	UserSuspended = "suspended"
)

// User actor del sistema. El motor solo lo usa como identidad para el gate de
// autorización y para el login; el CRUD de usuarios vive fuera de este módulo.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // bcrypt, nunca en claro después de persistir
	StoreID      string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
