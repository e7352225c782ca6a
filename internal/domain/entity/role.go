package entity

import "time"

// Estados de asignaciones de roles y permisos. Una entrada revocada o vencida
// es inerte: nunca satisface una autorización.
const (
	GrantActive  = "active"
	GrantRevoked = "revoked"
	GrantPending = "pending"
	GrantExpired = "expired"
)

// Role rol del sistema. ParentRoleID forma un árbol (auto-referencia permitida
// por el esquema, por eso el resolver detecta ciclos); un rol hereda todos los
// permisos de sus ancestros.
type Role struct {
	ID           string
	Name         string
	Slug         string
	ParentRoleID string // vacío = raíz
	IsActive     bool
	CreatedAt    time.Time
}

// Permission permiso nombrado por slug (ej. "void-sale", "inventory:move").
type Permission struct {
	ID       string
	Name     string
	Slug     string
	Module   string
	IsActive bool
}

// RolePermission asignación permiso→rol (hecho de solo lectura para el gate).
type RolePermission struct {
	RoleID       string
	PermissionID string
	GrantedBy    string
	Status       string
}

// RoleAssignment asignación rol→usuario, opcionalmente limitada a una tienda.
// StoreID vacío = asignación global.
type RoleAssignment struct {
	UserID    string
	RoleID    string
	StoreID   string
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
}

// UserPermission concesión directa a un usuario, opcionalmente por tienda y con vencimiento.
type UserPermission struct {
	UserID       string
	PermissionID string
	StoreID      string // vacío = global
	GrantedBy    string
	Status       string
	ExpiresAt    *time.Time
}
