package repository

import "github.com/jhoicas/pos-ledger/internal/domain/authz"

// AuthzFactsRepository puerto de solo lectura de los hechos de autorización
// (roles, permisos, asignaciones y concesiones). El motor nunca los muta.
type AuthzFactsRepository interface {
	LoadFacts(userID string) (authz.Facts, error)
}
