// Package authz es el gate de autorización del motor: carga los hechos de
// roles/permisos (solo lectura) y delega la resolución al dominio.
package authz

import (
	"context"

	"github.com/jhoicas/pos-ledger/internal/domain"
	domainauthz "github.com/jhoicas/pos-ledger/internal/domain/authz"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
	"github.com/jhoicas/pos-ledger/pkg/logger"
)

// Gate evalúa si un actor puede ejecutar una acción en el alcance de una tienda.
type Gate struct {
	facts    repository.AuthzFactsRepository
	resolver *domainauthz.Resolver
	log      *logger.Logger
}

// NewGate construye el gate.
func NewGate(facts repository.AuthzFactsRepository, log *logger.Logger) *Gate {
	return &Gate{
		facts:    facts,
		resolver: domainauthz.NewResolver(nil),
		log:      log,
	}
}

// Authorize devuelve nil si el actor tiene el permiso en esa tienda;
// ErrUnauthorized si no. Concesiones revocadas o vencidas son inertes.
func (g *Gate) Authorize(ctx context.Context, actorID, action, storeID string) error {
	if actorID == "" || action == "" || storeID == "" {
		return domain.ErrUnauthorized
	}
	facts, err := g.facts.LoadFacts(actorID)
	if err != nil {
		return err
	}
	if !g.resolver.HasPermission(facts, action, storeID) {
		g.log.Warn().
			Str("actor_id", actorID).
			Str("action", action).
			Str("store_id", storeID).
			Msg("autorización denegada")
		return domain.ErrUnauthorized
	}
	return nil
}

// Check variante booleana para el endpoint de consulta.
func (g *Gate) Check(ctx context.Context, actorID, action, storeID string) (bool, error) {
	err := g.Authorize(ctx, actorID, action, storeID)
	if err == nil {
		return true, nil
	}
	if err == domain.ErrUnauthorized {
		return false, nil
	}
	return false, err
}
