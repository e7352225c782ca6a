// Package authz resuelve permisos efectivos sobre hechos de autorización ya
// cargados (roles, permisos, asignaciones). Es un fold puro sin IO: el gate de
// aplicación carga los hechos y delega aquí.
package authz

import (
	"time"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// MaxRoleDepth tope de profundidad al subir por parent_role_id. El esquema
// permite auto-referencia, así que la caminata debe terminar incluso con datos
// malformados: ciclo o profundidad excedida cortan la resolución de esa rama.
const MaxRoleDepth = 32

// Facts hechos de solo lectura para una decisión de autorización.
type Facts struct {
	Roles           map[string]*entity.Role // por RoleID
	Permissions     map[string]*entity.Permission
	RolePermissions []entity.RolePermission
	Assignments     []entity.RoleAssignment // del usuario
	UserGrants      []entity.UserPermission // del usuario
}

// Resolver evalúa permisos efectivos contra un conjunto de hechos.
type Resolver struct {
	now func() time.Time
}

// NewResolver construye el resolver; now inyectable para tests (nil = time.Now).
func NewResolver(now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{now: now}
}

// HasPermission true si el usuario tiene el permiso (por slug) en el alcance de
// la tienda: concesión directa vigente O concesión vía cualquiera de sus roles
// activos en ese alcance, heredando por la cadena de padres.
func (r *Resolver) HasPermission(f Facts, permissionSlug, storeID string) bool {
	permID := r.activePermissionID(f, permissionSlug)
	if permID == "" {
		return false
	}
	if r.userGrantSatisfies(f, permID, storeID) {
		return true
	}
	for _, a := range f.Assignments {
		if a.Status != entity.GrantActive {
			continue
		}
		// Alcance: rol global aplica en toda tienda; rol de tienda solo en la suya.
		if a.StoreID != "" && a.StoreID != storeID {
			continue
		}
		if !r.assignmentInWindow(a) {
			continue
		}
		if r.roleChainGrants(f, a.RoleID, permID) {
			return true
		}
	}
	return false
}

func (r *Resolver) activePermissionID(f Facts, slug string) string {
	for _, p := range f.Permissions {
		if p.Slug == slug && p.IsActive {
			return p.ID
		}
	}
	return ""
}

func (r *Resolver) userGrantSatisfies(f Facts, permID, storeID string) bool {
	now := r.now()
	for _, g := range f.UserGrants {
		if g.PermissionID != permID || g.Status != entity.GrantActive {
			continue
		}
		if g.StoreID != "" && g.StoreID != storeID {
			continue
		}
		if g.ExpiresAt != nil && !g.ExpiresAt.After(now) {
			continue
		}
		return true
	}
	return false
}

func (r *Resolver) assignmentInWindow(a entity.RoleAssignment) bool {
	now := r.now()
	if a.StartDate != nil && a.StartDate.After(now) {
		return false
	}
	if a.EndDate != nil && a.EndDate.Before(now) {
		return false
	}
	return true
}

// roleChainGrants sube por parent_role_id acumulando permisos; visited + tope
// de profundidad garantizan terminación ante ciclos o auto-referencia.
func (r *Resolver) roleChainGrants(f Facts, roleID, permID string) bool {
	visited := make(map[string]bool, 4)
	for depth := 0; roleID != "" && depth < MaxRoleDepth; depth++ {
		if visited[roleID] {
			return false // ciclo: rama malformada, no concede
		}
		visited[roleID] = true

		role, ok := f.Roles[roleID]
		if !ok || !role.IsActive {
			return false
		}
		for _, rp := range f.RolePermissions {
			if rp.RoleID == roleID && rp.PermissionID == permID && rp.Status == entity.GrantActive {
				return true
			}
		}
		roleID = role.ParentRoleID
	}
	return false
}
