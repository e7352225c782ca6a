package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-ledger/internal/domain/authz"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var _ repository.AuthzFactsRepository = (*AuthzRepo)(nil)

// AuthzRepo carga los hechos de autorización de un usuario desde PostgreSQL.
// Solo lectura: el gate nunca muta roles ni permisos.
type AuthzRepo struct {
	q Querier
}

// NewAuthzRepository construye el adaptador.
func NewAuthzRepository(q Querier) *AuthzRepo {
	return &AuthzRepo{q: q}
}

// LoadFacts carga roles, permisos, asignaciones y concesiones directas del
// usuario en una pasada por tabla. El resolver de dominio decide sobre el resultado.
func (r *AuthzRepo) LoadFacts(userID string) (authz.Facts, error) {
	f := authz.Facts{
		Roles:       make(map[string]*entity.Role),
		Permissions: make(map[string]*entity.Permission),
	}
	if err := r.loadRoles(&f); err != nil {
		return authz.Facts{}, err
	}
	if err := r.loadPermissions(&f); err != nil {
		return authz.Facts{}, err
	}
	if err := r.loadRolePermissions(&f); err != nil {
		return authz.Facts{}, err
	}
	if err := r.loadAssignments(&f, userID); err != nil {
		return authz.Facts{}, err
	}
	if err := r.loadUserGrants(&f, userID); err != nil {
		return authz.Facts{}, err
	}
	return f, nil
}

func (r *AuthzRepo) loadRoles(f *authz.Facts) error {
	query := `SELECT id, name, slug, parent_role_id, is_active, created_at FROM roles`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return translateError(fmt.Errorf("load roles: %w", err))
	}
	defer rows.Close()
	for rows.Next() {
		var role entity.Role
		var parent *string
		if err := rows.Scan(&role.ID, &role.Name, &role.Slug, &parent, &role.IsActive, &role.CreatedAt); err != nil {
			return fmt.Errorf("scan role: %w", err)
		}
		if parent != nil {
			role.ParentRoleID = *parent
		}
		f.Roles[role.ID] = &role
	}
	return rows.Err()
}

func (r *AuthzRepo) loadPermissions(f *authz.Facts) error {
	query := `SELECT id, name, slug, module, is_active FROM permissions`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return translateError(fmt.Errorf("load permissions: %w", err))
	}
	defer rows.Close()
	for rows.Next() {
		var p entity.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Module, &p.IsActive); err != nil {
			return fmt.Errorf("scan permission: %w", err)
		}
		f.Permissions[p.ID] = &p
	}
	return rows.Err()
}

func (r *AuthzRepo) loadRolePermissions(f *authz.Facts) error {
	query := `SELECT role_id, permission_id, granted_by, status FROM role_permissions`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return translateError(fmt.Errorf("load role permissions: %w", err))
	}
	defer rows.Close()
	for rows.Next() {
		var rp entity.RolePermission
		var grantedBy *string
		if err := rows.Scan(&rp.RoleID, &rp.PermissionID, &grantedBy, &rp.Status); err != nil {
			return fmt.Errorf("scan role permission: %w", err)
		}
		if grantedBy != nil {
			rp.GrantedBy = *grantedBy
		}
		f.RolePermissions = append(f.RolePermissions, rp)
	}
	return rows.Err()
}

func (r *AuthzRepo) loadAssignments(f *authz.Facts, userID string) error {
	query := `
		SELECT user_id, role_id, store_id, status, start_date, end_date
		FROM role_assignments WHERE user_id = $1`
	rows, err := r.q.Query(context.Background(), query, userID)
	if err != nil {
		return translateError(fmt.Errorf("load role assignments: %w", err))
	}
	defer rows.Close()
	for rows.Next() {
		var a entity.RoleAssignment
		var storeID *string
		if err := rows.Scan(&a.UserID, &a.RoleID, &storeID, &a.Status, &a.StartDate, &a.EndDate); err != nil {
			return fmt.Errorf("scan role assignment: %w", err)
		}
		if storeID != nil {
			a.StoreID = *storeID
		}
		f.Assignments = append(f.Assignments, a)
	}
	return rows.Err()
}

func (r *AuthzRepo) loadUserGrants(f *authz.Facts, userID string) error {
	query := `
		SELECT user_id, permission_id, store_id, granted_by, status, expires_at
		FROM user_permissions WHERE user_id = $1`
	rows, err := r.q.Query(context.Background(), query, userID)
	if err != nil {
		return translateError(fmt.Errorf("load user permissions: %w", err))
	}
	defer rows.Close()
	for rows.Next() {
		var g entity.UserPermission
		var storeID, grantedBy *string
		if err := rows.Scan(&g.UserID, &g.PermissionID, &storeID, &grantedBy, &g.Status, &g.ExpiresAt); err != nil {
			return fmt.Errorf("scan user permission: %w", err)
		}
		if storeID != nil {
			g.StoreID = *storeID
		}
		if grantedBy != nil {
			g.GrantedBy = *grantedBy
		}
		f.UserGrants = append(f.UserGrants, g)
	}
	return rows.Err()
}
