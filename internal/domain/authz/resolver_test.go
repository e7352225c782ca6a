package authz_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/pos-ledger/internal/domain/authz"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

const (
	testStore = "store-1"
	testUser  = "user-1"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedResolver() *authz.Resolver {
	return authz.NewResolver(func() time.Time { return testNow })
}

// baseFacts arma el escenario de herencia: staff con padre manager,
// manager tiene el permiso void-sale, el usuario tiene el rol staff.
func baseFacts() authz.Facts {
	return authz.Facts{
		Roles: map[string]*entity.Role{
			"r-manager": {ID: "r-manager", Slug: "manager", IsActive: true},
			"r-staff":   {ID: "r-staff", Slug: "staff", ParentRoleID: "r-manager", IsActive: true},
		},
		Permissions: map[string]*entity.Permission{
			"p-void": {ID: "p-void", Slug: "void-sale", IsActive: true},
		},
		RolePermissions: []entity.RolePermission{
			{RoleID: "r-manager", PermissionID: "p-void", Status: entity.GrantActive},
		},
		Assignments: []entity.RoleAssignment{
			{UserID: testUser, RoleID: "r-staff", Status: entity.GrantActive},
		},
	}
}

// TestHasPermission_HerenciaPorPadre staff hereda void-sale de manager.
func TestHasPermission_HerenciaPorPadre(t *testing.T) {
	r := fixedResolver()
	assert.True(t, r.HasPermission(baseFacts(), "void-sale", testStore))
}

// TestHasPermission_RevocarPadreCorta revocar la concesión de manager hace
// que staff deje de heredar.
func TestHasPermission_RevocarPadreCorta(t *testing.T) {
	f := baseFacts()
	f.RolePermissions[0].Status = entity.GrantRevoked
	assert.False(t, fixedResolver().HasPermission(f, "void-sale", testStore))
}

// TestHasPermission_PermisoInactivo un permiso desactivado nunca concede.
func TestHasPermission_PermisoInactivo(t *testing.T) {
	f := baseFacts()
	f.Permissions["p-void"].IsActive = false
	assert.False(t, fixedResolver().HasPermission(f, "void-sale", testStore))
}

// TestHasPermission_RolIntermedioInactivo desactivar staff corta la cadena.
func TestHasPermission_RolIntermedioInactivo(t *testing.T) {
	f := baseFacts()
	f.Roles["r-staff"].IsActive = false
	assert.False(t, fixedResolver().HasPermission(f, "void-sale", testStore))
}

// TestHasPermission_AlcanceDeTienda un rol asignado a otra tienda no aplica;
// una asignación global (store vacío) aplica en todas.
func TestHasPermission_AlcanceDeTienda(t *testing.T) {
	f := baseFacts()
	f.Assignments[0].StoreID = "otra-tienda"
	assert.False(t, fixedResolver().HasPermission(f, "void-sale", testStore))

	f.Assignments[0].StoreID = ""
	assert.True(t, fixedResolver().HasPermission(f, "void-sale", testStore))
}

// TestHasPermission_VentanaDeAsignacion asignaciones fuera de su ventana de
// fechas son inertes.
func TestHasPermission_VentanaDeAsignacion(t *testing.T) {
	f := baseFacts()
	future := testNow.Add(24 * time.Hour)
	f.Assignments[0].StartDate = &future
	assert.False(t, fixedResolver().HasPermission(f, "void-sale", testStore))

	past := testNow.Add(-24 * time.Hour)
	f.Assignments[0].StartDate = nil
	f.Assignments[0].EndDate = &past
	assert.False(t, fixedResolver().HasPermission(f, "void-sale", testStore))
}

// TestHasPermission_ConcesionDirecta una concesión directa vigente concede sin roles.
func TestHasPermission_ConcesionDirecta(t *testing.T) {
	f := baseFacts()
	f.Assignments = nil
	f.UserGrants = []entity.UserPermission{
		{UserID: testUser, PermissionID: "p-void", Status: entity.GrantActive},
	}
	assert.True(t, fixedResolver().HasPermission(f, "void-sale", testStore))
}

// TestHasPermission_ConcesionDirectaVencida una concesión con expires_at en el
// pasado no concede.
func TestHasPermission_ConcesionDirectaVencida(t *testing.T) {
	f := baseFacts()
	f.Assignments = nil
	expired := testNow.Add(-time.Hour)
	f.UserGrants = []entity.UserPermission{
		{UserID: testUser, PermissionID: "p-void", Status: entity.GrantActive, ExpiresAt: &expired},
	}
	assert.False(t, fixedResolver().HasPermission(f, "void-sale", testStore))
}

// TestHasPermission_CicloTermina un ciclo en parent_role_id no cuelga la
// resolución: la rama simplemente no concede.
func TestHasPermission_CicloTermina(t *testing.T) {
	f := baseFacts()
	// manager apunta a staff: ciclo staff -> manager -> staff.
	f.Roles["r-manager"].ParentRoleID = "r-staff"
	// El permiso está en un rol fuera del ciclo, no debe encontrarse.
	f.RolePermissions[0].RoleID = "r-otro"
	assert.False(t, fixedResolver().HasPermission(f, "void-sale", testStore))
}

// TestHasPermission_AutoReferencia el esquema permite que un rol sea su propio
// padre; la caminata debe terminar igual.
func TestHasPermission_AutoReferencia(t *testing.T) {
	f := baseFacts()
	f.Roles["r-staff"].ParentRoleID = "r-staff"
	assert.False(t, fixedResolver().HasPermission(f, "void-sale", testStore))
}

// TestHasPermission_CadenaProfunda la herencia funciona a varios niveles pero
// respeta el tope de profundidad.
func TestHasPermission_CadenaProfunda(t *testing.T) {
	f := authz.Facts{
		Roles:       map[string]*entity.Role{},
		Permissions: map[string]*entity.Permission{"p-void": {ID: "p-void", Slug: "void-sale", IsActive: true}},
	}
	// Cadena r-0 -> r-1 -> ... -> r-10; el permiso vive en la raíz r-10.
	for i := 0; i <= 10; i++ {
		role := &entity.Role{ID: roleID(i), IsActive: true}
		if i < 10 {
			role.ParentRoleID = roleID(i + 1)
		}
		f.Roles[role.ID] = role
	}
	f.RolePermissions = []entity.RolePermission{{RoleID: roleID(10), PermissionID: "p-void", Status: entity.GrantActive}}
	f.Assignments = []entity.RoleAssignment{{UserID: testUser, RoleID: roleID(0), Status: entity.GrantActive}}

	assert.True(t, fixedResolver().HasPermission(f, "void-sale", testStore))
}

func roleID(i int) string {
	return "r-" + string(rune('a'+i))
}
