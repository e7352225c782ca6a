package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appauthz "github.com/jhoicas/pos-ledger/internal/application/authz"
	"github.com/jhoicas/pos-ledger/internal/application/inventory"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/pos-ledger/pkg/logger"
)

const (
	testStore   = "store-1"
	testProduct = "prod-1"
	testActor   = "user-1"
	testIntruso = "user-2" // sin permisos
)

// fixture arma el motor en memoria con tienda, producto, stock inicial y un
// actor con los permisos del ledger de inventario.
type fixture struct {
	engine *memory.Engine
	uc     *inventory.ApplyMovementUseCase
}

func newFixture(t *testing.T, initialStock int64) *fixture {
	t.Helper()
	e := memory.NewEngine()
	e.SeedStore(&entity.Store{ID: testStore, Name: "Tienda Centro", IsActive: true})
	e.SeedProduct(&entity.Product{
		ID:            testProduct,
		StoreID:       testStore,
		SKU:           "X1",
		Name:          "Producto X1",
		PurchasePrice: decimal.NewFromInt(60),
		SellPrice:     decimal.NewFromInt(100),
		UnitType:      entity.UnitPiece,
		UnitValue:     decimal.NewFromInt(1),
		TaxRate:       decimal.NewFromInt(10),
		IsActive:      true,
	})
	if initialStock > 0 {
		e.SeedInventory(&entity.Inventory{
			StoreID:           testStore,
			ProductID:         testProduct,
			AvailableQuantity: decimal.NewFromInt(initialStock),
		})
	}
	seedInventoryPermissions(e, testActor)

	gate := appauthz.NewGate(memory.NewAuthzRepository(e), logger.Nop())
	uc := inventory.NewApplyMovementUseCase(
		memory.NewTxRunner(e), gate,
		memory.NewStoreRepository(e), memory.NewProductRepository(e),
		memory.NewInventoryRepository(e, nil), memory.NewStockMovementRepository(e, nil),
	)
	return &fixture{engine: e, uc: uc}
}

func seedInventoryPermissions(e *memory.Engine, userID string) {
	e.SeedRole(&entity.Role{ID: "r-inv", Slug: "almacenista", IsActive: true})
	e.SeedPermission(&entity.Permission{ID: "p-move", Slug: inventory.ActionApplyMovement, IsActive: true})
	e.SeedPermission(&entity.Permission{ID: "p-read", Slug: inventory.ActionReadInventory, IsActive: true})
	e.GrantRolePermission(entity.RolePermission{RoleID: "r-inv", PermissionID: "p-move", Status: entity.GrantActive})
	e.GrantRolePermission(entity.RolePermission{RoleID: "r-inv", PermissionID: "p-read", Status: entity.GrantActive})
	e.AssignRole(entity.RoleAssignment{UserID: userID, RoleID: "r-inv", Status: entity.GrantActive})
}

// TestApplyMovement_CompraAcreditaStock una compra suma al disponible, mantiene
// la invariante y deja exactamente un movimiento en el diario.
func TestApplyMovement_CompraAcreditaStock(t *testing.T) {
	f := newFixture(t, 10)
	inv, err := f.uc.ApplyMovement(context.Background(), inventory.ApplyMovementInput{
		StoreID:      testStore,
		ActorID:      testActor,
		ProductID:    testProduct,
		MovementType: entity.MovementPurchase,
		Quantity:     decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	assert.True(t, inv.AvailableQuantity.Equal(decimal.NewFromInt(15)))
	assert.True(t, inv.CheckInvariant())

	movs, _, err := f.uc.ListMovements(context.Background(), testActor, testStore, testProduct, nil, nil, nil, 10)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.DirectionIn, movs[0].Direction)
	assert.Equal(t, entity.MovementPurchase, movs[0].MovementType)
	// Para entradas el precio por defecto es el de compra.
	assert.True(t, movs[0].TotalPrice.Equal(decimal.NewFromInt(300)), "5 * 60")
}

// TestApplyMovement_SalidaInsuficiente una salida mayor al disponible falla
// con ErrInsufficientStock sin tocar stock ni diario.
func TestApplyMovement_SalidaInsuficiente(t *testing.T) {
	f := newFixture(t, 10)
	_, err := f.uc.ApplyMovement(context.Background(), inventory.ApplyMovementInput{
		StoreID:      testStore,
		ActorID:      testActor,
		ProductID:    testProduct,
		MovementType: entity.MovementSale,
		Quantity:     decimal.NewFromInt(20),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.False(t, domain.Retryable(err), "stock insuficiente es terminal, no reintentable")

	inv, err := f.uc.Snapshot(context.Background(), testActor, testStore, testProduct)
	require.NoError(t, err)
	assert.True(t, inv.AvailableQuantity.Equal(decimal.NewFromInt(10)), "el stock no cambia")

	movs, _, err := f.uc.ListMovements(context.Background(), testActor, testStore, testProduct, nil, nil, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, movs, "el diario no registra el intento fallido")
}

// TestApplyMovement_AjustePorDano mueve disponible a dañado sin cambiar el total.
func TestApplyMovement_AjustePorDano(t *testing.T) {
	f := newFixture(t, 10)
	inv, err := f.uc.ApplyMovement(context.Background(), inventory.ApplyMovementInput{
		StoreID:      testStore,
		ActorID:      testActor,
		ProductID:    testProduct,
		MovementType: entity.MovementAdjustment,
		Quantity:     decimal.NewFromInt(2),
		MarkDamaged:  true,
	})
	require.NoError(t, err)
	assert.True(t, inv.AvailableQuantity.Equal(decimal.NewFromInt(8)))
	assert.True(t, inv.DamagedQuantity.Equal(decimal.NewFromInt(2)))
	assert.True(t, inv.QuantityInStock.Equal(decimal.NewFromInt(10)), "el total en stock no cambia")
	assert.True(t, inv.CheckInvariant())
}

// TestApplyMovement_AjusteSinDireccion adjustment sin dirección explícita es inválido.
func TestApplyMovement_AjusteSinDireccion(t *testing.T) {
	f := newFixture(t, 10)
	_, err := f.uc.ApplyMovement(context.Background(), inventory.ApplyMovementInput{
		StoreID:      testStore,
		ActorID:      testActor,
		ProductID:    testProduct,
		MovementType: entity.MovementAdjustment,
		Quantity:     decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// TestApplyMovement_CantidadNoPositiva cero y negativo son inválidos.
func TestApplyMovement_CantidadNoPositiva(t *testing.T) {
	f := newFixture(t, 10)
	for _, qty := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-3)} {
		_, err := f.uc.ApplyMovement(context.Background(), inventory.ApplyMovementInput{
			StoreID:      testStore,
			ActorID:      testActor,
			ProductID:    testProduct,
			MovementType: entity.MovementPurchase,
			Quantity:     qty,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

// TestApplyMovement_SinPermiso un actor sin la concesión es rechazado por el gate.
func TestApplyMovement_SinPermiso(t *testing.T) {
	f := newFixture(t, 10)
	_, err := f.uc.ApplyMovement(context.Background(), inventory.ApplyMovementInput{
		StoreID:      testStore,
		ActorID:      testIntruso,
		ProductID:    testProduct,
		MovementType: entity.MovementPurchase,
		Quantity:     decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// TestApplyMovement_ProductoDeOtraTienda el alcance de tienda se respeta.
func TestApplyMovement_ProductoDeOtraTienda(t *testing.T) {
	f := newFixture(t, 10)
	f.engine.SeedStore(&entity.Store{ID: "store-2", Name: "Sucursal", IsActive: true})
	f.engine.SeedProduct(&entity.Product{
		ID: "prod-ajeno", StoreID: "store-2", SKU: "Y1", Name: "Ajeno",
		SellPrice: decimal.NewFromInt(10), IsActive: true,
	})
	_, err := f.uc.ApplyMovement(context.Background(), inventory.ApplyMovementInput{
		StoreID:      testStore,
		ActorID:      testActor,
		ProductID:    "prod-ajeno",
		MovementType: entity.MovementPurchase,
		Quantity:     decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// TestRebuildSnapshot_ReplayIdempotente plegar el diario desde cero reproduce
// exactamente la fila materializada (disponible y dañado).
func TestRebuildSnapshot_ReplayIdempotente(t *testing.T) {
	f := newFixture(t, 0) // sin seed: todo el stock entra por movimientos
	ctx := context.Background()

	apply := func(movType, direction string, qty int64, damaged bool) {
		t.Helper()
		_, err := f.uc.ApplyMovement(ctx, inventory.ApplyMovementInput{
			StoreID:      testStore,
			ActorID:      testActor,
			ProductID:    testProduct,
			MovementType: movType,
			Direction:    direction,
			Quantity:     decimal.NewFromInt(qty),
			MarkDamaged:  damaged,
		})
		require.NoError(t, err)
	}

	apply(entity.MovementPurchase, "", 10, false)
	apply(entity.MovementSale, "", 3, false)
	apply(entity.MovementAdjustment, "", 2, true)
	apply(entity.MovementReturn, "", 1, false)

	rebuilt, err := f.uc.RebuildSnapshot(ctx, testActor, testStore, testProduct)
	require.NoError(t, err)
	current, err := f.uc.Snapshot(ctx, testActor, testStore, testProduct)
	require.NoError(t, err)

	assert.True(t, rebuilt.AvailableQuantity.Equal(current.AvailableQuantity),
		"replay: disponible %s vs actual %s", rebuilt.AvailableQuantity, current.AvailableQuantity)
	assert.True(t, rebuilt.DamagedQuantity.Equal(current.DamagedQuantity))
	assert.True(t, rebuilt.QuantityInStock.Equal(current.QuantityInStock))
	assert.True(t, current.AvailableQuantity.Equal(decimal.NewFromInt(6)), "10 - 3 - 2 + 1")
	assert.True(t, current.DamagedQuantity.Equal(decimal.NewFromInt(2)))
}

// TestListMovements_CursorReanuda el cursor keyset reanuda sin perder ni
// duplicar entradas.
func TestListMovements_CursorReanuda(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := f.uc.ApplyMovement(ctx, inventory.ApplyMovementInput{
			StoreID:      testStore,
			ActorID:      testActor,
			ProductID:    testProduct,
			MovementType: entity.MovementPurchase,
			Quantity:     decimal.NewFromInt(1),
		})
		require.NoError(t, err)
	}

	var seen []string
	page1, cursor, err := f.uc.ListMovements(ctx, testActor, testStore, testProduct, nil, nil, nil, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotNil(t, cursor)
	for _, m := range page1 {
		seen = append(seen, m.ID)
	}

	for cursor != nil {
		var page []*entity.StockMovement
		page, cursor, err = f.uc.ListMovements(ctx, testActor, testStore, testProduct, nil, nil, cursor, 2)
		require.NoError(t, err)
		for _, m := range page {
			seen = append(seen, m.ID)
		}
	}

	assert.Len(t, seen, 5, "todas las entradas exactamente una vez")
	unique := make(map[string]bool, len(seen))
	for _, id := range seen {
		assert.False(t, unique[id], "entrada duplicada %s", id)
		unique[id] = true
	}
}

// TestLowStock_PuntoDeReorden solo reporta filas con reorder_level > 0 y
// disponible en o bajo el punto.
func TestLowStock_PuntoDeReorden(t *testing.T) {
	f := newFixture(t, 0)
	f.engine.SeedInventory(&entity.Inventory{
		StoreID: testStore, ProductID: testProduct,
		AvailableQuantity: decimal.NewFromInt(3),
		ReorderLevel:      decimal.NewFromInt(5),
		ReorderQuantity:   decimal.NewFromInt(20),
	})
	f.engine.SeedProduct(&entity.Product{
		ID: "prod-2", StoreID: testStore, SKU: "X2", Name: "Holgado",
		SellPrice: decimal.NewFromInt(10), IsActive: true,
	})
	f.engine.SeedInventory(&entity.Inventory{
		StoreID: testStore, ProductID: "prod-2",
		AvailableQuantity: decimal.NewFromInt(50),
		ReorderLevel:      decimal.NewFromInt(5),
	})

	list, err := f.uc.LowStock(context.Background(), testActor, testStore)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, testProduct, list[0].ProductID)
	assert.True(t, list[0].ReorderQuantity.Equal(decimal.NewFromInt(20)))
}
