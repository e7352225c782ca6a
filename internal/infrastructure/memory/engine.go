// Package memory implementa los puertos del motor sobre estructuras en
// memoria: mismo contrato que el adaptador PostgreSQL (locks por fila con
// espera acotada, transacciones todo-o-nada) sin base de datos. Pensado para
// tests herméticos y demos.
package memory

import (
	"sync"
	"time"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// DefaultLockWait espera máxima por un lock de fila antes de ErrContention.
// Equivale al lock_timeout de PostgreSQL.
const DefaultLockWait = 3 * time.Second

// Engine estado compartido del adaptador. Los seeds son para armar escenarios;
// las mutaciones de ledger pasan siempre por el TxRunner.
type Engine struct {
	mu       sync.RWMutex
	locks    *keyedLocks
	lockWait time.Duration

	stores      map[string]*entity.Store
	products    map[string]*entity.Product
	users       map[string]*entity.User
	inventories map[string]*entity.Inventory // clave storeID|productID
	movements   []*entity.StockMovement
	sales       map[string]*entity.Sale
	dues        map[string]*entity.CustomerDue
	dueTxs      []*entity.DueTransaction
	dueTxKeys   map[string]bool // unicidad (due_id|type|fecha|seq)

	roles       map[string]*entity.Role
	permissions map[string]*entity.Permission
	rolePerms   []entity.RolePermission
	assignments []entity.RoleAssignment
	userGrants  []entity.UserPermission
}

// NewEngine construye un motor vacío con la espera de lock por defecto.
func NewEngine() *Engine {
	return NewEngineWithLockWait(DefaultLockWait)
}

// NewEngineWithLockWait construye el motor con espera de lock explícita.
// Tests de contención usan esperas cortas.
func NewEngineWithLockWait(wait time.Duration) *Engine {
	return &Engine{
		locks:       newKeyedLocks(),
		lockWait:    wait,
		stores:      make(map[string]*entity.Store),
		products:    make(map[string]*entity.Product),
		users:       make(map[string]*entity.User),
		inventories: make(map[string]*entity.Inventory),
		sales:       make(map[string]*entity.Sale),
		dues:        make(map[string]*entity.CustomerDue),
		dueTxKeys:   make(map[string]bool),
		roles:       make(map[string]*entity.Role),
		permissions: make(map[string]*entity.Permission),
	}
}

func invKey(storeID, productID string) string { return storeID + "|" + productID }

func dueTxKey(tx *entity.DueTransaction) string {
	return tx.CustomerDueID + "|" + tx.Type + "|" + tx.TransactionDate.UTC().Format(time.RFC3339Nano) + "|" + formatSeq(tx.Seq)
}

func formatSeq(seq int64) string {
	// Suficiente para la clave de unicidad; no necesita padding.
	const digits = "0123456789"
	if seq == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for seq > 0 {
		i--
		buf[i] = digits[seq%10]
		seq /= 10
	}
	return string(buf[i:])
}

// SeedStore registra una tienda.
func (e *Engine) SeedStore(s *entity.Store) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := *s
	e.stores[s.ID] = &cp
}

// SeedProduct registra un producto.
func (e *Engine) SeedProduct(p *entity.Product) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := *p
	e.products[p.ID] = &cp
}

// SeedUser registra un usuario.
func (e *Engine) SeedUser(u *entity.User) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := *u
	e.users[u.ID] = &cp
}

// SeedInventory fija la fila de stock inicial de (tienda, producto).
func (e *Engine) SeedInventory(inv *entity.Inventory) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := *inv
	cp.Recompute()
	e.inventories[invKey(inv.StoreID, inv.ProductID)] = &cp
}

// SeedRole registra un rol.
func (e *Engine) SeedRole(r *entity.Role) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := *r
	e.roles[r.ID] = &cp
}

// SeedPermission registra un permiso.
func (e *Engine) SeedPermission(p *entity.Permission) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := *p
	e.permissions[p.ID] = &cp
}

// GrantRolePermission asocia un permiso a un rol.
func (e *Engine) GrantRolePermission(rp entity.RolePermission) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rolePerms = append(e.rolePerms, rp)
}

// AssignRole asigna un rol a un usuario.
func (e *Engine) AssignRole(a entity.RoleAssignment) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.assignments = append(e.assignments, a)
}

// GrantUserPermission concede un permiso directo a un usuario.
func (e *Engine) GrantUserPermission(g entity.UserPermission) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.userGrants = append(e.userGrants, g)
}

// keyedLocks locks por clave con adquisición acotada en el tiempo. Cada clave
// es un canal con capacidad 1: tomar el lock es enviar, soltarlo es recibir.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]chan struct{})}
}

func (k *keyedLocks) get(key string) chan struct{} {
	k.mu.Lock()
	defer k.mu.Unlock()
	ch, ok := k.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		k.locks[key] = ch
	}
	return ch
}

// acquire toma el lock de la clave o devuelve ErrContention al vencer la espera.
func (k *keyedLocks) acquire(key string, wait time.Duration) error {
	ch := k.get(key)
	select {
	case ch <- struct{}{}:
		return nil
	default:
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		return nil
	case <-timer.C:
		return domain.ErrContention
	}
}

func (k *keyedLocks) release(key string) {
	ch := k.get(key)
	select {
	case <-ch:
	default:
	}
}

// Clones: las lecturas devuelven copias para que nada fuera de un commit mute
// el estado compartido.

func cloneInventory(inv *entity.Inventory) *entity.Inventory {
	cp := *inv
	return &cp
}

func cloneMovement(m *entity.StockMovement) *entity.StockMovement {
	cp := *m
	return &cp
}

func cloneSale(s *entity.Sale) *entity.Sale {
	cp := *s
	cp.Lines = make([]entity.SaleLine, len(s.Lines))
	copy(cp.Lines, s.Lines)
	if s.RefundedAt != nil {
		t := *s.RefundedAt
		cp.RefundedAt = &t
	}
	return &cp
}

func cloneDue(d *entity.CustomerDue) *entity.CustomerDue {
	cp := *d
	return &cp
}

func cloneDueTx(t *entity.DueTransaction) *entity.DueTransaction {
	cp := *t
	return &cp
}
