package memory

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/authz"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)
var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)
var _ repository.SaleRepository = (*SaleRepo)(nil)
var _ repository.CustomerDueRepository = (*CustomerDueRepo)(nil)
var _ repository.ProductRepository = (*ProductRepo)(nil)
var _ repository.StoreRepository = (*StoreRepo)(nil)
var _ repository.UserRepository = (*UserRepo)(nil)
var _ repository.AuthzFactsRepository = (*AuthzRepo)(nil)

// InventoryRepo filas de stock en memoria. Con t == nil opera en modo
// autocommit (solo lecturas fuera de tx).
type InventoryRepo struct {
	e *Engine
	t *txn
}

// NewInventoryRepository construye el repo; t nil para lecturas fuera de tx.
func NewInventoryRepository(e *Engine, t *txn) *InventoryRepo {
	return &InventoryRepo{e: e, t: t}
}

// Get obtiene la fila de stock; inexistente = stock cero.
func (r *InventoryRepo) Get(storeID, productID string) (*entity.Inventory, error) {
	key := invKey(storeID, productID)
	if r.t != nil {
		if inv, ok := r.t.invWrites[key]; ok {
			return cloneInventory(inv), nil
		}
	}
	r.e.mu.RLock()
	defer r.e.mu.RUnlock()
	if inv, ok := r.e.inventories[key]; ok {
		return cloneInventory(inv), nil
	}
	return zeroInventory(storeID, productID), nil
}

// GetForUpdate toma el lock de la fila (espera acotada) y la lee.
func (r *InventoryRepo) GetForUpdate(storeID, productID string) (*entity.Inventory, error) {
	if r.t == nil {
		return nil, domain.ErrInvalidInput
	}
	if err := r.t.lockRow("inv|" + invKey(storeID, productID)); err != nil {
		return nil, err
	}
	return r.Get(storeID, productID)
}

// Upsert escribe la fila en el buffer de la tx, o directo en modo autocommit.
func (r *InventoryRepo) Upsert(inv *entity.Inventory) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	key := invKey(inv.StoreID, inv.ProductID)
	if r.t != nil {
		r.t.invWrites[key] = cloneInventory(inv)
		return nil
	}
	r.e.mu.Lock()
	defer r.e.mu.Unlock()
	r.e.inventories[key] = cloneInventory(inv)
	return nil
}

// ListLowStock filas en o bajo su punto de reorden.
func (r *InventoryRepo) ListLowStock(storeID string) ([]*entity.Inventory, error) {
	r.e.mu.RLock()
	defer r.e.mu.RUnlock()
	var list []*entity.Inventory
	for _, inv := range r.e.inventories {
		if inv.StoreID != storeID {
			continue
		}
		if !inv.NeedsReorder() {
			continue
		}
		list = append(list, cloneInventory(inv))
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].AvailableQuantity.LessThan(list[j].AvailableQuantity)
	})
	return list, nil
}

func zeroInventory(storeID, productID string) *entity.Inventory {
	inv := &entity.Inventory{
		ProductID:         productID,
		StoreID:           storeID,
		AvailableQuantity: decimal.Zero,
		ReservedQuantity:  decimal.Zero,
		DamagedQuantity:   decimal.Zero,
		ReorderLevel:      decimal.Zero,
		ReorderQuantity:   decimal.Zero,
	}
	inv.Recompute()
	return inv
}

// StockMovementRepo diario de stock en memoria (append-only).
type StockMovementRepo struct {
	e *Engine
	t *txn
}

// NewStockMovementRepository construye el repo; t nil para lecturas fuera de tx.
func NewStockMovementRepository(e *Engine, t *txn) *StockMovementRepo {
	return &StockMovementRepo{e: e, t: t}
}

// Create appendea un movimiento al diario.
func (r *StockMovementRepo) Create(m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if r.t != nil {
		r.t.movWrites = append(r.t.movWrites, cloneMovement(m))
		return nil
	}
	r.e.mu.Lock()
	defer r.e.mu.Unlock()
	r.e.movements = append(r.e.movements, cloneMovement(m))
	return nil
}

// ListByProduct página ordenada ascendente por (movement_date, id) con cursor keyset.
func (r *StockMovementRepo) ListByProduct(storeID, productID string, from, to *time.Time, after *repository.MovementCursor, limit int) ([]*entity.StockMovement, *repository.MovementCursor, error) {
	r.e.mu.RLock()
	all := make([]*entity.StockMovement, 0, len(r.e.movements))
	all = append(all, r.e.movements...)
	r.e.mu.RUnlock()
	if r.t != nil {
		all = append(all, r.t.movWrites...)
	}

	var filtered []*entity.StockMovement
	for _, m := range all {
		if m.StoreID != storeID || m.ProductID != productID {
			continue
		}
		if from != nil && m.MovementDate.Before(*from) {
			continue
		}
		if to != nil && m.MovementDate.After(*to) {
			continue
		}
		if after != nil && !cursorBefore(after, m) {
			continue
		}
		filtered = append(filtered, cloneMovement(m))
	}
	sort.Slice(filtered, func(i, j int) bool {
		if !filtered[i].MovementDate.Equal(filtered[j].MovementDate) {
			return filtered[i].MovementDate.Before(filtered[j].MovementDate)
		}
		return filtered[i].ID < filtered[j].ID
	})
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	var next *repository.MovementCursor
	if len(filtered) == limit && limit > 0 {
		last := filtered[len(filtered)-1]
		next = &repository.MovementCursor{AfterDate: last.MovementDate, AfterID: last.ID}
	}
	return filtered, next, nil
}

// cursorBefore true si el movimiento está estrictamente después del cursor.
func cursorBefore(c *repository.MovementCursor, m *entity.StockMovement) bool {
	if m.MovementDate.After(c.AfterDate) {
		return true
	}
	return m.MovementDate.Equal(c.AfterDate) && m.ID > c.AfterID
}

// SaleRepo ventas en memoria.
type SaleRepo struct {
	e *Engine
	t *txn
}

// NewSaleRepository construye el repo; t nil para lecturas fuera de tx.
func NewSaleRepository(e *Engine, t *txn) *SaleRepo {
	return &SaleRepo{e: e, t: t}
}

// Create persiste cabecera y líneas en el buffer de la tx.
func (r *SaleRepo) Create(sale *entity.Sale) error {
	if sale.ID == "" {
		sale.ID = uuid.New().String()
	}
	if r.t != nil {
		if _, dup := r.t.saleWrites[sale.ID]; dup {
			return domain.ErrDuplicate
		}
		r.t.saleWrites[sale.ID] = cloneSale(sale)
		return nil
	}
	r.e.mu.Lock()
	defer r.e.mu.Unlock()
	if _, dup := r.e.sales[sale.ID]; dup {
		return domain.ErrDuplicate
	}
	r.e.sales[sale.ID] = cloneSale(sale)
	return nil
}

// GetByID obtiene una venta dentro de la tienda.
func (r *SaleRepo) GetByID(storeID, id string) (*entity.Sale, error) {
	if r.t != nil {
		if s, ok := r.t.saleWrites[id]; ok && s.StoreID == storeID {
			return cloneSale(s), nil
		}
	}
	r.e.mu.RLock()
	defer r.e.mu.RUnlock()
	s, ok := r.e.sales[id]
	if !ok || s.StoreID != storeID {
		return nil, domain.ErrNotFound
	}
	return cloneSale(s), nil
}

// GetForUpdate toma el lock de la cabecera y la lee.
func (r *SaleRepo) GetForUpdate(storeID, id string) (*entity.Sale, error) {
	if r.t == nil {
		return nil, domain.ErrInvalidInput
	}
	if err := r.t.lockRow("sale|" + id); err != nil {
		return nil, err
	}
	return r.GetByID(storeID, id)
}

// Update reescribe la venta en el buffer de la tx.
func (r *SaleRepo) Update(sale *entity.Sale) error {
	if _, err := r.GetByID(sale.StoreID, sale.ID); err != nil {
		return err
	}
	if r.t != nil {
		r.t.saleWrites[sale.ID] = cloneSale(sale)
		return nil
	}
	r.e.mu.Lock()
	defer r.e.mu.Unlock()
	r.e.sales[sale.ID] = cloneSale(sale)
	return nil
}

// CustomerDueRepo saldos pendientes y su ledger en memoria.
type CustomerDueRepo struct {
	e *Engine
	t *txn
}

// NewCustomerDueRepository construye el repo; t nil para lecturas fuera de tx.
func NewCustomerDueRepository(e *Engine, t *txn) *CustomerDueRepo {
	return &CustomerDueRepo{e: e, t: t}
}

// Create persiste un saldo nuevo.
func (r *CustomerDueRepo) Create(due *entity.CustomerDue) error {
	if due.ID == "" {
		due.ID = uuid.New().String()
	}
	if r.t != nil {
		if _, dup := r.t.dueWrites[due.ID]; dup {
			return domain.ErrDuplicate
		}
		r.t.dueWrites[due.ID] = cloneDue(due)
		return nil
	}
	r.e.mu.Lock()
	defer r.e.mu.Unlock()
	if _, dup := r.e.dues[due.ID]; dup {
		return domain.ErrDuplicate
	}
	r.e.dues[due.ID] = cloneDue(due)
	return nil
}

// GetByID obtiene un saldo dentro de la tienda.
func (r *CustomerDueRepo) GetByID(storeID, id string) (*entity.CustomerDue, error) {
	if r.t != nil {
		if d, ok := r.t.dueWrites[id]; ok && d.StoreID == storeID {
			return cloneDue(d), nil
		}
	}
	r.e.mu.RLock()
	defer r.e.mu.RUnlock()
	d, ok := r.e.dues[id]
	if !ok || d.StoreID != storeID {
		return nil, domain.ErrNotFound
	}
	return cloneDue(d), nil
}

// GetBySaleID obtiene el saldo asociado a una venta.
func (r *CustomerDueRepo) GetBySaleID(storeID, saleID string) (*entity.CustomerDue, error) {
	if r.t != nil {
		for _, d := range r.t.dueWrites {
			if d.StoreID == storeID && d.SaleID == saleID {
				return cloneDue(d), nil
			}
		}
	}
	r.e.mu.RLock()
	defer r.e.mu.RUnlock()
	for _, d := range r.e.dues {
		if d.StoreID == storeID && d.SaleID == saleID {
			return cloneDue(d), nil
		}
	}
	return nil, domain.ErrNotFound
}

// GetForUpdate toma el lock del saldo y lo lee.
func (r *CustomerDueRepo) GetForUpdate(storeID, id string) (*entity.CustomerDue, error) {
	if r.t == nil {
		return nil, domain.ErrInvalidInput
	}
	if err := r.t.lockRow("due|" + id); err != nil {
		return nil, err
	}
	return r.GetByID(storeID, id)
}

// Update reescribe el saldo en el buffer de la tx.
func (r *CustomerDueRepo) Update(due *entity.CustomerDue) error {
	if _, err := r.GetByID(due.StoreID, due.ID); err != nil {
		return err
	}
	if r.t != nil {
		r.t.dueWrites[due.ID] = cloneDue(due)
		return nil
	}
	r.e.mu.Lock()
	defer r.e.mu.Unlock()
	r.e.dues[due.ID] = cloneDue(due)
	return nil
}

// AppendTransaction appendea un evento al ledger. La clave lógica
// (due_id, type, transaction_date, seq) repetida es ErrDuplicate.
func (r *CustomerDueRepo) AppendTransaction(tx *entity.DueTransaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	key := dueTxKey(tx)
	r.e.mu.RLock()
	dup := r.e.dueTxKeys[key]
	r.e.mu.RUnlock()
	if !dup && r.t != nil {
		for _, staged := range r.t.dueTxWrites {
			if dueTxKey(staged) == key {
				dup = true
				break
			}
		}
	}
	if dup {
		return domain.ErrDuplicate
	}
	if r.t != nil {
		r.t.dueTxWrites = append(r.t.dueTxWrites, cloneDueTx(tx))
		return nil
	}
	r.e.mu.Lock()
	defer r.e.mu.Unlock()
	r.e.dueTxs = append(r.e.dueTxs, cloneDueTx(tx))
	r.e.dueTxKeys[key] = true
	return nil
}

// ListTransactions página del historial ascendente por seq con cursor keyset.
func (r *CustomerDueRepo) ListTransactions(storeID, dueID string, after *repository.DueCursor, limit int) ([]*entity.DueTransaction, *repository.DueCursor, error) {
	r.e.mu.RLock()
	all := make([]*entity.DueTransaction, 0, len(r.e.dueTxs))
	all = append(all, r.e.dueTxs...)
	r.e.mu.RUnlock()
	if r.t != nil {
		all = append(all, r.t.dueTxWrites...)
	}

	var filtered []*entity.DueTransaction
	for _, tx := range all {
		if tx.StoreID != storeID || tx.CustomerDueID != dueID {
			continue
		}
		if after != nil && tx.Seq <= after.AfterSeq {
			continue
		}
		filtered = append(filtered, cloneDueTx(tx))
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Seq < filtered[j].Seq })
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	var next *repository.DueCursor
	if len(filtered) == limit && limit > 0 {
		next = &repository.DueCursor{AfterSeq: filtered[len(filtered)-1].Seq}
	}
	return filtered, next, nil
}

// ProductRepo lectura de productos sembrados.
type ProductRepo struct {
	e *Engine
}

// NewProductRepository construye el repo.
func NewProductRepository(e *Engine) *ProductRepo {
	return &ProductRepo{e: e}
}

// GetByID obtiene un producto por id.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	r.e.mu.RLock()
	defer r.e.mu.RUnlock()
	p, ok := r.e.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// GetBySKU obtiene un producto por SKU dentro de una tienda.
func (r *ProductRepo) GetBySKU(storeID, sku string) (*entity.Product, error) {
	r.e.mu.RLock()
	defer r.e.mu.RUnlock()
	for _, p := range r.e.products {
		if p.StoreID == storeID && p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// StoreRepo lectura de tiendas sembradas.
type StoreRepo struct {
	e *Engine
}

// NewStoreRepository construye el repo.
func NewStoreRepository(e *Engine) *StoreRepo {
	return &StoreRepo{e: e}
}

// GetByID obtiene una tienda por id.
func (r *StoreRepo) GetByID(id string) (*entity.Store, error) {
	r.e.mu.RLock()
	defer r.e.mu.RUnlock()
	s, ok := r.e.stores[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

// UserRepo lectura de usuarios sembrados.
type UserRepo struct {
	e *Engine
}

// NewUserRepository construye el repo.
func NewUserRepository(e *Engine) *UserRepo {
	return &UserRepo{e: e}
}

// GetByID obtiene un usuario por id.
func (r *UserRepo) GetByID(id string) (*entity.User, error) {
	r.e.mu.RLock()
	defer r.e.mu.RUnlock()
	u, ok := r.e.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// GetByUsername obtiene un usuario por nombre de usuario.
func (r *UserRepo) GetByUsername(username string) (*entity.User, error) {
	r.e.mu.RLock()
	defer r.e.mu.RUnlock()
	for _, u := range r.e.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// AuthzRepo hechos de autorización sembrados.
type AuthzRepo struct {
	e *Engine
}

// NewAuthzRepository construye el repo.
func NewAuthzRepository(e *Engine) *AuthzRepo {
	return &AuthzRepo{e: e}
}

// LoadFacts arma los hechos del usuario a partir de los seeds.
func (r *AuthzRepo) LoadFacts(userID string) (authz.Facts, error) {
	r.e.mu.RLock()
	defer r.e.mu.RUnlock()
	f := authz.Facts{
		Roles:       make(map[string]*entity.Role, len(r.e.roles)),
		Permissions: make(map[string]*entity.Permission, len(r.e.permissions)),
	}
	for id, role := range r.e.roles {
		cp := *role
		f.Roles[id] = &cp
	}
	for id, p := range r.e.permissions {
		cp := *p
		f.Permissions[id] = &cp
	}
	f.RolePermissions = append(f.RolePermissions, r.e.rolePerms...)
	for _, a := range r.e.assignments {
		if a.UserID == userID {
			f.Assignments = append(f.Assignments, a)
		}
	}
	for _, g := range r.e.userGrants {
		if g.UserID == userID {
			f.UserGrants = append(f.UserGrants, g)
		}
	}
	return f, nil
}
