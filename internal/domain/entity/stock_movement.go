package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/domain/money"
)

// Tipos de movimiento de stock.
const (
	MovementPurchase    = "purchase"
	MovementSale        = "sale"
	MovementReturn      = "return"
	MovementAdjustment  = "adjustment"
	MovementTransfer    = "transfer"
	MovementInternalUse = "internal_use"
)

// Dirección del movimiento: adjustment y transfer pueden ir en ambos sentidos,
// el resto tiene dirección fija.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
	// DirectionDamage mueve disponible a dañado: el total en stock no cambia.
	DirectionDamage = "damage"
)

// StockMovement es una entrada inmutable del diario de stock (append-only).
// Nunca se edita ni se borra: las correcciones son movimientos compensatorios nuevos.
// TotalPrice es derivado (quantity * price_per_unit) y se fija al construir.
type StockMovement struct {
	ID           string
	ProductID    string
	StoreID      string
	MovementType string
	Direction    string
	Quantity     decimal.Decimal // siempre > 0; la dirección la da Direction
	UnitType     string
	UnitValue    decimal.Decimal
	PricePerUnit decimal.Decimal
	TotalPrice   decimal.Decimal // derivado
	MovementDate time.Time
	Reference    string // ID de venta, due, ajuste, etc.
	Notes        string
	CreatedBy    string
	CreatedAt    time.Time
}

// ValidMovementType true si el tipo pertenece al enum del diario.
func ValidMovementType(t string) bool {
	switch t {
	case MovementPurchase, MovementSale, MovementReturn, MovementAdjustment, MovementTransfer, MovementInternalUse:
		return true
	}
	return false
}

// DefaultDirection dirección implícita del tipo; "" si el tipo requiere dirección explícita.
func DefaultDirection(movementType string) string {
	switch movementType {
	case MovementPurchase, MovementReturn:
		return DirectionIn
	case MovementSale, MovementInternalUse:
		return DirectionOut
	}
	return ""
}

// ComputeTotal fija el total derivado del movimiento.
func (m *StockMovement) ComputeTotal() {
	m.TotalPrice = money.Mul(m.Quantity, m.PricePerUnit)
}

// SignedQuantity delta de disponible según dirección, para el replay del diario.
// damage también resta de disponible (la cantidad pasa a dañado).
func (m *StockMovement) SignedQuantity() decimal.Decimal {
	if m.Direction == DirectionOut || m.Direction == DirectionDamage {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
