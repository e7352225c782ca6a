package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplyMovementRequest body para POST /api/inventory/movements.
// Direction solo es obligatoria para adjustment y transfer; el resto de tipos
// la tiene implícita. MarkDamaged mueve disponible a dañado (ajuste por daño).
type ApplyMovementRequest struct {
	ProductID    string           `json:"product_id"`
	MovementType string           `json:"movement_type"`
	Direction    string           `json:"direction,omitempty"`
	Quantity     decimal.Decimal  `json:"quantity"`
	PricePerUnit *decimal.Decimal `json:"price_per_unit,omitempty"`
	MarkDamaged  bool             `json:"mark_damaged,omitempty"`
	Notes        string           `json:"notes,omitempty"`
}

// InventoryResponse instantánea de la fila de stock con sus derivados.
type InventoryResponse struct {
	ProductID         string          `json:"product_id"`
	StoreID           string          `json:"store_id"`
	QuantityInStock   decimal.Decimal `json:"quantity_in_stock"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	ReservedQuantity  decimal.Decimal `json:"reserved_quantity"`
	DamagedQuantity   decimal.Decimal `json:"damaged_quantity"`
	ReorderLevel      decimal.Decimal `json:"reorder_level"`
	IsOutOfStock      bool            `json:"is_out_of_stock"`
	LastStockUpdate   time.Time       `json:"last_stock_update"`
}

// MovementDTO entrada del diario en respuestas.
type MovementDTO struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	MovementType string          `json:"movement_type"`
	Direction    string          `json:"direction"`
	Quantity     decimal.Decimal `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	MovementDate time.Time       `json:"movement_date"`
	Reference    string          `json:"reference,omitempty"`
	Notes        string          `json:"notes,omitempty"`
}

// MovementPageResponse página del diario con cursor de reanudación.
type MovementPageResponse struct {
	Movements []MovementDTO `json:"movements"`
	NextAfter string        `json:"next_after,omitempty"` // "<RFC3339Nano>|<id>"
}

// LowStockDTO fila del reporte de reposición.
type LowStockDTO struct {
	ProductID         string          `json:"product_id"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	ReorderLevel      decimal.Decimal `json:"reorder_level"`
	SuggestedOrderQty decimal.Decimal `json:"suggested_order_qty"`
}

// ReplayResponse resultado de reconstruir la instantánea desde el diario.
type ReplayResponse struct {
	Rebuilt InventoryResponse `json:"rebuilt"`
	Current InventoryResponse `json:"current"`
	Matches bool              `json:"matches"`
}
