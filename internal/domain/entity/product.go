package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unidades de medida válidas para Product.UnitType.
const (
	UnitPiece = "piece"
	UnitKg    = "kg"
	UnitGram  = "g"
	UnitLiter = "liter"
	UnitMl    = "ml"
	UnitMeter = "meter"
	UnitDozen = "dozen"
	UnitPack  = "pack"
	UnitSet   = "set"
)

// Product representa un SKU de una tienda.
// PurchasePrice y SellPrice se copian a la línea de venta al momento de postear;
// una venta posteada nunca relee precios del producto.
type Product struct {
	ID               string
	StoreID          string
	SKU              string // único por tienda
	Name             string
	Description      string
	PurchasePrice    decimal.Decimal
	SellPrice        decimal.Decimal
	UnitType         string
	UnitValue        decimal.Decimal
	TaxRate          decimal.Decimal // porcentaje, ej. 10 = 10%
	IsDiscountable   bool
	IsActive         bool
	MinOrderQuantity decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
