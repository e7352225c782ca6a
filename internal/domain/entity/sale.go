package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/money"
)

// Estados de una venta (eje de cumplimiento).
const (
	SaleStatusPending   = "pending"
	SaleStatusCompleted = "completed"
	SaleStatusCancelled = "cancelled"
	SaleStatusRefunded  = "refunded"
)

// Estados de pago (eje independiente del estado de la venta).
const (
	PaymentCompleted     = "completed"
	PaymentPending       = "pending"
	PaymentPartiallyPaid = "partially_paid"
)

// Métodos de pago.
const (
	PayCash         = "cash"
	PayCredit       = "credit"
	PayMobile       = "mobile_payment"
	PayBankTransfer = "bank_transfer"
)

// Tipos de venta: venta a cliente o consumo interno de la tienda.
const (
	SaleTypeCustomer = "customer"
	SaleTypeInternal = "internal"
)

// Tipos de descuento por línea.
const (
	DiscountFlat       = "flat"
	DiscountPercentage = "percentage"
)

// Sale cabecera de una venta. RemainingAmount es derivado (total - paid) y se
// recalcula con RecomputePayment; las líneas son inmutables cuando la venta sale de pending.
type Sale struct {
	ID              string
	StoreID         string
	CustomerDueID   string // vacío si la venta quedó pagada al crearla
	TotalAmount     decimal.Decimal
	PaidAmount      decimal.Decimal
	RemainingAmount decimal.Decimal // derivado
	SaleStatus      string
	PaymentMethod   string
	PaymentStatus   string
	SaleDate        time.Time
	Discount        decimal.Decimal
	TaxAmount       decimal.Decimal
	SaleType        string
	IsRefunded      bool
	RefundAmount    decimal.Decimal
	RefundedAt      *time.Time
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Lines []SaleLine
}

// SaleLine línea de venta. TotalPrice, TaxAmount, Profit y TotalDiscount son
// derivados: los calcula el dominio de ventas, nunca el caller.
type SaleLine struct {
	ID            string
	SaleID        string
	StoreID       string
	ProductID     string
	Quantity      decimal.Decimal
	PurchasePrice decimal.Decimal // copiado del producto al postear
	SellPrice     decimal.Decimal // copiado del producto al postear
	TotalPrice    decimal.Decimal // derivado: quantity * sell_price
	TaxRate       decimal.Decimal
	TaxAmount     decimal.Decimal // derivado: total_price * tax_rate/100
	Discount      decimal.Decimal
	DiscountType  string
	TotalDiscount decimal.Decimal // derivado según discount_type
	Profit        decimal.Decimal // derivado: (sell - purchase) * quantity
	IsReturned    bool
	ReturnAmount  decimal.Decimal
	Notes         string
	CreatedAt     time.Time
}

// CanTransition máquina de estados de sale_status:
// pending -> {completed, cancelled}; completed -> refunded.
func (s *Sale) CanTransition(to string) bool {
	switch s.SaleStatus {
	case SaleStatusPending:
		return to == SaleStatusCompleted || to == SaleStatusCancelled
	case SaleStatusCompleted:
		return to == SaleStatusRefunded
	}
	return false
}

// Transition aplica la transición o devuelve ErrInvalidTransition.
func (s *Sale) Transition(to string) error {
	if !s.CanTransition(to) {
		return domain.ErrInvalidTransition
	}
	s.SaleStatus = to
	return nil
}

// RecomputePayment recalcula remaining_amount y payment_status desde los campos fuente.
func (s *Sale) RecomputePayment() {
	s.RemainingAmount = money.Round(s.TotalAmount.Sub(s.PaidAmount))
	switch {
	case !s.PaidAmount.LessThan(s.TotalAmount):
		s.PaymentStatus = PaymentCompleted
	case money.IsPositive(s.PaidAmount):
		s.PaymentStatus = PaymentPartiallyPaid
	default:
		s.PaymentStatus = PaymentPending
	}
}
