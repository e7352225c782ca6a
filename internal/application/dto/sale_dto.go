package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleLineRequest línea de una venta nueva. Los precios no se aceptan del
// caller: se copian del producto al postear.
type SaleLineRequest struct {
	ProductID    string          `json:"product_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	Discount     decimal.Decimal `json:"discount,omitempty"`
	DiscountType string          `json:"discount_type,omitempty"` // flat | percentage
	Notes        string          `json:"notes,omitempty"`
}

// CreateSaleRequest body para POST /api/sales.
type CreateSaleRequest struct {
	Lines           []SaleLineRequest `json:"lines"`
	PaidAmount      decimal.Decimal   `json:"paid_amount"`
	PaymentMethod   string            `json:"payment_method,omitempty"`
	SaleType        string            `json:"sale_type,omitempty"`
	CustomerName    string            `json:"customer_name,omitempty"`
	CustomerContact string            `json:"customer_contact,omitempty"`
	CustomerAddress string            `json:"customer_address,omitempty"`
}

// RefundSaleRequest body para POST /api/sales/:id/refund. Amount cero = refund total.
type RefundSaleRequest struct {
	Amount decimal.Decimal `json:"amount,omitempty"`
}

// SaleLineResponse línea con sus derivados calculados.
type SaleLineResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	SellPrice     decimal.Decimal `json:"sell_price"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	Profit        decimal.Decimal `json:"profit"`
	IsReturned    bool            `json:"is_returned"`
	ReturnAmount  decimal.Decimal `json:"return_amount"`
}

// SaleResponse cabecera con derivados y líneas.
type SaleResponse struct {
	ID              string             `json:"id"`
	StoreID         string             `json:"store_id"`
	CustomerDueID   string             `json:"customer_due_id,omitempty"`
	TotalAmount     decimal.Decimal    `json:"total_amount"`
	PaidAmount      decimal.Decimal    `json:"paid_amount"`
	RemainingAmount decimal.Decimal    `json:"remaining_amount"`
	TaxAmount       decimal.Decimal    `json:"tax_amount"`
	Discount        decimal.Decimal    `json:"discount"`
	SaleStatus      string             `json:"sale_status"`
	PaymentStatus   string             `json:"payment_status"`
	PaymentMethod   string             `json:"payment_method"`
	SaleType        string             `json:"sale_type"`
	SaleDate        time.Time          `json:"sale_date"`
	IsRefunded      bool               `json:"is_refunded"`
	RefundAmount    decimal.Decimal    `json:"refund_amount"`
	Lines           []SaleLineResponse `json:"lines"`
}
