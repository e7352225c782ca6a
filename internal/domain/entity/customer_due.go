package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/domain/money"
)

// Tipos de transacción sobre un saldo pendiente.
const (
	DueTxDue        = "due"        // aumenta el total adeudado
	DueTxPayment    = "payment"    // abono del cliente
	DueTxRefund     = "refund"     // devolución al cliente (reduce lo pagado)
	DueTxAdjustment = "adjustment" // re-basar el saldo con delta con signo
)

// CustomerDue saldo pendiente de una venta no pagada por completo.
// RemainingAmount es derivado (total_due - total_paid); se recalcula al postear
// cada transacción, nunca se escribe directo.
type CustomerDue struct {
	ID              string
	SaleID          string
	StoreID         string
	CustomerName    string
	CustomerContact string
	CustomerAddress string
	TotalDue        decimal.Decimal
	TotalPaid       decimal.Decimal
	RemainingAmount decimal.Decimal // derivado
	Remarks         string
	NextSeq         int64 // desambiguador monotónico por due (ver DueTransaction.Seq)
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DueTransaction evento inmutable del ledger de saldos (append-only).
// La unicidad lógica es (due_id, type, transaction_date, seq): si el reloj no
// alcanza a distinguir dos eventos, Seq los separa en lugar de perder uno.
type DueTransaction struct {
	ID              string
	CustomerDueID   string
	StoreID         string
	Type            string
	Amount          decimal.Decimal
	Remarks         string
	TransactionDate time.Time
	Seq             int64
	CreatedBy       string
	CreatedAt       time.Time
}

// ValidDueTxType true si el tipo pertenece al enum de transacciones.
func ValidDueTxType(t string) bool {
	switch t {
	case DueTxDue, DueTxPayment, DueTxRefund, DueTxAdjustment:
		return true
	}
	return false
}

// Apply aplica una transacción al saldo y recalcula el derivado.
// payment suma a total_paid; refund lo resta; due suma a total_due;
// adjustment re-basa total_due con un delta con signo.
func (d *CustomerDue) Apply(tx *DueTransaction) {
	switch tx.Type {
	case DueTxPayment:
		d.TotalPaid = money.Round(d.TotalPaid.Add(tx.Amount))
	case DueTxRefund:
		d.TotalPaid = money.Round(d.TotalPaid.Sub(tx.Amount))
	case DueTxDue:
		d.TotalDue = money.Round(d.TotalDue.Add(tx.Amount))
	case DueTxAdjustment:
		d.TotalDue = money.Round(d.TotalDue.Add(tx.Amount))
	}
	d.Recompute()
}

// Recompute recalcula remaining_amount desde los campos fuente.
func (d *CustomerDue) Recompute() {
	d.RemainingAmount = money.Round(d.TotalDue.Sub(d.TotalPaid))
}

// WouldOverpay true si un payment de amount dejaría total_paid > total_due.
func (d *CustomerDue) WouldOverpay(amount decimal.Decimal) bool {
	return d.TotalPaid.Add(amount).GreaterThan(d.TotalDue)
}
