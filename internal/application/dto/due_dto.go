package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PostDueTransactionRequest body para POST /api/dues/:id/transactions.
// Para adjustment el monto lleva signo (re-basa total_due); el resto es positivo.
type PostDueTransactionRequest struct {
	Type    string          `json:"type"` // due | payment | refund | adjustment
	Amount  decimal.Decimal `json:"amount"`
	Remarks string          `json:"remarks,omitempty"`
}

// DueResponse estado del saldo con sus derivados.
type DueResponse struct {
	ID              string          `json:"id"`
	SaleID          string          `json:"sale_id"`
	StoreID         string          `json:"store_id"`
	CustomerName    string          `json:"customer_name"`
	TotalDue        decimal.Decimal `json:"total_due"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}

// DueTransactionDTO evento del ledger de saldos.
type DueTransactionDTO struct {
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Remarks         string          `json:"remarks,omitempty"`
	TransactionDate time.Time       `json:"transaction_date"`
	Seq             int64           `json:"seq"`
}

// DueTransactionPageResponse página del historial con cursor.
type DueTransactionPageResponse struct {
	Transactions []DueTransactionDTO `json:"transactions"`
	NextAfterSeq *int64              `json:"next_after_seq,omitempty"`
}
