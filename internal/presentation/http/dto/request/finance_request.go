package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRequest records money collected against a receivable
type PaymentRequest struct {
	Amount    *decimal.Decimal `json:"amount" binding:"required"`
	Method    string           `json:"method" binding:"required,oneof=transferencia efectivo tarjeta cheque"`
	Reference string           `json:"reference" binding:"max=100"`
	PaidAt    *time.Time       `json:"paid_at"`
}

// IssueInvoiceRequest signs an invoice for a client. When ReceivableID is
// set and Amount is omitted the receivable total is invoiced.
type IssueInvoiceRequest struct {
	ClientID     uuid.UUID        `json:"client_id"`
	ReceivableID *uuid.UUID       `json:"receivable_id"`
	Amount       *decimal.Decimal `json:"amount"`
	Discount     *decimal.Decimal `json:"discount"`
}
