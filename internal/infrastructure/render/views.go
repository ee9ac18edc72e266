// Package render produces the PDF documents and QR images handed to clients.
package render

import (
	"time"

	"github.com/shopspring/decimal"
)

// FirmView is the issuing firm as printed on every document.
type FirmView struct {
	Name    string
	RFC     string
	Regime  string
	Address string
}

// PartyView is the client or prospect a document is addressed to.
type PartyView struct {
	Name    string
	Contact string
	Email   string
	RFC     string
	Regime  string
	ZipCode string
}

// LineView is one priced line.
type LineView struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
}

// QuoteView is the input of a quote PDF.
type QuoteView struct {
	Firm            FirmView
	Prospect        PartyView
	Number          string
	Date            time.Time
	ValidUntil      *time.Time
	Items           []LineView
	Subtotal        decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	Total           decimal.Decimal
	Notes           string
}

// InvoiceView is the printed representation of a signed CFDI.
type InvoiceView struct {
	Firm        FirmView
	Receiver    PartyView
	Folio       string
	FiscalUUID  string
	SignedAt    time.Time
	Description string
	ListPrice   decimal.Decimal
	Discount    decimal.Decimal
	TaxBase     decimal.Decimal
	TaxRate     decimal.Decimal
	TaxAmount   decimal.Decimal
	Total       decimal.Decimal
	CfdiSign    string
	SatSign     string
	QRPNG       []byte
}

// ReceiptView is the proof of a single payment.
type ReceiptView struct {
	Firm      FirmView
	Client    PartyView
	Concept   string
	Amount    decimal.Decimal
	Method    string
	Reference string
	PaidAt    time.Time
	Total     decimal.Decimal
	Paid      decimal.Decimal
	Balance   decimal.Decimal
	Number    string
}

// ContractView is a rendered contract body.
type ContractView struct {
	Firm  FirmView
	Title string
	Body  string
	Date  time.Time
}
