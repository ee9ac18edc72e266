package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ServiceItemRequest creates or updates a catalog entry
type ServiceItemRequest struct {
	Name        *string          `json:"name" binding:"omitempty,max=255"`
	Description *string          `json:"description"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	IsActive    *bool            `json:"is_active"`
}

// QuoteItemRequest is one line of a quote. UnitPrice defaults to the
// catalog price when ServiceID is given.
type QuoteItemRequest struct {
	ServiceID   *uuid.UUID       `json:"service_id"`
	Description string           `json:"description" binding:"max=500"`
	Quantity    int              `json:"quantity" binding:"required"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

// QuoteRequest creates a quote or updates its header
type QuoteRequest struct {
	ProspectName    *string            `json:"prospect_name" binding:"omitempty,max=255"`
	ProspectCompany *string            `json:"prospect_company" binding:"omitempty,max=255"`
	ProspectEmail   *string            `json:"prospect_email" binding:"omitempty,email"`
	ProspectPhone   *string            `json:"prospect_phone" binding:"omitempty,max=50"`
	ClientID        *uuid.UUID         `json:"client_id"`
	DiscountPercent *decimal.Decimal   `json:"discount_percent"`
	ValidUntil      *time.Time         `json:"valid_until"`
	Notes           *string            `json:"notes"`
	Items           []QuoteItemRequest `json:"items" binding:"dive"`
}

// QuoteStatusRequest moves a quote through its lifecycle
type QuoteStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft sent approved rejected"`
}

// SendDocumentRequest overrides the recipient of an emailed PDF
type SendDocumentRequest struct {
	To string `json:"to" binding:"omitempty,email"`
}

// ConvertQuoteRequest turns a quote into an engagement. The deposit is
// optional and uses the firm's deposit fraction.
type ConvertQuoteRequest struct {
	ApplyDeposit     bool   `json:"apply_deposit"`
	DepositMethod    string `json:"deposit_method" binding:"omitempty,oneof=transferencia efectivo tarjeta cheque"`
	DepositReference string `json:"deposit_reference" binding:"max=100"`
}

// ListQuotesQuery holds the quote listing filters
type ListQuotesQuery struct {
	Search    string `form:"search"`
	Status    string `form:"status" binding:"omitempty,oneof=draft sent approved rejected converted"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=number total created_at"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}
