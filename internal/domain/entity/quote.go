package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/billing"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidQuantity        = errors.New("quantity must be greater than zero")
	ErrInvalidUnitPrice       = errors.New("unit price must not be negative")
	ErrInvalidDiscountPercent = errors.New("discount percent must be between 0 and 100")
	ErrQuoteItemNotFound      = errors.New("quote item not found")
	ErrQuoteConverted         = errors.New("quote has already been converted")
)

var maxPercent = decimal.NewFromInt(100)

// Quote is a priced proposal of services sent to a prospect
type Quote struct {
	ID              uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	TenantID        uuid.UUID        `gorm:"type:uuid;not null;index;uniqueIndex:idx_quotes_tenant_number" json:"tenant_id"`
	Number          string           `gorm:"size:50;not null;uniqueIndex:idx_quotes_tenant_number" json:"number"`
	ProspectName    string           `gorm:"size:200" json:"prospect_name"`
	ProspectCompany string           `gorm:"size:200;not null" json:"prospect_company"`
	ProspectEmail   string           `gorm:"size:255" json:"prospect_email"`
	ProspectPhone   string           `gorm:"size:20" json:"prospect_phone,omitempty"`
	ClientID        *uuid.UUID       `gorm:"type:uuid;index" json:"client_id,omitempty"`
	ReceivableID    *uuid.UUID       `gorm:"type:uuid" json:"receivable_id,omitempty"`
	Subtotal        decimal.Decimal  `gorm:"type:decimal(15,2);not null;default:0" json:"subtotal"`
	DiscountPercent decimal.Decimal  `gorm:"type:decimal(5,2);not null;default:0" json:"discount_percent"`
	DiscountAmount  decimal.Decimal  `gorm:"type:decimal(15,2);not null;default:0" json:"discount_amount"`
	Total           decimal.Decimal  `gorm:"type:decimal(15,2);not null;default:0" json:"total"`
	Status          enum.QuoteStatus `gorm:"default:0;index" json:"status"`
	ValidUntil      *time.Time       `gorm:"type:date" json:"valid_until,omitempty"`
	Notes           string           `gorm:"type:text" json:"notes,omitempty"`
	CreatedBy       uuid.UUID        `gorm:"type:uuid;not null" json:"created_by"`
	SentAt          *time.Time       `json:"sent_at,omitempty"`
	ConvertedAt     *time.Time       `json:"converted_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	DeletedAt       gorm.DeletedAt   `gorm:"index" json:"-"`

	Client *Client     `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Items  []QuoteItem `gorm:"foreignKey:QuoteID" json:"items"`
}

// BeforeCreate generates a UUID before creating a new quote
func (q *Quote) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Quote model
func (Quote) TableName() string {
	return "quotes"
}

// QuoteItem is one priced service line of a quote
type QuoteItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	QuoteID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"quote_id"`
	ServiceID   *uuid.UUID      `gorm:"type:uuid;index" json:"service_id,omitempty"`
	Description string          `gorm:"size:500;not null" json:"description"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"line_total"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new quote item
func (qi *QuoteItem) BeforeCreate(tx *gorm.DB) error {
	if qi.ID == uuid.Nil {
		qi.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the QuoteItem model
func (QuoteItem) TableName() string {
	return "quote_items"
}

// NewQuoteItem validates the inputs and builds a line with its total.
func NewQuoteItem(serviceID *uuid.UUID, description string, quantity int, unitPrice decimal.Decimal) (*QuoteItem, error) {
	if err := validateLine(quantity, unitPrice); err != nil {
		return nil, err
	}
	return &QuoteItem{
		ID:          uuid.New(),
		ServiceID:   serviceID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   billing.Round(unitPrice),
		LineTotal:   lineTotal(quantity, unitPrice),
	}, nil
}

func validateLine(quantity int, unitPrice decimal.Decimal) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return ErrInvalidUnitPrice
	}
	return nil
}

func lineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return billing.Round(billing.Round(unitPrice).Mul(decimal.NewFromInt(int64(quantity))))
}

// IsConverted reports whether the quote already produced a receivable.
func (q *Quote) IsConverted() bool {
	return q.Status == enum.QuoteStatusConverted || q.ReceivableID != nil
}

// AddItem attaches a validated line and recomputes the totals.
func (q *Quote) AddItem(item *QuoteItem) error {
	if q.IsConverted() {
		return ErrQuoteConverted
	}
	if err := validateLine(item.Quantity, item.UnitPrice); err != nil {
		return err
	}
	item.QuoteID = q.ID
	item.LineTotal = lineTotal(item.Quantity, item.UnitPrice)
	q.Items = append(q.Items, *item)
	q.RecomputeTotals()
	return nil
}

// UpdateItem changes quantity and price of an existing line.
func (q *Quote) UpdateItem(itemID uuid.UUID, description string, quantity int, unitPrice decimal.Decimal) (*QuoteItem, error) {
	if q.IsConverted() {
		return nil, ErrQuoteConverted
	}
	if err := validateLine(quantity, unitPrice); err != nil {
		return nil, err
	}
	for i := range q.Items {
		if q.Items[i].ID == itemID {
			if description != "" {
				q.Items[i].Description = description
			}
			q.Items[i].Quantity = quantity
			q.Items[i].UnitPrice = billing.Round(unitPrice)
			q.Items[i].LineTotal = lineTotal(quantity, unitPrice)
			q.RecomputeTotals()
			return &q.Items[i], nil
		}
	}
	return nil, ErrQuoteItemNotFound
}

// RemoveItem drops a line and recomputes the totals.
func (q *Quote) RemoveItem(itemID uuid.UUID) error {
	if q.IsConverted() {
		return ErrQuoteConverted
	}
	for i := range q.Items {
		if q.Items[i].ID == itemID {
			q.Items = append(q.Items[:i], q.Items[i+1:]...)
			q.RecomputeTotals()
			return nil
		}
	}
	return ErrQuoteItemNotFound
}

// SetDiscountPercent validates and applies a new discount, then recomputes.
func (q *Quote) SetDiscountPercent(percent decimal.Decimal) error {
	if percent.IsNegative() || percent.GreaterThan(maxPercent) {
		return ErrInvalidDiscountPercent
	}
	q.DiscountPercent = percent.Round(2)
	q.RecomputeTotals()
	return nil
}

// RecomputeTotals derives subtotal, discount and total from the current
// lines. It is always computed from scratch so repeated calls are stable.
func (q *Quote) RecomputeTotals() {
	subtotal := decimal.Zero
	for _, item := range q.Items {
		subtotal = subtotal.Add(lineTotal(item.Quantity, item.UnitPrice))
	}
	subtotal = billing.Round(subtotal)

	discount := decimal.Zero
	if q.DiscountPercent.GreaterThan(decimal.Zero) {
		discount = billing.PercentOf(subtotal, q.DiscountPercent)
	}

	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	q.Subtotal = subtotal
	q.DiscountAmount = discount
	q.Total = billing.Round(total)
}

// CanTransitionTo reports whether the status change is allowed. Converted is
// only reached through conversion and is terminal.
func (q *Quote) CanTransitionTo(next enum.QuoteStatus) bool {
	if q.IsConverted() {
		return false
	}
	switch next {
	case enum.QuoteStatusDraft:
		return true
	case enum.QuoteStatusSent:
		return q.Status == enum.QuoteStatusDraft || q.Status == enum.QuoteStatusSent
	case enum.QuoteStatusApproved, enum.QuoteStatusRejected:
		return q.Status == enum.QuoteStatusSent || q.Status == enum.QuoteStatusDraft
	}
	return false
}
