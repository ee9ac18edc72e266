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
	ErrInvalidPaymentAmount = errors.New("payment amount must be greater than zero")
	ErrInvalidPaymentMethod = errors.New("unsupported payment method")
	ErrReceivableSettled    = errors.New("receivable is already paid")
)

// Receivable is money a client owes for a converted quote
type Receivable struct {
	ID          uuid.UUID             `gorm:"type:uuid;primary_key" json:"id"`
	TenantID    uuid.UUID             `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ClientID    uuid.UUID             `gorm:"type:uuid;not null;index" json:"client_id"`
	QuoteID     *uuid.UUID            `gorm:"type:uuid;uniqueIndex" json:"quote_id,omitempty"`
	Concept     string                `gorm:"size:255;not null" json:"concept"`
	TotalAmount decimal.Decimal       `gorm:"type:decimal(15,2);not null" json:"total_amount"`
	PaidAmount  decimal.Decimal       `gorm:"type:decimal(15,2);not null;default:0" json:"paid_amount"`
	Balance     decimal.Decimal       `gorm:"type:decimal(15,2);not null" json:"balance"`
	Status      enum.ReceivableStatus `gorm:"default:0;index" json:"status"`
	DueDate     time.Time             `gorm:"type:date;index" json:"due_date"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`

	Client   *Client   `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Payments []Payment `gorm:"foreignKey:ReceivableID" json:"payments,omitempty"`
}

// BeforeCreate generates a UUID before creating a new receivable
func (r *Receivable) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Receivable model
func (Receivable) TableName() string {
	return "receivables"
}

// NewReceivable opens a pending receivable for the full amount.
func NewReceivable(tenantID, clientID uuid.UUID, quoteID *uuid.UUID, concept string, total decimal.Decimal, due time.Time) *Receivable {
	r := &Receivable{
		ID:          uuid.New(),
		TenantID:    tenantID,
		ClientID:    clientID,
		QuoteID:     quoteID,
		Concept:     concept,
		TotalAmount: billing.Round(total),
		PaidAmount:  decimal.Zero,
		DueDate:     due,
	}
	r.Recalculate(decimal.Zero)
	return r
}

// Recalculate sets paid amount, balance and status from the sum of payments.
// Balance never goes below zero; overpayment is absorbed in PaidAmount.
func (r *Receivable) Recalculate(paid decimal.Decimal) {
	r.PaidAmount = billing.Round(paid)
	remaining := r.TotalAmount.Sub(r.PaidAmount)

	switch {
	case remaining.LessThanOrEqual(decimal.Zero):
		r.Status = enum.ReceivableStatusPaid
		r.Balance = decimal.Zero
	case r.PaidAmount.GreaterThan(decimal.Zero):
		r.Status = enum.ReceivableStatusPartial
		r.Balance = remaining
	default:
		r.Status = enum.ReceivableStatusPending
		r.Balance = remaining
	}
}

// IsPaid reports whether nothing is left to collect.
func (r *Receivable) IsPaid() bool {
	return r.Status == enum.ReceivableStatusPaid
}

// IsOverdue reports whether an open receivable is past its due date.
func (r *Receivable) IsOverdue(now time.Time) bool {
	return !r.IsPaid() && r.DueDate.Before(now.Truncate(24*time.Hour))
}

// Payment is a single amount collected against a receivable
type Payment struct {
	ID           uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	TenantID     uuid.UUID          `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ReceivableID uuid.UUID          `gorm:"type:uuid;not null;index" json:"receivable_id"`
	Amount       decimal.Decimal    `gorm:"type:decimal(15,2);not null" json:"amount"`
	Method       enum.PaymentMethod `gorm:"size:20;not null" json:"method"`
	Reference    string             `gorm:"size:100" json:"reference"`
	IsDeposit    bool               `gorm:"default:false" json:"is_deposit"`
	PaidAt       time.Time          `gorm:"not null" json:"paid_at"`
	RecordedBy   uuid.UUID          `gorm:"type:uuid;not null" json:"recorded_by"`
	CreatedAt    time.Time          `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new payment
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}

// Validate checks the amount and method before anything is persisted.
func (p *Payment) Validate() error {
	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidPaymentAmount
	}
	if !p.Method.IsValid() {
		return ErrInvalidPaymentMethod
	}
	return nil
}

// SumPayments adds up payment amounts.
func SumPayments(payments []Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}
