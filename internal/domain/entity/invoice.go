package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Invoice is a CFDI issued to a client. Once signed it is never modified.
type Invoice struct {
	ID             uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	TenantID       uuid.UUID          `gorm:"type:uuid;not null;index;uniqueIndex:idx_invoices_tenant_folio" json:"tenant_id"`
	ClientID       uuid.UUID          `gorm:"type:uuid;not null;index" json:"client_id"`
	ReceivableID   *uuid.UUID         `gorm:"type:uuid;index" json:"receivable_id,omitempty"`
	Folio          string             `gorm:"size:50;not null;uniqueIndex:idx_invoices_tenant_folio" json:"folio"`
	Description    string             `gorm:"size:500" json:"description"`
	TotalAmount    decimal.Decimal    `gorm:"type:decimal(15,2);not null" json:"total_amount"`
	DiscountAmount decimal.Decimal    `gorm:"type:decimal(15,2);not null;default:0" json:"discount_amount"`
	ListPrice      decimal.Decimal    `gorm:"type:decimal(15,2);not null" json:"list_price"`
	TaxBase        decimal.Decimal    `gorm:"type:decimal(15,2);not null" json:"tax_base"`
	TaxAmount      decimal.Decimal    `gorm:"type:decimal(15,2);not null" json:"tax_amount"`
	TaxRate        decimal.Decimal    `gorm:"type:decimal(5,4);not null" json:"tax_rate"`
	Status         enum.InvoiceStatus `gorm:"default:0;index" json:"status"`
	SignatureID    string             `gorm:"size:100;index" json:"signature_id,omitempty"`
	FiscalUUID     string             `gorm:"size:36;index" json:"fiscal_uuid,omitempty"`
	CfdiSign       string             `gorm:"type:text" json:"-"`
	XMLKey         string             `gorm:"size:500" json:"xml_key,omitempty"`
	QRKey          string             `gorm:"size:500" json:"qr_key,omitempty"`
	PDFKey         string             `gorm:"size:500" json:"pdf_key,omitempty"`
	Snapshot       datatypes.JSON     `gorm:"type:jsonb" json:"snapshot,omitempty"`
	SignedAt       *time.Time         `json:"signed_at,omitempty"`
	CreatedBy      uuid.UUID          `gorm:"type:uuid" json:"created_by"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`

	Client *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// IsSigned reports whether the authority stamped the invoice.
func (i *Invoice) IsSigned() bool {
	return i.Status == enum.InvoiceStatusSigned
}

// SignatureTail returns the last eight characters of the issuer seal, as
// required by the verification URL.
func (i *Invoice) SignatureTail() string {
	if len(i.CfdiSign) <= 8 {
		return i.CfdiSign
	}
	return i.CfdiSign[len(i.CfdiSign)-8:]
}
