package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ExtraFields are the free-form client attributes registered through
// ClientFieldDefinition.
type ExtraFields map[string]string

// Client represents a company the firm works for
type Client struct {
	ID           uuid.UUID                       `gorm:"type:uuid;primary_key" json:"id"`
	TenantID     uuid.UUID                       `gorm:"type:uuid;not null;uniqueIndex:idx_clients_tenant_company" json:"tenant_id"`
	CompanyName  string                          `gorm:"size:200;not null;uniqueIndex:idx_clients_tenant_company" json:"company_name"`
	ContactName  string                          `gorm:"size:200" json:"contact_name"`
	Phone        string                          `gorm:"size:20" json:"phone,omitempty"`
	Email        string                          `gorm:"size:255;index" json:"email"`
	LogoKey      string                          `gorm:"size:500" json:"logo_key,omitempty"`
	RFC          string                          `gorm:"size:13" json:"rfc,omitempty"`
	FiscalName   string                          `gorm:"size:255" json:"fiscal_name,omitempty"`
	FiscalRegime string                          `gorm:"size:3" json:"fiscal_regime,omitempty"`
	TaxZipCode   string                          `gorm:"size:5" json:"tax_zip_code,omitempty"`
	ExtraFields  datatypes.JSONType[ExtraFields] `gorm:"type:jsonb" json:"extra_fields"`
	CreatedBy    *uuid.UUID                      `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt    time.Time                       `json:"created_at"`
	UpdatedAt    time.Time                       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt                  `gorm:"index" json:"-"`

	AssignedUsers []User        `gorm:"many2many:client_assignments" json:"assigned_users,omitempty"`
	Matters       []Matter      `gorm:"foreignKey:ClientID" json:"matters,omitempty"`
	Requirements  []Requirement `gorm:"foreignKey:ClientID" json:"requirements,omitempty"`

	LogoURL string `gorm:"-" json:"logo_url,omitempty"`
}

// BeforeCreate generates a UUID before creating a new client
func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Client model
func (Client) TableName() string {
	return "clients"
}

// HasFiscalData reports whether the client can receive a stamped invoice.
func (c *Client) HasFiscalData() bool {
	return strings.TrimSpace(c.RFC) != "" &&
		strings.TrimSpace(c.FiscalName) != "" &&
		strings.TrimSpace(c.FiscalRegime) != "" &&
		strings.TrimSpace(c.TaxZipCode) != ""
}

// MissingFiscalFields lists the fiscal attributes that are still blank.
func (c *Client) MissingFiscalFields() []string {
	var missing []string
	if strings.TrimSpace(c.RFC) == "" {
		missing = append(missing, "rfc")
	}
	if strings.TrimSpace(c.FiscalName) == "" {
		missing = append(missing, "fiscal_name")
	}
	if strings.TrimSpace(c.FiscalRegime) == "" {
		missing = append(missing, "fiscal_regime")
	}
	if strings.TrimSpace(c.TaxZipCode) == "" {
		missing = append(missing, "tax_zip_code")
	}
	return missing
}

// Extra returns the decoded extra fields, never nil.
func (c *Client) Extra() ExtraFields {
	fields := c.ExtraFields.Data()
	if fields == nil {
		return ExtraFields{}
	}
	return fields
}

// SetExtra replaces the extra fields.
func (c *Client) SetExtra(fields ExtraFields) {
	c.ExtraFields = datatypes.NewJSONType(fields)
}

// IsAssigned reports whether userID is assigned to the client.
func (c *Client) IsAssigned(userID uuid.UUID) bool {
	for _, u := range c.AssignedUsers {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// ClientFieldDefinition registers a key that may appear in Client.ExtraFields.
type ClientFieldDefinition struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	TenantID  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_client_fields_tenant_key" json:"tenant_id"`
	Key       string         `gorm:"size:100;not null;uniqueIndex:idx_client_fields_tenant_key" json:"key"`
	Label     string         `gorm:"size:255;not null" json:"label"`
	Required  bool           `gorm:"default:false" json:"required"`
	Position  int            `gorm:"default:0" json:"position"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new field definition
func (f *ClientFieldDefinition) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ClientFieldDefinition model
func (ClientFieldDefinition) TableName() string {
	return "client_field_definitions"
}
