package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContractTemplate is a contract body with {{variable}} placeholders
type ContractTemplate struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	TenantID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Body      string         `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new template
func (t *ContractTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ContractTemplate model
func (ContractTemplate) TableName() string {
	return "contract_templates"
}

// Contract is a template rendered for a specific client
type Contract struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	TenantID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ClientID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"client_id"`
	TemplateID *uuid.UUID `gorm:"type:uuid" json:"template_id,omitempty"`
	Title      string     `gorm:"size:255;not null" json:"title"`
	Body       string     `gorm:"type:text;not null" json:"body"`
	PDFKey     string     `gorm:"size:500" json:"pdf_key,omitempty"`
	CreatedBy  uuid.UUID  `gorm:"type:uuid" json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new contract
func (c *Contract) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Contract model
func (Contract) TableName() string {
	return "contracts"
}
