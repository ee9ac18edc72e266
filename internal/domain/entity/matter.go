package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Matter priorities.
const (
	PriorityLow      = 1
	PriorityMedium   = 2
	PriorityCritical = 3
)

// Matter represents a case file (expediente) opened for a client
type Matter struct {
	ID        uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	TenantID  uuid.UUID         `gorm:"type:uuid;not null;index;uniqueIndex:idx_matters_tenant_number" json:"tenant_id"`
	ClientID  uuid.UUID         `gorm:"type:uuid;not null;index" json:"client_id"`
	Title     string            `gorm:"size:250;not null" json:"title"`
	Number    string            `gorm:"size:100;not null;uniqueIndex:idx_matters_tenant_number" json:"number"`
	Status    enum.MatterStatus `gorm:"default:0;index" json:"status"`
	Priority  int               `gorm:"default:1" json:"priority"`
	CreatedBy uuid.UUID         `gorm:"type:uuid" json:"created_by"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	DeletedAt gorm.DeletedAt    `gorm:"index" json:"-"`

	Client    *Client    `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Documents []Document `gorm:"foreignKey:MatterID" json:"documents,omitempty"`
}

// BeforeCreate generates a UUID before creating a new matter
func (m *Matter) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Matter model
func (Matter) TableName() string {
	return "matters"
}
