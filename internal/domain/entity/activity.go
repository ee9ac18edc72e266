package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityLog records who did what (bitácora)
type ActivityLog struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	TenantID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Action      string     `gorm:"size:255;not null" json:"action"`
	Description string     `gorm:"type:text" json:"description"`
	EntityType  string     `gorm:"size:50;index" json:"entity_type,omitempty"`
	EntityID    *uuid.UUID `gorm:"type:uuid;index" json:"entity_id,omitempty"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new log entry
func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ActivityLog model
func (ActivityLog) TableName() string {
	return "activity_logs"
}
