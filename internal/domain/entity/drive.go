package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Folder groups documents of a client. Root folders have no parent.
type Folder struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	TenantID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ClientID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"client_id"`
	ParentID  *uuid.UUID     `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	MatterID  *uuid.UUID     `gorm:"type:uuid;index" json:"matter_id,omitempty"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new folder
func (f *Folder) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Folder model
func (Folder) TableName() string {
	return "folders"
}

// Document is a stored file in the drive
type Document struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	TenantID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ClientID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"client_id"`
	FolderID    *uuid.UUID `gorm:"type:uuid;index" json:"folder_id,omitempty"`
	MatterID    *uuid.UUID `gorm:"type:uuid;index" json:"matter_id,omitempty"`
	Name        string     `gorm:"size:255;not null" json:"name"`
	StorageKey  string     `gorm:"size:500;not null" json:"-"`
	ContentType string     `gorm:"size:100" json:"content_type"`
	Size        int64      `json:"size"`
	UploadedBy  *uuid.UUID `gorm:"type:uuid" json:"uploaded_by,omitempty"`
	InTrash     bool       `gorm:"default:false;index" json:"in_trash"`
	TrashedAt   *time.Time `json:"trashed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	URL string `gorm:"-" json:"url,omitempty"`
}

// BeforeCreate generates a UUID before creating a new document
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Document model
func (Document) TableName() string {
	return "documents"
}
