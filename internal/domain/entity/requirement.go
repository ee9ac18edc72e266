package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	"gorm.io/gorm"
)

// RequirementCategories is the checklist every new client starts with, keyed
// by the root folder that holds the supporting documents.
var RequirementCategories = []RequirementCategory{
	{Name: "Licencia", Items: []string{
		"Acta Constitutiva",
		"Poder Notarial",
		"Constancia de Situación Fiscal",
		"INE Representante",
	}},
	{Name: "Funcionamiento", Items: []string{
		"Uso de Suelo",
		"Predial Actualizado",
		"Croquis de Ubicación",
		"VoBo de Ecología (si aplica)",
	}},
	{Name: "Protección Civil", Items: []string{
		"Visto Bueno de Bomberos",
		"Dictamen Eléctrico",
		"Programa Interno de PC",
		"Capacitación de Personal",
		"Póliza de Seguro RC",
	}},
	{Name: "Cotizaciones"},
}

// RequirementCategory is a checklist folder and its expected documents.
type RequirementCategory struct {
	Name  string
	Items []string
}

// Requirement is one document a client must provide
type Requirement struct {
	ID         uuid.UUID              `gorm:"type:uuid;primary_key" json:"id"`
	TenantID   uuid.UUID              `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ClientID   uuid.UUID              `gorm:"type:uuid;not null;index" json:"client_id"`
	Category   string                 `gorm:"size:100;not null" json:"category"`
	Name       string                 `gorm:"size:255;not null" json:"name"`
	Status     enum.RequirementStatus `gorm:"default:0" json:"status"`
	DocumentID *uuid.UUID             `gorm:"type:uuid;index" json:"document_id,omitempty"`
	ReviewedBy *uuid.UUID             `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new requirement
func (r *Requirement) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Requirement model
func (Requirement) TableName() string {
	return "requirements"
}

// Reset returns the requirement to pending and drops its document.
func (r *Requirement) Reset() {
	r.Status = enum.RequirementStatusPending
	r.DocumentID = nil
	r.ReviewedBy = nil
}

// RequirementGroup is the checklist of one category with its progress.
type RequirementGroup struct {
	Category string        `json:"category"`
	Items    []Requirement `json:"items"`
	Approved int           `json:"approved"`
	Progress int           `json:"progress"`
}
