package request

import (
	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
)

// ClientRequest is used for both create and partial update
type ClientRequest struct {
	CompanyName  *string            `json:"company_name" binding:"omitempty,max=255"`
	ContactName  *string            `json:"contact_name" binding:"omitempty,max=255"`
	Phone        *string            `json:"phone" binding:"omitempty,max=50"`
	Email        *string            `json:"email" binding:"omitempty,email"`
	RFC          *string            `json:"rfc" binding:"omitempty,min=12,max=13"`
	FiscalName   *string            `json:"fiscal_name" binding:"omitempty,max=255"`
	FiscalRegime *string            `json:"fiscal_regime" binding:"omitempty,len=3,numeric"`
	TaxZipCode   *string            `json:"tax_zip_code" binding:"omitempty,len=5,numeric"`
	ExtraFields  entity.ExtraFields `json:"extra_fields"`
	AssignedTo   []uuid.UUID        `json:"assigned_to"`
}

// ExtraFieldsRequest replaces a client's extra field values
type ExtraFieldsRequest struct {
	Fields entity.ExtraFields `json:"fields" binding:"required"`
}

// AssignUserRequest links a staff member to a client
type AssignUserRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// ClientFieldRequest defines an extra field of the client registry
type ClientFieldRequest struct {
	Key      string `json:"key" binding:"omitempty,max=100"`
	Label    string `json:"label" binding:"required,max=255"`
	Required bool   `json:"required"`
	Position int    `json:"position" binding:"gte=0"`
}

// ListClientsQuery holds the client listing filters
type ListClientsQuery struct {
	Search    string `form:"search"`
	Mine      bool   `form:"mine"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=company_name contact_name created_at"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}
