package request

import (
	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
)

// CreateTenantRequest registers a new firm owned by the caller
type CreateTenantRequest struct {
	Name     string                 `json:"name" binding:"required,min=2,max=255"`
	Slug     string                 `json:"slug" binding:"omitempty,max=100"`
	Settings *entity.TenantSettings `json:"settings"`
}

// UpdateTenantRequest changes the name or settings of the current firm
type UpdateTenantRequest struct {
	Name     string                 `json:"name" binding:"omitempty,max=255"`
	Settings *entity.TenantSettings `json:"settings"`
}

// InviteMemberRequest adds an existing user to the current firm
type InviteMemberRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	Role   string    `json:"role" binding:"omitempty,oneof=admin member"`
}

// UpdateMemberRoleRequest changes a member's role within the firm
type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin member"`
}

// AssignTenantRequest is the platform admin variant of InviteMemberRequest
type AssignTenantRequest struct {
	TenantID uuid.UUID `json:"tenant_id" binding:"required"`
	UserID   uuid.UUID `json:"user_id" binding:"required"`
	Role     string    `json:"role" binding:"omitempty,oneof=owner admin member"`
}
