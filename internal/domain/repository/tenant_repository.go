package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
)

// TenantRepository stores firms and their memberships. Tenant rows are not
// tenant scoped; callers check membership themselves.
type TenantRepository interface {
	Create(ctx context.Context, tenant *entity.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Tenant, error)
	// GetBySlug resolves the firm from the subdomain or X-Tenant header
	GetBySlug(ctx context.Context, slug string) (*entity.Tenant, error)
	Update(ctx context.Context, tenant *entity.Tenant) error
	ListAll(ctx context.Context) ([]entity.Tenant, error)

	GetUserTenants(ctx context.Context, userID uuid.UUID) ([]entity.Tenant, error)
	IsMember(ctx context.Context, tenantID, userID uuid.UUID) (bool, error)
	GetMembers(ctx context.Context, tenantID uuid.UUID) ([]entity.TenantMembership, error)
	AddMember(ctx context.Context, membership *entity.TenantMembership) error
	UpdateMemberRole(ctx context.Context, tenantID, userID uuid.UUID, role string) error
	RemoveMember(ctx context.Context, tenantID, userID uuid.UUID) error
}
