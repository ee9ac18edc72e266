package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/application/authz"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
	"github.com/sangkips/lexdesk-api/pkg/logger"
	"github.com/sangkips/lexdesk-api/pkg/utils"
	"github.com/shopspring/decimal"
)

// Membership roles inside a firm.
const (
	MemberRoleOwner  = "owner"
	MemberRoleAdmin  = "admin"
	MemberRoleMember = "member"
)

// TenantService handles tenant-related operations
type TenantService struct {
	tenantRepo     repository.TenantRepository
	accountingRepo repository.AccountingRepository
	txManager      repository.TxManager
}

// NewTenantService creates a new tenant service
func NewTenantService(
	tenantRepo repository.TenantRepository,
	accountingRepo repository.AccountingRepository,
	txManager repository.TxManager,
) *TenantService {
	return &TenantService{
		tenantRepo:     tenantRepo,
		accountingRepo: accountingRepo,
		txManager:      txManager,
	}
}

// CreateTenantInput represents input for creating a tenant
type CreateTenantInput struct {
	Name     string
	Slug     string
	OwnerID  uuid.UUID
	Settings *entity.TenantSettings
}

// CreateTenant creates a firm, makes the owner a member and seeds the
// default chart of accounts, all in one transaction.
func (s *TenantService) CreateTenant(ctx context.Context, input *CreateTenantInput) (*entity.Tenant, error) {
	slug := utils.Slugify(input.Slug)
	if slug == "" {
		slug = utils.Slugify(input.Name)
	}
	if slug == "" {
		return nil, apperror.NewFieldError("slug", "Slug is required")
	}

	existing, err := s.tenantRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Tenant slug already exists")
	}

	settings := entity.DefaultTenantSettings()
	if input.Settings != nil {
		if err := validateSettings(input.Settings); err != nil {
			return nil, err
		}
		settings = *input.Settings
	}

	tenant := &entity.Tenant{
		ID:       uuid.New(),
		Name:     strings.TrimSpace(input.Name),
		Slug:     slug,
		OwnerID:  input.OwnerID,
		IsActive: true,
		Settings: settings,
	}

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.tenantRepo.Create(ctx, tenant); err != nil {
			return err
		}
		if err := s.tenantRepo.AddMember(ctx, &entity.TenantMembership{
			TenantID: tenant.ID,
			UserID:   input.OwnerID,
			Role:     MemberRoleOwner,
		}); err != nil {
			return err
		}
		for _, account := range entity.DefaultChartOfAccounts(tenant.ID) {
			account := account
			if err := s.accountingRepo.CreateAccount(ctx, &account); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().Str("tenant_id", tenant.ID.String()).Str("slug", slug).Msg("tenant created")
	return tenant, nil
}

var decimalOne = decimal.NewFromInt(1)

func validateSettings(settings *entity.TenantSettings) error {
	var fields []apperror.FieldError
	if settings.TaxRate.Valid && (settings.TaxRate.Decimal.IsNegative() || settings.TaxRate.Decimal.GreaterThanOrEqual(decimalOne)) {
		fields = append(fields, apperror.FieldError{Field: "tax_rate", Message: "Tax rate must be between 0 and 1"})
	}
	if settings.DepositFraction.Valid && (settings.DepositFraction.Decimal.IsNegative() || settings.DepositFraction.Decimal.GreaterThan(decimalOne)) {
		fields = append(fields, apperror.FieldError{Field: "deposit_fraction", Message: "Deposit fraction must be between 0 and 1"})
	}
	if settings.ReceivableDueDays < 0 {
		fields = append(fields, apperror.FieldError{Field: "receivable_due_days", Message: "Due days must not be negative"})
	}
	if len(fields) > 0 {
		return apperror.NewValidationError(fields)
	}
	return nil
}

// GetTenant retrieves a tenant by ID
func (s *TenantService) GetTenant(ctx context.Context, id uuid.UUID) (*entity.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, apperror.ErrNotFound
	}
	return tenant, nil
}

// GetUserTenants retrieves all tenants a user belongs to
func (s *TenantService) GetUserTenants(ctx context.Context, userID uuid.UUID) ([]entity.Tenant, error) {
	return s.tenantRepo.GetUserTenants(ctx, userID)
}

// UpdateTenantInput represents input for updating a tenant
type UpdateTenantInput struct {
	ID       uuid.UUID
	Name     string
	Settings *entity.TenantSettings
}

// GetCurrentTenant returns the tenant of the request
func (s *TenantService) GetCurrentTenant(ctx context.Context) (*entity.Tenant, error) {
	return currentTenant(ctx, s.tenantRepo)
}

// UpdateTenant updates a tenant
func (s *TenantService) UpdateTenant(ctx context.Context, input *UpdateTenantInput) (*entity.Tenant, error) {
	if _, err := authz.Require(ctx, authz.ActionEdit, authz.ResourceSettings); err != nil {
		return nil, err
	}
	if input.Settings != nil {
		if err := validateSettings(input.Settings); err != nil {
			return nil, err
		}
	}
	tenant, err := s.tenantRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, apperror.ErrNotFound
	}

	if input.Name != "" {
		tenant.Name = input.Name
	}
	if input.Settings != nil {
		tenant.Settings = *input.Settings
	}

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return nil, err
	}

	return tenant, nil
}

// InviteMemberInput represents input for inviting a user to a tenant
type InviteMemberInput struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Role     string
}

// InviteMember adds a user to a tenant
func (s *TenantService) InviteMember(ctx context.Context, input *InviteMemberInput) error {
	if _, err := authz.Require(ctx, authz.ActionCreate, authz.ResourceUser); err != nil {
		return err
	}
	isMember, err := s.tenantRepo.IsMember(ctx, input.TenantID, input.UserID)
	if err != nil {
		return err
	}
	if isMember {
		return apperror.NewConflictError("User is already a member of this tenant")
	}

	role := input.Role
	if role == "" {
		role = MemberRoleMember
	}
	membership := &entity.TenantMembership{
		TenantID: input.TenantID,
		UserID:   input.UserID,
		Role:     role,
	}

	return s.tenantRepo.AddMember(ctx, membership)
}

// RemoveMember removes a user from a tenant
func (s *TenantService) RemoveMember(ctx context.Context, tenantID, userID uuid.UUID) error {
	if _, err := authz.Require(ctx, authz.ActionDelete, authz.ResourceUser); err != nil {
		return err
	}
	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return err
	}
	if tenant == nil {
		return apperror.NewNotFoundError("Tenant")
	}
	if tenant.OwnerID == userID {
		return apperror.NewBadRequestError("The owner cannot be removed")
	}
	return s.tenantRepo.RemoveMember(ctx, tenantID, userID)
}

// GetTenantMembers retrieves all members of a tenant
func (s *TenantService) GetTenantMembers(ctx context.Context, tenantID uuid.UUID) ([]entity.TenantMembership, error) {
	members, err := s.tenantRepo.GetMembers(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	for i := range members {
		members[i].PopulateUserDetails()
	}

	return members, nil
}

// UpdateMemberRole updates a member's role in a tenant
func (s *TenantService) UpdateMemberRole(ctx context.Context, tenantID, userID uuid.UUID, role string) error {
	if _, err := authz.Require(ctx, authz.ActionEdit, authz.ResourceUser); err != nil {
		return err
	}
	switch role {
	case MemberRoleAdmin, MemberRoleMember:
	default:
		return apperror.NewFieldError("role", "Role must be admin or member")
	}
	return s.tenantRepo.UpdateMemberRole(ctx, tenantID, userID, role)
}

// ListAllTenants retrieves all tenants (for super admin use)
func (s *TenantService) ListAllTenants(ctx context.Context) ([]entity.Tenant, error) {
	if err := requireSuperAdmin(ctx); err != nil {
		return nil, err
	}
	return s.tenantRepo.ListAll(ctx)
}

// AssignUserToTenantInput represents input for assigning a user to a tenant
type AssignUserToTenantInput struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Role     string
}

// AssignUserToTenant assigns a user to a tenant (for super admin use)
func (s *TenantService) AssignUserToTenant(ctx context.Context, input *AssignUserToTenantInput) error {
	if err := requireSuperAdmin(ctx); err != nil {
		return err
	}
	tenant, err := s.tenantRepo.GetByID(ctx, input.TenantID)
	if err != nil {
		return err
	}
	if tenant == nil {
		return apperror.ErrNotFound
	}

	isMember, err := s.tenantRepo.IsMember(ctx, input.TenantID, input.UserID)
	if err != nil {
		return err
	}
	if isMember {
		return apperror.NewConflictError("User is already a member of this tenant")
	}

	role := input.Role
	if role == "" {
		role = MemberRoleMember
	}

	membership := &entity.TenantMembership{
		TenantID: input.TenantID,
		UserID:   input.UserID,
		Role:     role,
	}

	return s.tenantRepo.AddMember(ctx, membership)
}

func requireSuperAdmin(ctx context.Context) error {
	p, ok := authz.FromContext(ctx)
	if !ok {
		return apperror.ErrUnauthorized
	}
	if !p.IsSuperAdmin {
		return apperror.ErrForbidden
	}
	return nil
}
