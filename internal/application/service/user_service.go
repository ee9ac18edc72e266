package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/application/authz"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
	"github.com/sangkips/lexdesk-api/pkg/logger"
	"github.com/sangkips/lexdesk-api/pkg/pagination"
)

// UserService handles user management operations
type UserService struct {
	userRepo       repository.UserRepository
	roleRepo       repository.RoleRepository
	permissionRepo repository.PermissionRepository
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	permissionRepo repository.PermissionRepository,
) *UserService {
	return &UserService{
		userRepo:       userRepo,
		roleRepo:       roleRepo,
		permissionRepo: permissionRepo,
	}
}

// ListUsersInput represents the input for listing users
type ListUsersInput struct {
	Pagination *pagination.PaginationParams
	Search     string
	Active     *bool
}

// ListUsers returns the members of the current tenant with their roles
func (s *UserService) ListUsers(ctx context.Context, input *ListUsersInput) (*pagination.PaginatedResult[entity.User], error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceUser); err != nil {
		return nil, err
	}
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}

	params := input.Pagination
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()

	users, total, err := s.userRepo.List(ctx, repository.UserFilter{
		Pagination: params,
		Search:     input.Search,
		TenantID:   &tenantID,
		Active:     input.Active,
	})
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(users, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// GetUser returns a user by ID with roles and permissions
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceUser); err != nil {
		return nil, err
	}
	return s.getWithRoles(ctx, userID)
}

func (s *UserService) getWithRoles(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return user, nil
}

// ApproveUser activates a self-registered account
func (s *UserService) ApproveUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	p, err := authz.Require(ctx, authz.ActionEdit, authz.ResourceUser)
	if err != nil {
		return nil, err
	}
	user, err := s.getWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsActive {
		return user, nil
	}

	now := time.Now()
	user.IsActive = true
	user.ApprovedAt = &now
	user.ApprovedBy = &p.UserID
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Str("user_id", user.ID.String()).
		Str("approved_by", p.UserID.String()).
		Msg("user approved")
	return user, nil
}

// DeactivateUser blocks future logins of a user
func (s *UserService) DeactivateUser(ctx context.Context, userID uuid.UUID) error {
	p, err := authz.Require(ctx, authz.ActionEdit, authz.ResourceUser)
	if err != nil {
		return err
	}
	if p.UserID == userID {
		return apperror.NewBadRequestError("You cannot deactivate your own account")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.NewNotFoundError("User")
	}
	user.IsActive = false
	return s.userRepo.Update(ctx, user)
}

// UpdateUserRolesInput represents the input for updating user roles
type UpdateUserRolesInput struct {
	UserID  uuid.UUID
	RoleIDs []uint
}

// UpdateUserRoles replaces the roles assigned to a user
func (s *UserService) UpdateUserRoles(ctx context.Context, input *UpdateUserRolesInput) (*entity.User, error) {
	if _, err := authz.Require(ctx, authz.ActionEdit, authz.ResourceUser); err != nil {
		return nil, err
	}
	user, err := s.getWithRoles(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	desiredRoles := make(map[uint]bool, len(input.RoleIDs))
	for _, roleID := range input.RoleIDs {
		role, err := s.roleRepo.GetByID(ctx, roleID)
		if err != nil {
			return nil, err
		}
		if role == nil {
			return nil, apperror.NewFieldError("role_ids", "Unknown role")
		}
		desiredRoles[roleID] = true
	}

	currentRoles := make(map[uint]bool, len(user.Roles))
	for _, role := range user.Roles {
		currentRoles[role.ID] = true
		if !desiredRoles[role.ID] {
			if err := s.userRepo.RemoveRole(ctx, user.ID, role.ID); err != nil {
				return nil, err
			}
		}
	}
	for roleID := range desiredRoles {
		if !currentRoles[roleID] {
			if err := s.userRepo.AssignRole(ctx, user.ID, roleID); err != nil {
				return nil, err
			}
		}
	}

	return s.getWithRoles(ctx, user.ID)
}

// DeleteUser soft deletes a user
func (s *UserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := authz.Require(ctx, authz.ActionDelete, authz.ResourceUser); err != nil {
		return err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.NewNotFoundError("User")
	}
	return s.userRepo.Delete(ctx, userID)
}

// ListRoles returns all available roles
func (s *UserService) ListRoles(ctx context.Context) ([]entity.Role, error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceUser); err != nil {
		return nil, err
	}
	return s.roleRepo.List(ctx)
}

// ListPermissions returns all available permissions
func (s *UserService) ListPermissions(ctx context.Context) ([]entity.Permission, error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceUser); err != nil {
		return nil, err
	}
	return s.permissionRepo.List(ctx)
}

// SyncRolePermissions replaces the permissions granted by a role
func (s *UserService) SyncRolePermissions(ctx context.Context, roleName string, permissionNames []string) (*entity.Role, error) {
	if _, err := authz.Require(ctx, authz.ActionEdit, authz.ResourceUser); err != nil {
		return nil, err
	}
	role, err := s.roleRepo.GetByName(ctx, roleName)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, apperror.NewNotFoundError("Role")
	}

	ids := make([]uint, 0, len(permissionNames))
	for _, name := range permissionNames {
		perm, err := s.permissionRepo.GetByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if perm == nil {
			return nil, apperror.NewFieldError("permissions", "Unknown permission "+name)
		}
		ids = append(ids, perm.ID)
	}
	if err := s.roleRepo.SyncPermissions(ctx, role.ID, ids); err != nil {
		return nil, err
	}
	return s.roleRepo.GetByName(ctx, roleName)
}
