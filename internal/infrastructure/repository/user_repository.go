package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	domainRepo "github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/database"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) domainRepo.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return database.Conn(ctx, r.db).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return first[entity.User](database.Conn(ctx, r.db), "id = ?", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return first[entity.User](database.Conn(ctx, r.db), "LOWER(email) = LOWER(?)", email)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return first[entity.User](database.Conn(ctx, r.db), "username = ?", username)
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return database.Conn(ctx, r.db).Omit("Roles").Save(user).Error
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return database.Conn(ctx, r.db).Delete(&entity.User{}, "id = ?", id).Error
}

func (r *userRepository) filtered(ctx context.Context, filter domainRepo.UserFilter) *gorm.DB {
	query := database.Conn(ctx, r.db).Model(&entity.User{})
	if filter.TenantID != nil {
		query = query.Where("users.id IN (?)",
			database.Conn(ctx, r.db).Model(&entity.TenantMembership{}).Select("user_id").Where("tenant_id = ?", *filter.TenantID))
	}
	if filter.Search != "" {
		query = query.Where("name ILIKE ? OR email ILIKE ? OR username ILIKE ?",
			like(filter.Search), like(filter.Search), like(filter.Search))
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}
	return query
}

func (r *userRepository) List(ctx context.Context, filter domainRepo.UserFilter) ([]entity.User, int64, error) {
	var users []entity.User
	var total int64

	query, err := paginate(r.filtered(ctx, filter), filter.Pagination, &total)
	if err != nil {
		return nil, 0, err
	}
	err = query.Preload("Roles").Order("created_at DESC").Find(&users).Error
	return users, total, err
}

func (r *userRepository) CountInactive(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	inactive := false
	var count int64
	err := r.filtered(ctx, domainRepo.UserFilter{TenantID: &tenantID, Active: &inactive}).Count(&count).Error
	return count, err
}

func (r *userRepository) GetWithRoles(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return first[entity.User](database.Conn(ctx, r.db).Preload("Roles.Permissions"), "id = ?", id)
}

func (r *userRepository) AssignRole(ctx context.Context, userID uuid.UUID, roleID uint) error {
	return database.Conn(ctx, r.db).Exec(
		"INSERT INTO model_has_roles (model_id, role_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		userID, roleID,
	).Error
}

func (r *userRepository) RemoveRole(ctx context.Context, userID uuid.UUID, roleID uint) error {
	return database.Conn(ctx, r.db).Exec(
		"DELETE FROM model_has_roles WHERE model_id = ? AND role_id = ?",
		userID, roleID,
	).Error
}

type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *gorm.DB) domainRepo.RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) GetByName(ctx context.Context, name string) (*entity.Role, error) {
	return first[entity.Role](database.Conn(ctx, r.db).Preload("Permissions"), "name = ?", name)
}

func (r *roleRepository) GetByID(ctx context.Context, id uint) (*entity.Role, error) {
	return first[entity.Role](database.Conn(ctx, r.db).Preload("Permissions"), "id = ?", id)
}

func (r *roleRepository) List(ctx context.Context) ([]entity.Role, error) {
	var roles []entity.Role
	err := database.Conn(ctx, r.db).Preload("Permissions").Order("name ASC").Find(&roles).Error
	return roles, err
}

func (r *roleRepository) SyncPermissions(ctx context.Context, roleID uint, permissionIDs []uint) error {
	db := database.Conn(ctx, r.db)
	role := &entity.Role{ID: roleID}
	var permissions []entity.Permission
	if len(permissionIDs) > 0 {
		if err := db.Find(&permissions, permissionIDs).Error; err != nil {
			return err
		}
	}
	return db.Model(role).Association("Permissions").Replace(permissions)
}

type permissionRepository struct {
	db *gorm.DB
}

// NewPermissionRepository creates a new permission repository
func NewPermissionRepository(db *gorm.DB) domainRepo.PermissionRepository {
	return &permissionRepository{db: db}
}

func (r *permissionRepository) GetByName(ctx context.Context, name string) (*entity.Permission, error) {
	return first[entity.Permission](database.Conn(ctx, r.db), "name = ?", name)
}

func (r *permissionRepository) List(ctx context.Context) ([]entity.Permission, error) {
	var permissions []entity.Permission
	err := database.Conn(ctx, r.db).Order("name ASC").Find(&permissions).Error
	return permissions, err
}
