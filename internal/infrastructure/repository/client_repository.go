package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	domainRepo "github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var clientSortColumns = map[string]bool{
	"company_name": true,
	"created_at":   true,
	"updated_at":   true,
}

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB) domainRepo.ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *entity.Client) error {
	return database.Conn(ctx, r.db).Omit(clause.Associations).Create(client).Error
}

func (r *clientRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	return first[entity.Client](scoped(ctx, r.db).Preload("AssignedUsers"), "id = ?", id)
}

func (r *clientRepository) GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	return first[entity.Client](scoped(ctx, r.db).
		Preload("AssignedUsers").
		Preload("Matters", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Requirements", func(db *gorm.DB) *gorm.DB { return db.Order("category, name") }),
		"id = ?", id)
}

func (r *clientRepository) FindByCompanyName(ctx context.Context, name string) ([]entity.Client, error) {
	var clients []entity.Client
	err := scoped(ctx, r.db).Where("LOWER(company_name) = LOWER(?)", name).Find(&clients).Error
	return clients, err
}

func (r *clientRepository) FindByEmail(ctx context.Context, email string) ([]entity.Client, error) {
	var clients []entity.Client
	err := scoped(ctx, r.db).Where("email <> '' AND LOWER(email) = LOWER(?)", email).Find(&clients).Error
	return clients, err
}

func (r *clientRepository) Update(ctx context.Context, client *entity.Client) error {
	return database.Conn(ctx, r.db).Omit(clause.Associations).Save(client).Error
}

func (r *clientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return scoped(ctx, r.db).Delete(&entity.Client{}, "id = ?", id).Error
}

func (r *clientRepository) List(ctx context.Context, filter domainRepo.ClientFilter) ([]entity.Client, int64, error) {
	var clients []entity.Client
	var total int64

	query := scoped(ctx, r.db).Model(&entity.Client{})
	if filter.Search != "" {
		query = query.Where("company_name ILIKE ? OR contact_name ILIKE ? OR email ILIKE ? OR rfc ILIKE ?",
			like(filter.Search), like(filter.Search), like(filter.Search), like(filter.Search))
	}
	if filter.AssignedTo != nil {
		query = query.Where("id IN (?)", r.assignedTo(ctx, *filter.AssignedTo))
	}

	query, err := paginate(query, filter.Pagination, &total)
	if err != nil {
		return nil, 0, err
	}

	err = query.
		Preload("AssignedUsers").
		Order(orderBy(filter.SortBy, filter.SortOrder, clientSortColumns, "company_name ASC")).
		Find(&clients).Error
	return clients, total, err
}

func (r *clientRepository) assignedTo(ctx context.Context, userID uuid.UUID) *gorm.DB {
	return database.Conn(ctx, r.db).Table("client_assignments").Select("client_id").Where("user_id = ?", userID)
}

func (r *clientRepository) ListIDsAssignedTo(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := scoped(ctx, r.db).Model(&entity.Client{}).
		Where("id IN (?)", r.assignedTo(ctx, userID)).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *clientRepository) AssignUser(ctx context.Context, clientID, userID uuid.UUID) error {
	return database.Conn(ctx, r.db).Exec(
		"INSERT INTO client_assignments (client_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		clientID, userID,
	).Error
}

func (r *clientRepository) UnassignUser(ctx context.Context, clientID, userID uuid.UUID) error {
	return database.Conn(ctx, r.db).Exec(
		"DELETE FROM client_assignments WHERE client_id = ? AND user_id = ?",
		clientID, userID,
	).Error
}

func (r *clientRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := scoped(ctx, r.db).Model(&entity.Client{}).Count(&count).Error
	return count, err
}

func (r *clientRepository) ListRecent(ctx context.Context, limit int) ([]entity.Client, error) {
	var clients []entity.Client
	err := scoped(ctx, r.db).Order("created_at DESC").Limit(limit).Find(&clients).Error
	return clients, err
}

type clientFieldRepository struct {
	db *gorm.DB
}

// NewClientFieldRepository creates a new client field registry repository
func NewClientFieldRepository(db *gorm.DB) domainRepo.ClientFieldRepository {
	return &clientFieldRepository{db: db}
}

func (r *clientFieldRepository) Create(ctx context.Context, def *entity.ClientFieldDefinition) error {
	return database.Conn(ctx, r.db).Create(def).Error
}

func (r *clientFieldRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ClientFieldDefinition, error) {
	return first[entity.ClientFieldDefinition](scoped(ctx, r.db), "id = ?", id)
}

func (r *clientFieldRepository) GetByKey(ctx context.Context, key string) (*entity.ClientFieldDefinition, error) {
	return first[entity.ClientFieldDefinition](scoped(ctx, r.db), "key = ?", key)
}

func (r *clientFieldRepository) Update(ctx context.Context, def *entity.ClientFieldDefinition) error {
	return database.Conn(ctx, r.db).Save(def).Error
}

func (r *clientFieldRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return scoped(ctx, r.db).Delete(&entity.ClientFieldDefinition{}, "id = ?", id).Error
}

func (r *clientFieldRepository) List(ctx context.Context) ([]entity.ClientFieldDefinition, error) {
	var defs []entity.ClientFieldDefinition
	err := scoped(ctx, r.db).Order("position ASC, key ASC").Find(&defs).Error
	return defs, err
}
