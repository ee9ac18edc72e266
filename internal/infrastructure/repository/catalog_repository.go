package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	domainRepo "github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/database"
	"github.com/sangkips/lexdesk-api/pkg/pagination"
	"gorm.io/gorm"
)

type serviceItemRepository struct {
	db *gorm.DB
}

// NewServiceItemRepository creates a new service catalog repository
func NewServiceItemRepository(db *gorm.DB) domainRepo.ServiceItemRepository {
	return &serviceItemRepository{db: db}
}

func (r *serviceItemRepository) Create(ctx context.Context, item *entity.ServiceItem) error {
	return database.Conn(ctx, r.db).Create(item).Error
}

func (r *serviceItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ServiceItem, error) {
	return first[entity.ServiceItem](scoped(ctx, r.db), "id = ?", id)
}

func (r *serviceItemRepository) Update(ctx context.Context, item *entity.ServiceItem) error {
	return database.Conn(ctx, r.db).Save(item).Error
}

func (r *serviceItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return scoped(ctx, r.db).Delete(&entity.ServiceItem{}, "id = ?", id).Error
}

func (r *serviceItemRepository) List(ctx context.Context, params *pagination.PaginationParams, search string, activeOnly bool) ([]entity.ServiceItem, int64, error) {
	var items []entity.ServiceItem
	var total int64

	query := scoped(ctx, r.db).Model(&entity.ServiceItem{})
	if search != "" {
		query = query.Where("name ILIKE ? OR description ILIKE ?", like(search), like(search))
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	query, err := paginate(query, params, &total)
	if err != nil {
		return nil, 0, err
	}
	err = query.Order("name ASC").Find(&items).Error
	return items, total, err
}
