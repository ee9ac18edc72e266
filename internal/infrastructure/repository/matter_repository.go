package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	domainRepo "github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type matterRepository struct {
	db *gorm.DB
}

// NewMatterRepository creates a new matter repository
func NewMatterRepository(db *gorm.DB) domainRepo.MatterRepository {
	return &matterRepository{db: db}
}

func (r *matterRepository) Create(ctx context.Context, matter *entity.Matter) error {
	return database.Conn(ctx, r.db).Omit(clause.Associations).Create(matter).Error
}

func (r *matterRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Matter, error) {
	return first[entity.Matter](scoped(ctx, r.db).
		Preload("Client").
		Preload("Documents", "in_trash = ?", false),
		"id = ?", id)
}

func (r *matterRepository) GetByNumber(ctx context.Context, number string) (*entity.Matter, error) {
	return first[entity.Matter](scoped(ctx, r.db), "number = ?", number)
}

func (r *matterRepository) Update(ctx context.Context, matter *entity.Matter) error {
	return database.Conn(ctx, r.db).Omit(clause.Associations).Save(matter).Error
}

func (r *matterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return scoped(ctx, r.db).Delete(&entity.Matter{}, "id = ?", id).Error
}

func (r *matterRepository) List(ctx context.Context, filter domainRepo.MatterFilter) ([]entity.Matter, int64, error) {
	var matters []entity.Matter
	var total int64

	query := scoped(ctx, r.db).Model(&entity.Matter{})
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("title ILIKE ? OR number ILIKE ?", like(filter.Search), like(filter.Search))
	}

	query, err := paginate(query, filter.Pagination, &total)
	if err != nil {
		return nil, 0, err
	}
	err = query.Preload("Client").Order("priority DESC, created_at DESC").Find(&matters).Error
	return matters, total, err
}

func (r *matterRepository) CountByStatus(ctx context.Context, status enum.MatterStatus) (int64, error) {
	var count int64
	err := scoped(ctx, r.db).Model(&entity.Matter{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *matterRepository) CountByPriority(ctx context.Context, priority int) (int64, error) {
	var count int64
	err := scoped(ctx, r.db).Model(&entity.Matter{}).
		Where("priority = ? AND status <> ?", priority, enum.MatterStatusClosed).
		Count(&count).Error
	return count, err
}
