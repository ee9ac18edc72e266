package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	domainRepo "github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/database"
	"gorm.io/gorm"
)

type requirementRepository struct {
	db *gorm.DB
}

// NewRequirementRepository creates a new requirement repository
func NewRequirementRepository(db *gorm.DB) domainRepo.RequirementRepository {
	return &requirementRepository{db: db}
}

func (r *requirementRepository) CreateBatch(ctx context.Context, reqs []entity.Requirement) error {
	if len(reqs) == 0 {
		return nil
	}
	return database.Conn(ctx, r.db).CreateInBatches(reqs, 50).Error
}

func (r *requirementRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Requirement, error) {
	return first[entity.Requirement](scoped(ctx, r.db), "id = ?", id)
}

func (r *requirementRepository) Update(ctx context.Context, req *entity.Requirement) error {
	return database.Conn(ctx, r.db).Model(req).
		Select("Status", "DocumentID", "ReviewedBy").
		Updates(req).Error
}

func (r *requirementRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]entity.Requirement, error) {
	var reqs []entity.Requirement
	err := scoped(ctx, r.db).
		Where("client_id = ?", clientID).
		Order("created_at ASC").
		Find(&reqs).Error
	return reqs, err
}

func (r *requirementRepository) ResetByDocument(ctx context.Context, documentID uuid.UUID) (int64, error) {
	res := scoped(ctx, r.db).Model(&entity.Requirement{}).
		Where("document_id = ?", documentID).
		Updates(map[string]interface{}{
			"status":      enum.RequirementStatusPending,
			"document_id": nil,
			"reviewed_by": nil,
		})
	return res.RowsAffected, res.Error
}
