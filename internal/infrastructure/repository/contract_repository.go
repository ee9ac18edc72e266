package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	domainRepo "github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/database"
	"gorm.io/gorm"
)

type contractRepository struct {
	db *gorm.DB
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *gorm.DB) domainRepo.ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) CreateTemplate(ctx context.Context, tpl *entity.ContractTemplate) error {
	return database.Conn(ctx, r.db).Create(tpl).Error
}

func (r *contractRepository) GetTemplate(ctx context.Context, id uuid.UUID) (*entity.ContractTemplate, error) {
	return first[entity.ContractTemplate](scoped(ctx, r.db), "id = ?", id)
}

func (r *contractRepository) UpdateTemplate(ctx context.Context, tpl *entity.ContractTemplate) error {
	return database.Conn(ctx, r.db).Save(tpl).Error
}

func (r *contractRepository) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	return scoped(ctx, r.db).Delete(&entity.ContractTemplate{}, "id = ?", id).Error
}

func (r *contractRepository) ListTemplates(ctx context.Context) ([]entity.ContractTemplate, error) {
	var tpls []entity.ContractTemplate
	err := scoped(ctx, r.db).Order("name ASC").Find(&tpls).Error
	return tpls, err
}

func (r *contractRepository) Create(ctx context.Context, contract *entity.Contract) error {
	return database.Conn(ctx, r.db).Create(contract).Error
}

func (r *contractRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Contract, error) {
	return first[entity.Contract](scoped(ctx, r.db), "id = ?", id)
}

func (r *contractRepository) Update(ctx context.Context, contract *entity.Contract) error {
	return database.Conn(ctx, r.db).Save(contract).Error
}

func (r *contractRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]entity.Contract, error) {
	var contracts []entity.Contract
	err := scoped(ctx, r.db).Where("client_id = ?", clientID).Order("created_at DESC").Find(&contracts).Error
	return contracts, err
}
