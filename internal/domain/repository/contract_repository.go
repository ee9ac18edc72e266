package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
)

// ContractRepository defines the interface for contract templates and contracts
type ContractRepository interface {
	CreateTemplate(ctx context.Context, tpl *entity.ContractTemplate) error
	GetTemplate(ctx context.Context, id uuid.UUID) (*entity.ContractTemplate, error)
	UpdateTemplate(ctx context.Context, tpl *entity.ContractTemplate) error
	DeleteTemplate(ctx context.Context, id uuid.UUID) error
	ListTemplates(ctx context.Context) ([]entity.ContractTemplate, error)

	Create(ctx context.Context, contract *entity.Contract) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Contract, error)
	Update(ctx context.Context, contract *entity.Contract) error
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]entity.Contract, error)
}
