package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/pkg/pagination"
)

// ServiceItemRepository defines the interface for the service catalog
type ServiceItemRepository interface {
	Create(ctx context.Context, item *entity.ServiceItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ServiceItem, error)
	Update(ctx context.Context, item *entity.ServiceItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *pagination.PaginationParams, search string, activeOnly bool) ([]entity.ServiceItem, int64, error)
}
