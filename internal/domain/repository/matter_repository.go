package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	"github.com/sangkips/lexdesk-api/pkg/pagination"
)

// MatterFilter narrows matter listings
type MatterFilter struct {
	Pagination *pagination.PaginationParams
	ClientID   *uuid.UUID
	Status     *enum.MatterStatus
	Search     string
}

// MatterRepository defines the interface for matters
type MatterRepository interface {
	Create(ctx context.Context, matter *entity.Matter) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Matter, error)
	GetByNumber(ctx context.Context, number string) (*entity.Matter, error)
	Update(ctx context.Context, matter *entity.Matter) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter MatterFilter) ([]entity.Matter, int64, error)
	CountByStatus(ctx context.Context, status enum.MatterStatus) (int64, error)
	CountByPriority(ctx context.Context, priority int) (int64, error)
}
