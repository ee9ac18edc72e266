package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/pkg/pagination"
)

// ClientFilter narrows client listings
type ClientFilter struct {
	Pagination *pagination.PaginationParams
	Search     string
	AssignedTo *uuid.UUID
	SortBy     string
	SortOrder  string
}

// ClientRepository defines the interface for client data operations
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Client, error)
	GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Client, error)
	// FindByCompanyName matches case-insensitively within the tenant.
	FindByCompanyName(ctx context.Context, name string) ([]entity.Client, error)
	FindByEmail(ctx context.Context, email string) ([]entity.Client, error)
	Update(ctx context.Context, client *entity.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ClientFilter) ([]entity.Client, int64, error)
	// ListIDsAssignedTo returns the clients a user may see.
	ListIDsAssignedTo(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	AssignUser(ctx context.Context, clientID, userID uuid.UUID) error
	UnassignUser(ctx context.Context, clientID, userID uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]entity.Client, error)
}

// ClientFieldRepository defines the interface for the extra-field registry
type ClientFieldRepository interface {
	Create(ctx context.Context, def *entity.ClientFieldDefinition) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ClientFieldDefinition, error)
	GetByKey(ctx context.Context, key string) (*entity.ClientFieldDefinition, error)
	Update(ctx context.Context, def *entity.ClientFieldDefinition) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]entity.ClientFieldDefinition, error)
}
