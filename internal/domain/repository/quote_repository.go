package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	"github.com/sangkips/lexdesk-api/pkg/pagination"
)

// QuoteFilter contains filtering parameters for quote queries
type QuoteFilter struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.QuoteStatus
	ClientID   *uuid.UUID
	SortBy     string
	SortOrder  string
}

// QuoteStatusCount is the number of quotes in one status
type QuoteStatusCount struct {
	Status enum.QuoteStatus
	Count  int64
}

// QuoteRepository defines the interface for quote data operations
type QuoteRepository interface {
	Create(ctx context.Context, quote *entity.Quote) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Quote, error)
	// GetWithItems loads the quote and its lines.
	GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Quote, error)
	// GetForUpdate loads the quote with its lines and locks the quote row.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*entity.Quote, error)
	// SaveTotals persists the header fields and the three totals.
	SaveTotals(ctx context.Context, quote *entity.Quote) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter QuoteFilter) ([]entity.Quote, int64, error)
	NextSequence(ctx context.Context, prefix string) (int, error)
	CountByStatus(ctx context.Context) ([]QuoteStatusCount, error)

	AddItem(ctx context.Context, item *entity.QuoteItem) error
	UpdateItem(ctx context.Context, item *entity.QuoteItem) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
}
