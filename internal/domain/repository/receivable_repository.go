package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	"github.com/sangkips/lexdesk-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// ReceivableFilter narrows receivable listings
type ReceivableFilter struct {
	Pagination *pagination.PaginationParams
	Statuses   []enum.ReceivableStatus
	ClientID   *uuid.UUID
	ClientIDs  []uuid.UUID
	DueBefore  *time.Time
}

// ReceivableRepository defines the interface for accounts receivable
type ReceivableRepository interface {
	Create(ctx context.Context, receivable *entity.Receivable) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Receivable, error)
	GetWithPayments(ctx context.Context, id uuid.UUID) (*entity.Receivable, error)
	// GetForUpdate locks the receivable row for the rest of the transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*entity.Receivable, error)
	GetByQuoteID(ctx context.Context, quoteID uuid.UUID) (*entity.Receivable, error)
	Update(ctx context.Context, receivable *entity.Receivable) error
	List(ctx context.Context, filter ReceivableFilter) ([]entity.Receivable, int64, error)
	SumOutstanding(ctx context.Context) (decimal.Decimal, error)
}

// PaymentRepository defines the interface for payments
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
	ListByReceivable(ctx context.Context, receivableID uuid.UUID) ([]entity.Payment, error)
	SumByReceivable(ctx context.Context, receivableID uuid.UUID) (decimal.Decimal, error)
	SumBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}
