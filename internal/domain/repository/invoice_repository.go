package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/pkg/pagination"
)

// InvoiceFilter narrows invoice listings
type InvoiceFilter struct {
	Pagination   *pagination.PaginationParams
	ClientID     *uuid.UUID
	ReceivableID *uuid.UUID
}

// InvoiceRepository defines the interface for invoices
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	// GetByReceivable returns the invoice issued for a receivable, pending or
	// signed, or nil when there is none.
	GetByReceivable(ctx context.Context, receivableID uuid.UUID) (*entity.Invoice, error)
	// MarkSigned stores the stamp data; it only affects pending invoices.
	MarkSigned(ctx context.Context, invoice *entity.Invoice) error
	UpdateArtifacts(ctx context.Context, invoice *entity.Invoice) error
	// Delete removes an unsigned invoice permanently.
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter InvoiceFilter) ([]entity.Invoice, int64, error)
	Count(ctx context.Context) (int64, error)
	NextSequence(ctx context.Context, prefix string) (int, error)
}
