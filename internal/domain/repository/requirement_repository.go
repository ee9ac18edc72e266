package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
)

// RequirementRepository defines the interface for the client checklist
type RequirementRepository interface {
	CreateBatch(ctx context.Context, reqs []entity.Requirement) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Requirement, error)
	Update(ctx context.Context, req *entity.Requirement) error
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]entity.Requirement, error)
	// ResetByDocument returns every requirement linked to the document to pending.
	ResetByDocument(ctx context.Context, documentID uuid.UUID) (int64, error)
}
