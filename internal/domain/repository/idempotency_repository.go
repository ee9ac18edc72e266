package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
)

// IdempotencyRepository stores the first response of each money-moving request
// so a retried conversion or payment replays it instead of running twice.
// Keys are scoped to tenant and user.
type IdempotencyRepository interface {
	// Get returns nil, nil for an unknown or expired key
	Get(ctx context.Context, tenantID, userID uuid.UUID, key string) (*entity.IdempotencyKey, error)
	Create(ctx context.Context, ikey *entity.IdempotencyKey) error
	DeleteExpired(ctx context.Context) (int64, error)
}
