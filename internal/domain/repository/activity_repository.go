package repository

import (
	"context"

	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/pkg/pagination"
)

// ActivityRepository defines the interface for the activity log
type ActivityRepository interface {
	Create(ctx context.Context, entry *entity.ActivityLog) error
	// ListWithCursor returns entries newest first using keyset pagination.
	ListWithCursor(ctx context.Context, params *pagination.CursorParams, entityType string) ([]entity.ActivityLog, error)
}
