package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	domainRepo "github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/database"
	"github.com/sangkips/lexdesk-api/pkg/pagination"
	"gorm.io/gorm"
)

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new activity log repository
func NewActivityRepository(db *gorm.DB) domainRepo.ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, entry *entity.ActivityLog) error {
	return database.Conn(ctx, r.db).Create(entry).Error
}

// ListWithCursor fetches limit+1 rows so the caller can tell whether a next
// page exists.
func (r *activityRepository) ListWithCursor(ctx context.Context, params *pagination.CursorParams, entityType string) ([]entity.ActivityLog, error) {
	if params == nil {
		params = pagination.DefaultCursorParams()
	}
	params.Validate()

	var entries []entity.ActivityLog
	query := scoped(ctx, r.db).Model(&entity.ActivityLog{})
	if entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}

	cursor, err := params.DecodeCursor()
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		cursorID, err := uuid.Parse(cursor.ID)
		if err != nil {
			return nil, err
		}
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursorID)
	}

	err = query.
		Order("created_at DESC, id DESC").
		Limit(params.Limit + 1).
		Find(&entries).Error
	return entries, err
}
