package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/application/authz"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
	"github.com/sangkips/lexdesk-api/pkg/logger"
	"github.com/sangkips/lexdesk-api/pkg/pagination"
)

// Entity types written to the activity log.
const (
	EntityClient   = "client"
	EntityQuote    = "quote"
	EntityPayment  = "payment"
	EntityInvoice  = "invoice"
	EntityDocument = "document"
	EntityContract = "contract"
	EntityMatter   = "matter"
)

// ActivityService records and lists the activity log (bitácora)
type ActivityService struct {
	activityRepo repository.ActivityRepository
}

// NewActivityService creates a new activity service
func NewActivityService(activityRepo repository.ActivityRepository) *ActivityService {
	return &ActivityService{activityRepo: activityRepo}
}

// Record writes an entry for the caller in ctx. It joins the transaction
// carried by ctx, if any.
func (s *ActivityService) Record(ctx context.Context, action, description, entityType string, entityID *uuid.UUID) error {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return err
	}
	p, ok := authz.FromContext(ctx)
	if !ok {
		return apperror.ErrUnauthorized
	}

	return s.activityRepo.Create(ctx, &entity.ActivityLog{
		TenantID:    tenantID,
		UserID:      p.UserID,
		Action:      action,
		Description: description,
		EntityType:  entityType,
		EntityID:    entityID,
		CreatedAt:   time.Now(),
	})
}

// RecordQuietly is Record for operations that already succeeded: a failure
// is logged and dropped.
func (s *ActivityService) RecordQuietly(ctx context.Context, action, description, entityType string, entityID *uuid.UUID) {
	if err := s.Record(ctx, action, description, entityType, entityID); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("action", action).Msg("activity not recorded")
	}
}

// List returns the newest entries first using cursor pagination.
func (s *ActivityService) List(ctx context.Context, params *pagination.CursorParams, entityType string) (*pagination.CursorPaginatedResult[entity.ActivityLog], error) {
	p, ok := authz.FromContext(ctx)
	if !ok {
		return nil, apperror.ErrUnauthorized
	}
	if !p.IsAdmin() {
		return nil, apperror.ErrForbidden
	}
	if params == nil {
		params = pagination.DefaultCursorParams()
	}
	params.Validate()
	if _, err := params.DecodeCursor(); err != nil {
		return nil, apperror.NewBadRequestError("Invalid cursor")
	}

	entries, err := s.activityRepo.ListWithCursor(ctx, params, entityType)
	if err != nil {
		return nil, err
	}

	meta, entries := pagination.NewCursorPagination(entries, params.Limit,
		func(a entity.ActivityLog) string { return a.ID.String() },
		func(a entity.ActivityLog) time.Time { return a.CreatedAt },
	)
	return pagination.NewCursorPaginatedResult(entries, meta), nil
}
