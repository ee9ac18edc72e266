package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/pkg/pagination"
)

// TaskFilter narrows task listings
type TaskFilter struct {
	Pagination *pagination.PaginationParams
	ClientID   *uuid.UUID
	AssignedTo *uuid.UUID
	Completed  *bool
	ClientIDs  []uuid.UUID
	DueBy      *time.Time
}

// TaskRepository defines the interface for tasks
type TaskRepository interface {
	Create(ctx context.Context, task *entity.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Task, error)
	Update(ctx context.Context, task *entity.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter TaskFilter) ([]entity.Task, int64, error)
}

// EventRepository defines the interface for calendar events
type EventRepository interface {
	Create(ctx context.Context, event *entity.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Event, error)
	Update(ctx context.Context, event *entity.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListBetween returns events starting in [from, to). When userID is set,
	// only events owned by the user or tied to clientIDs are returned.
	ListBetween(ctx context.Context, from, to time.Time, userID *uuid.UUID, clientIDs []uuid.UUID) ([]entity.Event, error)
}
