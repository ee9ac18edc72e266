package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	domainRepo "github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *gorm.DB) domainRepo.TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *entity.Task) error {
	return database.Conn(ctx, r.db).Omit(clause.Associations).Create(task).Error
}

func (r *taskRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Task, error) {
	return first[entity.Task](scoped(ctx, r.db).Preload("Client"), "id = ?", id)
}

func (r *taskRepository) Update(ctx context.Context, task *entity.Task) error {
	return database.Conn(ctx, r.db).Omit(clause.Associations).Save(task).Error
}

func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return scoped(ctx, r.db).Delete(&entity.Task{}, "id = ?", id).Error
}

func (r *taskRepository) List(ctx context.Context, filter domainRepo.TaskFilter) ([]entity.Task, int64, error) {
	var tasks []entity.Task
	var total int64

	query := scoped(ctx, r.db).Model(&entity.Task{})
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Completed != nil {
		query = query.Where("completed = ?", *filter.Completed)
	}
	if filter.DueBy != nil {
		query = query.Where("due_date <= ?", *filter.DueBy)
	}
	// A restricted user sees tasks assigned to them or tied to their clients.
	switch {
	case filter.AssignedTo != nil && filter.ClientIDs != nil:
		query = query.Where("assigned_to = ? OR client_id IN ?", *filter.AssignedTo, nonEmpty(filter.ClientIDs))
	case filter.AssignedTo != nil:
		query = query.Where("assigned_to = ?", *filter.AssignedTo)
	case filter.ClientIDs != nil:
		query = query.Where("client_id IN ?", nonEmpty(filter.ClientIDs))
	}

	query, err := paginate(query, filter.Pagination, &total)
	if err != nil {
		return nil, 0, err
	}
	err = query.Preload("Client").Order("completed ASC, due_date ASC").Find(&tasks).Error
	return tasks, total, err
}

// nonEmpty keeps IN () valid for users without clients.
func nonEmpty(ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return []uuid.UUID{uuid.Nil}
	}
	return ids
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *gorm.DB) domainRepo.EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	return database.Conn(ctx, r.db).Omit(clause.Associations).Create(event).Error
}

func (r *eventRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	return first[entity.Event](scoped(ctx, r.db), "id = ?", id)
}

func (r *eventRepository) Update(ctx context.Context, event *entity.Event) error {
	return database.Conn(ctx, r.db).Omit(clause.Associations).Save(event).Error
}

func (r *eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return scoped(ctx, r.db).Delete(&entity.Event{}, "id = ?", id).Error
}

func (r *eventRepository) ListBetween(ctx context.Context, from, to time.Time, userID *uuid.UUID, clientIDs []uuid.UUID) ([]entity.Event, error) {
	var events []entity.Event
	query := scoped(ctx, r.db).Where("starts_at >= ? AND starts_at < ?", from, to)
	if userID != nil {
		query = query.Where("user_id = ? OR client_id IN ?", *userID, nonEmpty(clientIDs))
	}
	err := query.Preload("Client").Order("starts_at ASC").Find(&events).Error
	return events, err
}
