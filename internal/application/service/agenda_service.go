package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/application/authz"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	"github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
	"github.com/sangkips/lexdesk-api/pkg/pagination"
)

// receivables due within this many days show up in notifications
const receivableNoticeDays = 3

// AgendaService handles tasks, calendar events and the notification summary
type AgendaService struct {
	taskRepo       repository.TaskRepository
	eventRepo      repository.EventRepository
	clientRepo     repository.ClientRepository
	receivableRepo repository.ReceivableRepository
	location       *time.Location
	now            func() time.Time
}

// NewAgendaService creates a new agenda service. Day boundaries are computed
// in loc.
func NewAgendaService(
	taskRepo repository.TaskRepository,
	eventRepo repository.EventRepository,
	clientRepo repository.ClientRepository,
	receivableRepo repository.ReceivableRepository,
	loc *time.Location,
) *AgendaService {
	if loc == nil {
		loc = time.UTC
	}
	return &AgendaService{
		taskRepo:       taskRepo,
		eventRepo:      eventRepo,
		clientRepo:     clientRepo,
		receivableRepo: receivableRepo,
		location:       loc,
		now:            time.Now,
	}
}

func (s *AgendaService) today() time.Time {
	n := s.now().In(s.location)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, s.location)
}

// visibleClients returns nil when the caller sees every client.
func (s *AgendaService) visibleClients(ctx context.Context, p *authz.Principal) ([]uuid.UUID, error) {
	if p.SeesAllClients() {
		return nil, nil
	}
	ids, err := s.clientRepo.ListIDsAssignedTo(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ids, nil
}

// TaskInput describes a task. Nil pointers are left unchanged on update.
type TaskInput struct {
	ClientID    *uuid.UUID
	AssignedTo  *uuid.UUID
	Title       *string
	Description *string
	DueDate     *time.Time
}

// ListTasksInput represents the input for listing tasks
type ListTasksInput struct {
	Pagination *pagination.PaginationParams
	ClientID   *uuid.UUID
	Completed  *bool
	Mine       bool
}

// ListTasks returns the tasks visible to the caller
func (s *AgendaService) ListTasks(ctx context.Context, input *ListTasksInput) (*pagination.PaginatedResult[entity.Task], error) {
	p, err := authz.Require(ctx, authz.ActionView, authz.ResourceAgenda)
	if err != nil {
		return nil, err
	}
	params := input.Pagination
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()

	filter := repository.TaskFilter{Pagination: params, ClientID: input.ClientID, Completed: input.Completed}
	allowed, err := s.visibleClients(ctx, p)
	if err != nil {
		return nil, err
	}
	if allowed != nil || input.Mine {
		filter.AssignedTo = &p.UserID
	}
	if !input.Mine {
		filter.ClientIDs = allowed
	}

	tasks, total, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(tasks, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// CreateTask adds a task. Unassigned tasks go to the caller.
func (s *AgendaService) CreateTask(ctx context.Context, input *TaskInput) (*entity.Task, error) {
	p, err := authz.Require(ctx, authz.ActionCreate, authz.ResourceAgenda)
	if err != nil {
		return nil, err
	}
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}

	var errs []apperror.FieldError
	if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
		errs = append(errs, apperror.FieldError{Field: "title", Message: "Title is required"})
	}
	if input.DueDate == nil {
		errs = append(errs, apperror.FieldError{Field: "due_date", Message: "Due date is required"})
	}
	if len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	task := &entity.Task{
		TenantID:   tenantID,
		ClientID:   input.ClientID,
		AssignedTo: input.AssignedTo,
		Title:      strings.TrimSpace(*input.Title),
		DueDate:    *input.DueDate,
		CreatedBy:  p.UserID,
	}
	if task.AssignedTo == nil {
		task.AssignedTo = &p.UserID
	}
	if input.Description != nil {
		task.Description = strings.TrimSpace(*input.Description)
	}
	if err := s.checkClient(ctx, task.ClientID); err != nil {
		return nil, err
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *AgendaService) checkClient(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	client, err := s.clientRepo.GetByID(ctx, *id)
	if err != nil {
		return err
	}
	if client == nil {
		return apperror.NewNotFoundError("Client")
	}
	return nil
}

func (s *AgendaService) task(ctx context.Context, id uuid.UUID) (*entity.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, apperror.NewNotFoundError("Task")
	}
	return task, nil
}

// UpdateTask changes a task
func (s *AgendaService) UpdateTask(ctx context.Context, id uuid.UUID, input *TaskInput) (*entity.Task, error) {
	if _, err := authz.Require(ctx, authz.ActionEdit, authz.ResourceAgenda); err != nil {
		return nil, err
	}
	task, err := s.task(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperror.NewFieldError("title", "Title is required")
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = strings.TrimSpace(*input.Description)
	}
	if input.DueDate != nil {
		task.DueDate = *input.DueDate
	}
	if input.AssignedTo != nil {
		task.AssignedTo = input.AssignedTo
	}
	if input.ClientID != nil {
		if err := s.checkClient(ctx, input.ClientID); err != nil {
			return nil, err
		}
		task.ClientID = input.ClientID
	}
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// CompleteTask marks a task done, or open again when completed is false
func (s *AgendaService) CompleteTask(ctx context.Context, id uuid.UUID, completed bool) (*entity.Task, error) {
	if _, err := authz.Require(ctx, authz.ActionEdit, authz.ResourceAgenda); err != nil {
		return nil, err
	}
	task, err := s.task(ctx, id)
	if err != nil {
		return nil, err
	}
	task.Completed = completed
	task.CompletedAt = nil
	if completed {
		now := s.now()
		task.CompletedAt = &now
	}
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a task
func (s *AgendaService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if _, err := authz.Require(ctx, authz.ActionDelete, authz.ResourceAgenda); err != nil {
		return err
	}
	if _, err := s.task(ctx, id); err != nil {
		return err
	}
	return s.taskRepo.Delete(ctx, id)
}

// EventInput describes a calendar event. Nil pointers are left unchanged on update.
type EventInput struct {
	ClientID *uuid.UUID
	Title    *string
	Start    *time.Time
	End      *time.Time
	AllDay   *bool
	Location *string
}

func validateSpan(start time.Time, end *time.Time) error {
	if end != nil && end.Before(start) {
		return apperror.NewFieldError("end", "End must not be before start")
	}
	return nil
}

// CreateEvent adds an event owned by the caller
func (s *AgendaService) CreateEvent(ctx context.Context, input *EventInput) (*entity.Event, error) {
	p, err := authz.Require(ctx, authz.ActionCreate, authz.ResourceAgenda)
	if err != nil {
		return nil, err
	}
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}

	var errs []apperror.FieldError
	if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
		errs = append(errs, apperror.FieldError{Field: "title", Message: "Title is required"})
	}
	if input.Start == nil {
		errs = append(errs, apperror.FieldError{Field: "start", Message: "Start is required"})
	}
	if len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}
	if err := validateSpan(*input.Start, input.End); err != nil {
		return nil, err
	}
	if err := s.checkClient(ctx, input.ClientID); err != nil {
		return nil, err
	}

	event := &entity.Event{
		TenantID: tenantID,
		ClientID: input.ClientID,
		UserID:   p.UserID,
		Title:    strings.TrimSpace(*input.Title),
		Start:    *input.Start,
		End:      input.End,
	}
	if input.AllDay != nil {
		event.AllDay = *input.AllDay
	}
	if input.Location != nil {
		event.Location = strings.TrimSpace(*input.Location)
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *AgendaService) event(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, apperror.NewNotFoundError("Event")
	}
	return event, nil
}

// GetEvent returns a single event
func (s *AgendaService) GetEvent(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceAgenda); err != nil {
		return nil, err
	}
	return s.event(ctx, id)
}

// UpdateEvent changes an event
func (s *AgendaService) UpdateEvent(ctx context.Context, id uuid.UUID, input *EventInput) (*entity.Event, error) {
	if _, err := authz.Require(ctx, authz.ActionEdit, authz.ResourceAgenda); err != nil {
		return nil, err
	}
	event, err := s.event(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperror.NewFieldError("title", "Title is required")
		}
		event.Title = title
	}
	if input.Start != nil {
		event.Start = *input.Start
	}
	if input.End != nil {
		event.End = input.End
	}
	if err := validateSpan(event.Start, event.End); err != nil {
		return nil, err
	}
	if input.AllDay != nil {
		event.AllDay = *input.AllDay
	}
	if input.Location != nil {
		event.Location = strings.TrimSpace(*input.Location)
	}
	if input.ClientID != nil {
		if err := s.checkClient(ctx, input.ClientID); err != nil {
			return nil, err
		}
		event.ClientID = input.ClientID
	}
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// DeleteEvent removes an event
func (s *AgendaService) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	if _, err := authz.Require(ctx, authz.ActionDelete, authz.ResourceAgenda); err != nil {
		return err
	}
	if _, err := s.event(ctx, id); err != nil {
		return err
	}
	return s.eventRepo.Delete(ctx, id)
}

// CalendarEvent is the shape FullCalendar consumes
type CalendarEvent struct {
	ID     string     `json:"id"`
	Title  string     `json:"title"`
	Start  time.Time  `json:"start"`
	End    *time.Time `json:"end,omitempty"`
	AllDay bool       `json:"allDay"`
}

// Calendar returns the events visible to the caller that start in [from, to)
func (s *AgendaService) Calendar(ctx context.Context, from, to time.Time) ([]CalendarEvent, error) {
	p, err := authz.Require(ctx, authz.ActionView, authz.ResourceAgenda)
	if err != nil {
		return nil, err
	}
	if !to.After(from) {
		return nil, apperror.NewFieldError("end", "End must be after start")
	}
	allowed, err := s.visibleClients(ctx, p)
	if err != nil {
		return nil, err
	}
	var user *uuid.UUID
	if allowed != nil {
		user = &p.UserID
	}

	events, err := s.eventRepo.ListBetween(ctx, from, to, user, allowed)
	if err != nil {
		return nil, err
	}
	out := make([]CalendarEvent, 0, len(events))
	for _, e := range events {
		title := e.Title
		if e.Client != nil {
			title += " (" + e.Client.CompanyName + ")"
		}
		out = append(out, CalendarEvent{ID: e.ID.String(), Title: title, Start: e.Start, End: e.End, AllDay: e.AllDay})
	}
	return out, nil
}

// NotificationSummary counts what needs the caller's attention
type NotificationSummary struct {
	Tasks       int64 `json:"tasks"`
	Events      int64 `json:"events"`
	Receivables int64 `json:"receivables"`
	Total       int64 `json:"total"`
}

// Notifications returns open tasks due by today, events starting today or
// tomorrow and, with finance access, receivables due within three days.
func (s *AgendaService) Notifications(ctx context.Context) (*NotificationSummary, error) {
	p, ok := authz.FromContext(ctx)
	if !ok {
		return nil, apperror.ErrUnauthorized
	}
	allowed, err := s.visibleClients(ctx, p)
	if err != nil {
		return nil, err
	}
	today := s.today()
	countOnly := &pagination.PaginationParams{Page: 1, PerPage: 1}
	out := &NotificationSummary{}

	open := false
	dueBy := today.AddDate(0, 0, 1).Add(-time.Nanosecond)
	taskFilter := repository.TaskFilter{Pagination: countOnly, Completed: &open, DueBy: &dueBy, ClientIDs: allowed}
	if allowed != nil {
		taskFilter.AssignedTo = &p.UserID
	}
	if _, out.Tasks, err = s.taskRepo.List(ctx, taskFilter); err != nil {
		return nil, err
	}

	var user *uuid.UUID
	if allowed != nil {
		user = &p.UserID
	}
	events, err := s.eventRepo.ListBetween(ctx, today, today.AddDate(0, 0, 2), user, allowed)
	if err != nil {
		return nil, err
	}
	out.Events = int64(len(events))

	if authz.Can(p, authz.ActionView, authz.ResourceFinance) {
		dueBefore := today.AddDate(0, 0, receivableNoticeDays+1)
		_, out.Receivables, err = s.receivableRepo.List(ctx, repository.ReceivableFilter{
			Pagination: countOnly,
			Statuses:   []enum.ReceivableStatus{enum.ReceivableStatusPending, enum.ReceivableStatusPartial},
			DueBefore:  &dueBefore,
		})
		if err != nil {
			return nil, err
		}
	}

	out.Total = out.Tasks + out.Events + out.Receivables
	return out, nil
}
