package request

import (
	"time"

	"github.com/google/uuid"
)

// TaskRequest creates or updates a task
type TaskRequest struct {
	ClientID    *uuid.UUID `json:"client_id"`
	AssignedTo  *uuid.UUID `json:"assigned_to"`
	Title       *string    `json:"title" binding:"omitempty,max=255"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

// CompleteTaskRequest toggles completion; omitted means completed
type CompleteTaskRequest struct {
	Completed *bool `json:"completed"`
}

// EventRequest creates or updates a calendar event
type EventRequest struct {
	ClientID *uuid.UUID `json:"client_id"`
	Title    *string    `json:"title" binding:"omitempty,max=255"`
	Start    *time.Time `json:"start"`
	End      *time.Time `json:"end"`
	AllDay   *bool      `json:"all_day"`
	Location *string    `json:"location" binding:"omitempty,max=255"`
}
