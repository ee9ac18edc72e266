package request

import "github.com/google/uuid"

// MatterRequest creates or updates a matter (expediente)
type MatterRequest struct {
	ClientID *uuid.UUID `json:"client_id"`
	Title    *string    `json:"title" binding:"omitempty,max=255"`
	Number   *string    `json:"number" binding:"omitempty,max=50"`
	Status   *string    `json:"status" binding:"omitempty,oneof=abierto en_proceso cerrado"`
	Priority *int       `json:"priority" binding:"omitempty,min=1,max=3"`
}

// MatterStatusRequest changes the status of a matter
type MatterStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=abierto en_proceso cerrado"`
}
