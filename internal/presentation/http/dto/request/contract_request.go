package request

import "github.com/google/uuid"

// ContractTemplateRequest creates or updates a template. Body uses
// {{variable}} placeholders.
type ContractTemplateRequest struct {
	Name string `json:"name" binding:"required,max=255"`
	Body string `json:"body" binding:"required"`
}

// ContractRequest renders a template for a client
type ContractRequest struct {
	TemplateID uuid.UUID         `json:"template_id" binding:"required"`
	ClientID   uuid.UUID         `json:"client_id" binding:"required"`
	Title      string            `json:"title" binding:"max=255"`
	Variables  map[string]string `json:"variables"`
}
