package request

import "github.com/google/uuid"

// FolderRequest creates a folder inside a client's drive
type FolderRequest struct {
	Name     string     `json:"name" binding:"required,max=255"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// RenameRequest renames a folder
type RenameRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// UpdateDocumentRequest renames or moves a document
type UpdateDocumentRequest struct {
	Name     *string    `json:"name" binding:"omitempty,max=255"`
	FolderID *uuid.UUID `json:"folder_id"`
}

// AttachDocumentRequest links an uploaded document to a requirement
type AttachDocumentRequest struct {
	DocumentID uuid.UUID `json:"document_id" binding:"required"`
}
