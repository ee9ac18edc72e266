package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
)

// FolderRepository defines the interface for drive folders
type FolderRepository interface {
	Create(ctx context.Context, folder *entity.Folder) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Folder, error)
	FindRoot(ctx context.Context, clientID uuid.UUID, name string) (*entity.Folder, error)
	Update(ctx context.Context, folder *entity.Folder) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListChildren(ctx context.Context, clientID uuid.UUID, parentID *uuid.UUID) ([]entity.Folder, error)
}

// DocumentRepository defines the interface for drive documents
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	Update(ctx context.Context, doc *entity.Document) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListInFolder(ctx context.Context, clientID uuid.UUID, folderID *uuid.UUID) ([]entity.Document, error)
	ListByMatter(ctx context.Context, matterID uuid.UUID) ([]entity.Document, error)
	ListTrash(ctx context.Context, clientID *uuid.UUID) ([]entity.Document, error)
	CountInFolder(ctx context.Context, folderID uuid.UUID) (int64, error)
}
