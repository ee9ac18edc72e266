package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	domainRepo "github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/database"
	"gorm.io/gorm"
)

type folderRepository struct {
	db *gorm.DB
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(db *gorm.DB) domainRepo.FolderRepository {
	return &folderRepository{db: db}
}

func (r *folderRepository) Create(ctx context.Context, folder *entity.Folder) error {
	return database.Conn(ctx, r.db).Create(folder).Error
}

func (r *folderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Folder, error) {
	return first[entity.Folder](scoped(ctx, r.db), "id = ?", id)
}

func (r *folderRepository) FindRoot(ctx context.Context, clientID uuid.UUID, name string) (*entity.Folder, error) {
	return first[entity.Folder](scoped(ctx, r.db),
		"client_id = ? AND parent_id IS NULL AND name = ?", clientID, name)
}

func (r *folderRepository) Update(ctx context.Context, folder *entity.Folder) error {
	return database.Conn(ctx, r.db).Save(folder).Error
}

func (r *folderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return scoped(ctx, r.db).Delete(&entity.Folder{}, "id = ?", id).Error
}

func (r *folderRepository) ListChildren(ctx context.Context, clientID uuid.UUID, parentID *uuid.UUID) ([]entity.Folder, error) {
	var folders []entity.Folder
	query := scoped(ctx, r.db).Where("client_id = ?", clientID)
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}
	err := query.Order("name ASC").Find(&folders).Error
	return folders, err
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *gorm.DB) domainRepo.DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *entity.Document) error {
	return database.Conn(ctx, r.db).Create(doc).Error
}

func (r *documentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	return first[entity.Document](scoped(ctx, r.db), "id = ?", id)
}

func (r *documentRepository) Update(ctx context.Context, doc *entity.Document) error {
	return database.Conn(ctx, r.db).Save(doc).Error
}

func (r *documentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return scoped(ctx, r.db).Delete(&entity.Document{}, "id = ?", id).Error
}

func (r *documentRepository) ListInFolder(ctx context.Context, clientID uuid.UUID, folderID *uuid.UUID) ([]entity.Document, error) {
	var docs []entity.Document
	query := scoped(ctx, r.db).Where("client_id = ? AND in_trash = ?", clientID, false)
	if folderID == nil {
		query = query.Where("folder_id IS NULL")
	} else {
		query = query.Where("folder_id = ?", *folderID)
	}
	err := query.Order("name ASC").Find(&docs).Error
	return docs, err
}

func (r *documentRepository) ListByMatter(ctx context.Context, matterID uuid.UUID) ([]entity.Document, error) {
	var docs []entity.Document
	err := scoped(ctx, r.db).
		Where("matter_id = ? AND in_trash = ?", matterID, false).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}

func (r *documentRepository) ListTrash(ctx context.Context, clientID *uuid.UUID) ([]entity.Document, error) {
	var docs []entity.Document
	query := scoped(ctx, r.db).Where("in_trash = ?", true)
	if clientID != nil {
		query = query.Where("client_id = ?", *clientID)
	}
	err := query.Order("trashed_at DESC").Find(&docs).Error
	return docs, err
}

func (r *documentRepository) CountInFolder(ctx context.Context, folderID uuid.UUID) (int64, error) {
	var count int64
	err := scoped(ctx, r.db).Model(&entity.Document{}).
		Where("folder_id = ? AND in_trash = ?", folderID, false).
		Count(&count).Error
	return count, err
}
