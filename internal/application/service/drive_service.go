package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/application/authz"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/storage"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
	"github.com/sangkips/lexdesk-api/pkg/logger"
)

// DriveService manages the folders and documents of each client
type DriveService struct {
	folderRepo      repository.FolderRepository
	documentRepo    repository.DocumentRepository
	clientRepo      repository.ClientRepository
	requirementRepo repository.RequirementRepository
	txManager       repository.TxManager
	files           storage.Storage
	activity        *ActivityService
	maxUploadSize   int64
	now             func() time.Time
}

// NewDriveService creates a new drive service. maxUploadSize is in bytes;
// zero disables the limit.
func NewDriveService(
	folderRepo repository.FolderRepository,
	documentRepo repository.DocumentRepository,
	clientRepo repository.ClientRepository,
	requirementRepo repository.RequirementRepository,
	txManager repository.TxManager,
	files storage.Storage,
	activity *ActivityService,
	maxUploadSize int64,
) *DriveService {
	return &DriveService{
		folderRepo:      folderRepo,
		documentRepo:    documentRepo,
		clientRepo:      clientRepo,
		requirementRepo: requirementRepo,
		txManager:       txManager,
		files:           files,
		activity:        activity,
		maxUploadSize:   maxUploadSize,
		now:             time.Now,
	}
}

// FolderContents is one level of the drive tree
type FolderContents struct {
	Folder    *entity.Folder    `json:"folder,omitempty"`
	Folders   []entity.Folder   `json:"folders"`
	Documents []entity.Document `json:"documents"`
}

func (s *DriveService) client(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}
	return client, nil
}

func (s *DriveService) folder(ctx context.Context, id uuid.UUID) (*entity.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if folder == nil {
		return nil, apperror.NewNotFoundError("Folder")
	}
	return folder, nil
}

func (s *DriveService) document(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	doc, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperror.NewNotFoundError("Document")
	}
	return doc, nil
}

// CreateFolder adds a folder under parentID, or at the client root
func (s *DriveService) CreateFolder(ctx context.Context, clientID uuid.UUID, parentID *uuid.UUID, name string) (*entity.Folder, error) {
	if _, err := authz.Require(ctx, authz.ActionCreate, authz.ResourceDocument); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.NewFieldError("name", "Name is required")
	}
	client, err := s.client(ctx, clientID)
	if err != nil {
		return nil, err
	}

	folder := &entity.Folder{TenantID: client.TenantID, ClientID: client.ID, ParentID: parentID, Name: name}
	if parentID != nil {
		parent, err := s.folder(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.ClientID != client.ID {
			return nil, apperror.NewFieldError("parent_id", "Parent folder belongs to another client")
		}
		folder.MatterID = parent.MatterID
	}
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// ListContents returns the subfolders and live documents of a folder, or of
// the client root when folderID is nil.
func (s *DriveService) ListContents(ctx context.Context, clientID uuid.UUID, folderID *uuid.UUID) (*FolderContents, error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceDocument); err != nil {
		return nil, err
	}
	out := &FolderContents{}
	if folderID != nil {
		folder, err := s.folder(ctx, *folderID)
		if err != nil {
			return nil, err
		}
		if folder.ClientID != clientID {
			return nil, apperror.NewNotFoundError("Folder")
		}
		out.Folder = folder
	}

	folders, err := s.folderRepo.ListChildren(ctx, clientID, folderID)
	if err != nil {
		return nil, err
	}
	docs, err := s.documentRepo.ListInFolder(ctx, clientID, folderID)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		docs[i].URL = s.files.URL(docs[i].StorageKey)
	}
	out.Folders, out.Documents = folders, docs
	return out, nil
}

// RenameFolder changes a folder's name
func (s *DriveService) RenameFolder(ctx context.Context, id uuid.UUID, name string) (*entity.Folder, error) {
	if _, err := authz.Require(ctx, authz.ActionEdit, authz.ResourceDocument); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.NewFieldError("name", "Name is required")
	}
	folder, err := s.folder(ctx, id)
	if err != nil {
		return nil, err
	}
	folder.Name = name
	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// DeleteFolder removes an empty folder
func (s *DriveService) DeleteFolder(ctx context.Context, id uuid.UUID) error {
	if _, err := authz.Require(ctx, authz.ActionDelete, authz.ResourceDocument); err != nil {
		return err
	}
	folder, err := s.folder(ctx, id)
	if err != nil {
		return err
	}
	children, err := s.folderRepo.ListChildren(ctx, folder.ClientID, &folder.ID)
	if err != nil {
		return err
	}
	docs, err := s.documentRepo.CountInFolder(ctx, folder.ID)
	if err != nil {
		return err
	}
	if len(children) > 0 || docs > 0 {
		return apperror.NewConflictError("Folder is not empty")
	}
	return s.folderRepo.Delete(ctx, id)
}

// UploadInput is a file to store in the drive
type UploadInput struct {
	ClientID    uuid.UUID
	FolderID    *uuid.UUID
	MatterID    *uuid.UUID
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// UploadDocument stores the file and registers it in the drive
func (s *DriveService) UploadDocument(ctx context.Context, input *UploadInput) (*entity.Document, error) {
	p, err := authz.Require(ctx, authz.ActionCreate, authz.ResourceDocument)
	if err != nil {
		return nil, err
	}
	return s.upload(ctx, p.UserID, input)
}

func (s *DriveService) upload(ctx context.Context, actor uuid.UUID, input *UploadInput) (*entity.Document, error) {
	name := strings.TrimSpace(input.Filename)
	if name == "" {
		return nil, apperror.NewFieldError("file", "File name is required")
	}
	if s.maxUploadSize > 0 && input.Size > s.maxUploadSize {
		return nil, apperror.NewFieldError("file", fmt.Sprintf("File exceeds the %d MB limit", s.maxUploadSize>>20))
	}
	client, err := s.client(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}

	matterID := input.MatterID
	if input.FolderID != nil {
		folder, err := s.folder(ctx, *input.FolderID)
		if err != nil {
			return nil, err
		}
		if folder.ClientID != client.ID {
			return nil, apperror.NewFieldError("folder_id", "Folder belongs to another client")
		}
		if matterID == nil {
			matterID = folder.MatterID
		}
	}

	content := input.Content
	if s.maxUploadSize > 0 {
		content = io.LimitReader(content, s.maxUploadSize+1)
	}
	key := storage.ClientKey(client.TenantID, client.ID, name)
	size, err := s.files.Put(ctx, key, content)
	if err != nil {
		return nil, apperror.Wrap(err, "Could not store the file")
	}
	if s.maxUploadSize > 0 && size > s.maxUploadSize {
		_ = s.files.Delete(ctx, key)
		return nil, apperror.NewFieldError("file", fmt.Sprintf("File exceeds the %d MB limit", s.maxUploadSize>>20))
	}

	doc := &entity.Document{
		TenantID:    client.TenantID,
		ClientID:    client.ID,
		FolderID:    input.FolderID,
		MatterID:    matterID,
		Name:        name,
		StorageKey:  key,
		ContentType: input.ContentType,
		Size:        size,
		UploadedBy:  &actor,
	}
	if err := s.documentRepo.Create(ctx, doc); err != nil {
		_ = s.files.Delete(ctx, key)
		return nil, err
	}
	doc.URL = s.files.URL(key)
	s.activity.RecordQuietly(ctx, "Carga de documento", name+" de "+client.CompanyName, EntityDocument, &doc.ID)
	return doc, nil
}

// OpenDocument opens the stored file of a document for download or preview
func (s *DriveService) OpenDocument(ctx context.Context, id uuid.UUID) (*Artifact, error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceDocument); err != nil {
		return nil, err
	}
	doc, err := s.document(ctx, id)
	if err != nil {
		return nil, err
	}
	rc, err := s.files.Open(ctx, doc.StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperror.NewNotFoundError("Document file")
	}
	if err != nil {
		return nil, err
	}
	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &Artifact{Content: rc, Filename: doc.Name, ContentType: contentType}, nil
}

// UpdateDocument renames a document or moves it to another folder
func (s *DriveService) UpdateDocument(ctx context.Context, id uuid.UUID, name *string, folderID *uuid.UUID) (*entity.Document, error) {
	if _, err := authz.Require(ctx, authz.ActionEdit, authz.ResourceDocument); err != nil {
		return nil, err
	}
	doc, err := s.document(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return nil, apperror.NewFieldError("name", "Name is required")
		}
		doc.Name = n
	}
	if folderID != nil {
		folder, err := s.folder(ctx, *folderID)
		if err != nil {
			return nil, err
		}
		if folder.ClientID != doc.ClientID {
			return nil, apperror.NewFieldError("folder_id", "Folder belongs to another client")
		}
		doc.FolderID = &folder.ID
	}
	if err := s.documentRepo.Update(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// TrashDocument moves a document to the trash. Requirements that point at it
// go back to pending in the same transaction.
func (s *DriveService) TrashDocument(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	if _, err := authz.Require(ctx, authz.ActionDelete, authz.ResourceDocument); err != nil {
		return nil, err
	}
	var doc *entity.Document
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		d, err := s.document(ctx, id)
		if err != nil {
			return err
		}
		if d.InTrash {
			doc = d
			return nil
		}
		now := s.now()
		d.InTrash = true
		d.TrashedAt = &now
		if err := s.documentRepo.Update(ctx, d); err != nil {
			return err
		}
		if _, err := s.requirementRepo.ResetByDocument(ctx, d.ID); err != nil {
			return err
		}
		doc = d
		return s.activity.Record(ctx, "Documento a papelera", d.Name, EntityDocument, &d.ID)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// RestoreDocument takes a document out of the trash. Requirements stay pending.
func (s *DriveService) RestoreDocument(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	if _, err := authz.Require(ctx, authz.ActionEdit, authz.ResourceDocument); err != nil {
		return nil, err
	}
	doc, err := s.document(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.InTrash {
		return doc, nil
	}
	doc.InTrash = false
	doc.TrashedAt = nil
	if err := s.documentRepo.Update(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteDocument removes a document and its file permanently
func (s *DriveService) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	if _, err := authz.Require(ctx, authz.ActionDelete, authz.ResourceDocument); err != nil {
		return err
	}
	doc, err := s.document(ctx, id)
	if err != nil {
		return err
	}
	if err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.remove(ctx, doc)
	}); err != nil {
		return err
	}
	s.dropBlob(ctx, doc)
	return nil
}

func (s *DriveService) remove(ctx context.Context, doc *entity.Document) error {
	if _, err := s.requirementRepo.ResetByDocument(ctx, doc.ID); err != nil {
		return err
	}
	if err := s.documentRepo.Delete(ctx, doc.ID); err != nil {
		return err
	}
	return s.activity.Record(ctx, "Eliminación de documento", doc.Name, EntityDocument, &doc.ID)
}

// dropBlob runs after commit; an orphaned file is only logged.
func (s *DriveService) dropBlob(ctx context.Context, doc *entity.Document) {
	if err := s.files.Delete(ctx, doc.StorageKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
		logger.FromContext(ctx).Warn().Err(err).Str("key", doc.StorageKey).Msg("document file not removed")
	}
}

// ListTrash returns trashed documents, optionally of one client
func (s *DriveService) ListTrash(ctx context.Context, clientID *uuid.UUID) ([]entity.Document, error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceDocument); err != nil {
		return nil, err
	}
	return s.documentRepo.ListTrash(ctx, clientID)
}

// EmptyTrash deletes every trashed document and returns how many were removed
func (s *DriveService) EmptyTrash(ctx context.Context, clientID *uuid.UUID) (int, error) {
	if _, err := authz.Require(ctx, authz.ActionDelete, authz.ResourceDocument); err != nil {
		return 0, err
	}
	docs, err := s.documentRepo.ListTrash(ctx, clientID)
	if err != nil {
		return 0, err
	}
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		for i := range docs {
			if err := s.remove(ctx, &docs[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for i := range docs {
		s.dropBlob(ctx, &docs[i])
	}
	return len(docs), nil
}
