package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/application/authz"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	"github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
	"github.com/sangkips/lexdesk-api/pkg/pagination"
)

// MatterService handles matters (expedientes)
type MatterService struct {
	matterRepo   repository.MatterRepository
	clientRepo   repository.ClientRepository
	folderRepo   repository.FolderRepository
	documentRepo repository.DocumentRepository
	txManager    repository.TxManager
	activity     *ActivityService
}

// NewMatterService creates a new matter service
func NewMatterService(
	matterRepo repository.MatterRepository,
	clientRepo repository.ClientRepository,
	folderRepo repository.FolderRepository,
	documentRepo repository.DocumentRepository,
	txManager repository.TxManager,
	activity *ActivityService,
) *MatterService {
	return &MatterService{
		matterRepo:   matterRepo,
		clientRepo:   clientRepo,
		folderRepo:   folderRepo,
		documentRepo: documentRepo,
		txManager:    txManager,
		activity:     activity,
	}
}

// MatterInput holds matter attributes. Nil pointers are left unchanged on update.
type MatterInput struct {
	ClientID *uuid.UUID
	Title    *string
	Number   *string
	Status   *enum.MatterStatus
	Priority *int
}

func validPriority(p int) bool {
	return p >= entity.PriorityLow && p <= entity.PriorityCritical
}

// CreateMatter opens a matter and its drive folder
func (s *MatterService) CreateMatter(ctx context.Context, input *MatterInput) (*entity.Matter, error) {
	p, err := authz.Require(ctx, authz.ActionCreate, authz.ResourceMatter)
	if err != nil {
		return nil, err
	}
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}

	var errs []apperror.FieldError
	if input.ClientID == nil {
		errs = append(errs, apperror.FieldError{Field: "client_id", Message: "Client is required"})
	}
	if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
		errs = append(errs, apperror.FieldError{Field: "title", Message: "Title is required"})
	}
	if input.Number == nil || strings.TrimSpace(*input.Number) == "" {
		errs = append(errs, apperror.FieldError{Field: "number", Message: "Number is required"})
	}
	if input.Priority != nil && !validPriority(*input.Priority) {
		errs = append(errs, apperror.FieldError{Field: "priority", Message: "Priority must be between 1 and 3"})
	}
	if len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	client, err := s.clientRepo.GetByID(ctx, *input.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}

	matter := &entity.Matter{
		ID:        uuid.New(),
		TenantID:  tenantID,
		ClientID:  client.ID,
		Title:     strings.TrimSpace(*input.Title),
		Number:    strings.TrimSpace(*input.Number),
		Status:    enum.MatterStatusOpen,
		Priority:  entity.PriorityLow,
		CreatedBy: p.UserID,
	}
	if input.Status != nil {
		matter.Status = *input.Status
	}
	if input.Priority != nil {
		matter.Priority = *input.Priority
	}

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.matterRepo.GetByNumber(ctx, matter.Number)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperror.NewConflictError("A matter with this number already exists")
		}
		if err := s.matterRepo.Create(ctx, matter); err != nil {
			return err
		}
		folder := &entity.Folder{
			TenantID: tenantID,
			ClientID: client.ID,
			MatterID: &matter.ID,
			Name:     matter.Number + " " + matter.Title,
		}
		if err := s.folderRepo.Create(ctx, folder); err != nil {
			return err
		}
		return s.activity.Record(ctx, "Apertura de expediente", matter.Number+" de "+client.CompanyName, EntityMatter, &matter.ID)
	})
	if err != nil {
		return nil, err
	}
	matter.Client = client
	return matter, nil
}

// GetMatter returns a matter with its documents
func (s *MatterService) GetMatter(ctx context.Context, id uuid.UUID) (*entity.Matter, error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceMatter); err != nil {
		return nil, err
	}
	matter, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	docs, err := s.documentRepo.ListByMatter(ctx, id)
	if err != nil {
		return nil, err
	}
	matter.Documents = docs
	return matter, nil
}

func (s *MatterService) get(ctx context.Context, id uuid.UUID) (*entity.Matter, error) {
	matter, err := s.matterRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if matter == nil {
		return nil, apperror.NewNotFoundError("Matter")
	}
	return matter, nil
}

// ListMatters returns a page of matters filtered by client and status
func (s *MatterService) ListMatters(ctx context.Context, filter repository.MatterFilter) (*pagination.PaginatedResult[entity.Matter], error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceMatter); err != nil {
		return nil, err
	}
	if filter.Pagination == nil {
		filter.Pagination = pagination.DefaultPagination()
	}
	filter.Pagination.Validate()

	matters, total, err := s.matterRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(matters, pagination.NewPagination(filter.Pagination.Page, filter.Pagination.PerPage, total)), nil
}

// UpdateMatter changes title, number, status or priority
func (s *MatterService) UpdateMatter(ctx context.Context, id uuid.UUID, input *MatterInput) (*entity.Matter, error) {
	if _, err := authz.Require(ctx, authz.ActionEdit, authz.ResourceMatter); err != nil {
		return nil, err
	}
	matter, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperror.NewFieldError("title", "Title is required")
		}
		matter.Title = title
	}
	if input.Number != nil {
		number := strings.TrimSpace(*input.Number)
		if number == "" {
			return nil, apperror.NewFieldError("number", "Number is required")
		}
		if number != matter.Number {
			existing, err := s.matterRepo.GetByNumber(ctx, number)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, apperror.NewConflictError("A matter with this number already exists")
			}
		}
		matter.Number = number
	}
	if input.Priority != nil {
		if !validPriority(*input.Priority) {
			return nil, apperror.NewFieldError("priority", "Priority must be between 1 and 3")
		}
		matter.Priority = *input.Priority
	}
	if input.Status != nil {
		matter.Status = *input.Status
	}

	if err := s.matterRepo.Update(ctx, matter); err != nil {
		return nil, err
	}
	return matter, nil
}

// ChangeStatus moves a matter between open, in progress and closed
func (s *MatterService) ChangeStatus(ctx context.Context, id uuid.UUID, status enum.MatterStatus) (*entity.Matter, error) {
	matter, err := s.UpdateMatter(ctx, id, &MatterInput{Status: &status})
	if err != nil {
		return nil, err
	}
	s.activity.RecordQuietly(ctx, "Cambio de estatus de expediente", matter.Number+": "+status.String(), EntityMatter, &matter.ID)
	return matter, nil
}

// DeleteMatter soft deletes a matter. Its documents stay in the client drive.
func (s *MatterService) DeleteMatter(ctx context.Context, id uuid.UUID) error {
	if _, err := authz.Require(ctx, authz.ActionDelete, authz.ResourceMatter); err != nil {
		return err
	}
	matter, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.matterRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.activity.RecordQuietly(ctx, "Baja de expediente", matter.Number, EntityMatter, &matter.ID)
	return nil
}
