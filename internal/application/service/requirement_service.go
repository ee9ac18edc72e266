package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/application/authz"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	"github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
)

// RequirementService tracks the documents each client must provide
type RequirementService struct {
	requirementRepo repository.RequirementRepository
	documentRepo    repository.DocumentRepository
	folderRepo      repository.FolderRepository
	drive           *DriveService
}

// NewRequirementService creates a new requirement service
func NewRequirementService(
	requirementRepo repository.RequirementRepository,
	documentRepo repository.DocumentRepository,
	folderRepo repository.FolderRepository,
	drive *DriveService,
) *RequirementService {
	return &RequirementService{
		requirementRepo: requirementRepo,
		documentRepo:    documentRepo,
		folderRepo:      folderRepo,
		drive:           drive,
	}
}

// GroupRequirements arranges requirements by checklist category, in
// checklist order, with the share of approved items per category.
func GroupRequirements(reqs []entity.Requirement) []entity.RequirementGroup {
	byCategory := make(map[string][]entity.Requirement)
	for _, r := range reqs {
		byCategory[r.Category] = append(byCategory[r.Category], r)
	}

	var groups []entity.RequirementGroup
	add := func(category string) {
		items, ok := byCategory[category]
		if !ok {
			return
		}
		delete(byCategory, category)
		g := entity.RequirementGroup{Category: category, Items: items}
		for _, it := range items {
			if it.Status == enum.RequirementStatusApproved {
				g.Approved++
			}
		}
		g.Progress = g.Approved * 100 / len(items)
		groups = append(groups, g)
	}
	for _, c := range entity.RequirementCategories {
		add(c.Name)
	}
	// categories no longer in the checklist keep their first-seen order
	for _, r := range reqs {
		add(r.Category)
	}
	return groups
}

// ListByClient returns the grouped checklist of a client
func (s *RequirementService) ListByClient(ctx context.Context, clientID uuid.UUID) ([]entity.RequirementGroup, error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceClient); err != nil {
		return nil, err
	}
	reqs, err := s.requirementRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return GroupRequirements(reqs), nil
}

func (s *RequirementService) get(ctx context.Context, id uuid.UUID) (*entity.Requirement, error) {
	req, err := s.requirementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperror.NewNotFoundError("Requirement")
	}
	return req, nil
}

// AttachDocument links an existing document and puts the requirement in review
func (s *RequirementService) AttachDocument(ctx context.Context, id, documentID uuid.UUID) (*entity.Requirement, error) {
	if _, err := authz.Require(ctx, authz.ActionEdit, authz.ResourceDocument); err != nil {
		return nil, err
	}
	req, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.InTrash {
		return nil, apperror.NewNotFoundError("Document")
	}
	if doc.ClientID != req.ClientID {
		return nil, apperror.NewFieldError("document_id", "Document belongs to another client")
	}
	return s.attach(ctx, req, doc.ID)
}

func (s *RequirementService) attach(ctx context.Context, req *entity.Requirement, documentID uuid.UUID) (*entity.Requirement, error) {
	req.DocumentID = &documentID
	req.Status = enum.RequirementStatusInReview
	req.ReviewedBy = nil
	if err := s.requirementRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// UploadAndAttach stores the file in the category folder of the checklist
// and attaches it.
func (s *RequirementService) UploadAndAttach(ctx context.Context, id uuid.UUID, input *UploadInput) (*entity.Requirement, error) {
	p, err := authz.Require(ctx, authz.ActionCreate, authz.ResourceDocument)
	if err != nil {
		return nil, err
	}
	req, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	input.ClientID = req.ClientID
	if input.FolderID == nil {
		folder, err := s.folderRepo.FindRoot(ctx, req.ClientID, req.Category)
		if err != nil {
			return nil, err
		}
		if folder != nil {
			input.FolderID = &folder.ID
		}
	}
	doc, err := s.drive.upload(ctx, p.UserID, input)
	if err != nil {
		return nil, err
	}
	return s.attach(ctx, req, doc.ID)
}

// Approve marks a reviewed requirement as approved
func (s *RequirementService) Approve(ctx context.Context, id uuid.UUID) (*entity.Requirement, error) {
	p, err := authz.Require(ctx, authz.ActionEdit, authz.ResourceClient)
	if err != nil {
		return nil, err
	}
	req, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.DocumentID == nil {
		return nil, apperror.NewUnprocessableError("Attach a document before approving the requirement")
	}
	req.Status = enum.RequirementStatusApproved
	req.ReviewedBy = &p.UserID
	if err := s.requirementRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Reset returns a requirement to pending without a document
func (s *RequirementService) Reset(ctx context.Context, id uuid.UUID) (*entity.Requirement, error) {
	if _, err := authz.Require(ctx, authz.ActionEdit, authz.ResourceClient); err != nil {
		return nil, err
	}
	req, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Reset()
	if err := s.requirementRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}
