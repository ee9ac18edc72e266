package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/application/authz"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
	"github.com/sangkips/lexdesk-api/pkg/utils"
)

// ClientFieldService manages the registry of extra client fields
type ClientFieldService struct {
	fieldRepo repository.ClientFieldRepository
}

// NewClientFieldService creates a new client field service
func NewClientFieldService(fieldRepo repository.ClientFieldRepository) *ClientFieldService {
	return &ClientFieldService{fieldRepo: fieldRepo}
}

// ClientFieldInput describes a field definition
type ClientFieldInput struct {
	Key      string
	Label    string
	Required bool
	Position int
}

// ListFields returns every registered field ordered by position
func (s *ClientFieldService) ListFields(ctx context.Context) ([]entity.ClientFieldDefinition, error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceClient); err != nil {
		return nil, err
	}
	return s.fieldRepo.List(ctx)
}

// CreateField registers a new key. The key is derived from the label when empty.
func (s *ClientFieldService) CreateField(ctx context.Context, input *ClientFieldInput) (*entity.ClientFieldDefinition, error) {
	if _, err := authz.Require(ctx, authz.ActionEdit, authz.ResourceSettings); err != nil {
		return nil, err
	}
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}

	label := strings.TrimSpace(input.Label)
	if label == "" {
		return nil, apperror.NewFieldError("label", "Label is required")
	}
	key := input.Key
	if key == "" {
		key = label
	}
	key = strings.ReplaceAll(utils.Slugify(key), "-", "_")
	if key == "" {
		return nil, apperror.NewFieldError("key", "Key must contain letters or digits")
	}

	existing, err := s.fieldRepo.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("A field with this key already exists")
	}

	def := &entity.ClientFieldDefinition{
		TenantID: tenantID,
		Key:      key,
		Label:    label,
		Required: input.Required,
		Position: input.Position,
	}
	if err := s.fieldRepo.Create(ctx, def); err != nil {
		return nil, err
	}
	return def, nil
}

// UpdateField changes label, required flag and position. Keys are immutable.
func (s *ClientFieldService) UpdateField(ctx context.Context, id uuid.UUID, input *ClientFieldInput) (*entity.ClientFieldDefinition, error) {
	if _, err := authz.Require(ctx, authz.ActionEdit, authz.ResourceSettings); err != nil {
		return nil, err
	}
	def, err := s.fieldRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, apperror.NewNotFoundError("Client field")
	}
	if label := strings.TrimSpace(input.Label); label != "" {
		def.Label = label
	}
	def.Required = input.Required
	def.Position = input.Position
	if err := s.fieldRepo.Update(ctx, def); err != nil {
		return nil, err
	}
	return def, nil
}

// DeleteField removes a definition. Values already stored on clients are kept.
func (s *ClientFieldService) DeleteField(ctx context.Context, id uuid.UUID) error {
	if _, err := authz.Require(ctx, authz.ActionEdit, authz.ResourceSettings); err != nil {
		return err
	}
	def, err := s.fieldRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if def == nil {
		return apperror.NewNotFoundError("Client field")
	}
	return s.fieldRepo.Delete(ctx, id)
}
