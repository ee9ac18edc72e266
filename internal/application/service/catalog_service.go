package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/application/authz"
	"github.com/sangkips/lexdesk-api/internal/domain/billing"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
	"github.com/sangkips/lexdesk-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// CatalogService manages the firm's price list of services
type CatalogService struct {
	itemRepo repository.ServiceItemRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(itemRepo repository.ServiceItemRepository) *CatalogService {
	return &CatalogService{itemRepo: itemRepo}
}

// ServiceItemInput describes a catalog entry. Nil fields are left unchanged on update.
type ServiceItemInput struct {
	Name        *string
	Description *string
	UnitPrice   *decimal.Decimal
	IsActive    *bool
}

// ListItems returns a page of catalog entries
func (s *CatalogService) ListItems(ctx context.Context, params *pagination.PaginationParams, search string, activeOnly bool) (*pagination.PaginatedResult[entity.ServiceItem], error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceQuote); err != nil {
		return nil, err
	}
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()

	items, total, err := s.itemRepo.List(ctx, params, search, activeOnly)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(items, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// GetItem returns a single catalog entry
func (s *CatalogService) GetItem(ctx context.Context, id uuid.UUID) (*entity.ServiceItem, error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceQuote); err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

func (s *CatalogService) get(ctx context.Context, id uuid.UUID) (*entity.ServiceItem, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperror.NewNotFoundError("Service")
	}
	return item, nil
}

// CreateItem adds a service to the catalog
func (s *CatalogService) CreateItem(ctx context.Context, input *ServiceItemInput) (*entity.ServiceItem, error) {
	if _, err := authz.Require(ctx, authz.ActionEdit, authz.ResourceSettings); err != nil {
		return nil, err
	}
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, apperror.NewFieldError("name", "Name is required")
	}
	if input.UnitPrice == nil {
		return nil, apperror.NewFieldError("unit_price", "Unit price is required")
	}

	item := &entity.ServiceItem{TenantID: tenantID, IsActive: true}
	if err := applyServiceItem(item, input); err != nil {
		return nil, err
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem changes a catalog entry. Quotes keep the price they were built with.
func (s *CatalogService) UpdateItem(ctx context.Context, id uuid.UUID, input *ServiceItemInput) (*entity.ServiceItem, error) {
	if _, err := authz.Require(ctx, authz.ActionEdit, authz.ResourceSettings); err != nil {
		return nil, err
	}
	item, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, apperror.NewFieldError("name", "Name is required")
	}
	if err := applyServiceItem(item, input); err != nil {
		return nil, err
	}
	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes a catalog entry
func (s *CatalogService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if _, err := authz.Require(ctx, authz.ActionEdit, authz.ResourceSettings); err != nil {
		return err
	}
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	return s.itemRepo.Delete(ctx, id)
}

func applyServiceItem(item *entity.ServiceItem, input *ServiceItemInput) error {
	if input.UnitPrice != nil {
		if input.UnitPrice.IsNegative() {
			return apperror.NewFieldError("unit_price", "Unit price must not be negative")
		}
		item.UnitPrice = billing.Round(*input.UnitPrice)
	}
	if input.Name != nil {
		item.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		item.Description = strings.TrimSpace(*input.Description)
	}
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
	}
	return nil
}
