package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/application/authz"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	"github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/fiscal"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/storage"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
	"github.com/sangkips/lexdesk-api/pkg/logger"
	"github.com/sangkips/lexdesk-api/pkg/pagination"
)

var logoTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

// ClientService handles client-related operations
type ClientService struct {
	clientRepo      repository.ClientRepository
	fieldRepo       repository.ClientFieldRepository
	folderRepo      repository.FolderRepository
	requirementRepo repository.RequirementRepository
	userRepo        repository.UserRepository
	txManager       repository.TxManager
	files           storage.Storage
	activity        *ActivityService
}

// NewClientService creates a new client service
func NewClientService(
	clientRepo repository.ClientRepository,
	fieldRepo repository.ClientFieldRepository,
	folderRepo repository.FolderRepository,
	requirementRepo repository.RequirementRepository,
	userRepo repository.UserRepository,
	txManager repository.TxManager,
	files storage.Storage,
	activity *ActivityService,
) *ClientService {
	return &ClientService{
		clientRepo:      clientRepo,
		fieldRepo:       fieldRepo,
		folderRepo:      folderRepo,
		requirementRepo: requirementRepo,
		userRepo:        userRepo,
		txManager:       txManager,
		files:           files,
		activity:        activity,
	}
}

// ClientInput holds the editable client attributes. Nil pointers are left unchanged on update.
type ClientInput struct {
	CompanyName  *string
	ContactName  *string
	Phone        *string
	Email        *string
	RFC          *string
	FiscalName   *string
	FiscalRegime *string
	TaxZipCode   *string
	ExtraFields  entity.ExtraFields
}

func (in *ClientInput) apply(c *entity.Client) {
	set := func(dst *string, src *string, upper bool) {
		if src == nil {
			return
		}
		v := strings.TrimSpace(*src)
		if upper {
			v = strings.ToUpper(v)
		}
		*dst = v
	}
	set(&c.CompanyName, in.CompanyName, false)
	set(&c.ContactName, in.ContactName, false)
	set(&c.Phone, in.Phone, false)
	set(&c.RFC, in.RFC, true)
	set(&c.FiscalName, in.FiscalName, false)
	set(&c.FiscalRegime, in.FiscalRegime, false)
	set(&c.TaxZipCode, in.TaxZipCode, false)
	if in.Email != nil {
		c.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
}

// CreateClient creates a client together with its requirement checklist and
// the root folders of the drive.
func (s *ClientService) CreateClient(ctx context.Context, input *ClientInput, assignees []uuid.UUID) (*entity.Client, error) {
	p, err := authz.Require(ctx, authz.ActionCreate, authz.ResourceClient)
	if err != nil {
		return nil, err
	}
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	if input.CompanyName == nil || strings.TrimSpace(*input.CompanyName) == "" {
		return nil, apperror.NewFieldError("company_name", "Company name is required")
	}
	if err := s.validateExtra(ctx, input.ExtraFields); err != nil {
		return nil, err
	}

	client := &entity.Client{ID: uuid.New(), TenantID: tenantID, CreatedBy: &p.UserID}
	input.apply(client)
	client.SetExtra(input.ExtraFields)

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.ensureUniqueName(ctx, client.CompanyName, uuid.Nil); err != nil {
			return err
		}
		if err := s.create(ctx, client); err != nil {
			return err
		}
		for _, userID := range assignees {
			if err := s.assign(ctx, client.ID, userID); err != nil {
				return err
			}
		}
		return s.activity.Record(ctx, "Alta de cliente", client.CompanyName, EntityClient, &client.ID)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().Str("client_id", client.ID.String()).Msg("client created")
	return client, nil
}

// create persists the client and provisions its checklist. Callers run it
// inside a transaction.
func (s *ClientService) create(ctx context.Context, client *entity.Client) error {
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return err
	}
	return s.provision(ctx, client)
}

// provision creates one root folder per checklist category and one pending
// requirement per expected document.
func (s *ClientService) provision(ctx context.Context, client *entity.Client) error {
	var reqs []entity.Requirement
	for _, category := range entity.RequirementCategories {
		folder, err := s.folderRepo.FindRoot(ctx, client.ID, category.Name)
		if err != nil {
			return err
		}
		if folder == nil {
			folder = &entity.Folder{TenantID: client.TenantID, ClientID: client.ID, Name: category.Name}
			if err := s.folderRepo.Create(ctx, folder); err != nil {
				return fmt.Errorf("create folder %s: %w", category.Name, err)
			}
		}
		for _, item := range category.Items {
			reqs = append(reqs, entity.Requirement{
				TenantID: client.TenantID,
				ClientID: client.ID,
				Category: category.Name,
				Name:     item,
				Status:   enum.RequirementStatusPending,
			})
		}
	}
	if len(reqs) == 0 {
		return nil
	}
	return s.requirementRepo.CreateBatch(ctx, reqs)
}

func (s *ClientService) ensureUniqueName(ctx context.Context, name string, self uuid.UUID) error {
	matches, err := s.clientRepo.FindByCompanyName(ctx, name)
	if err != nil {
		return err
	}
	for _, m := range matches {
		if m.ID != self {
			return apperror.NewConflictError("A client with this company name already exists")
		}
	}
	return nil
}

// validateExtra rejects unregistered keys and missing required ones.
func (s *ClientService) validateExtra(ctx context.Context, fields entity.ExtraFields) error {
	defs, err := s.fieldRepo.List(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]entity.ClientFieldDefinition, len(defs))
	for _, d := range defs {
		known[d.Key] = d
	}

	var errs []apperror.FieldError
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := known[k]; !ok {
			errs = append(errs, apperror.FieldError{Field: "extra_fields." + k, Message: "Unknown field"})
		}
	}
	for _, d := range defs {
		if d.Required && strings.TrimSpace(fields[d.Key]) == "" {
			errs = append(errs, apperror.FieldError{Field: "extra_fields." + d.Key, Message: d.Label + " is required"})
		}
	}
	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}

// ClientDetail is a client with its checklist grouped by category
type ClientDetail struct {
	*entity.Client
	RequirementGroups []entity.RequirementGroup `json:"requirement_groups"`
}

// GetClient returns the client with its matters, assignees and checklist progress
func (s *ClientService) GetClient(ctx context.Context, id uuid.UUID) (*ClientDetail, error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceClient); err != nil {
		return nil, err
	}
	client, err := s.clientRepo.GetWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}
	if client.LogoKey != "" {
		client.LogoURL = s.files.URL(client.LogoKey)
	}
	return &ClientDetail{Client: client, RequirementGroups: GroupRequirements(client.Requirements)}, nil
}

func (s *ClientService) get(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}
	return client, nil
}

// ListClientsInput represents the input for listing clients
type ListClientsInput struct {
	Pagination *pagination.PaginationParams
	Search     string
	OnlyMine   bool
	SortBy     string
	SortOrder  string
}

// ListClients returns a page of clients
func (s *ClientService) ListClients(ctx context.Context, input *ListClientsInput) (*pagination.PaginatedResult[entity.Client], error) {
	p, err := authz.Require(ctx, authz.ActionView, authz.ResourceClient)
	if err != nil {
		return nil, err
	}
	params := input.Pagination
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()

	filter := repository.ClientFilter{
		Pagination: params,
		Search:     input.Search,
		SortBy:     input.SortBy,
		SortOrder:  input.SortOrder,
	}
	if input.OnlyMine {
		filter.AssignedTo = &p.UserID
	}

	clients, total, err := s.clientRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(clients, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// UpdateClient changes the client attributes
func (s *ClientService) UpdateClient(ctx context.Context, id uuid.UUID, input *ClientInput) (*entity.Client, error) {
	if _, err := authz.Require(ctx, authz.ActionEdit, authz.ResourceClient); err != nil {
		return nil, err
	}
	client, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.CompanyName != nil && strings.TrimSpace(*input.CompanyName) == "" {
		return nil, apperror.NewFieldError("company_name", "Company name is required")
	}
	if input.ExtraFields != nil {
		if err := s.validateExtra(ctx, input.ExtraFields); err != nil {
			return nil, err
		}
		client.SetExtra(input.ExtraFields)
	}
	input.apply(client)

	if err := s.ensureUniqueName(ctx, client.CompanyName, client.ID); err != nil {
		return nil, err
	}
	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}
	s.activity.RecordQuietly(ctx, "Edición de cliente", client.CompanyName, EntityClient, &client.ID)
	return client, nil
}

// SetExtraFields replaces the free-form attributes of a client
func (s *ClientService) SetExtraFields(ctx context.Context, id uuid.UUID, fields entity.ExtraFields) (*entity.Client, error) {
	return s.UpdateClient(ctx, id, &ClientInput{ExtraFields: fields})
}

// DeleteClient soft deletes a client
func (s *ClientService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	if _, err := authz.Require(ctx, authz.ActionDelete, authz.ResourceClient); err != nil {
		return err
	}
	client, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.clientRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.activity.RecordQuietly(ctx, "Baja de cliente", client.CompanyName, EntityClient, &client.ID)
	return nil
}

// UploadLogo stores a new logo image and drops the previous one
func (s *ClientService) UploadLogo(ctx context.Context, id uuid.UUID, filename, contentType string, r io.Reader) (*entity.Client, error) {
	if _, err := authz.Require(ctx, authz.ActionEdit, authz.ResourceClient); err != nil {
		return nil, err
	}
	if !logoTypes[contentType] {
		return nil, apperror.NewFieldError("logo", "Logo must be a PNG, JPEG or WebP image")
	}
	client, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	key := storage.ClientKey(client.TenantID, client.ID, "logo-"+filename)
	if _, err := s.files.Put(ctx, key, r); err != nil {
		return nil, apperror.Wrap(err, "Could not store the logo")
	}

	previous := client.LogoKey
	client.LogoKey = key
	if err := s.clientRepo.Update(ctx, client); err != nil {
		_ = s.files.Delete(ctx, key)
		return nil, err
	}
	if previous != "" {
		if err := s.files.Delete(ctx, previous); err != nil {
			logger.FromContext(ctx).Warn().Err(err).Str("key", previous).Msg("old logo not removed")
		}
	}
	client.LogoURL = s.files.URL(key)
	return client, nil
}

// AssignUser gives a staff member visibility of the client
func (s *ClientService) AssignUser(ctx context.Context, clientID, userID uuid.UUID) error {
	if _, err := authz.Require(ctx, authz.ActionEdit, authz.ResourceClient); err != nil {
		return err
	}
	if _, err := s.get(ctx, clientID); err != nil {
		return err
	}
	return s.assign(ctx, clientID, userID)
}

func (s *ClientService) assign(ctx context.Context, clientID, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.NewNotFoundError("User")
	}
	return s.clientRepo.AssignUser(ctx, clientID, userID)
}

// UnassignUser removes a staff member from the client
func (s *ClientService) UnassignUser(ctx context.Context, clientID, userID uuid.UUID) error {
	if _, err := authz.Require(ctx, authz.ActionEdit, authz.ResourceClient); err != nil {
		return err
	}
	if _, err := s.get(ctx, clientID); err != nil {
		return err
	}
	return s.clientRepo.UnassignUser(ctx, clientID, userID)
}

// FiscalImport is the outcome of reading a tax-status certificate
type FiscalImport struct {
	Data    fiscal.Data    `json:"data"`
	Applied bool           `json:"applied"`
	Client  *entity.Client `json:"client,omitempty"`
}

// ImportFiscalCertificate reads a SAT certificate and, when apply is set,
// copies every recovered field onto the client.
func (s *ClientService) ImportFiscalCertificate(ctx context.Context, clientID uuid.UUID, content []byte, apply bool) (*FiscalImport, error) {
	if _, err := authz.Require(ctx, authz.ActionEdit, authz.ResourceClient); err != nil {
		return nil, err
	}
	client, err := s.get(ctx, clientID)
	if err != nil {
		return nil, err
	}

	data := fiscal.ReadCertificate(content)
	out := &FiscalImport{Data: data, Client: client}
	if !apply || data.Empty() {
		return out, nil
	}

	if data.RFC != "" {
		client.RFC = data.RFC
	}
	if data.FiscalName != "" {
		client.FiscalName = data.FiscalName
	}
	if data.TaxZipCode != "" {
		client.TaxZipCode = data.TaxZipCode
	}
	if data.Regime != "" {
		client.FiscalRegime = data.Regime
	}
	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}
	out.Applied = true
	s.activity.RecordQuietly(ctx, "Importación de constancia fiscal", client.CompanyName, EntityClient, &client.ID)
	return out, nil
}
