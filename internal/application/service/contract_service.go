package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/application/authz"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/render"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/storage"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
)

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// LongDate formats t the way contracts print dates, e.g. "14 de octubre de 2026".
func LongDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
}

// RenderTemplate substitutes every {{name}} with vars[name]. Placeholders
// without a value are returned sorted and deduplicated; the body is still
// rendered with them left in place.
func RenderTemplate(body string, vars map[string]string) (string, []string) {
	missing := map[string]bool{}
	out := placeholder.ReplaceAllStringFunc(body, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		if v, ok := vars[name]; ok {
			return v
		}
		missing[name] = true
		return m
	})
	if len(missing) == 0 {
		return out, nil
	}
	unknown := make([]string, 0, len(missing))
	for k := range missing {
		unknown = append(unknown, k)
	}
	sort.Strings(unknown)
	return out, unknown
}

// ContractService renders contract templates for clients
type ContractService struct {
	contractRepo repository.ContractRepository
	clientRepo   repository.ClientRepository
	tenantRepo   repository.TenantRepository
	files        storage.Storage
	renderer     Renderer
	activity     *ActivityService
	issuer       IssuerConfig
	now          func() time.Time
}

// NewContractService creates a new contract service
func NewContractService(
	contractRepo repository.ContractRepository,
	clientRepo repository.ClientRepository,
	tenantRepo repository.TenantRepository,
	files storage.Storage,
	renderer Renderer,
	activity *ActivityService,
	issuer IssuerConfig,
) *ContractService {
	return &ContractService{
		contractRepo: contractRepo,
		clientRepo:   clientRepo,
		tenantRepo:   tenantRepo,
		files:        files,
		renderer:     renderer,
		activity:     activity,
		issuer:       issuer,
		now:          time.Now,
	}
}

// TemplateInput describes a contract template
type TemplateInput struct {
	Name string
	Body string
}

func (in *TemplateInput) validate() error {
	var errs []apperror.FieldError
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, apperror.FieldError{Field: "name", Message: "Name is required"})
	}
	if strings.TrimSpace(in.Body) == "" {
		errs = append(errs, apperror.FieldError{Field: "body", Message: "Body is required"})
	}
	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}

// ListTemplates returns every template
func (s *ContractService) ListTemplates(ctx context.Context) ([]entity.ContractTemplate, error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceContract); err != nil {
		return nil, err
	}
	return s.contractRepo.ListTemplates(ctx)
}

// GetTemplate returns a single template
func (s *ContractService) GetTemplate(ctx context.Context, id uuid.UUID) (*entity.ContractTemplate, error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceContract); err != nil {
		return nil, err
	}
	return s.template(ctx, id)
}

func (s *ContractService) template(ctx context.Context, id uuid.UUID) (*entity.ContractTemplate, error) {
	tpl, err := s.contractRepo.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, apperror.NewNotFoundError("Contract template")
	}
	return tpl, nil
}

// CreateTemplate stores a new template
func (s *ContractService) CreateTemplate(ctx context.Context, input *TemplateInput) (*entity.ContractTemplate, error) {
	if _, err := authz.Require(ctx, authz.ActionCreate, authz.ResourceContract); err != nil {
		return nil, err
	}
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	tpl := &entity.ContractTemplate{TenantID: tenantID, Name: strings.TrimSpace(input.Name), Body: input.Body}
	if err := s.contractRepo.CreateTemplate(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

// UpdateTemplate replaces name and body. Generated contracts keep their text.
func (s *ContractService) UpdateTemplate(ctx context.Context, id uuid.UUID, input *TemplateInput) (*entity.ContractTemplate, error) {
	if _, err := authz.Require(ctx, authz.ActionEdit, authz.ResourceContract); err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	tpl, err := s.template(ctx, id)
	if err != nil {
		return nil, err
	}
	tpl.Name = strings.TrimSpace(input.Name)
	tpl.Body = input.Body
	if err := s.contractRepo.UpdateTemplate(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

// DeleteTemplate removes a template
func (s *ContractService) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	if _, err := authz.Require(ctx, authz.ActionDelete, authz.ResourceContract); err != nil {
		return err
	}
	if _, err := s.template(ctx, id); err != nil {
		return err
	}
	return s.contractRepo.DeleteTemplate(ctx, id)
}

// ContractInput selects the template, the client and extra values
type ContractInput struct {
	TemplateID uuid.UUID
	ClientID   uuid.UUID
	Title      string
	Variables  map[string]string
}

// Preview is a rendered contract that was not stored
type Preview struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (s *ContractService) variables(tenant *entity.Tenant, client *entity.Client, overrides map[string]string) map[string]string {
	firm := firmView(tenant, s.issuer)
	vars := map[string]string{
		"cliente.empresa":      client.CompanyName,
		"cliente.contacto":     client.ContactName,
		"cliente.email":        client.Email,
		"cliente.telefono":     client.Phone,
		"cliente.rfc":          client.RFC,
		"cliente.razon_social": client.FiscalName,
		"fecha":                LongDate(s.now()),
		"firma.nombre":         firm.Name,
	}
	for k, v := range client.Extra() {
		vars["cliente.extra."+k] = v
	}
	for k, v := range overrides {
		vars[k] = v
	}
	return vars
}

func (s *ContractService) render(ctx context.Context, input *ContractInput) (*entity.ContractTemplate, *entity.Client, *Preview, error) {
	tpl, err := s.template(ctx, input.TemplateID)
	if err != nil {
		return nil, nil, nil, err
	}
	client, err := s.clientRepo.GetByID(ctx, input.ClientID)
	if err != nil {
		return nil, nil, nil, err
	}
	if client == nil {
		return nil, nil, nil, apperror.NewNotFoundError("Client")
	}
	tenant, err := currentTenant(ctx, s.tenantRepo)
	if err != nil {
		return nil, nil, nil, err
	}

	body, unknown := RenderTemplate(tpl.Body, s.variables(tenant, client, input.Variables))
	if len(unknown) > 0 {
		errs := make([]apperror.FieldError, 0, len(unknown))
		for _, name := range unknown {
			errs = append(errs, apperror.FieldError{Field: "variables." + name, Message: "Unknown placeholder"})
		}
		return nil, nil, nil, apperror.NewValidationError(errs)
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = tpl.Name + " - " + client.CompanyName
	}
	return tpl, client, &Preview{Title: title, Body: body}, nil
}

// PreviewContract renders the template without storing anything
func (s *ContractService) PreviewContract(ctx context.Context, input *ContractInput) (*Preview, error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceContract); err != nil {
		return nil, err
	}
	_, _, preview, err := s.render(ctx, input)
	return preview, err
}

// GenerateContract renders the template, stores the contract and its PDF
func (s *ContractService) GenerateContract(ctx context.Context, input *ContractInput) (*entity.Contract, error) {
	p, err := authz.Require(ctx, authz.ActionCreate, authz.ResourceContract)
	if err != nil {
		return nil, err
	}
	tpl, client, preview, err := s.render(ctx, input)
	if err != nil {
		return nil, err
	}
	tenant, err := currentTenant(ctx, s.tenantRepo)
	if err != nil {
		return nil, err
	}

	contract := &entity.Contract{
		ID:         uuid.New(),
		TenantID:   tenant.ID,
		ClientID:   client.ID,
		TemplateID: &tpl.ID,
		Title:      preview.Title,
		Body:       preview.Body,
		CreatedBy:  p.UserID,
	}
	pdf, err := s.renderer.Contract(render.ContractView{
		Firm:  firmView(tenant, s.issuer),
		Title: contract.Title,
		Body:  contract.Body,
		Date:  s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("render contract: %w", err)
	}
	key := storage.ContractKey(tenant.ID, contract.ID)
	if _, err := s.files.Put(ctx, key, bytes.NewReader(pdf)); err != nil {
		return nil, apperror.Wrap(err, "Could not store the contract")
	}
	contract.PDFKey = key

	if err := s.contractRepo.Create(ctx, contract); err != nil {
		_ = s.files.Delete(ctx, key)
		return nil, err
	}
	s.activity.RecordQuietly(ctx, "Generación de contrato", contract.Title, EntityContract, &contract.ID)
	return contract, nil
}

// ListContracts returns the contracts of a client
func (s *ContractService) ListContracts(ctx context.Context, clientID uuid.UUID) ([]entity.Contract, error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceContract); err != nil {
		return nil, err
	}
	return s.contractRepo.ListByClient(ctx, clientID)
}

// GetContract returns a single contract
func (s *ContractService) GetContract(ctx context.Context, id uuid.UUID) (*entity.Contract, error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceContract); err != nil {
		return nil, err
	}
	contract, err := s.contractRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, apperror.NewNotFoundError("Contract")
	}
	return contract, nil
}

// OpenContract opens the stored PDF of a contract
func (s *ContractService) OpenContract(ctx context.Context, id uuid.UUID) (*Artifact, error) {
	contract, err := s.GetContract(ctx, id)
	if err != nil {
		return nil, err
	}
	if contract.PDFKey == "" {
		return nil, apperror.NewNotFoundError("Contract PDF")
	}
	rc, err := s.files.Open(ctx, contract.PDFKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperror.NewNotFoundError("Contract PDF")
	}
	if err != nil {
		return nil, err
	}
	return &Artifact{Content: rc, Filename: contract.ID.String() + ".pdf", ContentType: "application/pdf"}, nil
}
