package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/render"
	infraRepo "github.com/sangkips/lexdesk-api/internal/infrastructure/repository"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/signing"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
	"github.com/sangkips/lexdesk-api/pkg/email"
	"github.com/shopspring/decimal"
)

// Mailer sends transactional email
type Mailer interface {
	SendPasswordResetEmail(ctx context.Context, toEmail, token string) error
	SendDocument(ctx context.Context, to []string, subject, greeting, body string, files ...email.Attachment) error
}

// Renderer produces the PDF documents handed to clients
type Renderer interface {
	Quote(v render.QuoteView) ([]byte, error)
	Invoice(v render.InvoiceView) ([]byte, error)
	Receipt(v render.ReceiptView) ([]byte, error)
	Contract(v render.ContractView) ([]byte, error)
}

// Signer stamps a CFDI with the tax authority
type Signer interface {
	Sign(ctx context.Context, doc *signing.CFDIRequest) (*signing.Result, error)
}

// BillingConfig holds the service-wide money defaults. Tenants may override
// each of them in their settings.
type BillingConfig struct {
	TaxRate           decimal.Decimal
	DepositFraction   decimal.Decimal
	AutoInvoiceOnPaid bool
	ReceivableDueDays int
	QuotePrefix       string
	InvoicePrefix     string
}

// IssuerConfig identifies the firm on signed invoices when the tenant has not
// configured its own fiscal data.
type IssuerConfig struct {
	RFC             string
	Name            string
	Regime          string
	ExpeditionPlace string
}

// billingFor merges tenant settings over the defaults.
func (c BillingConfig) billingFor(s entity.TenantSettings) BillingConfig {
	out := c
	if s.TaxRate.Valid {
		out.TaxRate = s.TaxRate.Decimal
	}
	if s.DepositFraction.Valid {
		out.DepositFraction = s.DepositFraction.Decimal
	}
	if s.AutoInvoiceOnPaid {
		out.AutoInvoiceOnPaid = true
	}
	if s.ReceivableDueDays > 0 {
		out.ReceivableDueDays = s.ReceivableDueDays
	}
	if s.QuotePrefix != "" {
		out.QuotePrefix = s.QuotePrefix
	}
	if s.InvoicePrefix != "" {
		out.InvoicePrefix = s.InvoicePrefix
	}
	if out.QuotePrefix == "" {
		out.QuotePrefix = "COT-"
	}
	if out.InvoicePrefix == "" {
		out.InvoicePrefix = "F-"
	}
	if out.ReceivableDueDays <= 0 {
		out.ReceivableDueDays = 30
	}
	return out
}

func (c IssuerConfig) issuerFor(s entity.TenantSettings) IssuerConfig {
	out := c
	if s.IssuerRFC != "" {
		out.RFC = s.IssuerRFC
	}
	if s.IssuerName != "" {
		out.Name = s.IssuerName
	}
	if s.IssuerRegime != "" {
		out.Regime = s.IssuerRegime
	}
	if s.ExpeditionPlace != "" {
		out.ExpeditionPlace = s.ExpeditionPlace
	}
	return out
}

func requireTenant(ctx context.Context) (uuid.UUID, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return uuid.Nil, apperror.NewBadRequestError("Tenant context required")
	}
	return tenantID, nil
}

// currentTenant loads the tenant of the request.
func currentTenant(ctx context.Context, tenants repository.TenantRepository) (*entity.Tenant, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	tenant, err := tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, apperror.NewNotFoundError("Tenant")
	}
	return tenant, nil
}

func firmView(tenant *entity.Tenant, issuer IssuerConfig) render.FirmView {
	is := issuer.issuerFor(tenant.Settings)
	name := is.Name
	if name == "" {
		name = tenant.Name
	}
	return render.FirmView{Name: name, RFC: is.RFC, Regime: is.Regime}
}
