package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/application/authz"
	"github.com/sangkips/lexdesk-api/internal/domain/billing"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	"github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/render"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
	"github.com/sangkips/lexdesk-api/pkg/logger"
	"github.com/sangkips/lexdesk-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// receivableInvoicer issues the invoice of a settled receivable.
type receivableInvoicer interface {
	issueForReceivable(ctx context.Context, receivable *entity.Receivable, actor uuid.UUID) (*entity.Invoice, error)
}

// PaymentService applies payments to receivables
type PaymentService struct {
	receivableRepo repository.ReceivableRepository
	paymentRepo    repository.PaymentRepository
	clientRepo     repository.ClientRepository
	tenantRepo     repository.TenantRepository
	txManager      repository.TxManager
	accounting     *AccountingService
	activity       *ActivityService
	invoicer       receivableInvoicer
	renderer       Renderer
	billing        BillingConfig
	issuer         IssuerConfig
	now            func() time.Time
}

// NewPaymentService creates a new payment service. invoicer may be nil, in
// which case paid receivables are never invoiced automatically.
func NewPaymentService(
	receivableRepo repository.ReceivableRepository,
	paymentRepo repository.PaymentRepository,
	clientRepo repository.ClientRepository,
	tenantRepo repository.TenantRepository,
	txManager repository.TxManager,
	accounting *AccountingService,
	activity *ActivityService,
	invoicer *InvoiceService,
	renderer Renderer,
	billing BillingConfig,
	issuer IssuerConfig,
) *PaymentService {
	s := &PaymentService{
		receivableRepo: receivableRepo,
		paymentRepo:    paymentRepo,
		clientRepo:     clientRepo,
		tenantRepo:     tenantRepo,
		txManager:      txManager,
		accounting:     accounting,
		activity:       activity,
		renderer:       renderer,
		billing:        billing,
		issuer:         issuer,
		now:            time.Now,
	}
	if invoicer != nil {
		s.invoicer = invoicer
	}
	return s
}

// PaymentInput is a payment to apply
type PaymentInput struct {
	Amount    decimal.Decimal
	Method    enum.PaymentMethod
	Reference string
	PaidAt    *time.Time
	IsDeposit bool
}

// PaymentResult is the outcome of applying a payment
type PaymentResult struct {
	Payment    *entity.Payment      `json:"payment"`
	Receivable *entity.Receivable   `json:"receivable"`
	Entry      *entity.JournalEntry `json:"journal_entry"`
	Invoice    *entity.Invoice      `json:"invoice,omitempty"`
}

func paymentError(err error) error {
	switch {
	case errors.Is(err, entity.ErrInvalidPaymentAmount):
		return apperror.NewFieldError("amount", err.Error())
	case errors.Is(err, entity.ErrInvalidPaymentMethod):
		return apperror.NewFieldError("method", err.Error())
	case errors.Is(err, entity.ErrReceivableSettled):
		return apperror.NewConflictError("Receivable is already paid")
	}
	return err
}

// ApplyPayment records a payment, updates the receivable and posts the
// journal entry in one transaction. When the receivable ends up paid and the
// firm enabled it, an invoice is issued after commit.
func (s *PaymentService) ApplyPayment(ctx context.Context, receivableID uuid.UUID, input *PaymentInput) (*PaymentResult, error) {
	p, err := authz.Require(ctx, authz.ActionCreate, authz.ResourceFinance)
	if err != nil {
		return nil, err
	}

	var result *PaymentResult
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.apply(ctx, p.UserID, receivableID, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, result, p.UserID)
	return result, nil
}

// apply does the work of ApplyPayment inside the caller's transaction.
func (s *PaymentService) apply(ctx context.Context, actor, receivableID uuid.UUID, input *PaymentInput) (*PaymentResult, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}

	paidAt := s.now()
	if input.PaidAt != nil {
		paidAt = *input.PaidAt
	}
	payment := &entity.Payment{
		ID:           uuid.New(),
		TenantID:     tenantID,
		ReceivableID: receivableID,
		Amount:       billing.Round(input.Amount),
		Method:       enum.PaymentMethod(strings.ToLower(string(input.Method))),
		Reference:    strings.TrimSpace(input.Reference),
		IsDeposit:    input.IsDeposit,
		PaidAt:       paidAt,
		RecordedBy:   actor,
	}
	if err := payment.Validate(); err != nil {
		return nil, paymentError(err)
	}

	receivable, err := s.receivableRepo.GetForUpdate(ctx, receivableID)
	if err != nil {
		return nil, err
	}
	if receivable == nil {
		return nil, apperror.NewNotFoundError("Receivable")
	}
	if receivable.IsPaid() {
		return nil, paymentError(entity.ErrReceivableSettled)
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}
	paid, err := s.paymentRepo.SumByReceivable(ctx, receivable.ID)
	if err != nil {
		return nil, err
	}
	receivable.Recalculate(paid)
	if err := s.receivableRepo.Update(ctx, receivable); err != nil {
		return nil, err
	}

	client, err := s.clientRepo.GetByID(ctx, receivable.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}
	receivable.Client = client

	entry, err := s.accounting.postPayment(ctx, payment, client.CompanyName)
	if err != nil {
		return nil, err
	}

	description := render.Money(payment.Amount) + " " + string(payment.Method) + " de " + client.CompanyName
	if err := s.activity.Record(ctx, "Registro de pago", description, EntityPayment, &payment.ID); err != nil {
		return nil, err
	}

	return &PaymentResult{Payment: payment, Receivable: receivable, Entry: entry}, nil
}

// afterCommit issues the invoice of a settled receivable. Failures are
// logged; the payment stands.
func (s *PaymentService) afterCommit(ctx context.Context, result *PaymentResult, actor uuid.UUID) {
	if s.invoicer == nil || !result.Receivable.IsPaid() {
		return
	}
	log := logger.FromContext(ctx)

	tenant, err := currentTenant(ctx, s.tenantRepo)
	if err != nil {
		log.Warn().Err(err).Msg("auto invoice skipped: tenant not loaded")
		return
	}
	if !s.billing.billingFor(tenant.Settings).AutoInvoiceOnPaid {
		return
	}

	invoice, err := s.invoicer.issueForReceivable(ctx, result.Receivable, actor)
	if err != nil {
		log.Error().Err(err).Str("receivable_id", result.Receivable.ID.String()).Msg("auto invoice failed")
		return
	}
	result.Invoice = invoice
}

// GetReceivable returns a receivable with its payments
func (s *PaymentService) GetReceivable(ctx context.Context, id uuid.UUID) (*entity.Receivable, error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceFinance); err != nil {
		return nil, err
	}
	receivable, err := s.receivableRepo.GetWithPayments(ctx, id)
	if err != nil {
		return nil, err
	}
	if receivable == nil {
		return nil, apperror.NewNotFoundError("Receivable")
	}
	return receivable, nil
}

// ListReceivablesInput represents the input for listing receivables
type ListReceivablesInput struct {
	Pagination *pagination.PaginationParams
	Statuses   []enum.ReceivableStatus
	ClientID   *uuid.UUID
	Overdue    bool
}

// ListReceivables returns a page of receivables
func (s *PaymentService) ListReceivables(ctx context.Context, input *ListReceivablesInput) (*pagination.PaginatedResult[entity.Receivable], error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceFinance); err != nil {
		return nil, err
	}
	params := input.Pagination
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()

	filter := repository.ReceivableFilter{
		Pagination: params,
		Statuses:   input.Statuses,
		ClientID:   input.ClientID,
	}
	if input.Overdue {
		today := s.now().Truncate(24 * time.Hour)
		filter.DueBefore = &today
		filter.Statuses = []enum.ReceivableStatus{enum.ReceivableStatusPending, enum.ReceivableStatusPartial}
	}

	receivables, total, err := s.receivableRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(receivables, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// Receipt renders the proof of one payment
func (s *PaymentService) Receipt(ctx context.Context, receivableID, paymentID uuid.UUID) ([]byte, string, error) {
	receivable, err := s.GetReceivable(ctx, receivableID)
	if err != nil {
		return nil, "", err
	}
	var payment *entity.Payment
	for i := range receivable.Payments {
		if receivable.Payments[i].ID == paymentID {
			payment = &receivable.Payments[i]
		}
	}
	if payment == nil {
		return nil, "", apperror.NewNotFoundError("Payment")
	}

	tenant, err := currentTenant(ctx, s.tenantRepo)
	if err != nil {
		return nil, "", err
	}
	client := receivable.Client
	if client == nil {
		if client, err = s.clientRepo.GetByID(ctx, receivable.ClientID); err != nil {
			return nil, "", err
		}
	}
	party := render.PartyView{}
	if client != nil {
		party = render.PartyView{Name: client.CompanyName, Contact: client.ContactName, Email: client.Email, RFC: client.RFC}
	}

	number := "REC-" + strings.ToUpper(payment.ID.String()[:8])
	pdf, err := s.renderer.Receipt(render.ReceiptView{
		Firm:      firmView(tenant, s.issuer),
		Client:    party,
		Concept:   receivable.Concept,
		Amount:    payment.Amount,
		Method:    string(payment.Method),
		Reference: payment.Reference,
		PaidAt:    payment.PaidAt,
		Total:     receivable.TotalAmount,
		Paid:      receivable.PaidAmount,
		Balance:   receivable.Balance,
		Number:    number,
	})
	if err != nil {
		return nil, "", err
	}
	return pdf, number + ".pdf", nil
}
