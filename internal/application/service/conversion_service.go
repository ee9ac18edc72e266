package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/application/authz"
	"github.com/sangkips/lexdesk-api/internal/domain/billing"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	"github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
	"github.com/sangkips/lexdesk-api/pkg/logger"
)

// ConversionService turns an accepted quote into a client and a receivable
type ConversionService struct {
	quoteRepo      repository.QuoteRepository
	receivableRepo repository.ReceivableRepository
	clientRepo     repository.ClientRepository
	tenantRepo     repository.TenantRepository
	txManager      repository.TxManager
	clients        *ClientService
	payments       *PaymentService
	activity       *ActivityService
	billing        BillingConfig
	now            func() time.Time
}

// NewConversionService creates a new conversion service
func NewConversionService(
	quoteRepo repository.QuoteRepository,
	receivableRepo repository.ReceivableRepository,
	clientRepo repository.ClientRepository,
	tenantRepo repository.TenantRepository,
	txManager repository.TxManager,
	clients *ClientService,
	payments *PaymentService,
	activity *ActivityService,
	billing BillingConfig,
) *ConversionService {
	return &ConversionService{
		quoteRepo:      quoteRepo,
		receivableRepo: receivableRepo,
		clientRepo:     clientRepo,
		tenantRepo:     tenantRepo,
		txManager:      txManager,
		clients:        clients,
		payments:       payments,
		activity:       activity,
		billing:        billing,
		now:            time.Now,
	}
}

// ConvertInput controls an optional deposit taken at conversion time
type ConvertInput struct {
	ApplyDeposit     bool
	DepositMethod    enum.PaymentMethod
	DepositReference string
}

// ConversionResult is the outcome of a conversion
type ConversionResult struct {
	Quote            *entity.Quote      `json:"quote"`
	Client           *entity.Client     `json:"client"`
	Receivable       *entity.Receivable `json:"receivable"`
	Deposit          *PaymentResult     `json:"deposit,omitempty"`
	ClientCreated    bool               `json:"client_created"`
	AlreadyConverted bool               `json:"already_converted"`
}

// ConvertQuote resolves or creates the client, opens the receivable and
// freezes the quote in one transaction. Converting an already converted
// quote returns the existing receivable.
func (s *ConversionService) ConvertQuote(ctx context.Context, quoteID uuid.UUID, input *ConvertInput) (*ConversionResult, error) {
	p, err := authz.Require(ctx, authz.ActionCreate, authz.ResourceFinance)
	if err != nil {
		return nil, err
	}
	tenant, err := currentTenant(ctx, s.tenantRepo)
	if err != nil {
		return nil, err
	}
	cfg := s.billing.billingFor(tenant.Settings)
	if input == nil {
		input = &ConvertInput{}
	}

	var result *ConversionResult
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		quote, err := s.quoteRepo.GetForUpdate(ctx, quoteID)
		if err != nil {
			return err
		}
		if quote == nil {
			return apperror.NewNotFoundError("Quote")
		}

		existing, err := s.receivableRepo.GetByQuoteID(ctx, quote.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			result = &ConversionResult{Quote: quote, Receivable: existing, AlreadyConverted: true}
			result.Client, err = s.clientRepo.GetByID(ctx, existing.ClientID)
			return err
		}
		if quote.IsConverted() {
			return quoteError(entity.ErrQuoteConverted)
		}
		if !quote.Total.IsPositive() {
			return apperror.NewFieldError("total", "A quote with zero total cannot be converted")
		}

		client, created, err := s.resolveClient(ctx, quote, p.UserID)
		if err != nil {
			return err
		}

		due := s.now().AddDate(0, 0, cfg.ReceivableDueDays).Truncate(24 * time.Hour)
		receivable := entity.NewReceivable(quote.TenantID, client.ID, &quote.ID, "Cotización "+quote.Number, quote.Total, due)
		if err := s.receivableRepo.Create(ctx, receivable); err != nil {
			return err
		}

		now := s.now()
		quote.Status = enum.QuoteStatusConverted
		quote.ClientID = &client.ID
		quote.ReceivableID = &receivable.ID
		quote.ConvertedAt = &now
		if err := s.quoteRepo.SaveTotals(ctx, quote); err != nil {
			return err
		}
		receivable.Client = client

		result = &ConversionResult{Quote: quote, Client: client, Receivable: receivable, ClientCreated: created}

		if input.ApplyDeposit {
			method := input.DepositMethod
			if method == "" {
				method = enum.PaymentMethodTransfer
			}
			reference := input.DepositReference
			if reference == "" {
				reference = "Anticipo " + quote.Number
			}
			amount := billing.Deposit(quote.Total, cfg.DepositFraction)
			if !amount.IsPositive() {
				return apperror.NewUnprocessableError("No deposit is configured for this firm")
			}
			deposit, err := s.payments.apply(ctx, p.UserID, receivable.ID, &PaymentInput{
				Amount:    amount,
				Method:    method,
				Reference: reference,
				IsDeposit: true,
			})
			if err != nil {
				return err
			}
			result.Deposit = deposit
			result.Receivable = deposit.Receivable
		}

		return s.activity.Record(ctx, "Conversión de cotización",
			quote.Number+" → "+client.CompanyName, EntityQuote, &quote.ID)
	})
	if err != nil {
		return nil, err
	}

	if result.Deposit != nil {
		s.payments.afterCommit(ctx, result.Deposit, p.UserID)
	}
	if !result.AlreadyConverted {
		logger.FromContext(ctx).Info().
			Str("quote", result.Quote.Number).
			Str("receivable_id", result.Receivable.ID.String()).
			Bool("client_created", result.ClientCreated).
			Msg("quote converted")
	}
	return result, nil
}

// resolveClient finds the quote's client by link, company name or email, in
// that order, and creates one when nothing matches.
func (s *ConversionService) resolveClient(ctx context.Context, quote *entity.Quote, actor uuid.UUID) (*entity.Client, bool, error) {
	if quote.ClientID != nil {
		client, err := s.clientRepo.GetByID(ctx, *quote.ClientID)
		if err != nil {
			return nil, false, err
		}
		if client != nil {
			return client, false, nil
		}
	}

	if name := strings.TrimSpace(quote.ProspectCompany); name != "" {
		matches, err := s.clientRepo.FindByCompanyName(ctx, name)
		if err != nil {
			return nil, false, err
		}
		if client, err := single(matches); client != nil || err != nil {
			return client, false, err
		}
	}
	if addr := strings.TrimSpace(quote.ProspectEmail); addr != "" {
		matches, err := s.clientRepo.FindByEmail(ctx, addr)
		if err != nil {
			return nil, false, err
		}
		if client, err := single(matches); client != nil || err != nil {
			return client, false, err
		}
	}

	client := &entity.Client{
		ID:          uuid.New(),
		TenantID:    quote.TenantID,
		CompanyName: strings.TrimSpace(quote.ProspectCompany),
		ContactName: quote.ProspectName,
		Email:       quote.ProspectEmail,
		Phone:       quote.ProspectPhone,
		CreatedBy:   &actor,
	}
	client.SetExtra(entity.ExtraFields{})
	if err := s.clients.create(ctx, client); err != nil {
		return nil, false, err
	}
	return client, true, nil
}

func single(matches []entity.Client) (*entity.Client, error) {
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return &matches[0], nil
	}
	return nil, apperror.NewConflictError("More than one client matches the quote prospect")
}
