package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/application/authz"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	"github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/render"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
	"github.com/sangkips/lexdesk-api/pkg/email"
	"github.com/sangkips/lexdesk-api/pkg/logger"
	"github.com/sangkips/lexdesk-api/pkg/pagination"
	"github.com/sangkips/lexdesk-api/pkg/utils"
	"github.com/shopspring/decimal"
)

// QuoteService handles quote-related operations
type QuoteService struct {
	quoteRepo   repository.QuoteRepository
	catalogRepo repository.ServiceItemRepository
	tenantRepo  repository.TenantRepository
	txManager   repository.TxManager
	renderer    Renderer
	mailer      Mailer
	activity    *ActivityService
	billing     BillingConfig
	issuer      IssuerConfig
	now         func() time.Time
}

// NewQuoteService creates a new quote service
func NewQuoteService(
	quoteRepo repository.QuoteRepository,
	catalogRepo repository.ServiceItemRepository,
	tenantRepo repository.TenantRepository,
	txManager repository.TxManager,
	renderer Renderer,
	mailer Mailer,
	activity *ActivityService,
	billing BillingConfig,
	issuer IssuerConfig,
) *QuoteService {
	return &QuoteService{
		quoteRepo:   quoteRepo,
		catalogRepo: catalogRepo,
		tenantRepo:  tenantRepo,
		txManager:   txManager,
		renderer:    renderer,
		mailer:      mailer,
		activity:    activity,
		billing:     billing,
		issuer:      issuer,
		now:         time.Now,
	}
}

// QuoteInput holds the quote header. Nil pointers are left unchanged on update.
type QuoteInput struct {
	ProspectName    *string
	ProspectCompany *string
	ProspectEmail   *string
	ProspectPhone   *string
	ClientID        *uuid.UUID
	DiscountPercent *decimal.Decimal
	ValidUntil      *time.Time
	Notes           *string
	Items           []QuoteItemInput
}

// QuoteItemInput is one line to add or update. UnitPrice and Description
// default to the catalog entry when ServiceID is set.
type QuoteItemInput struct {
	ServiceID   *uuid.UUID
	Description string
	Quantity    int
	UnitPrice   *decimal.Decimal
}

// quoteError maps aggregate errors onto API errors.
func quoteError(err error) error {
	switch {
	case errors.Is(err, entity.ErrInvalidQuantity):
		return apperror.NewFieldError("quantity", err.Error())
	case errors.Is(err, entity.ErrInvalidUnitPrice):
		return apperror.NewFieldError("unit_price", err.Error())
	case errors.Is(err, entity.ErrInvalidDiscountPercent):
		return apperror.NewFieldError("discount_percent", err.Error())
	case errors.Is(err, entity.ErrQuoteItemNotFound):
		return apperror.NewNotFoundError("Quote item")
	case errors.Is(err, entity.ErrQuoteConverted):
		return apperror.NewConflictError("Quote has already been converted")
	}
	return err
}

func (in *QuoteInput) apply(q *entity.Quote) error {
	trim := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	trim(&q.ProspectName, in.ProspectName)
	trim(&q.ProspectCompany, in.ProspectCompany)
	trim(&q.ProspectPhone, in.ProspectPhone)
	trim(&q.Notes, in.Notes)
	if in.ProspectEmail != nil {
		q.ProspectEmail = strings.ToLower(strings.TrimSpace(*in.ProspectEmail))
	}
	if in.ClientID != nil {
		q.ClientID = in.ClientID
	}
	if in.ValidUntil != nil {
		q.ValidUntil = in.ValidUntil
	}
	if in.DiscountPercent != nil {
		if err := q.SetDiscountPercent(*in.DiscountPercent); err != nil {
			return quoteError(err)
		}
	}
	if q.ProspectCompany == "" {
		return apperror.NewFieldError("prospect_company", "Prospect company is required")
	}
	return nil
}

// buildItem validates the line and fills defaults from the catalog. Nothing
// is persisted when it fails.
func (s *QuoteService) buildItem(ctx context.Context, in QuoteItemInput) (*entity.QuoteItem, error) {
	description := strings.TrimSpace(in.Description)
	var price decimal.Decimal
	if in.UnitPrice != nil {
		price = *in.UnitPrice
	}

	if in.ServiceID != nil {
		svc, err := s.catalogRepo.GetByID(ctx, *in.ServiceID)
		if err != nil {
			return nil, err
		}
		if svc == nil {
			return nil, apperror.NewNotFoundError("Service")
		}
		if description == "" {
			description = svc.Name
		}
		if in.UnitPrice == nil {
			price = svc.UnitPrice
		}
	} else if in.UnitPrice == nil {
		return nil, apperror.NewFieldError("unit_price", "Unit price is required")
	}
	if description == "" {
		return nil, apperror.NewFieldError("description", "Description is required")
	}

	item, err := entity.NewQuoteItem(in.ServiceID, description, in.Quantity, price)
	if err != nil {
		return nil, quoteError(err)
	}
	return item, nil
}

// CreateQuote numbers and stores a new draft quote with its lines
func (s *QuoteService) CreateQuote(ctx context.Context, input *QuoteInput) (*entity.Quote, error) {
	p, err := authz.Require(ctx, authz.ActionCreate, authz.ResourceQuote)
	if err != nil {
		return nil, err
	}
	tenant, err := currentTenant(ctx, s.tenantRepo)
	if err != nil {
		return nil, err
	}
	cfg := s.billing.billingFor(tenant.Settings)

	quote := &entity.Quote{
		ID:        uuid.New(),
		TenantID:  tenant.ID,
		Status:    enum.QuoteStatusDraft,
		CreatedBy: p.UserID,
	}
	if err := input.apply(quote); err != nil {
		return nil, err
	}
	for i, in := range input.Items {
		item, err := s.buildItem(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		if err := quote.AddItem(item); err != nil {
			return nil, quoteError(err)
		}
	}

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		prefix := utils.PeriodPrefix(cfg.QuotePrefix, s.now())
		seq, err := s.quoteRepo.NextSequence(ctx, prefix)
		if err != nil {
			return err
		}
		quote.Number = utils.FormatSequence(prefix, seq)
		return s.quoteRepo.Create(ctx, quote)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().Str("quote", quote.Number).Str("total", quote.Total.StringFixed(2)).Msg("quote created")
	return quote, nil
}

// GetQuote returns a quote with its lines
func (s *QuoteService) GetQuote(ctx context.Context, id uuid.UUID) (*entity.Quote, error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceQuote); err != nil {
		return nil, err
	}
	return s.getWithItems(ctx, id)
}

func (s *QuoteService) getWithItems(ctx context.Context, id uuid.UUID) (*entity.Quote, error) {
	quote, err := s.quoteRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, apperror.NewNotFoundError("Quote")
	}
	return quote, nil
}

// ListQuotesInput represents the input for listing quotes
type ListQuotesInput struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.QuoteStatus
	ClientID   *uuid.UUID
	SortBy     string
	SortOrder  string
}

// ListQuotes returns a page of quotes
func (s *QuoteService) ListQuotes(ctx context.Context, input *ListQuotesInput) (*pagination.PaginatedResult[entity.Quote], error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceQuote); err != nil {
		return nil, err
	}
	params := input.Pagination
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()

	quotes, total, err := s.quoteRepo.List(ctx, repository.QuoteFilter{
		Pagination: params,
		Search:     input.Search,
		Status:     input.Status,
		ClientID:   input.ClientID,
		SortBy:     input.SortBy,
		SortOrder:  input.SortOrder,
	})
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(quotes, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// mutate locks the quote, runs fn and persists the recomputed totals in the
// same transaction.
func (s *QuoteService) mutate(ctx context.Context, id uuid.UUID, fn func(ctx context.Context, q *entity.Quote) error) (*entity.Quote, error) {
	if _, err := authz.Require(ctx, authz.ActionEdit, authz.ResourceQuote); err != nil {
		return nil, err
	}
	var quote *entity.Quote
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		q, err := s.quoteRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if q == nil {
			return apperror.NewNotFoundError("Quote")
		}
		if q.IsConverted() {
			return quoteError(entity.ErrQuoteConverted)
		}
		if err := fn(ctx, q); err != nil {
			return err
		}
		q.RecomputeTotals()
		quote = q
		return s.quoteRepo.SaveTotals(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// UpdateQuote changes the header and discount of a quote
func (s *QuoteService) UpdateQuote(ctx context.Context, id uuid.UUID, input *QuoteInput) (*entity.Quote, error) {
	return s.mutate(ctx, id, func(_ context.Context, q *entity.Quote) error {
		return input.apply(q)
	})
}

// AddItem appends a line to the quote
func (s *QuoteService) AddItem(ctx context.Context, quoteID uuid.UUID, input QuoteItemInput) (*entity.Quote, error) {
	return s.mutate(ctx, quoteID, func(ctx context.Context, q *entity.Quote) error {
		item, err := s.buildItem(ctx, input)
		if err != nil {
			return err
		}
		if err := q.AddItem(item); err != nil {
			return quoteError(err)
		}
		return s.quoteRepo.AddItem(ctx, &q.Items[len(q.Items)-1])
	})
}

// UpdateItem changes quantity, price or description of a line
func (s *QuoteService) UpdateItem(ctx context.Context, quoteID, itemID uuid.UUID, input QuoteItemInput) (*entity.Quote, error) {
	return s.mutate(ctx, quoteID, func(ctx context.Context, q *entity.Quote) error {
		var current *entity.QuoteItem
		for i := range q.Items {
			if q.Items[i].ID == itemID {
				current = &q.Items[i]
			}
		}
		if current == nil {
			return quoteError(entity.ErrQuoteItemNotFound)
		}
		price := current.UnitPrice
		if input.UnitPrice != nil {
			price = *input.UnitPrice
		}
		quantity := input.Quantity
		if quantity == 0 {
			quantity = current.Quantity
		}
		item, err := q.UpdateItem(itemID, strings.TrimSpace(input.Description), quantity, price)
		if err != nil {
			return quoteError(err)
		}
		return s.quoteRepo.UpdateItem(ctx, item)
	})
}

// RemoveItem deletes a line from the quote
func (s *QuoteService) RemoveItem(ctx context.Context, quoteID, itemID uuid.UUID) (*entity.Quote, error) {
	return s.mutate(ctx, quoteID, func(ctx context.Context, q *entity.Quote) error {
		if err := q.RemoveItem(itemID); err != nil {
			return quoteError(err)
		}
		return s.quoteRepo.DeleteItem(ctx, itemID)
	})
}

// ChangeStatus moves the quote through draft, sent, approved and rejected.
// Converted is only reached through conversion.
func (s *QuoteService) ChangeStatus(ctx context.Context, id uuid.UUID, status enum.QuoteStatus) (*entity.Quote, error) {
	if status == enum.QuoteStatusConverted || !status.IsValid() {
		return nil, apperror.NewFieldError("status", "Invalid status")
	}
	return s.mutate(ctx, id, func(_ context.Context, q *entity.Quote) error {
		if !q.CanTransitionTo(status) {
			return apperror.NewUnprocessableError(fmt.Sprintf("Cannot move a %s quote to %s", q.Status, status))
		}
		q.Status = status
		if status == enum.QuoteStatusSent {
			now := s.now()
			q.SentAt = &now
		}
		return nil
	})
}

// DeleteQuote removes a quote that was never converted
func (s *QuoteService) DeleteQuote(ctx context.Context, id uuid.UUID) error {
	if _, err := authz.Require(ctx, authz.ActionDelete, authz.ResourceQuote); err != nil {
		return err
	}
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if quote == nil {
		return apperror.NewNotFoundError("Quote")
	}
	if quote.IsConverted() {
		return quoteError(entity.ErrQuoteConverted)
	}
	return s.quoteRepo.Delete(ctx, id)
}

// RenderPDF returns the printable quote and a file name for it
func (s *QuoteService) RenderPDF(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceQuote); err != nil {
		return nil, "", err
	}
	quote, err := s.getWithItems(ctx, id)
	if err != nil {
		return nil, "", err
	}
	tenant, err := currentTenant(ctx, s.tenantRepo)
	if err != nil {
		return nil, "", err
	}

	view := render.QuoteView{
		Firm: firmView(tenant, s.issuer),
		Prospect: render.PartyView{
			Name:    quote.ProspectCompany,
			Contact: quote.ProspectName,
			Email:   quote.ProspectEmail,
		},
		Number:          quote.Number,
		Date:            quote.CreatedAt,
		ValidUntil:      quote.ValidUntil,
		Subtotal:        quote.Subtotal,
		DiscountPercent: quote.DiscountPercent,
		DiscountAmount:  quote.DiscountAmount,
		Total:           quote.Total,
		Notes:           quote.Notes,
	}
	for _, it := range quote.Items {
		view.Items = append(view.Items, render.LineView{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Amount:      it.LineTotal,
		})
	}

	pdf, err := s.renderer.Quote(view)
	if err != nil {
		return nil, "", fmt.Errorf("render quote %s: %w", quote.Number, err)
	}
	return pdf, quote.Number + ".pdf", nil
}

// SendQuote emails the quote PDF to the prospect, or to "to" when given.
// A draft quote becomes sent.
func (s *QuoteService) SendQuote(ctx context.Context, id uuid.UUID, to string) error {
	if _, err := authz.Require(ctx, authz.ActionEdit, authz.ResourceQuote); err != nil {
		return err
	}
	quote, err := s.getWithItems(ctx, id)
	if err != nil {
		return err
	}
	recipient := strings.TrimSpace(to)
	if recipient == "" {
		recipient = quote.ProspectEmail
	}
	if recipient == "" {
		return apperror.NewFieldError("to", "The prospect has no email address")
	}

	pdf, filename, err := s.RenderPDF(ctx, id)
	if err != nil {
		return err
	}
	greeting := quote.ProspectName
	if greeting == "" {
		greeting = quote.ProspectCompany
	}
	err = s.mailer.SendDocument(ctx, []string{recipient},
		"Cotización "+quote.Number,
		greeting,
		"Adjuntamos la cotización solicitada por un total de "+render.Money(quote.Total)+".",
		email.Attachment{Filename: filename, ContentType: "application/pdf", Data: pdf},
	)
	if err != nil {
		return apperror.NewExternalError("Could not send the quote", err)
	}

	if quote.Status == enum.QuoteStatusDraft {
		if _, err := s.ChangeStatus(ctx, id, enum.QuoteStatusSent); err != nil {
			logger.FromContext(ctx).Warn().Err(err).Str("quote", quote.Number).Msg("quote sent but status not updated")
		}
	}
	s.activity.RecordQuietly(ctx, "Envío de cotización", quote.Number+" a "+recipient, EntityQuote, &quote.ID)
	return nil
}
