package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/application/authz"
	"github.com/sangkips/lexdesk-api/internal/domain/billing"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	"github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/render"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/signing"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/storage"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
	"github.com/sangkips/lexdesk-api/pkg/email"
	"github.com/sangkips/lexdesk-api/pkg/logger"
	"github.com/sangkips/lexdesk-api/pkg/pagination"
	"github.com/sangkips/lexdesk-api/pkg/utils"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	qrSize             = 256
	markSignedAttempts = 3
)

// Artifact kinds that can be downloaded for a signed invoice.
const (
	ArtifactXML = "xml"
	ArtifactPDF = "pdf"
	ArtifactQR  = "qr"
)

// InvoiceService issues CFDI invoices through the signing API
type InvoiceService struct {
	invoiceRepo    repository.InvoiceRepository
	clientRepo     repository.ClientRepository
	receivableRepo repository.ReceivableRepository
	quoteRepo      repository.QuoteRepository
	tenantRepo     repository.TenantRepository
	txManager      repository.TxManager
	signer         Signer
	files          storage.Storage
	renderer       Renderer
	mailer         Mailer
	activity       *ActivityService
	billing        BillingConfig
	issuer         IssuerConfig
	now            func() time.Time
	retryDelay     time.Duration
}

// xmlDownloader is implemented by signers that can fetch the XML of an
// issued document again.
type xmlDownloader interface {
	DownloadXML(ctx context.Context, id string) ([]byte, error)
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	receivableRepo repository.ReceivableRepository,
	quoteRepo repository.QuoteRepository,
	tenantRepo repository.TenantRepository,
	txManager repository.TxManager,
	signer Signer,
	files storage.Storage,
	renderer Renderer,
	mailer Mailer,
	activity *ActivityService,
	billing BillingConfig,
	issuer IssuerConfig,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:    invoiceRepo,
		clientRepo:     clientRepo,
		receivableRepo: receivableRepo,
		quoteRepo:      quoteRepo,
		tenantRepo:     tenantRepo,
		txManager:      txManager,
		signer:         signer,
		files:          files,
		renderer:       renderer,
		mailer:         mailer,
		activity:       activity,
		billing:        billing,
		issuer:         issuer,
		now:            time.Now,
		retryDelay:     200 * time.Millisecond,
	}
}

// IssueInvoiceInput describes a manual invoice. Amount includes tax and has
// the discount already netted out.
type IssueInvoiceInput struct {
	ClientID     uuid.UUID
	ReceivableID *uuid.UUID
	Amount       decimal.Decimal
	Discount     decimal.Decimal
}

// IssueInvoice signs an invoice for a client
func (s *InvoiceService) IssueInvoice(ctx context.Context, input *IssueInvoiceInput) (*entity.Invoice, error) {
	p, err := authz.Require(ctx, authz.ActionCreate, authz.ResourceInvoice)
	if err != nil {
		return nil, err
	}
	client, err := s.clientRepo.GetByID(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}
	return s.issue(ctx, p.UserID, client, input.ReceivableID, input.Amount, input.Discount)
}

// InvoiceReceivable signs an invoice for the full amount of a receivable
func (s *InvoiceService) InvoiceReceivable(ctx context.Context, receivableID uuid.UUID) (*entity.Invoice, error) {
	p, err := authz.Require(ctx, authz.ActionCreate, authz.ResourceInvoice)
	if err != nil {
		return nil, err
	}
	receivable, err := s.receivableRepo.GetByID(ctx, receivableID)
	if err != nil {
		return nil, err
	}
	if receivable == nil {
		return nil, apperror.NewNotFoundError("Receivable")
	}
	return s.issueForReceivable(ctx, receivable, p.UserID)
}

// issueForReceivable carries the quote discount, if any, into the invoice.
func (s *InvoiceService) issueForReceivable(ctx context.Context, receivable *entity.Receivable, actor uuid.UUID) (*entity.Invoice, error) {
	client := receivable.Client
	if client == nil {
		c, err := s.clientRepo.GetByID(ctx, receivable.ClientID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, apperror.NewNotFoundError("Client")
		}
		client = c
	}

	discount := decimal.Zero
	if receivable.QuoteID != nil {
		quote, err := s.quoteRepo.GetByID(ctx, *receivable.QuoteID)
		if err != nil {
			return nil, err
		}
		if quote != nil {
			discount = quote.DiscountAmount
		}
	}
	return s.issue(ctx, actor, client, &receivable.ID, receivable.TotalAmount, discount)
}

func (s *InvoiceService) issue(ctx context.Context, actor uuid.UUID, client *entity.Client, receivableID *uuid.UUID, amount, discount decimal.Decimal) (*entity.Invoice, error) {
	if !client.HasFiscalData() {
		return nil, apperror.NewUnprocessableError("Client fiscal data is incomplete: " + strings.Join(client.MissingFiscalFields(), ", "))
	}
	if !amount.IsPositive() {
		return nil, apperror.NewFieldError("amount", "Amount must be greater than zero")
	}

	tenant, err := currentTenant(ctx, s.tenantRepo)
	if err != nil {
		return nil, err
	}
	cfg := s.billing.billingFor(tenant.Settings)
	issuer := s.issuer.issuerFor(tenant.Settings)

	tax, err := billing.ReverseTax(amount, discount, cfg.TaxRate)
	if err != nil {
		return nil, apperror.NewFieldError("amount", err.Error())
	}

	invoice := &entity.Invoice{
		ID:             uuid.New(),
		TenantID:       tenant.ID,
		ClientID:       client.ID,
		ReceivableID:   receivableID,
		TotalAmount:    tax.Total,
		DiscountAmount: tax.Discount,
		ListPrice:      tax.ListPrice,
		TaxBase:        tax.TaxBase,
		TaxAmount:      tax.TaxAmount,
		TaxRate:        tax.Rate,
		Status:         enum.InvoiceStatusPending,
		CreatedBy:      actor,
	}

	var req *signing.CFDIRequest
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if receivableID != nil {
			if err := s.ensureNotInvoiced(ctx, client.ID, *receivableID); err != nil {
				return err
			}
		}
		seq, err := s.invoiceRepo.NextSequence(ctx, cfg.InvoicePrefix)
		if err != nil {
			return err
		}
		invoice.Folio = utils.FormatSequence(cfg.InvoicePrefix, seq)
		invoice.Description = "Servicios Profesionales - Ref: " + invoice.Folio

		req = buildCFDI(invoice, client, issuer, tax)
		snapshot, err := json.Marshal(req)
		if err != nil {
			return err
		}
		invoice.Snapshot = datatypes.JSON(snapshot)
		return s.invoiceRepo.Create(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx).With().Str("folio", invoice.Folio).Logger()

	result, err := s.signer.Sign(ctx, req)
	if err != nil {
		// The local invoice never outlives a failed signing.
		if delErr := s.invoiceRepo.Delete(context.WithoutCancel(ctx), invoice.ID); delErr != nil {
			log.Error().Err(delErr).Msg("pending invoice not removed after signing failure")
		}
		log.Warn().Err(err).Msg("invoice signing failed")
		return nil, apperror.NewExternalError(signingMessage(err), err)
	}

	signedAt := result.StampedAt
	if signedAt.IsZero() {
		signedAt = s.now()
	}
	invoice.Status = enum.InvoiceStatusSigned
	invoice.SignatureID = result.SignatureID
	invoice.FiscalUUID = result.FiscalUUID
	invoice.CfdiSign = result.CfdiSign
	invoice.SignedAt = &signedAt
	if err := s.markSigned(ctx, invoice); err != nil {
		log.Error().Err(err).
			Str("signature_id", result.SignatureID).
			Str("fiscal_uuid", result.FiscalUUID).
			Msg("stamped invoice not marked signed, left pending for reconciliation")
		return nil, apperror.Wrap(err, fmt.Sprintf("Invoice %s was stamped with fiscal folio %s but could not be recorded", invoice.Folio, result.FiscalUUID))
	}

	invoice.Client = client
	s.storeArtifacts(ctx, invoice, tenant, issuer, result)
	s.activity.RecordQuietly(ctx, "Emisión de factura", invoice.Folio+" a "+client.CompanyName, EntityInvoice, &invoice.ID)

	log.Info().Str("fiscal_uuid", invoice.FiscalUUID).Str("total", invoice.TotalAmount.StringFixed(2)).Msg("invoice signed")
	return invoice, nil
}

// ensureNotInvoiced locks the receivable, so concurrent issues for it queue
// up, and refuses when an invoice already covers it.
func (s *InvoiceService) ensureNotInvoiced(ctx context.Context, clientID, receivableID uuid.UUID) error {
	receivable, err := s.receivableRepo.GetForUpdate(ctx, receivableID)
	if err != nil {
		return err
	}
	if receivable == nil {
		return apperror.NewNotFoundError("Receivable")
	}
	if receivable.ClientID != clientID {
		return apperror.NewFieldError("receivable_id", "The receivable belongs to another client")
	}

	existing, err := s.invoiceRepo.GetByReceivable(ctx, receivableID)
	if err != nil {
		return err
	}
	switch {
	case existing == nil:
		return nil
	case existing.IsSigned():
		return apperror.NewConflictError("Receivable is already invoiced with folio " + existing.Folio)
	default:
		return apperror.NewConflictError("Invoice " + existing.Folio + " for this receivable is still pending")
	}
}

// markSigned retries the write: the stamp already exists at the authority and
// a pending row would misreport it.
func (s *InvoiceService) markSigned(ctx context.Context, invoice *entity.Invoice) error {
	ctx = context.WithoutCancel(ctx)
	var err error
	for attempt := 1; attempt <= markSignedAttempts; attempt++ {
		if err = s.invoiceRepo.MarkSigned(ctx, invoice); err == nil {
			return nil
		}
		if attempt < markSignedAttempts {
			time.Sleep(s.retryDelay * time.Duration(attempt))
		}
	}
	return err
}

func buildCFDI(invoice *entity.Invoice, client *entity.Client, issuer IssuerConfig, tax billing.TaxBreakdown) *signing.CFDIRequest {
	return &signing.CFDIRequest{
		CfdiType:        signing.CfdiTypeIncome,
		PaymentForm:     signing.PaymentFormTransfer,
		PaymentMethod:   signing.PaymentMethodSingle,
		Currency:        signing.CurrencyMXN,
		ExpeditionPlace: issuer.ExpeditionPlace,
		Folio:           invoice.Folio,
		Receiver: signing.Receiver{
			Rfc:          strings.ToUpper(strings.TrimSpace(client.RFC)),
			Name:         strings.ToUpper(strings.TrimSpace(client.FiscalName)),
			CfdiUse:      signing.CfdiUseNoTaxEffect,
			FiscalRegime: client.FiscalRegime,
			TaxZipCode:   client.TaxZipCode,
		},
		Items: []signing.Item{{
			ProductCode: signing.ProductCodeLegal,
			TaxObject:   signing.TaxObjectSubject,
			Description: invoice.Description,
			UnitCode:    signing.UnitCodeActivity,
			Quantity:    1,
			UnitPrice:   signing.Amount(tax.ListPrice),
			Subtotal:    signing.Amount(tax.ListPrice),
			Discount:    signing.Amount(tax.Discount),
			Taxes: []signing.Tax{{
				Total:       signing.Amount(tax.TaxAmount),
				Name:        signing.TaxNameIVA,
				Base:        signing.Amount(tax.TaxBase),
				Rate:        signing.Rate(tax.Rate),
				IsRetention: false,
			}},
			Total: signing.Amount(tax.Total),
		}},
	}
}

func signingMessage(err error) string {
	var apiErr *signing.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return "Invoice signing failed: " + apiErr.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Invoice signing timed out"
	}
	return "Invoice signing service unavailable"
}

// storeArtifacts writes the XML, QR and PDF. The invoice is already signed,
// so failures are logged and leave the key empty.
func (s *InvoiceService) storeArtifacts(ctx context.Context, invoice *entity.Invoice, tenant *entity.Tenant, issuer IssuerConfig, result *signing.Result) {
	ctx = context.WithoutCancel(ctx)
	log := logger.FromContext(ctx).With().Str("folio", invoice.Folio).Logger()

	put := func(ext string, data []byte) string {
		key := storage.InvoiceKey(invoice.TenantID, invoice.Folio, ext)
		if _, err := s.files.Put(ctx, key, bytes.NewReader(data)); err != nil {
			log.Error().Err(err).Str("artifact", ext).Msg("invoice artifact not stored")
			return ""
		}
		return key
	}

	if len(result.XML) > 0 {
		invoice.XMLKey = put("xml", result.XML)
	} else {
		log.Warn().Str("signature_id", invoice.SignatureID).Msg("signed invoice has no xml yet")
	}

	verify := signing.VerificationURL(invoice.FiscalUUID, issuer.RFC, invoice.Client.RFC, invoice.TotalAmount, invoice.SignatureTail())
	qr, err := render.QRCode(verify, qrSize)
	if err != nil {
		log.Error().Err(err).Msg("invoice qr not generated")
	} else {
		invoice.QRKey = put("png", qr)
	}

	pdf, err := s.renderer.Invoice(render.InvoiceView{
		Firm: firmView(tenant, issuer),
		Receiver: render.PartyView{
			Name:    strings.ToUpper(invoice.Client.FiscalName),
			RFC:     invoice.Client.RFC,
			Regime:  invoice.Client.FiscalRegime,
			ZipCode: invoice.Client.TaxZipCode,
		},
		Folio:       invoice.Folio,
		FiscalUUID:  invoice.FiscalUUID,
		SignedAt:    *invoice.SignedAt,
		Description: invoice.Description,
		ListPrice:   invoice.ListPrice,
		Discount:    invoice.DiscountAmount,
		TaxBase:     invoice.TaxBase,
		TaxRate:     invoice.TaxRate,
		TaxAmount:   invoice.TaxAmount,
		Total:       invoice.TotalAmount,
		CfdiSign:    result.CfdiSign,
		SatSign:     result.SatSign,
		QRPNG:       qr,
	})
	if err != nil {
		log.Error().Err(err).Msg("invoice pdf not rendered")
	} else {
		invoice.PDFKey = put("pdf", pdf)
	}

	if err := s.invoiceRepo.UpdateArtifacts(ctx, invoice); err != nil {
		log.Error().Err(err).Msg("invoice artifact keys not saved")
	}
}

// GetInvoice returns a single invoice
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceInvoice); err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

func (s *InvoiceService) get(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return invoice, nil
}

// ListInvoices returns a page of invoices
func (s *InvoiceService) ListInvoices(ctx context.Context, filter repository.InvoiceFilter) (*pagination.PaginatedResult[entity.Invoice], error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceInvoice); err != nil {
		return nil, err
	}
	if filter.Pagination == nil {
		filter.Pagination = pagination.DefaultPagination()
	}
	filter.Pagination.Validate()

	invoices, total, err := s.invoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(invoices, pagination.NewPagination(filter.Pagination.Page, filter.Pagination.PerPage, total)), nil
}

// DeleteInvoice removes a pending invoice left behind by an interrupted
// issue. Whether the authority stamped it is unknown, so only a super admin,
// after checking with the authority, may remove one. Signed invoices are
// immutable.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	p, err := authz.Require(ctx, authz.ActionCreate, authz.ResourceInvoice)
	if err != nil {
		return err
	}
	invoice, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if invoice.IsSigned() {
		return apperror.NewConflictError("Signed invoices cannot be deleted")
	}
	if !p.IsSuperAdmin {
		return apperror.NewConflictError("Pending invoices may already be stamped and must be reconciled by a super admin")
	}
	logger.FromContext(ctx).Warn().Str("folio", invoice.Folio).Msg("pending invoice removed")
	return s.invoiceRepo.Delete(ctx, id)
}

// Artifact is a downloadable invoice file
type Artifact struct {
	Content     io.ReadCloser
	Filename    string
	ContentType string
}

// OpenArtifact opens the XML, PDF or QR image of a signed invoice
func (s *InvoiceService) OpenArtifact(ctx context.Context, id uuid.UUID, kind string) (*Artifact, error) {
	invoice, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	var key, ext, contentType string
	switch kind {
	case ArtifactXML:
		key, ext, contentType = invoice.XMLKey, "xml", "application/xml"
	case ArtifactPDF:
		key, ext, contentType = invoice.PDFKey, "pdf", "application/pdf"
	case ArtifactQR:
		key, ext, contentType = invoice.QRKey, "png", "image/png"
	default:
		return nil, apperror.NewBadRequestError("Unknown invoice file " + kind)
	}
	if key == "" && kind == ArtifactXML && invoice.IsSigned() {
		if key, err = s.recoverXML(ctx, invoice); err != nil {
			return nil, err
		}
	}
	if key == "" {
		return nil, apperror.NewNotFoundError("Invoice " + kind)
	}

	rc, err := s.files.Open(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperror.NewNotFoundError("Invoice " + kind)
	}
	if err != nil {
		return nil, err
	}
	return &Artifact{Content: rc, Filename: invoice.Folio + "." + ext, ContentType: contentType}, nil
}

// recoverXML downloads and stores the XML of a signed invoice whose XML was
// not available when it was stamped.
func (s *InvoiceService) recoverXML(ctx context.Context, invoice *entity.Invoice) (string, error) {
	dl, ok := s.signer.(xmlDownloader)
	if !ok || invoice.SignatureID == "" {
		return "", nil
	}
	xml, err := dl.DownloadXML(ctx, invoice.SignatureID)
	if err != nil {
		return "", apperror.NewExternalError("Signed XML could not be retrieved", err)
	}
	key := storage.InvoiceKey(invoice.TenantID, invoice.Folio, "xml")
	if _, err := s.files.Put(ctx, key, bytes.NewReader(xml)); err != nil {
		return "", err
	}
	invoice.XMLKey = key
	if err := s.invoiceRepo.UpdateArtifacts(ctx, invoice); err != nil {
		return "", err
	}
	return key, nil
}

func (s *InvoiceService) readArtifact(ctx context.Context, id uuid.UUID, kind string) (*email.Attachment, error) {
	a, err := s.OpenArtifact(ctx, id, kind)
	if err != nil {
		return nil, err
	}
	defer a.Content.Close()
	data, err := io.ReadAll(a.Content)
	if err != nil {
		return nil, err
	}
	return &email.Attachment{Filename: a.Filename, ContentType: a.ContentType, Data: data}, nil
}

// SendInvoice emails the PDF and XML to the client, or to "to" when given
func (s *InvoiceService) SendInvoice(ctx context.Context, id uuid.UUID, to string) error {
	invoice, err := s.GetInvoice(ctx, id)
	if err != nil {
		return err
	}
	if !invoice.IsSigned() {
		return apperror.NewUnprocessableError("Only signed invoices can be sent")
	}
	client := invoice.Client
	if client == nil {
		if client, err = s.clientRepo.GetByID(ctx, invoice.ClientID); err != nil {
			return err
		}
	}
	recipient := strings.TrimSpace(to)
	if recipient == "" && client != nil {
		recipient = client.Email
	}
	if recipient == "" {
		return apperror.NewFieldError("to", "The client has no email address")
	}

	var files []email.Attachment
	for _, kind := range []string{ArtifactPDF, ArtifactXML} {
		a, err := s.readArtifact(ctx, id, kind)
		if err != nil {
			return err
		}
		files = append(files, *a)
	}

	greeting := recipient
	if client != nil && client.ContactName != "" {
		greeting = client.ContactName
	}
	err = s.mailer.SendDocument(ctx, []string{recipient},
		"Factura "+invoice.Folio,
		greeting,
		"Adjuntamos la factura "+invoice.Folio+" por "+render.Money(invoice.TotalAmount)+" con folio fiscal "+invoice.FiscalUUID+".",
		files...,
	)
	if err != nil {
		return apperror.NewExternalError("Could not send the invoice", err)
	}
	s.activity.RecordQuietly(ctx, "Envío de factura", invoice.Folio+" a "+recipient, EntityInvoice, &invoice.ID)
	return nil
}
