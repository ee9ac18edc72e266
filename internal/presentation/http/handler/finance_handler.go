package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/lexdesk-api/internal/application/service"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	"github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/internal/presentation/http/dto/request"
	"github.com/sangkips/lexdesk-api/internal/presentation/http/dto/response"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// FinanceHandler handles receivables, payments, the ledger, invoices and
// spreadsheet exports
type FinanceHandler struct {
	paymentService    *service.PaymentService
	accountingService *service.AccountingService
	invoiceService    *service.InvoiceService
	reportService     *service.ReportService
}

// NewFinanceHandler creates a new finance handler
func NewFinanceHandler(
	paymentService *service.PaymentService,
	accountingService *service.AccountingService,
	invoiceService *service.InvoiceService,
	reportService *service.ReportService,
) *FinanceHandler {
	return &FinanceHandler{
		paymentService:    paymentService,
		accountingService: accountingService,
		invoiceService:    invoiceService,
		reportService:     reportService,
	}
}

// ListReceivables lists accounts receivable
// @Summary List Receivables
// @Tags receivables
// @Security BearerAuth
// @Produce json
// @Param status query string false "Comma separated: pending, partial, paid"
// @Param client_id query string false "Client ID"
// @Param overdue query bool false "Only open receivables past their due date"
// @Success 200 {object} response.APIResponse
// @Router /receivables [get]
func (h *FinanceHandler) ListReceivables(c *gin.Context) {
	clientID, ok := queryUUID(c, "client_id")
	if !ok {
		return
	}
	input := &service.ListReceivablesInput{
		Pagination: pageParams(c),
		ClientID:   clientID,
	}
	if raw := c.Query("status"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			status, valid := enum.ParseReceivableStatus(strings.TrimSpace(name))
			if !valid {
				response.BadRequest(c, "Invalid status "+name)
				return
			}
			input.Statuses = append(input.Statuses, status)
		}
	}
	if v := queryBool(c, "overdue"); v != nil {
		input.Overdue = *v
	}

	result, err := h.paymentService.ListReceivables(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Receivables retrieved successfully", result)
}

// GetReceivable returns a receivable with its payments
// @Summary Get Receivable
// @Tags receivables
// @Security BearerAuth
// @Produce json
// @Param id path string true "Receivable ID"
// @Success 200 {object} response.APIResponse
// @Router /receivables/{id} [get]
func (h *FinanceHandler) GetReceivable(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	receivable, err := h.paymentService.GetReceivable(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Receivable retrieved successfully", receivable)
}

// ApplyPayment records a payment and posts it to the ledger
// @Summary Apply Payment
// @Tags receivables
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Receivable ID"
// @Param Idempotency-Key header string false "Replay protection"
// @Param request body request.PaymentRequest true "Payment"
// @Success 201 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse "Receivable already paid"
// @Failure 422 {object} response.APIResponse "Amount exceeds the balance"
// @Router /receivables/{id}/payments [post]
func (h *FinanceHandler) ApplyPayment(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req request.PaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.paymentService.ApplyPayment(c.Request.Context(), id, &service.PaymentInput{
		Amount:    *req.Amount,
		Method:    enum.PaymentMethod(req.Method),
		Reference: req.Reference,
		PaidAt:    req.PaidAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Payment applied successfully", result)
}

// Receipt renders the proof of a payment
// @Summary Payment Receipt
// @Tags receivables
// @Security BearerAuth
// @Produce application/pdf
// @Param id path string true "Receivable ID"
// @Param payment_id path string true "Payment ID"
// @Success 200 {file} binary
// @Router /receivables/{id}/payments/{payment_id}/receipt [get]
func (h *FinanceHandler) Receipt(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	paymentID, ok := paramUUID(c, "payment_id")
	if !ok {
		return
	}
	content, filename, err := h.paymentService.Receipt(c.Request.Context(), id, paymentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	sendBytes(c, content, filename, "application/pdf", true)
}

// InvoiceReceivable issues the CFDI covering a receivable
// @Summary Invoice Receivable
// @Tags receivables
// @Security BearerAuth
// @Produce json
// @Param id path string true "Receivable ID"
// @Success 201 {object} response.APIResponse
// @Failure 502 {object} response.APIResponse "Signing provider rejected the invoice"
// @Router /receivables/{id}/invoice [post]
func (h *FinanceHandler) InvoiceReceivable(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	invoice, err := h.invoiceService.InvoiceReceivable(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Invoice issued successfully", invoice)
}

// ExportReceivables downloads the aging report
// @Summary Export Receivables
// @Tags receivables
// @Security BearerAuth
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /receivables/export [get]
func (h *FinanceHandler) ExportReceivables(c *gin.Context) {
	h.sendReport(c, h.reportService.ReceivablesAging)
}

// ExportClients downloads the client directory
// @Summary Export Clients
// @Tags reports
// @Security BearerAuth
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /reports/clients [get]
func (h *FinanceHandler) ExportClients(c *gin.Context) {
	h.sendReport(c, h.reportService.Clients)
}

func (h *FinanceHandler) sendReport(c *gin.Context, build func(ctx context.Context) (*service.Report, error)) {
	report, err := build(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	sendBytes(c, report.Content, report.Filename, report.ContentType, false)
}

// ListAccounts returns the chart of accounts
// @Summary List Ledger Accounts
// @Tags accounting
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /accounts [get]
func (h *FinanceHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.accountingService.ListAccounts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Accounts retrieved successfully", accounts)
}

// ListEntries returns journal entries, newest first
// @Summary List Journal Entries
// @Tags accounting
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /journal-entries [get]
func (h *FinanceHandler) ListEntries(c *gin.Context) {
	result, err := h.accountingService.ListEntries(c.Request.Context(), pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Journal entries retrieved successfully", result)
}

// TrialBalance sums debits and credits per account
// @Summary Trial Balance
// @Tags accounting
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /trial-balance [get]
func (h *FinanceHandler) TrialBalance(c *gin.Context) {
	rows, err := h.accountingService.TrialBalance(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	debits, credits := decimal.Zero, decimal.Zero
	for _, row := range rows {
		debits = debits.Add(row.Debit)
		credits = credits.Add(row.Credit)
	}
	response.OK(c, "Trial balance retrieved successfully", gin.H{
		"accounts":      rows,
		"total_debits":  debits,
		"total_credits": credits,
	})
}

// ListInvoices lists signed invoices
// @Summary List Invoices
// @Tags invoices
// @Security BearerAuth
// @Produce json
// @Param client_id query string false "Client ID"
// @Param receivable_id query string false "Receivable ID"
// @Success 200 {object} response.APIResponse
// @Router /invoices [get]
func (h *FinanceHandler) ListInvoices(c *gin.Context) {
	clientID, ok := queryUUID(c, "client_id")
	if !ok {
		return
	}
	receivableID, ok := queryUUID(c, "receivable_id")
	if !ok {
		return
	}
	result, err := h.invoiceService.ListInvoices(c.Request.Context(), repository.InvoiceFilter{
		Pagination:   pageParams(c),
		ClientID:     clientID,
		ReceivableID: receivableID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Invoices retrieved successfully", result)
}

// IssueInvoice signs a CFDI. Sending only a receivable_id invoices its total.
// @Summary Issue Invoice
// @Tags invoices
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.IssueInvoiceRequest true "Invoice"
// @Success 201 {object} response.APIResponse
// @Failure 502 {object} response.APIResponse "Signing provider rejected the invoice"
// @Router /invoices [post]
func (h *FinanceHandler) IssueInvoice(c *gin.Context) {
	var req request.IssueInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}

	var (
		invoice *entity.Invoice
		err     error
	)
	switch {
	case req.ReceivableID != nil && req.Amount == nil:
		invoice, err = h.invoiceService.InvoiceReceivable(c.Request.Context(), *req.ReceivableID)
	case req.Amount == nil:
		err = apperror.NewFieldError("amount", "This field is required")
	default:
		input := &service.IssueInvoiceInput{
			ClientID:     req.ClientID,
			ReceivableID: req.ReceivableID,
			Amount:       *req.Amount,
		}
		if req.Discount != nil {
			input.Discount = *req.Discount
		}
		invoice, err = h.invoiceService.IssueInvoice(c.Request.Context(), input)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Invoice issued successfully", invoice)
}

// GetInvoice returns an invoice
// @Summary Get Invoice
// @Tags invoices
// @Security BearerAuth
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} response.APIResponse
// @Router /invoices/{id} [get]
func (h *FinanceHandler) GetInvoice(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Invoice retrieved successfully", invoice)
}

// DeleteInvoice removes a pending invoice record
// @Summary Delete Invoice
// @Tags invoices
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Success 204
// @Router /invoices/{id} [delete]
func (h *FinanceHandler) DeleteInvoice(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// InvoiceXML downloads the stamped XML
// @Summary Invoice XML
// @Tags invoices
// @Security BearerAuth
// @Produce application/xml
// @Param id path string true "Invoice ID"
// @Success 200 {file} binary
// @Router /invoices/{id}/xml [get]
func (h *FinanceHandler) InvoiceXML(c *gin.Context) {
	h.sendInvoiceArtifact(c, service.ArtifactXML, false)
}

// InvoicePDF shows the printable invoice
// @Summary Invoice PDF
// @Tags invoices
// @Security BearerAuth
// @Produce application/pdf
// @Param id path string true "Invoice ID"
// @Success 200 {file} binary
// @Router /invoices/{id}/pdf [get]
func (h *FinanceHandler) InvoicePDF(c *gin.Context) {
	h.sendInvoiceArtifact(c, service.ArtifactPDF, c.Query("download") == "")
}

// InvoiceQR shows the SAT verification code
// @Summary Invoice QR
// @Tags invoices
// @Security BearerAuth
// @Produce image/png
// @Param id path string true "Invoice ID"
// @Success 200 {file} binary
// @Router /invoices/{id}/qr [get]
func (h *FinanceHandler) InvoiceQR(c *gin.Context) {
	h.sendInvoiceArtifact(c, service.ArtifactQR, true)
}

func (h *FinanceHandler) sendInvoiceArtifact(c *gin.Context, kind string, inline bool) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	artifact, err := h.invoiceService.OpenArtifact(c.Request.Context(), id, kind)
	if err != nil {
		response.Error(c, err)
		return
	}
	sendArtifact(c, artifact, inline)
}

// SendInvoice emails the XML and PDF to the client
// @Summary Send Invoice
// @Tags invoices
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param request body request.SendDocumentRequest false "Recipient override"
// @Success 200 {object} response.APIResponse
// @Router /invoices/{id}/send [post]
func (h *FinanceHandler) SendInvoice(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req request.SendDocumentRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	if err := h.invoiceService.SendInvoice(c.Request.Context(), id, req.To); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Invoice sent successfully", nil)
}
