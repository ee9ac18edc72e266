package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/lexdesk-api/internal/application/service"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	"github.com/sangkips/lexdesk-api/internal/presentation/http/dto/request"
	"github.com/sangkips/lexdesk-api/internal/presentation/http/dto/response"
)

// QuoteHandler handles the service catalog, quotes and their conversion
type QuoteHandler struct {
	catalogService    *service.CatalogService
	quoteService      *service.QuoteService
	conversionService *service.ConversionService
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(
	catalogService *service.CatalogService,
	quoteService *service.QuoteService,
	conversionService *service.ConversionService,
) *QuoteHandler {
	return &QuoteHandler{
		catalogService:    catalogService,
		quoteService:      quoteService,
		conversionService: conversionService,
	}
}

func quoteItemInput(req request.QuoteItemRequest) service.QuoteItemInput {
	return service.QuoteItemInput{
		ServiceID:   req.ServiceID,
		Description: req.Description,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
	}
}

func quoteInput(req *request.QuoteRequest) *service.QuoteInput {
	input := &service.QuoteInput{
		ProspectName:    req.ProspectName,
		ProspectCompany: req.ProspectCompany,
		ProspectEmail:   req.ProspectEmail,
		ProspectPhone:   req.ProspectPhone,
		ClientID:        req.ClientID,
		DiscountPercent: req.DiscountPercent,
		ValidUntil:      req.ValidUntil,
		Notes:           req.Notes,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, quoteItemInput(item))
	}
	return input
}

// ListServices lists catalog entries
// @Summary List Services
// @Tags services
// @Security BearerAuth
// @Produce json
// @Param search query string false "Name"
// @Param active query bool false "Only active entries"
// @Success 200 {object} response.APIResponse
// @Router /services [get]
func (h *QuoteHandler) ListServices(c *gin.Context) {
	activeOnly := false
	if v := queryBool(c, "active"); v != nil {
		activeOnly = *v
	}
	result, err := h.catalogService.ListItems(c.Request.Context(), pageParams(c), c.Query("search"), activeOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Services retrieved successfully", result)
}

// GetService returns a catalog entry
// @Summary Get Service
// @Tags services
// @Security BearerAuth
// @Produce json
// @Param id path string true "Service ID"
// @Success 200 {object} response.APIResponse
// @Router /services/{id} [get]
func (h *QuoteHandler) GetService(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	item, err := h.catalogService.GetItem(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Service retrieved successfully", item)
}

// CreateService adds a catalog entry
// @Summary Create Service
// @Tags services
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.ServiceItemRequest true "Service"
// @Success 201 {object} response.APIResponse
// @Router /services [post]
func (h *QuoteHandler) CreateService(c *gin.Context) {
	var req request.ServiceItemRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.catalogService.CreateItem(c.Request.Context(), &service.ServiceItemInput{
		Name:        req.Name,
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		IsActive:    req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Service created successfully", item)
}

// UpdateService changes a catalog entry
// @Summary Update Service
// @Tags services
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Service ID"
// @Param request body request.ServiceItemRequest true "Changes"
// @Success 200 {object} response.APIResponse
// @Router /services/{id} [put]
func (h *QuoteHandler) UpdateService(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req request.ServiceItemRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.catalogService.UpdateItem(c.Request.Context(), id, &service.ServiceItemInput{
		Name:        req.Name,
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		IsActive:    req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Service updated successfully", item)
}

// DeleteService removes a catalog entry
// @Summary Delete Service
// @Tags services
// @Security BearerAuth
// @Param id path string true "Service ID"
// @Success 204
// @Router /services/{id} [delete]
func (h *QuoteHandler) DeleteService(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteItem(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// List handles listing quotes
// @Summary List Quotes
// @Tags quotes
// @Security BearerAuth
// @Produce json
// @Param search query string false "Number, prospect or company"
// @Param status query string false "draft, sent, approved, rejected or converted"
// @Param client_id query string false "Client ID"
// @Success 200 {object} response.APIResponse
// @Router /quotes [get]
func (h *QuoteHandler) List(c *gin.Context) {
	var q request.ListQuotesQuery
	if !bindQuery(c, &q) {
		return
	}
	clientID, ok := queryUUID(c, "client_id")
	if !ok {
		return
	}

	input := &service.ListQuotesInput{
		Pagination: pageParams(c),
		Search:     q.Search,
		ClientID:   clientID,
		SortBy:     q.SortBy,
		SortOrder:  q.SortOrder,
	}
	if status, ok := enum.ParseQuoteStatus(q.Status); ok {
		input.Status = &status
	}

	result, err := h.quoteService.ListQuotes(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Quotes retrieved successfully", result)
}

// Create handles creating a draft quote
// @Summary Create Quote
// @Tags quotes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.QuoteRequest true "Quote"
// @Success 201 {object} response.APIResponse
// @Router /quotes [post]
func (h *QuoteHandler) Create(c *gin.Context) {
	var req request.QuoteRequest
	if !bindJSON(c, &req) {
		return
	}
	quote, err := h.quoteService.CreateQuote(c.Request.Context(), quoteInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Quote created successfully", quote)
}

// Get returns a quote with its items
// @Summary Get Quote
// @Tags quotes
// @Security BearerAuth
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} response.APIResponse
// @Router /quotes/{id} [get]
func (h *QuoteHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	quote, err := h.quoteService.GetQuote(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Quote retrieved successfully", quote)
}

// Update changes the quote header; items sent replace the current ones
// @Summary Update Quote
// @Tags quotes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param request body request.QuoteRequest true "Changes"
// @Success 200 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse "Quote already converted"
// @Router /quotes/{id} [put]
func (h *QuoteHandler) Update(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req request.QuoteRequest
	if !bindJSON(c, &req) {
		return
	}
	quote, err := h.quoteService.UpdateQuote(c.Request.Context(), id, quoteInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Quote updated successfully", quote)
}

// Delete removes a quote that was not converted
// @Summary Delete Quote
// @Tags quotes
// @Security BearerAuth
// @Param id path string true "Quote ID"
// @Success 204
// @Router /quotes/{id} [delete]
func (h *QuoteHandler) Delete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.quoteService.DeleteQuote(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddItem appends a line to a quote
// @Summary Add Quote Item
// @Tags quotes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param request body request.QuoteItemRequest true "Item"
// @Success 201 {object} response.APIResponse
// @Router /quotes/{id}/items [post]
func (h *QuoteHandler) AddItem(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req request.QuoteItemRequest
	if !bindJSON(c, &req) {
		return
	}
	quote, err := h.quoteService.AddItem(c.Request.Context(), id, quoteItemInput(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Item added successfully", quote)
}

// UpdateItem replaces a line of a quote
// @Summary Update Quote Item
// @Tags quotes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param item_id path string true "Item ID"
// @Param request body request.QuoteItemRequest true "Item"
// @Success 200 {object} response.APIResponse
// @Router /quotes/{id}/items/{item_id} [put]
func (h *QuoteHandler) UpdateItem(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := paramUUID(c, "item_id")
	if !ok {
		return
	}
	var req request.QuoteItemRequest
	if !bindJSON(c, &req) {
		return
	}
	quote, err := h.quoteService.UpdateItem(c.Request.Context(), id, itemID, quoteItemInput(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item updated successfully", quote)
}

// RemoveItem deletes a line of a quote
// @Summary Remove Quote Item
// @Tags quotes
// @Security BearerAuth
// @Produce json
// @Param id path string true "Quote ID"
// @Param item_id path string true "Item ID"
// @Success 200 {object} response.APIResponse
// @Router /quotes/{id}/items/{item_id} [delete]
func (h *QuoteHandler) RemoveItem(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := paramUUID(c, "item_id")
	if !ok {
		return
	}
	quote, err := h.quoteService.RemoveItem(c.Request.Context(), id, itemID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item removed successfully", quote)
}

// ChangeStatus moves a quote through draft, sent, approved and rejected.
// Conversion has its own endpoint.
// @Summary Change Quote Status
// @Tags quotes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param request body request.QuoteStatusRequest true "Status"
// @Success 200 {object} response.APIResponse
// @Router /quotes/{id}/status [patch]
func (h *QuoteHandler) ChangeStatus(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req request.QuoteStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	status, valid := enum.ParseQuoteStatus(req.Status)
	if !valid {
		response.BadRequest(c, "Invalid status")
		return
	}
	quote, err := h.quoteService.ChangeStatus(c.Request.Context(), id, status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Quote status updated successfully", quote)
}

// PDF renders the quote
// @Summary Quote PDF
// @Tags quotes
// @Security BearerAuth
// @Produce application/pdf
// @Param id path string true "Quote ID"
// @Success 200 {file} binary
// @Router /quotes/{id}/pdf [get]
func (h *QuoteHandler) PDF(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	content, filename, err := h.quoteService.RenderPDF(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	sendBytes(c, content, filename, "application/pdf", c.Query("download") == "")
}

// Send emails the quote PDF and marks a draft as sent
// @Summary Send Quote
// @Tags quotes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param request body request.SendDocumentRequest false "Recipient override"
// @Success 200 {object} response.APIResponse
// @Router /quotes/{id}/send [post]
func (h *QuoteHandler) Send(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req request.SendDocumentRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	if err := h.quoteService.SendQuote(c.Request.Context(), id, req.To); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Quote sent successfully", nil)
}

// Convert turns an approved quote into a client and a receivable. Repeating
// the call returns the existing engagement.
// @Summary Convert Quote
// @Tags quotes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param Idempotency-Key header string false "Replay protection"
// @Param request body request.ConvertQuoteRequest false "Deposit"
// @Success 201 {object} response.APIResponse
// @Success 200 {object} response.APIResponse "Already converted"
// @Failure 409 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /quotes/{id}/convert [post]
func (h *QuoteHandler) Convert(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req request.ConvertQuoteRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	result, err := h.conversionService.ConvertQuote(c.Request.Context(), id, &service.ConvertInput{
		ApplyDeposit:     req.ApplyDeposit,
		DepositMethod:    enum.PaymentMethod(req.DepositMethod),
		DepositReference: req.DepositReference,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.AlreadyConverted {
		response.OK(c, "Quote already converted", result)
		return
	}
	response.Created(c, "Quote converted successfully", result)
}
