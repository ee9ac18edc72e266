package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/lexdesk-api/internal/application/service"
	"github.com/sangkips/lexdesk-api/internal/presentation/http/dto/request"
	"github.com/sangkips/lexdesk-api/internal/presentation/http/dto/response"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
)

// maxCertificateSize bounds the tax-status certificate upload
const maxCertificateSize = 5 << 20

// ClientHandler handles clients and their extra-field registry
type ClientHandler struct {
	clientService *service.ClientService
	fieldService  *service.ClientFieldService
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService *service.ClientService, fieldService *service.ClientFieldService) *ClientHandler {
	return &ClientHandler{clientService: clientService, fieldService: fieldService}
}

func clientInput(req *request.ClientRequest) *service.ClientInput {
	return &service.ClientInput{
		CompanyName:  req.CompanyName,
		ContactName:  req.ContactName,
		Phone:        req.Phone,
		Email:        req.Email,
		RFC:          req.RFC,
		FiscalName:   req.FiscalName,
		FiscalRegime: req.FiscalRegime,
		TaxZipCode:   req.TaxZipCode,
		ExtraFields:  req.ExtraFields,
	}
}

// List handles listing clients
// @Summary List Clients
// @Tags clients
// @Security BearerAuth
// @Produce json
// @Param search query string false "Company, contact or email"
// @Param mine query bool false "Only clients assigned to me"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(15)
// @Success 200 {object} response.APIResponse
// @Router /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	var q request.ListClientsQuery
	if !bindQuery(c, &q) {
		return
	}

	result, err := h.clientService.ListClients(c.Request.Context(), &service.ListClientsInput{
		Pagination: pageParams(c),
		Search:     q.Search,
		OnlyMine:   q.Mine,
		SortBy:     q.SortBy,
		SortOrder:  q.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Clients retrieved successfully", result)
}

// Create handles creating a client together with its requirement checklist
// @Summary Create Client
// @Tags clients
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.ClientRequest true "Client"
// @Success 201 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var req request.ClientRequest
	if !bindJSON(c, &req) {
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), clientInput(&req), req.AssignedTo)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Client created successfully", client)
}

// Get handles getting a client with matters and checklist progress
// @Summary Get Client
// @Tags clients
// @Security BearerAuth
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} response.APIResponse
// @Router /clients/{id} [get]
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	client, err := h.clientService.GetClient(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Client retrieved successfully", client)
}

// Update handles updating a client
// @Summary Update Client
// @Tags clients
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param request body request.ClientRequest true "Changes"
// @Success 200 {object} response.APIResponse
// @Router /clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req request.ClientRequest
	if !bindJSON(c, &req) {
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), id, clientInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Client updated successfully", client)
}

// Delete handles deleting a client
// @Summary Delete Client
// @Tags clients
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 204
// @Router /clients/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.clientService.DeleteClient(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UploadLogo stores the client's logo image
// @Summary Upload Client Logo
// @Tags clients
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Client ID"
// @Param file formData file true "PNG, JPEG or WebP image"
// @Success 200 {object} response.APIResponse
// @Router /clients/{id}/logo [post]
func (h *ClientHandler) UploadLogo(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, apperror.NewFieldError("file", "A file is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "Unable to read the uploaded file")
		return
	}
	defer file.Close()

	client, err := h.clientService.UploadLogo(c.Request.Context(), id, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Logo uploaded successfully", client)
}

// AssignUser links a staff member to the client
// @Summary Assign User
// @Tags clients
// @Security BearerAuth
// @Accept json
// @Param id path string true "Client ID"
// @Param request body request.AssignUserRequest true "User"
// @Success 200 {object} response.APIResponse
// @Router /clients/{id}/users [post]
func (h *ClientHandler) AssignUser(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req request.AssignUserRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.clientService.AssignUser(c.Request.Context(), id, req.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "User assigned successfully", nil)
}

// UnassignUser removes a staff member from the client
// @Summary Unassign User
// @Tags clients
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Param user_id path string true "User ID"
// @Success 200 {object} response.APIResponse
// @Router /clients/{id}/users/{user_id} [delete]
func (h *ClientHandler) UnassignUser(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	userID, ok := paramUUID(c, "user_id")
	if !ok {
		return
	}
	if err := h.clientService.UnassignUser(c.Request.Context(), id, userID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "User unassigned successfully", nil)
}

// SetExtraFields replaces the client's extra field values
// @Summary Set Extra Fields
// @Tags clients
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param request body request.ExtraFieldsRequest true "Values by key"
// @Success 200 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse "Unknown or missing keys"
// @Router /clients/{id}/extra-fields [put]
func (h *ClientHandler) SetExtraFields(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req request.ExtraFieldsRequest
	if !bindJSON(c, &req) {
		return
	}
	client, err := h.clientService.SetExtraFields(c.Request.Context(), id, req.Fields)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Extra fields updated successfully", client)
}

// ImportFiscalCertificate reads a SAT tax-status certificate. With
// apply=true the recovered data is saved on the client.
// @Summary Import Fiscal Certificate
// @Tags clients
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Client ID"
// @Param file formData file true "Constancia de Situación Fiscal (PDF)"
// @Param apply query bool false "Save the recovered data"
// @Success 200 {object} response.APIResponse
// @Router /clients/{id}/fiscal-certificate [post]
func (h *ClientHandler) ImportFiscalCertificate(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, apperror.NewFieldError("file", "A file is required"))
		return
	}
	if fileHeader.Size > maxCertificateSize {
		response.Error(c, apperror.NewFieldError("file", "The certificate exceeds 5 MB"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "Unable to read the uploaded file")
		return
	}
	defer file.Close()
	content, err := io.ReadAll(io.LimitReader(file, maxCertificateSize))
	if err != nil {
		response.BadRequest(c, "Unable to read the uploaded file")
		return
	}

	apply := false
	if v := queryBool(c, "apply"); v != nil {
		apply = *v
	}
	result, err := h.clientService.ImportFiscalCertificate(c.Request.Context(), id, content, apply)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Certificate processed", result)
}

// ListFields lists the extra-field registry
// @Summary List Client Fields
// @Tags client-fields
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /client-fields [get]
func (h *ClientHandler) ListFields(c *gin.Context) {
	fields, err := h.fieldService.ListFields(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Client fields retrieved successfully", fields)
}

// CreateField registers an extra field
// @Summary Create Client Field
// @Tags client-fields
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.ClientFieldRequest true "Field"
// @Success 201 {object} response.APIResponse
// @Router /client-fields [post]
func (h *ClientHandler) CreateField(c *gin.Context) {
	var req request.ClientFieldRequest
	if !bindJSON(c, &req) {
		return
	}
	field, err := h.fieldService.CreateField(c.Request.Context(), &service.ClientFieldInput{
		Key:      req.Key,
		Label:    req.Label,
		Required: req.Required,
		Position: req.Position,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Client field created successfully", field)
}

// UpdateField changes the label, requirement flag or position of a field
// @Summary Update Client Field
// @Tags client-fields
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Field ID"
// @Param request body request.ClientFieldRequest true "Field"
// @Success 200 {object} response.APIResponse
// @Router /client-fields/{id} [put]
func (h *ClientHandler) UpdateField(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req request.ClientFieldRequest
	if !bindJSON(c, &req) {
		return
	}
	field, err := h.fieldService.UpdateField(c.Request.Context(), id, &service.ClientFieldInput{
		Key:      req.Key,
		Label:    req.Label,
		Required: req.Required,
		Position: req.Position,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Client field updated successfully", field)
}

// DeleteField removes a field from the registry
// @Summary Delete Client Field
// @Tags client-fields
// @Security BearerAuth
// @Param id path string true "Field ID"
// @Success 204
// @Router /client-fields/{id} [delete]
func (h *ClientHandler) DeleteField(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.fieldService.DeleteField(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
