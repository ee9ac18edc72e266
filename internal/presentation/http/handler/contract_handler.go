package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/lexdesk-api/internal/application/service"
	"github.com/sangkips/lexdesk-api/internal/presentation/http/dto/request"
	"github.com/sangkips/lexdesk-api/internal/presentation/http/dto/response"
)

// ContractHandler handles contract templates and generated contracts
type ContractHandler struct {
	contractService *service.ContractService
}

// NewContractHandler creates a new contract handler
func NewContractHandler(contractService *service.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

func contractInput(req *request.ContractRequest) *service.ContractInput {
	return &service.ContractInput{
		TemplateID: req.TemplateID,
		ClientID:   req.ClientID,
		Title:      req.Title,
		Variables:  req.Variables,
	}
}

// ListTemplates lists contract templates
// @Summary List Contract Templates
// @Tags contracts
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /contract-templates [get]
func (h *ContractHandler) ListTemplates(c *gin.Context) {
	templates, err := h.contractService.ListTemplates(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Templates retrieved successfully", templates)
}

// GetTemplate returns a template
// @Summary Get Contract Template
// @Tags contracts
// @Security BearerAuth
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} response.APIResponse
// @Router /contract-templates/{id} [get]
func (h *ContractHandler) GetTemplate(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	template, err := h.contractService.GetTemplate(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Template retrieved successfully", template)
}

// CreateTemplate adds a template
// @Summary Create Contract Template
// @Tags contracts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.ContractTemplateRequest true "Template"
// @Success 201 {object} response.APIResponse
// @Router /contract-templates [post]
func (h *ContractHandler) CreateTemplate(c *gin.Context) {
	var req request.ContractTemplateRequest
	if !bindJSON(c, &req) {
		return
	}
	template, err := h.contractService.CreateTemplate(c.Request.Context(), &service.TemplateInput{Name: req.Name, Body: req.Body})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Template created successfully", template)
}

// UpdateTemplate replaces a template
// @Summary Update Contract Template
// @Tags contracts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param request body request.ContractTemplateRequest true "Template"
// @Success 200 {object} response.APIResponse
// @Router /contract-templates/{id} [put]
func (h *ContractHandler) UpdateTemplate(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req request.ContractTemplateRequest
	if !bindJSON(c, &req) {
		return
	}
	template, err := h.contractService.UpdateTemplate(c.Request.Context(), id, &service.TemplateInput{Name: req.Name, Body: req.Body})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Template updated successfully", template)
}

// DeleteTemplate removes a template
// @Summary Delete Contract Template
// @Tags contracts
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Success 204
// @Router /contract-templates/{id} [delete]
func (h *ContractHandler) DeleteTemplate(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.contractService.DeleteTemplate(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Preview fills a template without storing anything
// @Summary Preview Contract
// @Tags contracts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.ContractRequest true "Template and client"
// @Success 200 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse "Unresolved placeholders"
// @Router /contracts/preview [post]
func (h *ContractHandler) Preview(c *gin.Context) {
	var req request.ContractRequest
	if !bindJSON(c, &req) {
		return
	}
	preview, err := h.contractService.PreviewContract(c.Request.Context(), contractInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Contract preview", preview)
}

// Generate renders the contract PDF into the client's drive
// @Summary Generate Contract
// @Tags contracts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.ContractRequest true "Template and client"
// @Success 201 {object} response.APIResponse
// @Router /contracts [post]
func (h *ContractHandler) Generate(c *gin.Context) {
	var req request.ContractRequest
	if !bindJSON(c, &req) {
		return
	}
	contract, err := h.contractService.GenerateContract(c.Request.Context(), contractInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Contract generated successfully", contract)
}

// ListByClient lists the contracts generated for a client
// @Summary Client Contracts
// @Tags contracts
// @Security BearerAuth
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} response.APIResponse
// @Router /clients/{id}/contracts [get]
func (h *ContractHandler) ListByClient(c *gin.Context) {
	clientID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	contracts, err := h.contractService.ListContracts(c.Request.Context(), clientID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Contracts retrieved successfully", contracts)
}

// Get returns a generated contract
// @Summary Get Contract
// @Tags contracts
// @Security BearerAuth
// @Produce json
// @Param id path string true "Contract ID"
// @Success 200 {object} response.APIResponse
// @Router /contracts/{id} [get]
func (h *ContractHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	contract, err := h.contractService.GetContract(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Contract retrieved successfully", contract)
}

// PDF streams a generated contract
// @Summary Contract PDF
// @Tags contracts
// @Security BearerAuth
// @Produce application/pdf
// @Param id path string true "Contract ID"
// @Success 200 {file} binary
// @Router /contracts/{id}/pdf [get]
func (h *ContractHandler) PDF(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	artifact, err := h.contractService.OpenContract(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	sendArtifact(c, artifact, c.Query("download") == "")
}
