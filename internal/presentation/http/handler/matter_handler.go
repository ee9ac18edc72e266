package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/application/service"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	"github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/internal/presentation/http/dto/request"
	"github.com/sangkips/lexdesk-api/internal/presentation/http/dto/response"
)

// MatterHandler handles matters (expedientes)
type MatterHandler struct {
	matterService *service.MatterService
}

// NewMatterHandler creates a new matter handler
func NewMatterHandler(matterService *service.MatterService) *MatterHandler {
	return &MatterHandler{matterService: matterService}
}

func matterInput(req *request.MatterRequest) *service.MatterInput {
	input := &service.MatterInput{
		ClientID: req.ClientID,
		Title:    req.Title,
		Number:   req.Number,
		Priority: req.Priority,
	}
	if req.Status != nil {
		if status, ok := enum.ParseMatterStatus(*req.Status); ok {
			input.Status = &status
		}
	}
	return input
}

// List handles listing matters
// @Summary List Matters
// @Tags matters
// @Security BearerAuth
// @Produce json
// @Param client_id query string false "Client ID"
// @Param status query string false "abierto, en_proceso or cerrado"
// @Param search query string false "Title or number"
// @Success 200 {object} response.APIResponse
// @Router /matters [get]
func (h *MatterHandler) List(c *gin.Context) {
	clientID, ok := queryUUID(c, "client_id")
	if !ok {
		return
	}
	h.list(c, clientID)
}

// ListByClient lists the matters of one client
// @Summary Client Matters
// @Tags matters
// @Security BearerAuth
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} response.APIResponse
// @Router /clients/{id}/matters [get]
func (h *MatterHandler) ListByClient(c *gin.Context) {
	clientID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	h.list(c, &clientID)
}

func (h *MatterHandler) list(c *gin.Context, clientID *uuid.UUID) {
	filter := repository.MatterFilter{
		Pagination: pageParams(c),
		ClientID:   clientID,
		Search:     c.Query("search"),
	}
	if raw := c.Query("status"); raw != "" {
		status, valid := enum.ParseMatterStatus(raw)
		if !valid {
			response.BadRequest(c, "Invalid status")
			return
		}
		filter.Status = &status
	}

	result, err := h.matterService.ListMatters(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Matters retrieved successfully", result)
}

// Create opens a matter for a client
// @Summary Create Matter
// @Tags matters
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.MatterRequest true "Matter"
// @Success 201 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse "Number already used"
// @Router /matters [post]
func (h *MatterHandler) Create(c *gin.Context) {
	var req request.MatterRequest
	if !bindJSON(c, &req) {
		return
	}
	matter, err := h.matterService.CreateMatter(c.Request.Context(), matterInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Matter created successfully", matter)
}

// Get returns a matter
// @Summary Get Matter
// @Tags matters
// @Security BearerAuth
// @Produce json
// @Param id path string true "Matter ID"
// @Success 200 {object} response.APIResponse
// @Router /matters/{id} [get]
func (h *MatterHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	matter, err := h.matterService.GetMatter(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Matter retrieved successfully", matter)
}

// Update changes a matter
// @Summary Update Matter
// @Tags matters
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Matter ID"
// @Param request body request.MatterRequest true "Changes"
// @Success 200 {object} response.APIResponse
// @Router /matters/{id} [put]
func (h *MatterHandler) Update(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req request.MatterRequest
	if !bindJSON(c, &req) {
		return
	}
	matter, err := h.matterService.UpdateMatter(c.Request.Context(), id, matterInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Matter updated successfully", matter)
}

// ChangeStatus moves a matter between abierto, en_proceso and cerrado
// @Summary Change Matter Status
// @Tags matters
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Matter ID"
// @Param request body request.MatterStatusRequest true "Status"
// @Success 200 {object} response.APIResponse
// @Router /matters/{id}/status [patch]
func (h *MatterHandler) ChangeStatus(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req request.MatterStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	status, valid := enum.ParseMatterStatus(req.Status)
	if !valid {
		response.BadRequest(c, "Invalid status")
		return
	}
	matter, err := h.matterService.ChangeStatus(c.Request.Context(), id, status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Matter status updated successfully", matter)
}

// Delete removes a matter
// @Summary Delete Matter
// @Tags matters
// @Security BearerAuth
// @Param id path string true "Matter ID"
// @Success 204
// @Router /matters/{id} [delete]
func (h *MatterHandler) Delete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.matterService.DeleteMatter(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
