package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/application/service"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/presentation/http/dto/request"
	"github.com/sangkips/lexdesk-api/internal/presentation/http/dto/response"
	"github.com/sangkips/lexdesk-api/internal/presentation/http/middleware"
)

// TenantHandler handles tenant-related HTTP requests
type TenantHandler struct {
	tenantService *service.TenantService
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(tenantService *service.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

func activeTenant(c *gin.Context) (uuid.UUID, bool) {
	tenantID := middleware.GetTenantID(c)
	if tenantID == uuid.Nil {
		response.BadRequest(c, "No active tenant")
		return uuid.Nil, false
	}
	return tenantID, true
}

// Create registers a firm owned by the caller
// @Summary Create Tenant
// @Tags tenants
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.CreateTenantRequest true "Firm data"
// @Success 201 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /tenants [post]
func (h *TenantHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}
	var req request.CreateTenantRequest
	if !bindJSON(c, &req) {
		return
	}

	tenant, err := h.tenantService.CreateTenant(c.Request.Context(), &service.CreateTenantInput{
		Name:     req.Name,
		Slug:     req.Slug,
		OwnerID:  *userID,
		Settings: req.Settings,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Tenant created successfully", gin.H{"tenant": tenant})
}

// GetCurrentTenant returns the firm selected by the request
// @Summary Current Tenant
// @Tags tenants
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /tenants/current [get]
func (h *TenantHandler) GetCurrentTenant(c *gin.Context) {
	if _, ok := activeTenant(c); !ok {
		return
	}
	tenant, err := h.tenantService.GetCurrentTenant(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Tenant retrieved successfully", gin.H{"tenant": tenant})
}

// Mine lists the firms the caller belongs to; platform admins see all
// @Summary My Tenants
// @Tags tenants
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /tenants/mine [get]
func (h *TenantHandler) Mine(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var (
		tenants []entity.Tenant
		err     error
	)
	if IsSuperAdmin(c) {
		tenants, err = h.tenantService.ListAllTenants(c.Request.Context())
	} else {
		tenants, err = h.tenantService.GetUserTenants(c.Request.Context(), *userID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Tenants retrieved successfully", gin.H{"tenants": tenants})
}

// UpdateTenant updates the current tenant's name and settings
// @Summary Update Tenant
// @Tags tenants
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.UpdateTenantRequest true "Changes"
// @Success 200 {object} response.APIResponse
// @Router /tenants/current [put]
func (h *TenantHandler) UpdateTenant(c *gin.Context) {
	tenantID, ok := activeTenant(c)
	if !ok {
		return
	}
	var req request.UpdateTenantRequest
	if !bindJSON(c, &req) {
		return
	}

	tenant, err := h.tenantService.UpdateTenant(c.Request.Context(), &service.UpdateTenantInput{
		ID:       tenantID,
		Name:     req.Name,
		Settings: req.Settings,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Tenant updated successfully", gin.H{"tenant": tenant})
}

// ListMembers returns all members of the current tenant
// @Summary List Members
// @Tags tenants
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /tenants/current/members [get]
func (h *TenantHandler) ListMembers(c *gin.Context) {
	tenantID, ok := activeTenant(c)
	if !ok {
		return
	}
	members, err := h.tenantService.GetTenantMembers(c.Request.Context(), tenantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Members retrieved successfully", gin.H{"members": members})
}

// InviteMember adds a user to the current tenant
// @Summary Invite Member
// @Tags tenants
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.InviteMemberRequest true "Member"
// @Success 201 {object} response.APIResponse
// @Router /tenants/current/members [post]
func (h *TenantHandler) InviteMember(c *gin.Context) {
	tenantID, ok := activeTenant(c)
	if !ok {
		return
	}
	var req request.InviteMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.tenantService.InviteMember(c.Request.Context(), &service.InviteMemberInput{
		TenantID: tenantID,
		UserID:   req.UserID,
		Role:     req.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Member invited successfully", nil)
}

// RemoveMember removes a user from the current tenant
// @Summary Remove Member
// @Tags tenants
// @Security BearerAuth
// @Param user_id path string true "User ID"
// @Success 200 {object} response.APIResponse
// @Router /tenants/current/members/{user_id} [delete]
func (h *TenantHandler) RemoveMember(c *gin.Context) {
	tenantID, ok := activeTenant(c)
	if !ok {
		return
	}
	userID, ok := paramUUID(c, "user_id")
	if !ok {
		return
	}
	if err := h.tenantService.RemoveMember(c.Request.Context(), tenantID, userID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Member removed successfully", nil)
}

// UpdateMemberRole updates a member's role in the current tenant
// @Summary Update Member Role
// @Tags tenants
// @Security BearerAuth
// @Accept json
// @Param user_id path string true "User ID"
// @Param request body request.UpdateMemberRoleRequest true "Role"
// @Success 200 {object} response.APIResponse
// @Router /tenants/current/members/{user_id} [put]
func (h *TenantHandler) UpdateMemberRole(c *gin.Context) {
	tenantID, ok := activeTenant(c)
	if !ok {
		return
	}
	userID, ok := paramUUID(c, "user_id")
	if !ok {
		return
	}
	var req request.UpdateMemberRoleRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.tenantService.UpdateMemberRole(c.Request.Context(), tenantID, userID, req.Role); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Member role updated successfully", nil)
}

// ListAllTenants returns all tenants (super admin only)
// @Summary List All Tenants
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /admin/tenants [get]
func (h *TenantHandler) ListAllTenants(c *gin.Context) {
	tenants, err := h.tenantService.ListAllTenants(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "All tenants retrieved successfully", gin.H{"tenants": tenants})
}

// AssignUserToTenant assigns a user to a tenant (super admin only)
// @Summary Assign User To Tenant
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Param request body request.AssignTenantRequest true "Assignment"
// @Success 201 {object} response.APIResponse
// @Router /admin/tenants/assign [post]
func (h *TenantHandler) AssignUserToTenant(c *gin.Context) {
	var req request.AssignTenantRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.tenantService.AssignUserToTenant(c.Request.Context(), &service.AssignUserToTenantInput{
		TenantID: req.TenantID,
		UserID:   req.UserID,
		Role:     req.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "User assigned to tenant successfully", nil)
}
