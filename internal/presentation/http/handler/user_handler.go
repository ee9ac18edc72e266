package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/lexdesk-api/internal/application/service"
	"github.com/sangkips/lexdesk-api/internal/presentation/http/dto/request"
	"github.com/sangkips/lexdesk-api/internal/presentation/http/dto/response"
	"github.com/sangkips/lexdesk-api/pkg/pagination"
)

// UserHandler handles user management HTTP requests
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// List handles listing users with pagination
// @Summary List Users
// @Description Get a paginated list of users with their roles
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(15)
// @Param search query string false "Search query"
// @Param active query bool false "Filter by approval state"
// @Success 200 {object} response.APIResponse
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	result, err := h.userService.ListUsers(c.Request.Context(), &service.ListUsersInput{
		Pagination: pageParams(c),
		Search:     c.Query("search"),
		Active:     queryBool(c, "active"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	users := make([]gin.H, len(result.Items))
	for i := range result.Items {
		users[i] = userPayload(&result.Items[i])
	}
	response.SuccessWithPagination(c, 200, "Users retrieved successfully", pagination.NewPaginatedResult(users, result.Pagination))
}

// Get handles getting a single user by ID
// @Summary Get User
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.APIResponse
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "User retrieved successfully", gin.H{"user": userPayload(user)})
}

// Approve activates a self-registered account
// @Summary Approve User
// @Tags users
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.APIResponse
// @Router /users/{id}/approve [post]
func (h *UserHandler) Approve(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.ApproveUser(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "User approved successfully", gin.H{"user": userPayload(user)})
}

// Deactivate blocks a user from signing in
// @Summary Deactivate User
// @Tags users
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.APIResponse
// @Router /users/{id}/deactivate [post]
func (h *UserHandler) Deactivate(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.userService.DeactivateUser(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "User deactivated successfully", nil)
}

// UpdateRoles handles assigning roles to a user
// @Summary Update User Roles
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body request.UpdateUserRolesRequest true "Role IDs"
// @Success 200 {object} response.APIResponse
// @Router /users/{id}/roles [put]
func (h *UserHandler) UpdateRoles(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req request.UpdateUserRolesRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateUserRoles(c.Request.Context(), &service.UpdateUserRolesInput{
		UserID:  id,
		RoleIDs: req.RoleIDs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "User roles updated successfully", gin.H{"user": userPayload(user)})
}

// Delete handles deleting a user
// @Summary Delete User
// @Tags users
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 204
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.userService.DeleteUser(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListRoles handles listing all roles
// @Summary List Roles
// @Tags roles
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /roles [get]
func (h *UserHandler) ListRoles(c *gin.Context) {
	roles, err := h.userService.ListRoles(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Roles retrieved successfully", gin.H{"roles": roles})
}

// SyncRolePermissions replaces the permissions granted by a role
// @Summary Sync Role Permissions
// @Tags roles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param name path string true "Role name"
// @Param request body request.SyncRolePermissionsRequest true "Permission names"
// @Success 200 {object} response.APIResponse
// @Router /roles/{name}/permissions [put]
func (h *UserHandler) SyncRolePermissions(c *gin.Context) {
	var req request.SyncRolePermissionsRequest
	if !bindJSON(c, &req) {
		return
	}
	role, err := h.userService.SyncRolePermissions(c.Request.Context(), c.Param("name"), req.Permissions)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Role permissions updated successfully", gin.H{"role": role})
}

// ListPermissions handles listing all permissions
// @Summary List Permissions
// @Tags roles
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /permissions [get]
func (h *UserHandler) ListPermissions(c *gin.Context) {
	permissions, err := h.userService.ListPermissions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Permissions retrieved successfully", gin.H{"permissions": permissions})
}
