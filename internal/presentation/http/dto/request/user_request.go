package request

// UpdateUserRolesRequest replaces the roles of a user
type UpdateUserRolesRequest struct {
	RoleIDs []uint `json:"role_ids" binding:"required"`
}

// SyncRolePermissionsRequest replaces the permissions granted by a role
type SyncRolePermissionsRequest struct {
	Permissions []string `json:"permissions" binding:"required"`
}
