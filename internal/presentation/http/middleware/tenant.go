package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/application/authz"
	"github.com/sangkips/lexdesk-api/internal/domain/repository"
	infraRepo "github.com/sangkips/lexdesk-api/internal/infrastructure/repository"
	"github.com/sangkips/lexdesk-api/internal/presentation/http/dto/response"
	"github.com/sangkips/lexdesk-api/pkg/logger"
)

// TenantHeader selects the firm when the API is not reached through its subdomain
const TenantHeader = "X-Tenant"

// ExtractTenantFromHost extracts tenant slug from subdomain
// e.g., "acme.lexdesk.mx" -> "acme"
func ExtractTenantFromHost(host string) (string, error) {
	// Remove port if present
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}

	parts := strings.Split(host, ".")
	if len(parts) < 3 {
		return "", errors.New("invalid subdomain")
	}
	return parts[0], nil
}

func tenantSlug(c *gin.Context) string {
	if slug := strings.TrimSpace(c.GetHeader(TenantHeader)); slug != "" {
		return strings.ToLower(slug)
	}
	slug, err := ExtractTenantFromHost(c.Request.Host)
	if err != nil {
		return ""
	}
	return slug
}

// TenantMiddleware resolves the firm from the X-Tenant header or the
// subdomain, checks the caller belongs to it and scopes the request context.
// Requests without a tenant continue unscoped; RequireTenant rejects them
// where a firm is mandatory.
func TenantMiddleware(tenantRepo repository.TenantRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := tenantSlug(c)
		if slug == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		tenant, err := tenantRepo.GetBySlug(ctx, slug)
		if err != nil || tenant == nil || !tenant.IsActive {
			response.NotFound(c, "Tenant not found")
			c.Abort()
			return
		}

		if p, ok := authz.FromContext(ctx); ok && !p.IsSuperAdmin {
			isMember, err := tenantRepo.IsMember(ctx, tenant.ID, p.UserID)
			if err != nil || !isMember {
				response.Forbidden(c, "Access denied to this tenant")
				c.Abort()
				return
			}
		}

		c.Set("tenant_id", tenant.ID)
		c.Set("tenant", tenant)

		ctx = infraRepo.WithTenant(ctx, tenant.ID)
		l := logger.FromContext(ctx).With().Str("tenant_id", tenant.ID.String()).Logger()
		c.Request = c.Request.WithContext(logger.IntoContext(ctx, l))

		c.Next()
	}
}

// RequireTenant ensures a valid tenant context exists
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetTenantID(c) == uuid.Nil {
			response.BadRequest(c, "Tenant context required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetTenantID retrieves the tenant ID from gin context
func GetTenantID(c *gin.Context) uuid.UUID {
	tenantID, exists := c.Get("tenant_id")
	if !exists {
		return uuid.Nil
	}
	id, ok := tenantID.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}
