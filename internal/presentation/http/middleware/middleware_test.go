package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sangkips/lexdesk-api/internal/application/authz"
	"github.com/sangkips/lexdesk-api/internal/config"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/repository"
	infraRepo "github.com/sangkips/lexdesk-api/internal/infrastructure/repository"
	"github.com/sangkips/lexdesk-api/pkg/logger"
	"github.com/sangkips/lexdesk-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestExtractTenantFromHost(t *testing.T) {
	slug, err := ExtractTenantFromHost("acme.lexdesk.mx:8080")
	require.NoError(t, err)
	assert.Equal(t, "acme", slug)

	_, err = ExtractTenantFromHost("localhost:8080")
	assert.Error(t, err)
}

func TestAuthMiddleware_SetsPrincipal(t *testing.T) {
	jwt := utils.NewJWTManager("secret", time.Minute, time.Hour)
	userID := uuid.New()
	token, err := jwt.GenerateAccessToken(userID, "ana@despacho.mx", []string{entity.RoleSenior}, []string{entity.PermQuotesManage}, false)
	require.NoError(t, err)

	var got *authz.Principal
	r := gin.New()
	r.GET("/me", AuthMiddleware(jwt), func(c *gin.Context) {
		got, _ = authz.FromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, userID, got.UserID)
	assert.True(t, got.HasPermission(entity.PermQuotesManage))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequirePermission(t *testing.T) {
	handler := func(p *authz.Principal) int {
		r := gin.New()
		r.GET("/", func(c *gin.Context) {
			c.Request = c.Request.WithContext(authz.WithPrincipal(c.Request.Context(), p))
		}, RequirePermission(entity.PermUsersManage), func(c *gin.Context) { c.Status(http.StatusOK) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		return w.Code
	}

	assert.Equal(t, http.StatusForbidden, handler(&authz.Principal{UserID: uuid.New(), Roles: []string{entity.RoleJunior}}))
	assert.Equal(t, http.StatusOK, handler(&authz.Principal{UserID: uuid.New(), Roles: []string{entity.RoleAdmin}}))
	assert.Equal(t, http.StatusOK, handler(&authz.Principal{UserID: uuid.New(), Permissions: []string{entity.PermUsersManage}}))
}

type stubTenants struct {
	repository.TenantRepository
	tenant  *entity.Tenant
	members map[uuid.UUID]bool
}

func (s *stubTenants) GetBySlug(_ context.Context, slug string) (*entity.Tenant, error) {
	if s.tenant != nil && s.tenant.Slug == slug {
		return s.tenant, nil
	}
	return nil, nil
}

func (s *stubTenants) IsMember(_ context.Context, _, userID uuid.UUID) (bool, error) {
	return s.members[userID], nil
}

func TestTenantMiddleware(t *testing.T) {
	member, outsider := uuid.New(), uuid.New()
	tenants := &stubTenants{
		tenant:  &entity.Tenant{ID: uuid.New(), Slug: "garcia", IsActive: true},
		members: map[uuid.UUID]bool{member: true},
	}

	call := func(userID uuid.UUID, header string) (int, uuid.UUID) {
		var scoped uuid.UUID
		r := gin.New()
		r.GET("/", func(c *gin.Context) {
			c.Request = c.Request.WithContext(authz.WithPrincipal(c.Request.Context(), &authz.Principal{UserID: userID}))
		}, TenantMiddleware(tenants), func(c *gin.Context) {
			scoped, _ = infraRepo.GetTenantID(c.Request.Context())
			c.Status(http.StatusOK)
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(TenantHeader, header)
		r.ServeHTTP(w, req)
		return w.Code, scoped
	}

	code, scoped := call(member, "Garcia")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, tenants.tenant.ID, scoped)

	code, _ = call(outsider, "garcia")
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = call(member, "unknown")
	assert.Equal(t, http.StatusNotFound, code)
}

type memIdempotency struct {
	keys map[string]*entity.IdempotencyKey
}

func (m *memIdempotency) Get(_ context.Context, tenantID, userID uuid.UUID, key string) (*entity.IdempotencyKey, error) {
	return m.keys[tenantID.String()+userID.String()+key], nil
}

func (m *memIdempotency) Create(_ context.Context, k *entity.IdempotencyKey) error {
	m.keys[k.TenantID.String()+k.UserID.String()+k.Key] = k
	return nil
}

func (m *memIdempotency) DeleteExpired(context.Context) (int64, error) { return 0, nil }

func TestIdempotency_ReplaysResponse(t *testing.T) {
	repo := &memIdempotency{keys: map[string]*entity.IdempotencyKey{}}
	userID := uuid.New()
	calls := 0

	r := gin.New()
	r.POST("/pay", func(c *gin.Context) {
		c.Request = c.Request.WithContext(authz.WithPrincipal(c.Request.Context(), &authz.Principal{UserID: userID}))
	}, Idempotency(repo), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"calls": calls})
	})

	send := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/pay", strings.NewReader(body))
		req.Header.Set(IdempotencyKeyHeader, "abc")
		r.ServeHTTP(w, req)
		return w
	}

	first := send(`{"amount":"100"}`)
	second := send(`{"amount":"100"}`)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, 1, calls)

	assert.Equal(t, http.StatusConflict, send(`{"amount":"200"}`).Code)
}

func TestRateLimiter_PerIP(t *testing.T) {
	rl := newRateLimiter(RateLimiterConfig{RequestsPerSecond: 0.001, BurstSize: 1, EntryTTL: time.Minute})
	r := gin.New()
	r.GET("/", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(ip string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, hit("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1"))
	assert.Equal(t, http.StatusOK, hit("10.0.0.2"))

	rl.now = func() time.Time { return time.Now().Add(time.Hour) }
	rl.cleanup()
	assert.Empty(t, rl.limiters)
}

func TestRateLimiter_LogsThroughRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	rl := newRateLimiter(RateLimiterConfig{RequestsPerSecond: 0.001, BurstSize: 1, EntryTTL: time.Minute})
	r := gin.New()
	r.Use(func(c *gin.Context) {
		l := zerolog.New(&buf).With().Str("request_id", "req-1").Logger()
		c.Request = c.Request.WithContext(logger.IntoContext(c.Request.Context(), l))
	})
	r.GET("/", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for range 2 {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	assert.Contains(t, buf.String(), "rate limit exceeded")
}

func TestCORSConfig_AlwaysAllowsTenantHeaders(t *testing.T) {
	cc := corsConfig(&config.CORSConfig{AllowedHeaders: []string{"Authorization"}})
	assert.Equal(t, []string{"Authorization", TenantHeader, IdempotencyKeyHeader}, cc.AllowHeaders)
	assert.Contains(t, cc.ExposeHeaders, "Content-Disposition")
	assert.True(t, cc.AllowCredentials)

	wild := corsConfig(&config.CORSConfig{AllowedOrigins: []string{"*"}})
	assert.False(t, wild.AllowCredentials)
	assert.Contains(t, wild.AllowHeaders, IdempotencyKeyHeader)
}
