package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/lexdesk-api/internal/presentation/http/dto/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidation()
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

func do(r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestBindJSON_ReportsFieldNames(t *testing.T) {
	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var req request.PaymentRequest
		if bindJSON(c, &req) {
			c.Status(http.StatusOK)
		}
	})

	w, env := do(r, http.MethodPost, "/", `{"method":"bitcoin"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.False(t, env.Success)

	fields := map[string]string{}
	for _, e := range env.Errors {
		fields[e.Field] = e.Message
	}
	assert.Equal(t, "This field is required", fields["amount"])
	assert.Contains(t, fields["method"], "transferencia")
}

func TestBindJSON_MalformedBody(t *testing.T) {
	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var req request.PaymentRequest
		bindJSON(c, &req)
	})

	w, _ := do(r, http.MethodPost, "/", `{"amount":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParamUUID(t *testing.T) {
	r := gin.New()
	r.GET("/clients/:id", func(c *gin.Context) {
		if _, ok := paramUUID(c, "id"); ok {
			c.Status(http.StatusOK)
		}
	})

	w, env := do(r, http.MethodGet, "/clients/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid id ID", env.Message)

	w, _ = do(r, http.MethodGet, "/clients/6f1c1b7e-3d7a-4a53-9a8e-2c1c2f0f4b11", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestQueryTime(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		if v, ok := queryTime(c, "from"); ok {
			c.String(http.StatusOK, v.Format("2006-01-02"))
		}
	})

	w, _ := do(r, http.MethodGet, "/?from=2026-03-01", "")
	assert.Equal(t, "2026-03-01", w.Body.String())

	w, _ = do(r, http.MethodGet, "/?from=2026-03-01T10:00:00Z", "")
	assert.Equal(t, "2026-03-01", w.Body.String())

	w, _ = do(r, http.MethodGet, "/?from=marzo", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPageParams_Defaults(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		p := pageParams(c)
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, 15, p.PerPage)
		c.Status(http.StatusOK)
	})
	do(r, http.MethodGet, "/?page=0&per_page=abc", "")
}

func TestIssueInvoice_RequiresAmountWithoutReceivable(t *testing.T) {
	h := &FinanceHandler{}
	r := gin.New()
	r.POST("/invoices", h.IssueInvoice)

	w, env := do(r, http.MethodPost, "/invoices", `{"client_id":"6f1c1b7e-3d7a-4a53-9a8e-2c1c2f0f4b11"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "amount", env.Errors[0].Field)
}

func TestQuoteChangeStatus_RejectsConverted(t *testing.T) {
	h := &QuoteHandler{}
	r := gin.New()
	r.PATCH("/quotes/:id/status", h.ChangeStatus)

	// conversion only happens through the convert endpoint
	w, env := do(r, http.MethodPatch, "/quotes/6f1c1b7e-3d7a-4a53-9a8e-2c1c2f0f4b11/status", `{"status":"converted"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "status", env.Errors[0].Field)
}

func TestCalendar_RejectsInvertedRange(t *testing.T) {
	h := &AgendaHandler{}
	r := gin.New()
	r.GET("/events/calendar", h.Calendar)

	w, _ := do(r, http.MethodGet, "/events/calendar?start=2026-03-10&end=2026-03-01", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
