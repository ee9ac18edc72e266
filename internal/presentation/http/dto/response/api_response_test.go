package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestError_AttachesUpstreamCause(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/invoices", nil)
	c.Set(requestIDKey, "req-1")

	cause := errors.New("dial tcp: timeout")
	Error(c, apperror.NewExternalError("Invoice signing failed", cause))

	require.Equal(t, http.StatusBadGateway, w.Code)
	require.Len(t, c.Errors, 1)
	assert.ErrorIs(t, c.Errors[0].Err, cause)

	var body APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Invoice signing failed", body.Message)
	assert.Equal(t, "req-1", body.Meta.RequestID)
}

func TestError_ClientErrorsStayOutOfLog(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/clients/x", nil)

	Error(c, apperror.NewFieldError("rfc", "Invalid RFC"))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Empty(t, c.Errors)
	assert.Contains(t, w.Body.String(), `"field":"rfc"`)
}
