package service

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateClient_NormalizesAndProvisions(t *testing.T) {
	e := newEnv(t)

	c, err := e.clientSvc.CreateClient(e.ctx(), &ClientInput{
		CompanyName: strPtr("  Abarrotes El Sol "),
		Email:       strPtr("Compras@ElSol.MX"),
		RFC:         strPtr("xaxx010101000"),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Abarrotes El Sol", c.CompanyName)
	assert.Equal(t, "compras@elsol.mx", c.Email)
	assert.Equal(t, "XAXX010101000", c.RFC)
	assert.Len(t, e.folders.roots(c.ID), len(entity.RequirementCategories))
	assert.Len(t, e.activity.entries, 1)
	assert.Equal(t, 1, e.tx.calls)
}

func TestCreateClient_DuplicateNameIsConflict(t *testing.T) {
	e := newEnv(t)
	e.newClient(t, "Abarrotes El Sol")

	_, err := e.clientSvc.CreateClient(e.ctx(), &ClientInput{CompanyName: strPtr("abarrotes el sol")}, nil)
	assert.True(t, apperror.HasCode(err, http.StatusConflict))
}

func TestCreateClient_ValidatesExtraFields(t *testing.T) {
	e := newEnv(t)
	e.fields.defs = []entity.ClientFieldDefinition{
		{Key: "expediente", Label: "Expediente", Required: true},
		{Key: "giro", Label: "Giro"},
	}

	_, err := e.clientSvc.CreateClient(e.ctx(), &ClientInput{
		CompanyName: strPtr("Abarrotes El Sol"),
		ExtraFields: entity.ExtraFields{"zona": "norte", "color": "rojo", "giro": "comercio"},
	}, nil)
	require.Error(t, err)

	appErr := apperror.GetAppError(err)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Code)
	assert.Equal(t, []apperror.FieldError{
		{Field: "extra_fields.color", Message: "Unknown field"},
		{Field: "extra_fields.zona", Message: "Unknown field"},
		{Field: "extra_fields.expediente", Message: "Expediente is required"},
	}, appErr.Errors)
	assert.Empty(t, e.clients.clients)

	c, err := e.clientSvc.CreateClient(e.ctx(), &ClientInput{
		CompanyName: strPtr("Abarrotes El Sol"),
		ExtraFields: entity.ExtraFields{"expediente": "EXP-104"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "EXP-104", c.Extra()["expediente"])
}

func TestCreateClient_RequiresPermission(t *testing.T) {
	e := newEnv(t)
	ctx := e.ctxAs(member(entity.PermDocumentsView))

	_, err := e.clientSvc.CreateClient(ctx, &ClientInput{CompanyName: strPtr("Abarrotes El Sol")}, nil)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestUploadLogo_RejectsUnsupportedType(t *testing.T) {
	e := newEnv(t)
	c := e.newClient(t, "Abarrotes El Sol")

	_, err := e.clientSvc.UploadLogo(e.ctx(), c.ID, "logo.gif", "image/gif", bytes.NewReader([]byte("GIF89a")))
	assert.True(t, apperror.HasCode(err, http.StatusUnprocessableEntity))

	got, err := e.clientSvc.UploadLogo(e.ctx(), c.ID, "logo.png", "image/png", bytes.NewReader([]byte("\x89PNG")))
	require.NoError(t, err)
	assert.True(t, e.files.Has(got.LogoKey))
	assert.Equal(t, "mem://"+got.LogoKey, got.LogoURL)
}
