package service

import (
	"net/http"
	"testing"
	"time"

	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate(t *testing.T) {
	out, unknown := RenderTemplate("Entre {{ firma.nombre }} y {{cliente.empresa}}, {{cliente.empresa}}.", map[string]string{
		"firma.nombre":    "Despacho Demo",
		"cliente.empresa": "Abarrotes El Sol",
	})
	assert.Equal(t, "Entre Despacho Demo y Abarrotes El Sol, Abarrotes El Sol.", out)
	assert.Empty(t, unknown)

	out, unknown = RenderTemplate("{{b}} {{a}} {{b}} {{ok}}", map[string]string{"ok": "1"})
	assert.Equal(t, []string{"a", "b"}, unknown)
	assert.Equal(t, "{{b}} {{a}} {{b}} 1", out)
}

func TestLongDate(t *testing.T) {
	assert.Equal(t, "14 de octubre de 2026", LongDate(time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1 de enero de 2027", LongDate(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestGenerateContract_StoresPDF(t *testing.T) {
	e := newEnv(t)
	e.contractSvc.now = func() time.Time { return time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC) }
	client := e.fiscalClient("Abarrotes El Sol")
	client.SetExtra(entity.ExtraFields{"expediente": "EXP-104"})

	tpl, err := e.contractSvc.CreateTemplate(e.ctx(), &TemplateInput{
		Name: "Prestación de servicios",
		Body: "{{firma.nombre}} y {{cliente.razon_social}} ({{cliente.rfc}}), expediente {{cliente.extra.expediente}}, a {{fecha}}. Monto: {{monto}}",
	})
	require.NoError(t, err)

	contract, err := e.contractSvc.GenerateContract(e.ctx(), &ContractInput{
		TemplateID: tpl.ID,
		ClientID:   client.ID,
		Variables:  map[string]string{"monto": "$10,000.00"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Despacho Demo y ABARROTES EL SOL (XAXX010101000), expediente EXP-104, a 14 de octubre de 2026. Monto: $10,000.00", contract.Body)
	assert.Equal(t, "Prestación de servicios - Abarrotes El Sol", contract.Title)
	assert.True(t, e.files.Has(contract.PDFKey))
	require.Len(t, e.renderer.contracts, 1)
	assert.Equal(t, contract.Body, e.renderer.contracts[0].Body)

	listed, err := e.contractSvc.ListContracts(e.ctx(), client.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	art, err := e.contractSvc.OpenContract(e.ctx(), contract.ID)
	require.NoError(t, err)
	art.Content.Close()
	assert.Equal(t, "application/pdf", art.ContentType)
}

func TestGenerateContract_UnknownPlaceholder(t *testing.T) {
	e := newEnv(t)
	client := e.fiscalClient("Abarrotes El Sol")
	tpl, err := e.contractSvc.CreateTemplate(e.ctx(), &TemplateInput{Name: "Poder", Body: "{{cliente.empresa}} {{notario}}"})
	require.NoError(t, err)

	_, err = e.contractSvc.GenerateContract(e.ctx(), &ContractInput{TemplateID: tpl.ID, ClientID: client.ID})
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Code)
	assert.Equal(t, "variables.notario", appErr.Errors[0].Field)
	assert.Empty(t, e.contracts.contracts)
	assert.Empty(t, e.renderer.contracts)
}

func TestContracts_RequirePermission(t *testing.T) {
	e := newEnv(t)
	_, err := e.contractSvc.ListTemplates(e.ctxAs(member(entity.PermClientsEdit)))
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}
