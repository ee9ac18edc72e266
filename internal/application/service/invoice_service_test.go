package service

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/application/authz"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/signing"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/storage"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func signed(uuid string) *signing.Result {
	return &signing.Result{
		SignatureID: "sig-" + uuid[:4],
		FiscalUUID:  uuid,
		CfdiSign:    "c2VsbG9kaWdpdGFsZGVsY2ZkaQ==",
		SatSign:     "c2VsbG9zYXQ=",
		XML:         []byte("<cfdi:Comprobante/>"),
	}
}

func TestIssueInvoice_SignsAndStoresArtifacts(t *testing.T) {
	e := newEnv(t)
	client := e.fiscalClient("Abarrotes El Sol")
	e.signer.On("Sign", mock.Anything, mock.Anything).Return(signed("6f1c2a3b-1111-4222-8333-944455556666"), nil).Once()

	inv, err := e.invoiceSvc.IssueInvoice(e.ctx(), &IssueInvoiceInput{ClientID: client.ID, Amount: decimal.RequireFromString("1160")})
	require.NoError(t, err)

	assert.Equal(t, "F-0001", inv.Folio)
	assert.Equal(t, "Servicios Profesionales - Ref: F-0001", inv.Description)
	assert.Equal(t, enum.InvoiceStatusSigned, inv.Status)
	assert.True(t, decimal.RequireFromString("1000").Equal(inv.TaxBase))
	assert.True(t, decimal.RequireFromString("160").Equal(inv.TaxAmount))
	assert.NotEmpty(t, inv.Snapshot)

	for _, ext := range []string{"xml", "png", "pdf"} {
		assert.True(t, e.files.Has(storage.InvoiceKey(e.tenant.ID, "F-0001", ext)), ext)
	}
	assert.Equal(t, storage.InvoiceKey(e.tenant.ID, "F-0001", "pdf"), e.invoices.invoices[inv.ID].PDFKey)

	doc := e.signer.Calls[0].Arguments.Get(1).(*signing.CFDIRequest)
	assert.Equal(t, "XAXX010101000", doc.Receiver.Rfc)
	assert.Equal(t, "ABARROTES EL SOL", doc.Receiver.Name)
	assert.Equal(t, testIssuer.ExpeditionPlace, doc.ExpeditionPlace)
}

func TestIssueInvoice_SigningFailureLeavesNoInvoice(t *testing.T) {
	e := newEnv(t)
	client := e.fiscalClient("Abarrotes El Sol")
	e.signer.On("Sign", mock.Anything, mock.Anything).
		Return(nil, &signing.APIError{StatusCode: 400, Message: "El RFC del receptor no existe"}).Once()
	e.signer.On("Sign", mock.Anything, mock.Anything).Return(signed("6f1c2a3b-1111-4222-8333-944455556666"), nil).Once()

	_, err := e.invoiceSvc.IssueInvoice(e.ctx(), &IssueInvoiceInput{ClientID: client.ID, Amount: decimal.NewFromInt(500)})
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	assert.Equal(t, http.StatusBadGateway, appErr.Code)
	assert.Contains(t, appErr.Message, "El RFC del receptor no existe")

	count, _ := e.invoices.Count(e.ctx())
	assert.Zero(t, count)

	// the folio of the failed attempt is issued again
	inv, err := e.invoiceSvc.IssueInvoice(e.ctx(), &IssueInvoiceInput{ClientID: client.ID, Amount: decimal.NewFromInt(500)})
	require.NoError(t, err)
	assert.Equal(t, "F-0001", inv.Folio)
}

func TestIssueInvoice_TransportErrorMessage(t *testing.T) {
	e := newEnv(t)
	client := e.fiscalClient("Abarrotes El Sol")
	e.signer.On("Sign", mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: connection refused"))

	_, err := e.invoiceSvc.IssueInvoice(e.ctx(), &IssueInvoiceInput{ClientID: client.ID, Amount: decimal.NewFromInt(500)})
	assert.Equal(t, "Invoice signing service unavailable", apperror.GetAppError(err).Message)
	assert.Empty(t, e.invoices.invoices)
}

func TestIssueInvoice_RequiresFiscalData(t *testing.T) {
	e := newEnv(t)
	client := e.fiscalClient("Abarrotes El Sol")
	client.TaxZipCode = ""

	_, err := e.invoiceSvc.IssueInvoice(e.ctx(), &IssueInvoiceInput{ClientID: client.ID, Amount: decimal.NewFromInt(500)})
	assert.True(t, apperror.HasCode(err, http.StatusUnprocessableEntity))
	assert.Contains(t, err.Error(), "tax_zip_code")
	e.signer.AssertNotCalled(t, "Sign", mock.Anything, mock.Anything)
}

func TestIssueInvoice_RejectsNonPositiveAmount(t *testing.T) {
	e := newEnv(t)
	client := e.fiscalClient("Abarrotes El Sol")

	_, err := e.invoiceSvc.IssueInvoice(e.ctx(), &IssueInvoiceInput{ClientID: client.ID, Amount: decimal.Zero})
	assert.Equal(t, "amount", apperror.GetAppError(err).Errors[0].Field)
}

func TestDeleteInvoice_SignedIsConflict(t *testing.T) {
	e := newEnv(t)
	client := e.fiscalClient("Abarrotes El Sol")
	e.signer.On("Sign", mock.Anything, mock.Anything).Return(signed("6f1c2a3b-1111-4222-8333-944455556666"), nil)

	inv, err := e.invoiceSvc.IssueInvoice(e.ctx(), &IssueInvoiceInput{ClientID: client.ID, Amount: decimal.NewFromInt(500)})
	require.NoError(t, err)

	err = e.invoiceSvc.DeleteInvoice(e.ctx(), inv.ID)
	assert.True(t, apperror.HasCode(err, http.StatusConflict))
}

func TestOpenArtifact_ReturnsStoredXML(t *testing.T) {
	e := newEnv(t)
	client := e.fiscalClient("Abarrotes El Sol")
	e.signer.On("Sign", mock.Anything, mock.Anything).Return(signed("6f1c2a3b-1111-4222-8333-944455556666"), nil)

	inv, err := e.invoiceSvc.IssueInvoice(e.ctx(), &IssueInvoiceInput{ClientID: client.ID, Amount: decimal.NewFromInt(500)})
	require.NoError(t, err)

	art, err := e.invoiceSvc.OpenArtifact(e.ctx(), inv.ID, ArtifactXML)
	require.NoError(t, err)
	defer art.Content.Close()
	body, err := io.ReadAll(art.Content)
	require.NoError(t, err)
	assert.Equal(t, "<cfdi:Comprobante/>", string(body))
	assert.Equal(t, "F-0001.xml", art.Filename)
}

// stampingServer stamps every document; the XML download fails until
// xmlReady is set.
func stampingServer(t *testing.T, xmlReady *atomic.Bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cfdis":
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"Id":"abc123","Complement":{"TaxStamp":{"Uuid":"6f1c2a3b-1111-4222-8333-944455556666","CfdiSign":"SEAL1234567890","SatSign":"SAT","Date":"2026-10-14T10:00:00"}}}`))
		case "/cfdi/xml/issued/abc123":
			if !xmlReady.Load() {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"Message":"temporarily unavailable"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{
				"ContentEncoding": "base64",
				"Content":         base64.StdEncoding.EncodeToString([]byte("<cfdi:Comprobante/>")),
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestIssueInvoice_StampedWithoutXMLStaysSigned(t *testing.T) {
	e := newEnv(t)
	client := e.fiscalClient("Abarrotes El Sol")
	var xmlReady atomic.Bool
	srv := stampingServer(t, &xmlReady)
	svc := e.invoiceServiceWith(signing.NewClient(signing.Config{BaseURL: srv.URL, Timeout: time.Second}))

	inv, err := svc.IssueInvoice(e.ctx(), &IssueInvoiceInput{ClientID: client.ID, Amount: decimal.NewFromInt(1160)})
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusSigned, inv.Status)
	assert.Equal(t, "6f1c2a3b-1111-4222-8333-944455556666", inv.FiscalUUID)

	stored := e.invoices.invoices[inv.ID]
	require.NotNil(t, stored, "a stamped invoice is never removed")
	assert.True(t, stored.IsSigned())
	assert.Empty(t, stored.XMLKey)
	assert.NotEmpty(t, stored.PDFKey)
	assert.NotEmpty(t, stored.QRKey)

	_, err = svc.OpenArtifact(e.ctx(), inv.ID, ArtifactXML)
	assert.True(t, apperror.HasCode(err, http.StatusBadGateway))

	// the XML is fetched again once the API serves it
	xmlReady.Store(true)
	art, err := svc.OpenArtifact(e.ctx(), inv.ID, ArtifactXML)
	require.NoError(t, err)
	defer art.Content.Close()
	body, err := io.ReadAll(art.Content)
	require.NoError(t, err)
	assert.Equal(t, "<cfdi:Comprobante/>", string(body))
	assert.Equal(t, storage.InvoiceKey(e.tenant.ID, "F-0001", "xml"), e.invoices.invoices[inv.ID].XMLKey)

	next, err := svc.IssueInvoice(e.ctx(), &IssueInvoiceInput{ClientID: client.ID, Amount: decimal.NewFromInt(580)})
	require.NoError(t, err)
	assert.Equal(t, "F-0002", next.Folio, "the stamped folio is not handed out again")
}

func TestIssueInvoice_UnrecordedStampStaysPending(t *testing.T) {
	e := newEnv(t)
	client := e.fiscalClient("Abarrotes El Sol")
	e.signer.On("Sign", mock.Anything, mock.Anything).Return(signed("6f1c2a3b-1111-4222-8333-944455556666"), nil).Once()
	e.invoices.markErr = errors.New("connection reset by peer")

	_, err := e.invoiceSvc.IssueInvoice(e.ctx(), &IssueInvoiceInput{ClientID: client.ID, Amount: decimal.NewFromInt(500)})
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	assert.Equal(t, http.StatusInternalServerError, appErr.Code)
	assert.Contains(t, appErr.Message, "6f1c2a3b-1111-4222-8333-944455556666")

	require.Len(t, e.invoices.invoices, 1)
	var pending *entity.Invoice
	for _, inv := range e.invoices.invoices {
		pending = inv
	}
	assert.Equal(t, enum.InvoiceStatusPending, pending.Status)

	err = e.invoiceSvc.DeleteInvoice(e.ctx(), pending.ID)
	assert.True(t, apperror.HasCode(err, http.StatusConflict))
	assert.Len(t, e.invoices.invoices, 1)

	superAdmin := e.ctxAs(&authz.Principal{UserID: uuid.New(), IsSuperAdmin: true})
	require.NoError(t, e.invoiceSvc.DeleteInvoice(superAdmin, pending.ID))
	assert.Empty(t, e.invoices.invoices)
}

func TestInvoiceReceivable_RefusesSecondInvoice(t *testing.T) {
	e := newEnv(t)
	r := e.receivable(e.fiscalClient("Abarrotes El Sol"), "1160.00")
	e.signer.On("Sign", mock.Anything, mock.Anything).Return(signed("6f1c2a3b-1111-4222-8333-944455556666"), nil)

	inv, err := e.invoiceSvc.InvoiceReceivable(e.ctx(), r.ID)
	require.NoError(t, err)
	require.NotNil(t, inv.ReceivableID)
	assert.Equal(t, r.ID, *inv.ReceivableID)

	_, err = e.invoiceSvc.InvoiceReceivable(e.ctx(), r.ID)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, http.StatusConflict))
	assert.Contains(t, err.Error(), inv.Folio)

	_, err = e.invoiceSvc.IssueInvoice(e.ctx(), &IssueInvoiceInput{ClientID: r.ClientID, ReceivableID: &r.ID, Amount: decimal.NewFromInt(100)})
	assert.True(t, apperror.HasCode(err, http.StatusConflict))

	e.signer.AssertNumberOfCalls(t, "Sign", 1)
	assert.Len(t, e.invoices.invoices, 1)
}

func TestIssueInvoice_ReceivableOfAnotherClient(t *testing.T) {
	e := newEnv(t)
	r := e.receivable(e.fiscalClient("Abarrotes El Sol"), "1160.00")
	other := e.fiscalClient("Ferretería Norte")

	_, err := e.invoiceSvc.IssueInvoice(e.ctx(), &IssueInvoiceInput{ClientID: other.ID, ReceivableID: &r.ID, Amount: decimal.NewFromInt(1160)})
	require.Error(t, err)
	assert.Equal(t, "receivable_id", apperror.GetAppError(err).Errors[0].Field)
	e.signer.AssertNotCalled(t, "Sign", mock.Anything, mock.Anything)
}
