package signing

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDoc() *CFDIRequest {
	d := func(s string) Amount { return Amount(decimal.RequireFromString(s)) }
	return &CFDIRequest{
		CfdiType:        CfdiTypeIncome,
		PaymentForm:     PaymentFormTransfer,
		PaymentMethod:   PaymentMethodSingle,
		Currency:        CurrencyMXN,
		ExpeditionPlace: "54948",
		Folio:           "F-0001",
		Receiver: Receiver{
			Rfc: "XAXX010101000", Name: "ACME SA DE CV", CfdiUse: CfdiUseNoTaxEffect,
			FiscalRegime: "601", TaxZipCode: "54948",
		},
		Items: []Item{{
			ProductCode: ProductCodeLegal, TaxObject: TaxObjectSubject,
			Description: "Servicios Profesionales - Ref: F-0001", UnitCode: UnitCodeActivity,
			Quantity: 1, UnitPrice: d("1000"), Subtotal: d("1000"), Discount: d("0"),
			Taxes: []Tax{{Total: d("160"), Name: TaxNameIVA, Base: d("1000"),
				Rate: Rate(decimal.RequireFromString("0.16"))}},
			Total: d("1160"),
		}},
	}
}

func TestSign_Success(t *testing.T) {
	xml := []byte("<cfdi:Comprobante/>")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "user", user)
		assert.Equal(t, "pass", pass)

		switch r.URL.Path {
		case "/cfdis":
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			raw, _ := io.ReadAll(r.Body)
			var body map[string]interface{}
			if assert.NoError(t, json.Unmarshal(raw, &body)) {
				item := body["Items"].([]interface{})[0].(map[string]interface{})
				assert.Equal(t, 1000.0, item["UnitPrice"])
			}
			assert.Contains(t, string(raw), `"Rate":0.160000`)

			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"Id":"abc123","Complement":{"TaxStamp":{"Uuid":"UUID-1","CfdiSign":"SEAL1234567890","SatSign":"SAT","Date":"2026-10-14T10:00:00"}}}`))
		case "/cfdi/xml/issued/abc123":
			_ = json.NewEncoder(w).Encode(map[string]string{
				"ContentEncoding": "base64",
				"Content":         base64.StdEncoding.EncodeToString(xml),
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL + "/", User: "user", Password: "pass", Timeout: time.Second})
	res, err := c.Sign(context.Background(), sampleDoc())
	require.NoError(t, err)

	assert.Equal(t, "abc123", res.SignatureID)
	assert.Equal(t, "UUID-1", res.FiscalUUID)
	assert.Equal(t, "SEAL1234567890", res.CfdiSign)
	assert.Equal(t, xml, res.XML)
	assert.Equal(t, 2026, res.StampedAt.Year())
}

func TestSign_StampedWithoutXMLIsStillSigned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cfdis":
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"Id":"abc123","Complement":{"TaxStamp":{"Uuid":"UUID-1","CfdiSign":"SEAL1234567890","SatSign":"SAT","Date":"2026-10-14T10:00:00"}}}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"Message":"temporarily unavailable"}`))
		}
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Timeout: time.Second})
	res, err := c.Sign(context.Background(), sampleDoc())
	require.NoError(t, err)
	assert.Equal(t, "abc123", res.SignatureID)
	assert.Equal(t, "UUID-1", res.FiscalUUID)
	assert.Empty(t, res.XML)

	_, err = c.DownloadXML(context.Background(), "abc123")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestSign_BadInlineContentIsStillSigned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"Id":"abc123","Content":"%%%","Complement":{"TaxStamp":{"Uuid":"UUID-1","Date":"2026-10-14T10:00:00"}}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Timeout: time.Second})
	res, err := c.Sign(context.Background(), sampleDoc())
	require.NoError(t, err)
	assert.Equal(t, "UUID-1", res.FiscalUUID)
	assert.Empty(t, res.XML)
}

func TestSign_RejectionMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"Message":"La solicitud no es válida.","ModelState":{"Receiver.Rfc":["RFC inválido"],"Items[0].Total":["Total incorrecto","otro"]}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Timeout: time.Second})
	_, err := c.Sign(context.Background(), sampleDoc())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "La solicitud no es válida. -> Items[0].Total: Total incorrecto, Receiver.Rfc: RFC inválido", apiErr.Message)
}

func TestSign_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond})
	_, err := c.Sign(context.Background(), sampleDoc())
	require.Error(t, err)
	_, isAPI := err.(*APIError)
	assert.False(t, isAPI, "transport failures are not API rejections")
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "Bad Gateway", ErrorMessage([]byte("Bad Gateway\n")))
	assert.Equal(t, "Sin timbres", ErrorMessage([]byte(`{"Message":"Sin timbres"}`)))
	assert.Equal(t, `{"Other":1}`, ErrorMessage([]byte(`{"Other":1}`)))
}

func TestVerificationURL(t *testing.T) {
	got := VerificationURL("UUID-1", "EKU9003173C9", "XAXX010101000", decimal.RequireFromString("1160"), "ABCD/+==")
	assert.Equal(t,
		"https://verificacfdi.facturaelectronica.sat.gob.mx/default.aspx?id=UUID-1&re=EKU9003173C9&rr=XAXX010101000&tt=1160.00&fe=ABCD%2F%2B%3D%3D",
		got)
}
