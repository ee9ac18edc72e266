package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var firm = FirmView{Name: "Gestiones Corporativas", RFC: "EKU9003173C9", Regime: "601"}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$0.00", Money(decimal.Zero))
	assert.Equal(t, "$999.50", Money(decimal.RequireFromString("999.5")))
	assert.Equal(t, "$1,160.00", Money(decimal.RequireFromString("1160")))
	assert.Equal(t, "$1,234,567.89", Money(decimal.RequireFromString("1234567.891")))
	assert.Equal(t, "-$100.00", Money(decimal.RequireFromString("-100")))
}

func TestQuotePDF(t *testing.T) {
	out, err := NewPDF().Quote(QuoteView{
		Firm:     firm,
		Prospect: PartyView{Name: "Comercializadora Ñandú", Email: "a@b.mx"},
		Number:   "COT-202610-0001",
		Date:     time.Now(),
		Items: []LineView{{Description: "Licencia de funcionamiento", Quantity: 1,
			UnitPrice: decimal.NewFromInt(1000), Amount: decimal.NewFromInt(1000)}},
		Subtotal:        decimal.NewFromInt(1000),
		DiscountPercent: decimal.NewFromInt(10),
		DiscountAmount:  decimal.NewFromInt(100),
		Total:           decimal.NewFromInt(900),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestInvoicePDFWithQR(t *testing.T) {
	qr, err := QRCode("https://verificacfdi.facturaelectronica.sat.gob.mx/default.aspx?id=x", 256)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(qr, []byte("\x89PNG")))

	out, err := NewPDF().Invoice(InvoiceView{
		Firm:        firm,
		Receiver:    PartyView{Name: "ACME", RFC: "XAXX010101000", Regime: "601", ZipCode: "54948"},
		Folio:       "F-0001",
		FiscalUUID:  "UUID-1",
		SignedAt:    time.Now(),
		Description: "Servicios Profesionales - Ref: F-0001",
		ListPrice:   decimal.NewFromInt(1000),
		TaxBase:     decimal.NewFromInt(1000),
		TaxRate:     decimal.RequireFromString("0.16"),
		TaxAmount:   decimal.NewFromInt(160),
		Total:       decimal.NewFromInt(1160),
		CfdiSign:    "SEAL",
		SatSign:     "SAT",
		QRPNG:       qr,
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestReceiptAndContractPDF(t *testing.T) {
	r := NewPDF()
	out, err := r.Receipt(ReceiptView{Firm: firm, Client: PartyView{Name: "ACME"}, Amount: decimal.NewFromInt(450),
		Total: decimal.NewFromInt(900), Paid: decimal.NewFromInt(450), Balance: decimal.NewFromInt(450), PaidAt: time.Now()})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	out, err = r.Contract(ContractView{Firm: firm, Title: "Contrato de prestación de servicios",
		Body: "PRIMERA. Objeto.\n\nSEGUNDA. Honorarios.", Date: time.Now()})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
