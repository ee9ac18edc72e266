package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
)

const (
	fontFamily = "Helvetica"
	pageWidth  = 190.0
	dateLayout = "02/01/2006"
)

// PDF renders documents with fpdf. It is stateless and safe for concurrent use.
type PDF struct{}

// NewPDF creates a renderer
func NewPDF() *PDF {
	return &PDF{}
}

type doc struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newDoc(title string) *doc {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetTitle(title, true)
	pdf.SetMargins(13, 15, 13)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	return &doc{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (d *doc) header(firm FirmView, title, number string) {
	d.pdf.SetFont(fontFamily, "B", 14)
	d.pdf.CellFormat(pageWidth*0.6, 8, d.tr(firm.Name), "", 0, "L", false, 0, "")
	d.pdf.SetFont(fontFamily, "B", 12)
	d.pdf.CellFormat(pageWidth*0.4, 8, d.tr(title), "", 1, "R", false, 0, "")

	d.pdf.SetFont(fontFamily, "", 9)
	if firm.RFC != "" {
		d.pdf.CellFormat(pageWidth*0.6, 5, "RFC: "+firm.RFC, "", 0, "L", false, 0, "")
	} else {
		d.pdf.CellFormat(pageWidth*0.6, 5, "", "", 0, "L", false, 0, "")
	}
	d.pdf.CellFormat(pageWidth*0.4, 5, d.tr(number), "", 1, "R", false, 0, "")
	if firm.Address != "" {
		d.pdf.CellFormat(pageWidth, 5, d.tr(firm.Address), "", 1, "L", false, 0, "")
	}
	d.pdf.Ln(4)
}

func (d *doc) label(label, value string) {
	if value == "" {
		return
	}
	d.pdf.SetFont(fontFamily, "B", 9)
	d.pdf.CellFormat(35, 5, d.tr(label), "", 0, "L", false, 0, "")
	d.pdf.SetFont(fontFamily, "", 9)
	d.pdf.CellFormat(pageWidth-35, 5, d.tr(value), "", 1, "L", false, 0, "")
}

func (d *doc) table(lines []LineView) {
	widths := []float64{100, 20, 35, 35}
	headers := []string{"Concepto", "Cant.", "P. Unitario", "Importe"}

	d.pdf.SetFont(fontFamily, "B", 9)
	d.pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		d.pdf.CellFormat(widths[i], 7, d.tr(h), "1", 0, "C", true, 0, "")
	}
	d.pdf.Ln(-1)

	d.pdf.SetFont(fontFamily, "", 9)
	for _, l := range lines {
		d.pdf.CellFormat(widths[0], 6, d.tr(truncate(l.Description, 60)), "1", 0, "L", false, 0, "")
		d.pdf.CellFormat(widths[1], 6, fmt.Sprintf("%d", l.Quantity), "1", 0, "C", false, 0, "")
		d.pdf.CellFormat(widths[2], 6, Money(l.UnitPrice), "1", 0, "R", false, 0, "")
		d.pdf.CellFormat(widths[3], 6, Money(l.Amount), "1", 1, "R", false, 0, "")
	}
}

func (d *doc) total(label string, amount decimal.Decimal, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	d.pdf.SetFont(fontFamily, style, 10)
	d.pdf.CellFormat(pageWidth-35, 6, d.tr(label), "", 0, "R", false, 0, "")
	d.pdf.CellFormat(35, 6, Money(amount), "", 1, "R", false, 0, "")
}

func (d *doc) paragraph(text string) {
	d.pdf.SetFont(fontFamily, "", 10)
	d.pdf.MultiCell(pageWidth, 5, d.tr(text), "", "J", false)
}

func (d *doc) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Quote renders a quote.
func (r *PDF) Quote(v QuoteView) ([]byte, error) {
	d := newDoc("Cotización " + v.Number)
	d.header(v.Firm, "COTIZACIÓN", v.Number)

	d.label("Fecha:", v.Date.Format(dateLayout))
	if v.ValidUntil != nil {
		d.label("Vigencia:", v.ValidUntil.Format(dateLayout))
	}
	d.label("Empresa:", v.Prospect.Name)
	d.label("Atención:", v.Prospect.Contact)
	d.label("Correo:", v.Prospect.Email)
	d.pdf.Ln(4)

	d.table(v.Items)
	d.pdf.Ln(2)
	d.total("Subtotal", v.Subtotal, false)
	if v.DiscountAmount.IsPositive() {
		d.total(fmt.Sprintf("Descuento (%s%%)", v.DiscountPercent.StringFixed(2)), v.DiscountAmount.Neg(), false)
	}
	d.total("Total", v.Total, true)

	if v.Notes != "" {
		d.pdf.Ln(6)
		d.paragraph(v.Notes)
	}
	return d.bytes()
}

// Invoice renders the printed form of a signed invoice, QR included.
func (r *PDF) Invoice(v InvoiceView) ([]byte, error) {
	d := newDoc("Factura " + v.Folio)
	d.header(v.Firm, "FACTURA", v.Folio)

	d.label("Folio fiscal:", v.FiscalUUID)
	d.label("Fecha:", v.SignedAt.Format("02/01/2006 15:04"))
	d.label("Régimen emisor:", v.Firm.Regime)
	d.pdf.Ln(2)
	d.label("Receptor:", v.Receiver.Name)
	d.label("RFC:", v.Receiver.RFC)
	d.label("Régimen:", v.Receiver.Regime)
	d.label("C.P.:", v.Receiver.ZipCode)
	d.pdf.Ln(4)

	d.table([]LineView{{Description: v.Description, Quantity: 1, UnitPrice: v.ListPrice, Amount: v.ListPrice}})
	d.pdf.Ln(2)
	d.total("Subtotal", v.ListPrice, false)
	if v.Discount.IsPositive() {
		d.total("Descuento", v.Discount.Neg(), false)
	}
	d.total(fmt.Sprintf("IVA %s%%", v.TaxRate.Mul(decimal.NewFromInt(100)).StringFixed(0)), v.TaxAmount, false)
	d.total("Total", v.Total, true)

	if len(v.QRPNG) > 0 {
		d.pdf.RegisterImageOptionsReader("qr", fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(v.QRPNG))
		y := d.pdf.GetY() + 6
		d.pdf.ImageOptions("qr", 13, y, 35, 35, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		d.pdf.SetXY(52, y)
	} else {
		d.pdf.Ln(6)
	}

	d.pdf.SetFont(fontFamily, "B", 7)
	d.pdf.CellFormat(0, 4, "Sello digital del CFDI:", "", 1, "L", false, 0, "")
	d.pdf.SetX(d.pdf.GetX() + 39)
	d.pdf.SetFont(fontFamily, "", 6)
	d.pdf.MultiCell(pageWidth-39, 3, v.CfdiSign, "", "L", false)
	d.pdf.SetX(52)
	d.pdf.SetFont(fontFamily, "B", 7)
	d.pdf.CellFormat(0, 4, "Sello del SAT:", "", 1, "L", false, 0, "")
	d.pdf.SetX(52)
	d.pdf.SetFont(fontFamily, "", 6)
	d.pdf.MultiCell(pageWidth-39, 3, v.SatSign, "", "L", false)

	d.pdf.Ln(4)
	d.pdf.SetFont(fontFamily, "I", 7)
	d.pdf.CellFormat(pageWidth, 4, d.tr("Este documento es una representación impresa de un CFDI."), "", 1, "C", false, 0, "")
	return d.bytes()
}

// Receipt renders a payment receipt.
func (r *PDF) Receipt(v ReceiptView) ([]byte, error) {
	d := newDoc("Recibo de pago " + v.Number)
	d.header(v.Firm, "RECIBO DE PAGO", v.Number)

	d.label("Cliente:", v.Client.Name)
	d.label("Concepto:", v.Concept)
	d.label("Fecha de pago:", v.PaidAt.Format(dateLayout))
	d.label("Método:", v.Method)
	d.label("Referencia:", v.Reference)
	d.pdf.Ln(4)

	d.total("Importe recibido", v.Amount, true)
	d.pdf.Ln(2)
	d.total("Total de la cuenta", v.Total, false)
	d.total("Pagado a la fecha", v.Paid, false)
	d.total("Saldo pendiente", v.Balance, true)
	return d.bytes()
}

// Contract renders a contract body as paragraphs.
func (r *PDF) Contract(v ContractView) ([]byte, error) {
	d := newDoc(v.Title)
	d.header(v.Firm, "CONTRATO", v.Date.Format(dateLayout))

	d.pdf.SetFont(fontFamily, "B", 12)
	d.pdf.MultiCell(pageWidth, 7, d.tr(v.Title), "", "C", false)
	d.pdf.Ln(4)
	for _, para := range strings.Split(strings.ReplaceAll(v.Body, "\r\n", "\n"), "\n\n") {
		d.paragraph(strings.TrimSpace(para))
		d.pdf.Ln(3)
	}
	return d.bytes()
}

// QRCode encodes content as a PNG of size×size pixels.
func QRCode(content string, size int) ([]byte, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("render qr: %w", err)
	}
	return png, nil
}

// Money formats an amount as $1,234.56.
func Money(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	s := d.StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return sign + "$" + b.String() + frac
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
