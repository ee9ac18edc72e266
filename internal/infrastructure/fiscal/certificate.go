// Package fiscal reads client tax data from SAT tax-status certificates
// (Constancia de Situación Fiscal).
package fiscal

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

// Data is what can be recovered from a certificate. Fields that were not
// found are left empty.
type Data struct {
	RFC        string `json:"rfc"`
	FiscalName string `json:"fiscal_name"`
	TaxZipCode string `json:"tax_zip_code"`
	Regime     string `json:"fiscal_regime"`
}

// Empty reports whether nothing could be extracted.
func (d Data) Empty() bool {
	return d == Data{}
}

var (
	rfcPattern = regexp.MustCompile(`RFC:?\s?([A-Z&Ñ]{3,4}\d{6}[A-Z0-9]{3})`)
	zipPattern = regexp.MustCompile(`Código Postal:?\s?(\d{5})`)
)

const nameLabel = "Denominación/Razón Social"

// Labels the certificate prints near the name that must never be taken for it.
var nameLabels = []string{"Régimen", "Capital", "Fecha", "Datos", "RFC"}

// First phrase found wins, so order matters.
var regimes = []struct {
	phrase string
	code   string
}{
	{"General de Ley", "601"},
	{"Personas Morales con Fines", "603"},
	{"Sueldos y Salarios", "605"},
	{"Arrendamiento", "606"},
	{"Actividades Empresariales", "612"},
	{"Incorporación Fiscal", "621"},
	{"Simplificado de Confianza", "626"},
	{"RESICO", "626"},
}

// ReadCertificate extracts the first page text of the PDF and parses it.
// Unreadable documents yield empty data rather than an error.
func ReadCertificate(content []byte) (data Data) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Interface("panic", r).Msg("fiscal certificate could not be parsed")
			data = Data{}
		}
	}()

	text, err := firstPageText(content)
	if err != nil {
		log.Warn().Err(err).Msg("fiscal certificate could not be read")
		return Data{}
	}
	return ParseText(text)
}

func firstPageText(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}
	if reader.NumPage() < 1 {
		return "", nil
	}
	page := reader.Page(1)
	if page.V.IsNull() {
		return "", nil
	}

	rows, err := page.GetTextByRow()
	if err != nil {
		return "", err
	}
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		var b strings.Builder
		for _, word := range row.Content {
			b.WriteString(word.S)
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n"), nil
}

// ParseText extracts the fiscal fields from the certificate text layer.
func ParseText(text string) Data {
	var data Data
	lines := strings.Split(text, "\n")

	if m := rfcPattern.FindStringSubmatch(text); m != nil {
		data.RFC = m[1]
	}
	data.FiscalName = fiscalName(lines)
	if m := zipPattern.FindStringSubmatch(text); m != nil {
		data.TaxZipCode = m[1]
	}

	flat := strings.Join(lines, " ")
	for _, r := range regimes {
		if strings.Contains(flat, r.phrase) {
			data.Regime = r.code
			break
		}
	}
	return data
}

func fiscalName(lines []string) string {
	for i, line := range lines {
		if !strings.Contains(line, nameLabel) {
			continue
		}

		var candidate string
		parts := strings.Split(line, ":")
		switch {
		case len(parts) > 1 && len(strings.TrimSpace(parts[1])) > 3:
			candidate = strings.TrimSpace(parts[1])
		case i+1 < len(lines):
			candidate = strings.TrimSpace(lines[i+1])
		}

		if isLabel(candidate) && i+2 < len(lines) {
			candidate = strings.TrimSpace(lines[i+2])
		}
		if isLabel(candidate) {
			return ""
		}
		return candidate
	}
	return ""
}

func isLabel(s string) bool {
	for _, l := range nameLabels {
		if strings.Contains(s, l) {
			return true
		}
	}
	return false
}
