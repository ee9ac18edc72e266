package fiscal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseText_SameLineName(t *testing.T) {
	text := "CÉDULA DE IDENTIFICACIÓN FISCAL\n" +
		"RFC: EKU9003173C9\n" +
		"Denominación/Razón Social: ESCUELA KEMPER URGATE\n" +
		"Código Postal:42501\n" +
		"Régimen General de Ley Personas Morales"

	got := ParseText(text)
	assert.Equal(t, Data{
		RFC:        "EKU9003173C9",
		FiscalName: "ESCUELA KEMPER URGATE",
		TaxZipCode: "42501",
		Regime:     "601",
	}, got)
}

func TestParseText_NameOnNextLine(t *testing.T) {
	text := "Denominación/Razón Social:\nCOMERCIALIZADORA DEL NORTE\nRFC CNO200101AB1"
	got := ParseText(text)
	assert.Equal(t, "COMERCIALIZADORA DEL NORTE", got.FiscalName)
	assert.Equal(t, "CNO200101AB1", got.RFC)
}

func TestParseText_SkipsLabelCandidate(t *testing.T) {
	text := "Denominación/Razón Social:\nRégimen Capital:\nSERVICIOS LEGALES SC"
	assert.Equal(t, "SERVICIOS LEGALES SC", ParseText(text).FiscalName)

	text = "Denominación/Razón Social:\nRégimen Capital:\nFecha inicio de operaciones"
	assert.Empty(t, ParseText(text).FiscalName)
}

func TestParseText_RegimeOrder(t *testing.T) {
	assert.Equal(t, "626", ParseText("Régimen Simplificado de Confianza").Regime)
	assert.Equal(t, "612", ParseText("Régimen de las Personas Físicas con Actividades Empresariales").Regime)
	// both phrases present: the first in the table wins
	assert.Equal(t, "605", ParseText("Sueldos y Salarios e Ingresos Asimilados\nArrendamiento").Regime)
}

func TestReadCertificate_Unreadable(t *testing.T) {
	assert.True(t, ReadCertificate([]byte("not a pdf")).Empty())
	assert.True(t, ReadCertificate(nil).Empty())
}
