package signing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fixed catalog values for professional-services income invoices.
const (
	CfdiTypeIncome       = "I"
	PaymentFormTransfer  = "03"
	PaymentMethodSingle  = "PUE"
	CurrencyMXN          = "MXN"
	CfdiUseNoTaxEffect   = "S01"
	ProductCodeLegal     = "84111506"
	TaxObjectSubject     = "02"
	UnitCodeActivity     = "E48"
	TaxNameIVA           = "IVA"
	VerificationEndpoint = "https://verificacfdi.facturaelectronica.sat.gob.mx/default.aspx"
)

// Amount encodes a decimal as a bare JSON number with two decimals.
type Amount decimal.Decimal

// MarshalJSON implements json.Marshaler
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(a).StringFixed(2)), nil
}

// Rate encodes a tax rate as a bare JSON number with six decimals.
type Rate decimal.Decimal

// MarshalJSON implements json.Marshaler
func (r Rate) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(r).StringFixed(6)), nil
}

// CFDIRequest is the document submitted for signing
type CFDIRequest struct {
	CfdiType        string   `json:"CfdiType"`
	PaymentForm     string   `json:"PaymentForm"`
	PaymentMethod   string   `json:"PaymentMethod"`
	Currency        string   `json:"Currency"`
	ExpeditionPlace string   `json:"ExpeditionPlace"`
	Folio           string   `json:"Folio,omitempty"`
	Receiver        Receiver `json:"Receiver"`
	Items           []Item   `json:"Items"`
}

// Receiver is the client the invoice is issued to
type Receiver struct {
	Rfc          string `json:"Rfc"`
	Name         string `json:"Name"`
	CfdiUse      string `json:"CfdiUse"`
	FiscalRegime string `json:"FiscalRegime"`
	TaxZipCode   string `json:"TaxZipCode"`
}

// Item is an invoice concept
type Item struct {
	ProductCode string `json:"ProductCode"`
	TaxObject   string `json:"TaxObject"`
	Description string `json:"Description"`
	UnitCode    string `json:"UnitCode"`
	Quantity    int    `json:"Quantity"`
	UnitPrice   Amount `json:"UnitPrice"`
	Subtotal    Amount `json:"Subtotal"`
	Discount    Amount `json:"Discount"`
	Taxes       []Tax  `json:"Taxes"`
	Total       Amount `json:"Total"`
}

// Tax is a transferred or withheld tax of an item
type Tax struct {
	Total       Amount `json:"Total"`
	Name        string `json:"Name"`
	Base        Amount `json:"Base"`
	Rate        Rate   `json:"Rate"`
	IsRetention bool   `json:"IsRetention"`
}

// TaxStamp is the authority's digital stamp
type TaxStamp struct {
	Uuid     string `json:"Uuid"`
	CfdiSign string `json:"CfdiSign"`
	SatSign  string `json:"SatSign"`
	Date     string `json:"Date"`
}

// CFDIResponse is the body of a successful signing call
type CFDIResponse struct {
	Id         string `json:"Id"`
	Folio      string `json:"Folio"`
	Content    string `json:"Content,omitempty"`
	Complement struct {
		TaxStamp TaxStamp `json:"TaxStamp"`
	} `json:"Complement"`
}

// Stamp returns the tax stamp of the response.
func (r *CFDIResponse) Stamp() TaxStamp {
	return r.Complement.TaxStamp
}

// Result is what the invoice workflow needs from a signed document.
type Result struct {
	SignatureID string
	FiscalUUID  string
	CfdiSign    string
	SatSign     string
	StampedAt   time.Time
	XML         []byte
}

type fileResponse struct {
	ContentEncoding string `json:"ContentEncoding"`
	ContentType     string `json:"ContentType"`
	Content         string `json:"Content"`
}
