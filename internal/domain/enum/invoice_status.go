package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// InvoiceStatus represents whether an invoice has been stamped by the signing authority
type InvoiceStatus int

const (
	InvoiceStatusPending InvoiceStatus = 0
	InvoiceStatusSigned  InvoiceStatus = 1
)

var invoiceStatusNames = [...]string{"pending", "signed"}

func (s InvoiceStatus) String() string {
	if s < 0 || int(s) >= len(invoiceStatusNames) {
		return "unknown"
	}
	return invoiceStatusNames[s]
}

// ParseInvoiceStatus maps a wire name to its value.
func ParseInvoiceStatus(str string) (InvoiceStatus, bool) {
	switch str {
	case "pending":
		return InvoiceStatusPending, true
	case "signed":
		return InvoiceStatusSigned, true
	}
	return InvoiceStatusPending, false
}

func (s InvoiceStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *InvoiceStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = InvoiceStatus(i)
		return nil
	}
	v, ok := ParseInvoiceStatus(str)
	if !ok {
		return fmt.Errorf("invalid invoiceStatus %q", str)
	}
	*s = v
	return nil
}

func (s InvoiceStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *InvoiceStatus) Scan(value interface{}) error {
	if value == nil {
		*s = InvoiceStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = InvoiceStatus(v)
	case int32:
		*s = InvoiceStatus(v)
	case int:
		*s = InvoiceStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into InvoiceStatus", value)
	}
	return nil
}
