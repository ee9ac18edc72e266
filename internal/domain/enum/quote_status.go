package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// QuoteStatus represents the lifecycle status of a quote
type QuoteStatus int

const (
	QuoteStatusDraft     QuoteStatus = 0
	QuoteStatusSent      QuoteStatus = 1
	QuoteStatusApproved  QuoteStatus = 2
	QuoteStatusRejected  QuoteStatus = 3
	QuoteStatusConverted QuoteStatus = 4
)

var quoteStatusNames = [...]string{"draft", "sent", "approved", "rejected", "converted"}

func (s QuoteStatus) String() string {
	if s < 0 || int(s) >= len(quoteStatusNames) {
		return "unknown"
	}
	return quoteStatusNames[s]
}

// IsValid reports whether s is a known status.
func (s QuoteStatus) IsValid() bool {
	return s >= 0 && int(s) < len(quoteStatusNames)
}

// ParseQuoteStatus maps a wire name to its value.
func ParseQuoteStatus(str string) (QuoteStatus, bool) {
	switch str {
	case "draft":
		return QuoteStatusDraft, true
	case "sent":
		return QuoteStatusSent, true
	case "approved":
		return QuoteStatusApproved, true
	case "rejected":
		return QuoteStatusRejected, true
	case "converted":
		return QuoteStatusConverted, true
	}
	return QuoteStatusDraft, false
}

func (s QuoteStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *QuoteStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = QuoteStatus(i)
		return nil
	}
	v, ok := ParseQuoteStatus(str)
	if !ok {
		return fmt.Errorf("invalid quoteStatus %q", str)
	}
	*s = v
	return nil
}

func (s QuoteStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *QuoteStatus) Scan(value interface{}) error {
	if value == nil {
		*s = QuoteStatusDraft
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = QuoteStatus(v)
	case int32:
		*s = QuoteStatus(v)
	case int:
		*s = QuoteStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into QuoteStatus", value)
	}
	return nil
}
