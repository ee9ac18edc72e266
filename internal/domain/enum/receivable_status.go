package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ReceivableStatus represents the collection status of an account receivable
type ReceivableStatus int

const (
	ReceivableStatusPending ReceivableStatus = 0
	ReceivableStatusPartial ReceivableStatus = 1
	ReceivableStatusPaid    ReceivableStatus = 2
)

var receivableStatusNames = [...]string{"pending", "partial", "paid"}

func (s ReceivableStatus) String() string {
	if s < 0 || int(s) >= len(receivableStatusNames) {
		return "unknown"
	}
	return receivableStatusNames[s]
}

// ParseReceivableStatus maps a wire name to its value.
func ParseReceivableStatus(str string) (ReceivableStatus, bool) {
	switch str {
	case "pending":
		return ReceivableStatusPending, true
	case "partial":
		return ReceivableStatusPartial, true
	case "paid":
		return ReceivableStatusPaid, true
	}
	return ReceivableStatusPending, false
}

func (s ReceivableStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *ReceivableStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = ReceivableStatus(i)
		return nil
	}
	v, ok := ParseReceivableStatus(str)
	if !ok {
		return fmt.Errorf("invalid receivableStatus %q", str)
	}
	*s = v
	return nil
}

func (s ReceivableStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *ReceivableStatus) Scan(value interface{}) error {
	if value == nil {
		*s = ReceivableStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = ReceivableStatus(v)
	case int32:
		*s = ReceivableStatus(v)
	case int:
		*s = ReceivableStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into ReceivableStatus", value)
	}
	return nil
}
