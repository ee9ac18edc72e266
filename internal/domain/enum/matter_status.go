package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// MatterStatus represents the status of a matter (expediente)
type MatterStatus int

const (
	MatterStatusOpen       MatterStatus = 0
	MatterStatusInProgress MatterStatus = 1
	MatterStatusClosed     MatterStatus = 2
)

var matterStatusNames = [...]string{"abierto", "en_proceso", "cerrado"}

func (s MatterStatus) String() string {
	if s < 0 || int(s) >= len(matterStatusNames) {
		return "unknown"
	}
	return matterStatusNames[s]
}

// ParseMatterStatus maps a wire name to its value.
func ParseMatterStatus(str string) (MatterStatus, bool) {
	switch str {
	case "abierto":
		return MatterStatusOpen, true
	case "en_proceso":
		return MatterStatusInProgress, true
	case "cerrado":
		return MatterStatusClosed, true
	}
	return MatterStatusOpen, false
}

func (s MatterStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *MatterStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = MatterStatus(i)
		return nil
	}
	v, ok := ParseMatterStatus(str)
	if !ok {
		return fmt.Errorf("invalid matterStatus %q", str)
	}
	*s = v
	return nil
}

func (s MatterStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *MatterStatus) Scan(value interface{}) error {
	if value == nil {
		*s = MatterStatusOpen
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = MatterStatus(v)
	case int32:
		*s = MatterStatus(v)
	case int:
		*s = MatterStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into MatterStatus", value)
	}
	return nil
}
