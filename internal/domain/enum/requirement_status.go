package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// RequirementStatus represents the checklist state of a client requirement
type RequirementStatus int

const (
	RequirementStatusPending  RequirementStatus = 0
	RequirementStatusInReview RequirementStatus = 1
	RequirementStatusApproved RequirementStatus = 2
)

var requirementStatusNames = [...]string{"pendiente", "en_revision", "aprobado"}

func (s RequirementStatus) String() string {
	if s < 0 || int(s) >= len(requirementStatusNames) {
		return "unknown"
	}
	return requirementStatusNames[s]
}

// ParseRequirementStatus maps a wire name to its value.
func ParseRequirementStatus(str string) (RequirementStatus, bool) {
	switch str {
	case "pendiente":
		return RequirementStatusPending, true
	case "en_revision":
		return RequirementStatusInReview, true
	case "aprobado":
		return RequirementStatusApproved, true
	}
	return RequirementStatusPending, false
}

func (s RequirementStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *RequirementStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = RequirementStatus(i)
		return nil
	}
	v, ok := ParseRequirementStatus(str)
	if !ok {
		return fmt.Errorf("invalid requirementStatus %q", str)
	}
	*s = v
	return nil
}

func (s RequirementStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *RequirementStatus) Scan(value interface{}) error {
	if value == nil {
		*s = RequirementStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = RequirementStatus(v)
	case int32:
		*s = RequirementStatus(v)
	case int:
		*s = RequirementStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into RequirementStatus", value)
	}
	return nil
}
