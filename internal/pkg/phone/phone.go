package phone

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used for numbers entered without a country prefix.
var DefaultRegion = "IN"

var ErrInvalidNumber = errors.New("invalid phone number")

// Number is a structured phone number. Raw keeps the text exactly as the user
// entered it; E164 is the normalized form used for comparisons.
type Number struct {
	Raw  string
	E164 string
}

// Parse validates raw against region (DefaultRegion when empty).
func Parse(raw, region string) (Number, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Number{}, ErrInvalidNumber
	}
	if region == "" {
		region = DefaultRegion
	}
	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return Number{}, fmt.Errorf("%w: %v", ErrInvalidNumber, err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return Number{}, ErrInvalidNumber
	}
	return Number{Raw: raw, E164: phonenumbers.Format(num, phonenumbers.E164)}, nil
}

func (n Number) IsZero() bool { return n.Raw == "" }

func (n Number) String() string { return n.Raw }

func (Number) GormDataType() string { return "string" }

func (n Number) Value() (driver.Value, error) {
	if n.Raw == "" {
		return nil, nil
	}
	return n.Raw, nil
}

func (n *Number) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*n = Number{}
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("phone: cannot scan %T", src)
	}
	parsed, err := Parse(raw, "")
	if err != nil {
		// stored rows are kept as entered even if the numbering plan changed
		*n = Number{Raw: raw}
		return nil
	}
	*n = parsed
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if n.Raw == "" {
		return []byte("null"), nil
	}
	return json.Marshal(n.Raw)
}
