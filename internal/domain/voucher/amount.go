package voucher

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a numeric-or-text field as typed by the operator. The raw text
// is kept for display; arithmetic always goes through Coerce.
type Amount struct {
	raw string
}

// NewAmount creates an Amount from operator text
func NewAmount(raw string) Amount {
	return Amount{raw: raw}
}

// AmountFromDecimal creates an Amount from a numeric value
func AmountFromDecimal(d decimal.Decimal) Amount {
	return Amount{raw: d.String()}
}

// String returns the raw text
func (a Amount) String() string {
	return a.raw
}

// IsBlank reports whether nothing was entered
func (a Amount) IsBlank() bool {
	return strings.TrimSpace(a.raw) == ""
}

// Decimal returns the coerced, non-negative value
func (a Amount) Decimal() decimal.Decimal {
	return Coerce(a.raw)
}

// MarshalJSON writes the raw text as a JSON string
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.raw)
}

// UnmarshalJSON accepts a JSON string, a JSON number or null
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		a.raw = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		a.raw = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	a.raw = n.String()
	return nil
}
