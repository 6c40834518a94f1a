package amount

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

// DropsPerXRP is the fixed scale between drops and XRP (6 decimal places)
const DropsPerXRP = 1_000_000

// xrpScale is the number of fractional digits an XRP value may carry
const xrpScale = 6

// MaxDrops is the total XRP supply expressed in drops
const MaxDrops = "100000000000000000"

var (
	dropsPattern = regexp.MustCompile(`^[0-9]+$`)
	xrpPattern   = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)
	maxDrops     = decimal.RequireFromString(MaxDrops)
)

// IssuedCurrencyAmount is a non-native asset amount
type IssuedCurrencyAmount struct {
	Currency string `json:"currency"`
	Issuer   string `json:"issuer"`
	Value    string `json:"value"`
}

// Amount is either a native amount in drops or an issued currency amount.
// Exactly one of Drops or Issued is set on a valid Amount.
type Amount struct {
	Drops  string
	Issued *IssuedCurrencyAmount
}

// NewDrops returns a native amount
func NewDrops(drops string) Amount {
	return Amount{Drops: drops}
}

// NewIssued returns an issued currency amount
func NewIssued(currency, issuer, value string) Amount {
	return Amount{Issued: &IssuedCurrencyAmount{Currency: currency, Issuer: issuer, Value: value}}
}

// IsNative reports whether the amount is expressed in drops
func (a Amount) IsNative() bool {
	return a.Issued == nil
}

// IsEmpty reports whether neither side of the union is set
func (a Amount) IsEmpty() bool {
	return a.Issued == nil && a.Drops == ""
}

// IsZero reports whether the amount has a numeric value of zero.
// Unparseable values are not zero; Validate reports them.
func (a Amount) IsZero() bool {
	raw := a.Drops
	if a.Issued != nil {
		raw = a.Issued.Value
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return false
	}
	return d.IsZero()
}

// Validate checks the amount is well formed. Native amounts must be an
// integral, non-negative number of drops within the XRP supply.
func (a Amount) Validate() error {
	if a.Issued == nil {
		_, err := ParseDrops(a.Drops)
		return err
	}
	return a.Issued.Validate()
}

// Validate checks the currency code, issuer presence and numeric value
func (i IssuedCurrencyAmount) Validate() error {
	if err := ValidateCurrencyCode(i.Currency); err != nil {
		return err
	}
	if i.Issuer == "" {
		return fmt.Errorf("issuer is required for issued currency %q", i.Currency)
	}
	v, err := decimal.NewFromString(i.Value)
	if err != nil {
		return fmt.Errorf("invalid issued currency value %q: %w", i.Value, err)
	}
	if v.IsNegative() {
		return fmt.Errorf("issued currency value %q must not be negative", i.Value)
	}
	return nil
}

// ValidateCurrencyCode accepts 3-character ISO-like codes (other than XRP)
// and 160-bit hex codes
func ValidateCurrencyCode(code string) error {
	switch len(code) {
	case 3:
		if code == "XRP" {
			return fmt.Errorf("XRP cannot be used as an issued currency code")
		}
		return nil
	case 40:
		if !isHex(code) {
			return fmt.Errorf("invalid hex currency code %q", code)
		}
		return nil
	}
	return fmt.Errorf("invalid currency code %q", code)
}

// Flatten returns the ledger JSON representation: a drops string or a
// {currency, issuer, value} object
func (a Amount) Flatten() interface{} {
	if a.Issued == nil {
		return a.Drops
	}
	return map[string]interface{}{
		"currency": a.Issued.Currency,
		"issuer":   a.Issued.Issuer,
		"value":    a.Issued.Value,
	}
}

// MarshalJSON encodes native amounts as strings and issued amounts as objects
func (a Amount) MarshalJSON() ([]byte, error) {
	if a.Issued == nil {
		return json.Marshal(a.Drops)
	}
	return json.Marshal(a.Issued)
}

// UnmarshalJSON accepts either a drops string or an issued currency object
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = Amount{}
		return nil
	}

	if data[0] == '"' {
		var drops string
		if err := json.Unmarshal(data, &drops); err != nil {
			return fmt.Errorf("decoding native amount: %w", err)
		}
		*a = Amount{Drops: drops}
		return nil
	}

	var issued IssuedCurrencyAmount
	if err := json.Unmarshal(data, &issued); err != nil {
		return fmt.Errorf("decoding issued currency amount: %w", err)
	}
	*a = Amount{Issued: &issued}
	return nil
}

// String renders the amount for logs
func (a Amount) String() string {
	if a.Issued == nil {
		return a.Drops + " drops"
	}
	return fmt.Sprintf("%s %s.%s", a.Issued.Value, a.Issued.Currency, a.Issued.Issuer)
}

func isHex(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
