package amount

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParseDrops parses an integral, non-negative drops string
func ParseDrops(drops string) (decimal.Decimal, error) {
	if !dropsPattern.MatchString(drops) {
		return decimal.Zero, fmt.Errorf("invalid drops value %q: must be a non-negative integer", drops)
	}
	d, err := decimal.NewFromString(drops)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid drops value %q: %w", drops, err)
	}
	if d.GreaterThan(maxDrops) {
		return decimal.Zero, fmt.Errorf("drops value %q exceeds the XRP supply", drops)
	}
	return d, nil
}

// DropsToXRP converts an integral drops string to its XRP decimal string.
// The result is canonical: no trailing zeros and no leading zeros ("1500000"
// -> "1.5"). XRPToDrops then DropsToXRP returns the input only when the input
// was already canonical.
func DropsToXRP(drops string) (string, error) {
	d, err := ParseDrops(drops)
	if err != nil {
		return "", err
	}
	return d.Shift(-xrpScale).String(), nil
}

// XRPToDrops converts an XRP decimal string with at most 6 fractional digits
// to an integral drops string
func XRPToDrops(xrp string) (string, error) {
	if !xrpPattern.MatchString(xrp) {
		return "", fmt.Errorf("invalid XRP value %q", xrp)
	}
	d, err := decimal.NewFromString(xrp)
	if err != nil {
		return "", fmt.Errorf("invalid XRP value %q: %w", xrp, err)
	}
	drops := d.Shift(xrpScale)
	if !drops.IsInteger() {
		return "", fmt.Errorf("XRP value %q has more than %d decimal places", xrp, xrpScale)
	}
	if drops.GreaterThan(maxDrops) {
		return "", fmt.Errorf("XRP value %q exceeds the XRP supply", xrp)
	}
	return drops.StringFixed(0), nil
}

// XRPToDecimal parses an XRP decimal string for arithmetic (reserves)
func XRPToDecimal(xrp string) (decimal.Decimal, error) {
	if !xrpPattern.MatchString(xrp) {
		return decimal.Zero, fmt.Errorf("invalid XRP value %q", xrp)
	}
	return decimal.NewFromString(xrp)
}
