// Package money represents prices as integer minor units (cents).
//
// Amounts cross the HTTP boundary as decimal strings with two fractional digits ("330.00")
// and are stored as BIGINT columns. No floating point is involved at any step.
package money

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	minorUnits = 100

	// BasisPoints is the denominator for rates expressed in hundredths of a percent.
	BasisPoints = 10000
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrOverflow      = errors.New("amount overflow")
	ErrNegative      = errors.New("amount must not be negative")
)

// Amount is a monetary value in minor units.
type Amount int64

// FromCents builds an Amount from minor units.
func FromCents(cents int64) Amount {
	return Amount(cents)
}

// Parse reads a decimal string such as "129.99", "100" or "0.5".
// More than two fractional digits are rejected rather than rounded.
func Parse(value string) (Amount, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, ErrInvalidAmount
	}

	negative := strings.HasPrefix(value, "-")
	if negative {
		value = value[1:]
	}

	whole, fraction, hasFraction := strings.Cut(value, ".")
	if !digits(whole) || (hasFraction && (!digits(fraction) || len(fraction) > 2)) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}

	for len(fraction) < 2 {
		fraction += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}

	cents, err := strconv.ParseInt(fraction, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}

	if units > (math.MaxInt64-cents)/minorUnits {
		return 0, ErrOverflow
	}

	total := units*minorUnits + cents
	if negative {
		total = -total
	}

	return Amount(total), nil
}

func digits(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

func (a Amount) Cents() int64 {
	return int64(a)
}

// String renders the amount with exactly two fractional digits.
func (a Amount) String() string {
	sign := ""
	value := int64(a)

	if value < 0 {
		sign = "-"
		value = -value
	}

	return fmt.Sprintf("%s%d.%02d", sign, value/minorUnits, value%minorUnits)
}

// Add returns a+b or ErrOverflow.
func (a Amount) Add(b Amount) (Amount, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, ErrOverflow
	}

	return a + b, nil
}

// Mul returns a*n or ErrOverflow.
func (a Amount) Mul(n int64) (Amount, error) {
	if a == 0 || n == 0 {
		return 0, nil
	}

	product := int64(a) * n
	if product/n != int64(a) {
		return 0, ErrOverflow
	}

	return Amount(product), nil
}

// ApplyRate returns a*bps/10000 rounded half up to the nearest minor unit.
func (a Amount) ApplyRate(bps int64) (Amount, error) {
	if a < 0 || bps < 0 {
		return 0, ErrNegative
	}

	scaled, err := a.Mul(bps)
	if err != nil {
		return 0, err
	}

	quotient := int64(scaled) / BasisPoints
	remainder := int64(scaled) % BasisPoints

	if remainder*2 >= BasisPoints {
		quotient++
	}

	return Amount(quotient), nil
}

// MarshalJSON encodes the amount as a decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts both "129.99" and 129.99.
func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "null" {
		return nil
	}

	parsed, err := Parse(raw)
	if err != nil {
		return err
	}

	*a = parsed

	return nil
}

// Value implements driver.Valuer.
func (a Amount) Value() (driver.Value, error) {
	return int64(a), nil
}

// Scan implements sql.Scanner.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*a = Amount(v)
	case []byte:
		parsed, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return fmt.Errorf("scan amount: %w", err)
		}

		*a = Amount(parsed)
	case nil:
		*a = 0
	default:
		return fmt.Errorf("scan amount: unsupported type %T", src)
	}

	return nil
}
