package money

import (
	"fmt"
	"strings"
)

// Round reads a decimal string with any number of fractional digits and rounds it
// half up to cents, so "330.00000000000006" becomes 330.00.
func Round(value string) (Amount, error) {
	value = strings.TrimSpace(value)

	whole, fraction, ok := strings.Cut(value, ".")
	if !ok || len(fraction) <= 2 {
		return Parse(value)
	}

	if !digits(fraction) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}

	amount, err := Parse(whole + "." + fraction[:2])
	if err != nil {
		return 0, err
	}

	if fraction[2] < '5' {
		return amount, nil
	}

	if strings.HasPrefix(whole, "-") {
		return amount.Add(-1)
	}

	return amount.Add(1)
}

// Hint is an amount a client sent for display only. Decoding never fails: a value
// that is not a number decodes with Valid unset.
type Hint struct {
	Amount Amount
	Valid  bool
}

// Equal reports whether the hint is a number equal to amount.
func (h Hint) Equal(amount Amount) bool {
	return h.Valid && h.Amount == amount
}

func (h *Hint) UnmarshalJSON(data []byte) error {
	*h = Hint{}

	amount, err := Round(strings.Trim(string(data), `"`))
	if err == nil {
		h.Amount, h.Valid = amount, true
	}

	return nil
}

func (h Hint) MarshalJSON() ([]byte, error) {
	if !h.Valid {
		return []byte("null"), nil
	}

	return h.Amount.MarshalJSON()
}
