// Package pricing computes what a stay costs from the room's nightly rate.
package pricing

import (
	"errors"
	"fmt"

	"lodge/shared/money"
)

var ErrInvalidNights = errors.New("nights must be positive")

// Quote is the server-side breakdown persisted on a booking.
type Quote struct {
	Nights    int
	RoomPrice money.Amount
	Subtotal  money.Amount
	Tax       money.Amount
	Total     money.Amount
}

// Calculate prices nights at price with tax expressed in basis points.
func Calculate(price money.Amount, nights int, rateBps int64) (Quote, error) {
	if nights <= 0 {
		return Quote{}, ErrInvalidNights
	}

	if price < 0 {
		return Quote{}, money.ErrNegative
	}

	subtotal, err := price.Mul(int64(nights))
	if err != nil {
		return Quote{}, fmt.Errorf("failed to compute subtotal: %w", err)
	}

	tax, err := subtotal.ApplyRate(rateBps)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to compute tax: %w", err)
	}

	total, err := subtotal.Add(tax)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to compute total: %w", err)
	}

	return Quote{
		Nights:    nights,
		RoomPrice: price,
		Subtotal:  subtotal,
		Tax:       tax,
		Total:     total,
	}, nil
}
