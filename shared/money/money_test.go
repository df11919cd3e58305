package money_test

import (
	"encoding/json"
	"math"
	"testing"

	"lodge/shared/money"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected money.Amount
		wantErr  bool
	}{
		{name: "whole number", input: "100", expected: 10000},
		{name: "two decimals", input: "129.99", expected: 12999},
		{name: "one decimal", input: "0.5", expected: 50},
		{name: "surrounding spaces", input: " 42.10 ", expected: 4210},
		{name: "negative", input: "-3.25", expected: -325},
		{name: "three decimals rejected", input: "1.005", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "trailing dot", input: "12.", wantErr: true},
		{name: "leading dot", input: ".50", wantErr: true},
		{name: "letters", input: "12a", wantErr: true},
		{name: "signed fraction", input: "1.+5", wantErr: true},
		{name: "overflow", input: "92233720368547758.08", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := money.Parse(tt.input)

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.expected, amount)
		})
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "330.00", money.FromCents(33000).String())
	assert.Equal(t, "0.05", money.FromCents(5).String())
	assert.Equal(t, "-1.50", money.FromCents(-150).String())
}

func TestArithmetic(t *testing.T) {
	subtotal, err := money.FromCents(10000).Mul(3)
	assert.NoError(t, err)
	assert.Equal(t, money.Amount(30000), subtotal)

	total, err := subtotal.Add(3000)
	assert.NoError(t, err)
	assert.Equal(t, money.Amount(33000), total)

	_, err = money.Amount(math.MaxInt64).Add(1)
	assert.ErrorIs(t, err, money.ErrOverflow)

	_, err = money.Amount(math.MaxInt64 / 2).Mul(3)
	assert.ErrorIs(t, err, money.ErrOverflow)
}

func TestApplyRate(t *testing.T) {
	tests := []struct {
		name     string
		amount   money.Amount
		bps      int64
		expected money.Amount
	}{
		{name: "ten percent", amount: 30000, bps: 1000, expected: 3000},
		{name: "rounds half up", amount: 5, bps: 1000, expected: 1},
		{name: "rounds down below half", amount: 4, bps: 1000, expected: 0},
		{name: "fractional rate", amount: 12999, bps: 825, expected: 1072},
		{name: "zero rate", amount: 12999, bps: 0, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tax, err := tt.amount.ApplyRate(tt.bps)

			assert.NoError(t, err)
			assert.Equal(t, tt.expected, tax)
		})
	}

	_, err := money.Amount(-1).ApplyRate(1000)
	assert.ErrorIs(t, err, money.ErrNegative)
}

func TestJSON(t *testing.T) {
	type payload struct {
		Price money.Amount `json:"price"`
	}

	encoded, err := json.Marshal(payload{Price: 12999})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"price":"129.99"}`, string(encoded))

	var decoded payload

	assert.NoError(t, json.Unmarshal([]byte(`{"price":"150.00"}`), &decoded))
	assert.Equal(t, money.Amount(15000), decoded.Price)

	assert.NoError(t, json.Unmarshal([]byte(`{"price":200}`), &decoded))
	assert.Equal(t, money.Amount(20000), decoded.Price)

	assert.Error(t, json.Unmarshal([]byte(`{"price":"1.999"}`), &decoded))
}

func TestScan(t *testing.T) {
	var amount money.Amount

	assert.NoError(t, amount.Scan(int64(4500)))
	assert.Equal(t, money.Amount(4500), amount)

	assert.NoError(t, amount.Scan([]byte("700")))
	assert.Equal(t, money.Amount(700), amount)

	assert.Error(t, amount.Scan("text"))

	value, err := money.Amount(33000).Value()
	assert.NoError(t, err)
	assert.Equal(t, int64(33000), value)
}
