package money_test

import (
	"encoding/json"
	"testing"

	"lodge/shared/money"

	"github.com/stretchr/testify/assert"
)

func TestRound(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
		wantErr  bool
	}{
		{input: "330.00000000000006", expected: 33000},
		{input: "329.995", expected: 33000},
		{input: "329.994999", expected: 32999},
		{input: "99.999", expected: 10000},
		{input: "-1.005", expected: -101},
		{input: "12.5", expected: 1250},
		{input: "42", expected: 4200},
		{input: "3.3e2", wantErr: true},
		{input: "1.2x3", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := money.Round(tt.input)

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got.Cents())
		})
	}
}

func TestHint_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		valid bool
		cents int64
	}{
		{name: "float total", body: `{"total":330.00000000000006}`, valid: true, cents: 33000},
		{name: "string total", body: `{"total":"330.00"}`, valid: true, cents: 33000},
		{name: "integer total", body: `{"total":330}`, valid: true, cents: 33000},
		{name: "exponent", body: `{"total":3.3e2}`},
		{name: "text", body: `{"total":"about 330"}`},
		{name: "boolean", body: `{"total":true}`},
		{name: "object", body: `{"total":{"value":330}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body struct {
				Total *money.Hint `json:"total"`
			}

			err := json.Unmarshal([]byte(tt.body), &body)

			assert.NoError(t, err)
			assert.NotNil(t, body.Total)
			assert.Equal(t, tt.valid, body.Total.Valid)

			if tt.valid {
				assert.True(t, body.Total.Equal(money.FromCents(tt.cents)))
			}
		})
	}
}
