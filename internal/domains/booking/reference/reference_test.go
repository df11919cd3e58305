package reference_test

import (
	"strconv"
	"strings"
	"testing"

	"lodge/config"
	"lodge/internal/domains/booking/reference"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		want   string
	}{
		{name: "default prefix", prefix: "", want: "KL-2024-"},
		{name: "configured prefix", prefix: "lg", want: "LG-2024-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Booking.ReferencePrefix = tt.prefix

			generator := reference.New(cfg)

			for range 200 {
				value := generator.Generate(2024)

				assert.True(t, strings.HasPrefix(value, tt.want), value)
				assert.True(t, reference.Valid(value), value)

				sequence, err := strconv.Atoi(value[len(tt.want):])
				assert.NoError(t, err)
				assert.GreaterOrEqual(t, sequence, 1000)
				assert.LessOrEqual(t, sequence, 9999)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "KL-2024-0042", reference.Format("KL", 2024, 42))
	assert.Equal(t, "KL-2031-9999", reference.Format("KL", 2031, 9999))
}

func TestValid(t *testing.T) {
	assert.True(t, reference.Valid("KL-2024-4821"))
	assert.False(t, reference.Valid("KL-24-4821"))
	assert.False(t, reference.Valid("kl-2024-4821"))
	assert.False(t, reference.Valid("KL-2024-48210"))
	assert.False(t, reference.Valid(""))
}
