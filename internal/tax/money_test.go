package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRound2_HalfToEven(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"11.655", "11.66"},
		{"34.965", "34.96"},
		{"874.00", "874.00"},
		{"0.005", "0.00"},
		{"0.015", "0.02"},
		{"-11.655", "-11.66"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Round2(decimal.RequireFromString(tt.in)).StringFixed(2)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"4855", "4,855.00"},
		{"147972", "147,972.00"},
		{"537608", "537,608.00"},
		{"999.9", "999.90"},
		{"1234567.891", "1,234,567.89"},
		{"0", "0.00"},
		{"-85200", "-85,200.00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestFormatPKR(t *testing.T) {
	assert.Equal(t, "PKR 147,972.00", FormatPKR(decimal.RequireFromString("147972")))
}
