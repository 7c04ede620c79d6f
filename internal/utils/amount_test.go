package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals uint8
		want     int64
		wantErr  bool
	}{
		{name: "whole amount", amount: "5", decimals: 6, want: 5_000_000},
		{name: "fractional amount", amount: "1.5", decimals: 6, want: 1_500_000},
		{name: "full precision", amount: "0.000001", decimals: 6, want: 1},
		{name: "zero", amount: "0", decimals: 6, want: 0},
		{name: "zero decimals", amount: "42", decimals: 0, want: 42},
		{name: "too many decimal places", amount: "0.0000001", decimals: 6, wantErr: true},
		{name: "negative", amount: "-1", decimals: 6, wantErr: true},
		{name: "not a number", amount: "abc", decimals: 6, wantErr: true},
		{name: "empty", amount: "", decimals: 6, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUnits(tt.amount, tt.decimals)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatUnits(t *testing.T) {
	assert.Equal(t, "1.5", FormatUnits(1_500_000, 6))
	assert.Equal(t, "0.000001", FormatUnits(1, 6))
	assert.Equal(t, "0", FormatUnits(0, 6))
	assert.Equal(t, "42", FormatUnits(42, 0))
}

func TestParseFormatRoundTrip(t *testing.T) {
	units, err := ParseUnits("123.456789", 6)
	require.NoError(t, err)
	assert.Equal(t, "123.456789", FormatUnits(units, 6))
}
