package utils

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ParseUnits converts a human-readable amount string into integer base
// units using the token's decimals. The decimals value must come from
// the token at call time, never from a hardcoded assumption.
func ParseUnits(amount string, decimals uint8) (int64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if d.IsNegative() {
		return 0, errors.New("amount must not be negative")
	}

	scaled := d.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("amount %q has more than %d decimal places", amount, decimals)
	}
	if !scaled.IsInteger() || scaled.GreaterThan(decimal.NewFromInt(1<<62)) {
		return 0, errors.New("amount out of range")
	}
	return scaled.IntPart(), nil
}

// FormatUnits renders integer base units as a human-readable decimal
// string using the token's decimals.
func FormatUnits(units int64, decimals uint8) string {
	return decimal.NewFromInt(units).Shift(-int32(decimals)).String()
}
