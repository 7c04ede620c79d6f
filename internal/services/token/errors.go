package token

import "errors"

// Service errors
var (
	ErrInsufficientBalance = errors.New("transfer amount exceeds balance")
	ErrAllowanceExceeded   = errors.New("transfer amount exceeds allowance")
	ErrInvalidAddress      = errors.New("invalid address")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
)
