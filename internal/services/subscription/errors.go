package subscription

import "errors"

// Service errors
var (
	ErrNotVerified       = errors.New("not KYC-verified (no SBT)")
	ErrAlreadyPaid       = errors.New("already paid")
	ErrPaymentRequired   = errors.New("PYUSD payment required first")
	ErrAlreadyReimbursed = errors.New("already reimbursed")
	ErrInsufficientPool  = errors.New("contract low on ETH")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrNotOwner          = errors.New("not the owner")
	ErrInvalidAddress    = errors.New("invalid address")
	ErrNothingToWithdraw = errors.New("no fees to withdraw")
)
