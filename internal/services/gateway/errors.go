package gateway

import "errors"

var (
	ErrNotVerified          = errors.New("sender not KYC verified")
	ErrZeroAmount           = errors.New("amount must be greater than zero")
	ErrMissingTxID          = errors.New("transaction ID required")
	ErrDuplicatePaymentID   = errors.New("payment ID already used")
	ErrRecipientNotEligible = errors.New("recipient not KYC verified or whitelisted")
	ErrContractPaused       = errors.New("contract is paused")
	ErrEmptyBatch           = errors.New("batch must not be empty")
	ErrArrayLengthMismatch  = errors.New("array length mismatch")
	ErrBatchTooLarge        = errors.New("maximum 50 recipients per batch")
	ErrInvalidLimit         = errors.New("limit must be greater than zero")
	ErrNotOwner             = errors.New("not the owner")
	ErrFeeTooHigh           = errors.New("fee percentage too high")
	ErrInvalidTreasury      = errors.New("invalid treasury address")
	ErrInvalidAddress       = errors.New("invalid address")
)
