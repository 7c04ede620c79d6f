package credential

import "errors"

// Service errors
var (
	ErrUnauthorized    = errors.New("only owner or authorized minter can perform this action")
	ErrOwnerOnly       = errors.New("only owner can perform this action")
	ErrAlreadyVerified = errors.New("user already holds an active credential")
	ErrNotFound        = errors.New("no credential for user")
	ErrNonTransferable = errors.New("credential is non-transferable")
	ErrInvalidAddress  = errors.New("invalid address")
	ErrInvalidExpiry   = errors.New("expiry days must be positive")
)
