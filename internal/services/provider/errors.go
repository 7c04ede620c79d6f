package provider

import "errors"

// Service errors
var (
	ErrUnauthorized   = errors.New("only admin can perform this action")
	ErrAlreadyExists  = errors.New("provider already exists")
	ErrNotFound       = errors.New("provider not found")
	ErrInvalidAddress = errors.New("invalid provider address")
)
