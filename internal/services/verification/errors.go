package verification

import "errors"

// Service errors
var (
	ErrUnauthorized      = errors.New("only admin can perform this action")
	ErrNotActiveProvider = errors.New("only active providers can perform this action")
	ErrNoRecord          = errors.New("no verification record for user")
	ErrInvalidState      = errors.New("operation not valid from current status")
	ErrRiskTooHigh       = errors.New("risk score exceeds maximum allowed")
	ErrInvalidRiskScore  = errors.New("risk score cannot exceed 100")
	ErrReferenceMismatch = errors.New("reference id does not match submission")
	ErrInvalidAddress    = errors.New("invalid address")
	ErrMissingReference  = errors.New("reference id required")
)
