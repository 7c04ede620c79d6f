package repositories

import "errors"

var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrProviderNotFound     = errors.New("provider not found")
	ErrRecordNotFound       = errors.New("verification record not found")
	ErrCredentialNotFound   = errors.New("credential not found")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrSubscriptionNotFound = errors.New("subscription record not found")
	ErrInsufficientBalance  = errors.New("insufficient token balance")
	ErrInsufficientNative   = errors.New("insufficient native balance")
	ErrAllowanceExceeded    = errors.New("transfer amount exceeds allowance")
)
