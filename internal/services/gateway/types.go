package gateway

import (
	"context"

	"kycgate/internal/models"
)

// CredentialChecker reports whether an address holds an active KYC
// credential.
type CredentialChecker interface {
	IsVerified(ctx context.Context, user string) (bool, error)
}

// SendRequest carries one outgoing payment.
type SendRequest struct {
	PaymentID   string `json:"payment_id"`
	To          string `json:"to"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

// BatchItem is one recipient in a batch payment.
type BatchItem struct {
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

// BatchRequest carries a batch payment. PaymentIDs must be unique and
// match Items one-to-one.
type BatchRequest struct {
	PaymentIDs  []string    `json:"payment_ids"`
	Items       []BatchItem `json:"items"`
	Description string      `json:"description"`
}

// Decision is the outcome of an eligibility check. A denied decision
// always carries the reason; an allowed one never does.
type Decision struct {
	allowed bool
	reason  string
}

// Allow returns a positive decision.
func Allow() Decision { return Decision{allowed: true} }

// Deny returns a negative decision with the given reason.
func Deny(reason string) Decision { return Decision{allowed: false, reason: reason} }

// Allowed reports whether the check passed.
func (d Decision) Allowed() bool { return d.allowed }

// Reason returns the denial reason, empty when allowed.
func (d Decision) Reason() string { return d.reason }

// GatewayStats is the aggregate view over all processed payments.
type GatewayStats struct {
	PaymentCount   int64            `json:"payment_count"`
	FeeBasisPoints int64            `json:"fee_basis_points"`
	Treasury       string           `json:"treasury"`
	RequireKYC     bool             `json:"require_kyc_for_recipients"`
	Paused         bool             `json:"paused"`
	Recent         []models.Payment `json:"recent,omitempty"`
}
