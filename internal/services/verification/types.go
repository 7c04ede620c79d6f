package verification

import (
	"context"

	"kycgate/internal/models"
)

// SubmitRequest carries a provider's verification submission. The
// encrypted payload is opaque to the ledger; it is stored, never read.
type SubmitRequest struct {
	UserAddress      string `json:"user_address"`
	ReferenceID      string `json:"reference_id"`
	EncryptedPayload string `json:"encrypted_payload"`
}

// ApproveRequest carries a provider's approval decision.
type ApproveRequest struct {
	UserAddress string `json:"user_address"`
	ReferenceID string `json:"reference_id"`
	RiskScore   int    `json:"risk_score"`
	AMLStatus   string `json:"aml_status"`
}

// StatusCache caches derived verification statuses between reads.
type StatusCache interface {
	GetVerificationStatus(ctx context.Context, user string) (*models.VerificationStatus, error)
	SetVerificationStatus(ctx context.Context, user string, status *models.VerificationStatus) error
	InvalidateVerificationStatus(ctx context.Context, user string) error
}
