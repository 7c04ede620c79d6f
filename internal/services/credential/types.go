package credential

import (
	"context"

	"kycgate/internal/models"
)

// MintRequest carries the metadata of a freshly approved verification.
type MintRequest struct {
	UserAddress    string `json:"user_address"`
	KYCReferenceID string `json:"kyc_reference_id"`
	RiskScore      int    `json:"risk_score"`
	AMLStatus      string `json:"aml_status"`
	ExpiryDays     int    `json:"expiry_days"`
}

// CredentialCache caches credentials between reads.
type CredentialCache interface {
	GetCredential(ctx context.Context, owner string) (*models.Credential, error)
	SetCredential(ctx context.Context, credential *models.Credential) error
	InvalidateCredential(ctx context.Context, owner string) error
}
