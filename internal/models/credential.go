package models

import (
	"time"

	"gorm.io/gorm"
)

// Credential statuses
const (
	CredentialStatusVerified = "verified"
	CredentialStatusExpired  = "expired"
	CredentialStatusRevoked  = "revoked"
)

// Credential is a soul-bound verification token. It is permanently bound
// to the address it was minted to: there is no transfer or approval path,
// and "destruction" is the revoked/expired status, never a row delete.
type Credential struct {
	gorm.Model
	TokenID          uint64    `gorm:"uniqueIndex;not null" json:"token_id"`
	OwnerAddress     string    `gorm:"index;not null" json:"owner_address"`
	KYCReferenceID   string    `gorm:"not null" json:"kyc_reference_id"`
	Status           string    `gorm:"default:'verified'" json:"status"`
	RiskScore        int       `json:"risk_score"`
	AMLStatus        string    `json:"aml_status"`
	RevocationReason string    `json:"revocation_reason,omitempty"`
	VerificationDate time.Time `json:"verification_date"`
	ExpiryDate       time.Time `json:"expiry_date"`
}

// Active reports whether the credential currently satisfies
// status==verified AND now < expiry. Pure read, no status flip.
func (c *Credential) Active(now time.Time) bool {
	return c.Status == CredentialStatusVerified && now.Before(c.ExpiryDate)
}

// CredentialMinter is an owner-authorized address allowed to mint,
// revoke and renew credentials.
type CredentialMinter struct {
	gorm.Model
	Address  string `gorm:"uniqueIndex;not null"`
	IsActive bool   `gorm:"default:true"`
}

// CredentialConfig is the singleton configuration of the credential
// registry: the owning address and the monotonically increasing token
// counter. NextTokenID only ever grows.
type CredentialConfig struct {
	gorm.Model
	OwnerAddress string `gorm:"not null"`
	NextTokenID  uint64 `gorm:"default:1"`
}
