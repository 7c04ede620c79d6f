package models

import (
	"time"

	"gorm.io/gorm"
)

// Verification statuses
const (
	VerificationStatusPending   = "pending"
	VerificationStatusApproved  = "approved"
	VerificationStatusRejected  = "rejected"
	VerificationStatusExpired   = "expired"
	VerificationStatusSuspended = "suspended"
)

// VerificationRecord is the singleton per-user KYC record. A new
// submission overwrites the previous cycle rather than appending.
type VerificationRecord struct {
	gorm.Model
	UserAddress       string     `gorm:"uniqueIndex;not null" json:"user_address"`
	BridgeReferenceID string     `gorm:"not null" json:"bridge_reference_id"`
	EncryptedPayload  string     `json:"-"`
	Status            string     `gorm:"default:'pending'" json:"status"`
	RiskScore         int        `gorm:"default:0" json:"risk_score"`
	AMLStatus         string     `json:"aml_status"`
	RejectionReason   string     `json:"rejection_reason,omitempty"`
	SuspensionReason  string     `json:"suspension_reason,omitempty"`
	SubmittedBy       string     `json:"submitted_by"`
	SubmittedAt       time.Time  `json:"submitted_at"`
	ApprovedAt        *time.Time `json:"approved_at,omitempty"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
}

// VerificationStatus is the derived view returned to callers.
type VerificationStatus struct {
	Status    string     `json:"status"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	RiskScore int        `json:"risk_score"`
	AMLStatus string     `json:"aml_status"`
}

// LedgerConfig is the singleton admin configuration of the verification
// ledger. There is exactly one row.
type LedgerConfig struct {
	gorm.Model
	AdminAddress        string `gorm:"not null"`
	ExpiryPeriodSeconds int64  `gorm:"default:31536000"` // 365 days
	MaxRiskScore        int    `gorm:"default:50"`
}
