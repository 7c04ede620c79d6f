package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment is one gateway payment. PaymentID is the caller-supplied
// transaction id and must be unique and non-empty.
type Payment struct {
	gorm.Model
	PaymentID   string    `gorm:"uniqueIndex;not null" json:"payment_id"`
	FromAddress string    `gorm:"index;not null" json:"from_address"`
	ToAddress   string    `gorm:"index;not null" json:"to_address"`
	Amount      int64     `gorm:"not null" json:"amount"`
	Fee         int64     `gorm:"default:0" json:"fee"`
	Description string    `json:"description"`
	Completed   bool      `gorm:"default:false" json:"completed"`
	BatchRef    string    `gorm:"index" json:"batch_ref,omitempty"`
	ExecutedAt  time.Time `json:"executed_at"`
}

// UserPaymentStats is the per-sender aggregate view.
type UserPaymentStats struct {
	PaymentCount int64 `json:"payment_count"`
	TotalAmount  int64 `json:"total_amount"`
	HasKYC       bool  `json:"has_kyc"`
}

// WhitelistedRecipient is an owner-approved recipient exempt from the
// recipient KYC requirement.
type WhitelistedRecipient struct {
	gorm.Model
	Address string `gorm:"uniqueIndex;not null" json:"address"`
}

// GatewayConfig is the singleton configuration of the payment gateway.
// FeeBasisPoints is capped at 10000 (100%).
type GatewayConfig struct {
	gorm.Model
	OwnerAddress            string `gorm:"not null"`
	GatewayAddress          string `gorm:"not null"`
	TreasuryAddress         string `gorm:"not null"`
	FeeBasisPoints          int64  `gorm:"default:100"` // 1%
	RequireKYCForRecipients bool   `gorm:"default:false"`
	Paused                  bool   `gorm:"default:false"`
}
