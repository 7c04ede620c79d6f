package models

import (
	"time"

	"gorm.io/gorm"
)

// SubscriptionPayment is the per-payer record of the subscription gate.
// Paid and Reimbursed are one-time latches: each flips false->true at
// most once and is never reset by the payer.
type SubscriptionPayment struct {
	gorm.Model
	PayerAddress     string     `gorm:"uniqueIndex;not null" json:"payer_address"`
	Paid             bool       `gorm:"default:false" json:"paid"`
	Reimbursed       bool       `gorm:"default:false" json:"reimbursed"`
	FeeAmount        int64      `json:"fee_amount"`
	ReimbursedAmount int64      `json:"reimbursed_amount"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
	ReimbursedAt     *time.Time `json:"reimbursed_at,omitempty"`
}

// GateConfig is the singleton configuration and aggregate state of the
// subscription gate.
type GateConfig struct {
	gorm.Model
	OwnerAddress    string `gorm:"not null"`
	GateAddress     string `gorm:"not null"`
	FeeAmount       int64  `gorm:"default:1000000"` // 1 PYUSD at 6 decimals
	TotalPaid       int64  `gorm:"default:0"`
	TotalReimbursed int64  `gorm:"default:0"`
}

// GateStats is the read-only aggregate returned by the gate.
type GateStats struct {
	TotalPaid       int64 `json:"total_paid"`
	TotalReimbursed int64 `json:"total_reimbursed"`
	ETHBalance      int64 `json:"eth_balance"`
	PYUSDBalance    int64 `json:"pyusd_balance"`
}
