package models

import "gorm.io/gorm"

// Provider is an admin-authorized attester allowed to submit and decide
// KYC verifications. Providers are never deleted; deactivation flips
// IsActive and keeps the decision counters for audit.
type Provider struct {
	gorm.Model
	Address        string `gorm:"uniqueIndex;not null" json:"address"`
	Name           string `gorm:"not null" json:"name"`
	IsActive       bool   `gorm:"default:true" json:"is_active"`
	ApprovalCount  int64  `gorm:"default:0" json:"approval_count"`
	RejectionCount int64  `gorm:"default:0" json:"rejection_count"`
}
