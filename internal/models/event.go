package models

import "time"

// Event names exposed to off-chain observers.
const (
	EventProviderAdded         = "ProviderAdded"
	EventProviderRemoved       = "ProviderRemoved"
	EventProviderActivated     = "ProviderActivated"
	EventVerificationSubmitted = "VerificationSubmitted"
	EventVerificationApproved  = "VerificationApproved"
	EventVerificationRejected  = "VerificationRejected"
	EventVerificationSuspended = "VerificationSuspended"
	EventRiskScoreUpdated      = "RiskScoreUpdated"
	EventSBTMinted             = "SBTMinted"
	EventSBTRevoked            = "SBTRevoked"
	EventSBTRenewed            = "SBTRenewed"
	EventSBTExpired            = "SBTExpired"
	EventFeePaid               = "FeePaid"
	EventGasReimbursed         = "GasReimbursed"
	EventETHDeposited          = "ETHDeposited"
	EventNativeFunded          = "NativeFunded"
	EventFeeAmountUpdated      = "FeeAmountUpdated"
	EventPaymentCompleted      = "PaymentCompleted"
	EventFeePercentageUpdated  = "FeePercentageUpdated"
	EventTreasuryUpdated       = "TreasuryUpdated"
	EventRecipientWhitelisted  = "RecipientWhitelisted"
	EventRecipientRemoved      = "RecipientRemovedFromWhitelist"
	EventKYCRequirementUpdated = "KYCRequirementUpdated"
	EventContractPaused        = "ContractPaused"
	EventContractUnpaused      = "ContractUnpaused"
)

// Event components
const (
	ComponentRegistry   = "provider_registry"
	ComponentLedger     = "verification_ledger"
	ComponentCredential = "credential"
	ComponentGate       = "subscription_gate"
	ComponentGateway    = "payment_gateway"
)

// Event is one audit-log entry. Events are written in the same database
// transaction as the state change they describe, so an event of a
// rolled-back operation never becomes visible.
type Event struct {
	ID        string    `gorm:"primarykey" json:"id"`
	Component string    `gorm:"index;not null" json:"component"`
	Name      string    `gorm:"index;not null" json:"name"`
	Payload   JSON      `gorm:"type:jsonb" json:"payload"`
	EmittedAt time.Time `gorm:"index" json:"emitted_at"`
}
