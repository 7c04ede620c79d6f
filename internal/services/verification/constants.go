package verification

import "time"

// Default configuration values
const (
	DefaultExpiryPeriod = 365 * 24 * time.Hour
	DefaultMaxRiskScore = 50
	MaxRiskScoreCeiling = 100
)
