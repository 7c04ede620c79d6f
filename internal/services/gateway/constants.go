package gateway

const (
	// MaxBatchSize bounds one batch payment call.
	MaxBatchSize = 50

	// MaxFeeBasisPoints is 100% expressed in basis points.
	MaxFeeBasisPoints = 10000
)
