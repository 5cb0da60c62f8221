package wallet

import "time"

// Default configuration values
const (
	DefaultCurrency = "INR"
	DefaultPageSize = 20
)

// Cache durations
const (
	CacheDuration = 5 * time.Minute
	// RecheckDelay is how long after a posting the balance key is deleted a
	// second time, dropping any value a concurrent read wrote back stale.
	RecheckDelay = 500 * time.Millisecond
)
