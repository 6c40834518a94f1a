package dispatcher

import "time"

type Config struct {
	// Endpoint is the ledger endpoint reported to dApps asking for the network
	Endpoint string
	// SubmitTimeout bounds submission plus the wait for validation
	SubmitTimeout time.Duration
	// LedgerOffset is added to the open ledger index to get LastLedgerSequence
	LedgerOffset uint32
	// MaxFeeDrops caps the autofilled fee
	MaxFeeDrops uint64
}

func DefaultConfig() Config {
	return Config{
		SubmitTimeout: 90 * time.Second,
		LedgerOffset:  20,
		MaxFeeDrops:   2_000_000,
	}
}
