package types

import "encoding/json"

// FeeResult represents the response from the fee method. Drop values are
// strings of integers.
type FeeResult struct {
	CurrentLedgerSize  string    `json:"current_ledger_size"`
	CurrentQueueSize   string    `json:"current_queue_size"`
	Drops              FeeDrops  `json:"drops"`
	ExpectedLedgerSize string    `json:"expected_ledger_size"`
	LedgerCurrentIndex uint32    `json:"ledger_current_index"`
	Levels             FeeLevels `json:"levels"`
	MaxQueueSize       string    `json:"max_queue_size"`
}

type FeeDrops struct {
	BaseFee       string `json:"base_fee"`
	MedianFee     string `json:"median_fee"`
	MinimumFee    string `json:"minimum_fee"`
	OpenLedgerFee string `json:"open_ledger_fee"`
}

type FeeLevels struct {
	MedianLevel     string `json:"median_level"`
	MinimumLevel    string `json:"minimum_level"`
	OpenLedgerLevel string `json:"open_ledger_level"`
	ReferenceLevel  string `json:"reference_level"`
}

// LedgerCurrentResult represents the response from ledger_current
type LedgerCurrentResult struct {
	LedgerCurrentIndex uint32 `json:"ledger_current_index"`
}

// ServerInfoResult represents the response from server_info
type ServerInfoResult struct {
	Info ServerInfo `json:"info"`
}

type ServerInfo struct {
	BuildVersion    string         `json:"build_version"`
	CompleteLedgers string         `json:"complete_ledgers"`
	HostID          string         `json:"hostid"`
	NetworkID       uint32         `json:"network_id,omitempty"`
	ServerState     string         `json:"server_state"`
	ValidatedLedger *ValidatedInfo `json:"validated_ledger,omitempty"`
}

// ValidatedInfo carries the reserve settings of the last validated ledger.
// Reserves are decimal XRP values.
type ValidatedInfo struct {
	Age            uint32      `json:"age"`
	BaseFeeXRP     json.Number `json:"base_fee_xrp"`
	Hash           string      `json:"hash"`
	ReserveBaseXRP json.Number `json:"reserve_base_xrp"`
	ReserveIncXRP  json.Number `json:"reserve_inc_xrp"`
	Seq            uint32      `json:"seq"`
}
