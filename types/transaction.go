package types

// TxRequest holds the tx parameters
type TxRequest struct {
	Transaction string `json:"transaction"`
	Binary      bool   `json:"binary,omitempty"`
}

func NewTxRequest(txHash string, binary bool) *TxRequest {
	return &TxRequest{
		Transaction: txHash,
		Binary:      binary,
	}
}

// TxResult represents the result of the tx method. The transaction fields are
// flattened at the top level (API v1) or nested under tx_json (API v2).
type TxResult struct {
	Hash            string         `json:"hash"`
	LedgerIndex     uint32         `json:"ledger_index"`
	Validated       bool           `json:"validated"`
	Meta            *TxMeta        `json:"meta,omitempty"`
	MetaBlob        string         `json:"meta_blob,omitempty"`
	TxBlob          string         `json:"tx_blob,omitempty"`
	TxJSON          map[string]any `json:"tx_json,omitempty"`
	TransactionType string         `json:"TransactionType,omitempty"`
	Account         string         `json:"Account,omitempty"`
	Fee             string         `json:"Fee,omitempty"`
	Sequence        uint32         `json:"Sequence,omitempty"`
	LastLedgerSeq   uint32         `json:"LastLedgerSequence,omitempty"`
}

// TxMeta is the subset of transaction metadata the wallet reads
type TxMeta struct {
	TransactionIndex  uint32 `json:"TransactionIndex"`
	TransactionResult string `json:"TransactionResult"`
	NFTokenID         string `json:"nftoken_id,omitempty"`
	OfferID           string `json:"offer_id,omitempty"`
	DeliveredAmount   any    `json:"delivered_amount,omitempty"`
}

// SubmitRequest holds the submit parameters for a signed blob
type SubmitRequest struct {
	TxBlob   string `json:"tx_blob"`
	FailHard bool   `json:"fail_hard,omitempty"`
}

// SubmitResult is the preliminary outcome of a submission
type SubmitResult struct {
	EngineResult        string         `json:"engine_result"`
	EngineResultCode    int            `json:"engine_result_code"`
	EngineResultMessage string         `json:"engine_result_message"`
	TxBlob              string         `json:"tx_blob"`
	TxJSON              map[string]any `json:"tx_json"`
	Accepted            bool           `json:"accepted"`
	Applied             bool           `json:"applied"`
	Broadcast           bool           `json:"broadcast"`
	Queued              bool           `json:"queued"`
	Kept                bool           `json:"kept"`
}

// Hash returns the transaction hash echoed back in tx_json
func (s *SubmitResult) Hash() string {
	if s.TxJSON == nil {
		return ""
	}
	h, _ := s.TxJSON["hash"].(string)
	return h
}
