package decoder

import (
	"encoding/json"
	"strconv"

	xrpltx "github.com/Peersyst/xrpl-go/xrpl/transaction"
	"github.com/xrpl-commons/dapp-wallet/amount"
	"github.com/xrpl-commons/dapp-wallet/payload"
	"go.uber.org/zap"
)

// Summary is a readable view of a transaction of one of the types the wallet
// builds. Fields that do not apply to the transaction type stay empty.
type Summary struct {
	Hash               string `json:"hash,omitempty"`
	TransactionType    string `json:"transactionType"`
	Account            string `json:"account,omitempty"`
	Fee                string `json:"fee,omitempty"`
	Sequence           uint32 `json:"sequence,omitempty"`
	TicketSequence     uint32 `json:"ticketSequence,omitempty"`
	LastLedgerSequence uint32 `json:"lastLedgerSequence,omitempty"`
	Flags              uint32 `json:"flags,omitempty"`
	SigningPubKey      string `json:"signingPubKey,omitempty"`
	Signed             bool   `json:"signed"`

	Destination    string         `json:"destination,omitempty"`
	DestinationTag uint32         `json:"destinationTag,omitempty"`
	Amount         *amount.Amount `json:"amount,omitempty"`
	LimitAmount    *amount.Amount `json:"limitAmount,omitempty"`
	TakerGets      *amount.Amount `json:"takerGets,omitempty"`
	TakerPays      *amount.Amount `json:"takerPays,omitempty"`
	BrokerFee      *amount.Amount `json:"brokerFee,omitempty"`
	NFTokenID      string         `json:"nftokenId,omitempty"`
	NFTokenOffers  []string       `json:"nftokenOffers,omitempty"`
	BuyOffer       string         `json:"buyOffer,omitempty"`
	SellOffer      string         `json:"sellOffer,omitempty"`
	Owner          string         `json:"owner,omitempty"`
	OfferSequence  uint32         `json:"offerSequence,omitempty"`
	URI            string         `json:"uri,omitempty"`
	TransferFee    uint32         `json:"transferFee,omitempty"`
	// Expiration is in seconds since the ripple epoch
	Expiration uint32 `json:"expiration,omitempty"`

	Memos []payload.Memo `json:"memos,omitempty"`
}

// Summarize reads a flat transaction, decoded from a blob or built locally
func Summarize(flat xrpltx.FlatTransaction) *Summary {
	s := &Summary{
		TransactionType:    getString(flat, "TransactionType"),
		Account:            getString(flat, "Account"),
		Fee:                getString(flat, "Fee"),
		Sequence:           getUint32(flat, "Sequence"),
		TicketSequence:     getUint32(flat, "TicketSequence"),
		LastLedgerSequence: getUint32(flat, "LastLedgerSequence"),
		Flags:              getUint32(flat, "Flags"),
		SigningPubKey:      getString(flat, "SigningPubKey"),
		Signed:             getString(flat, "TxnSignature") != "" || len(getSlice(flat, "Signers")) > 0,
		Memos:              decodeMemos(getSlice(flat, "Memos")),
	}

	switch s.TransactionType {
	case "Payment":
		s.Destination = getString(flat, "Destination")
		s.DestinationTag = getUint32(flat, "DestinationTag")
		s.Amount = decodeAmount(flat["Amount"])
	case "TrustSet":
		s.LimitAmount = decodeAmount(flat["LimitAmount"])
	case "NFTokenMint":
		s.URI = getString(flat, "URI")
		s.TransferFee = getUint32(flat, "TransferFee")
	case "NFTokenCreateOffer":
		s.NFTokenID = getString(flat, "NFTokenID")
		s.Amount = decodeAmount(flat["Amount"])
		s.Owner = getString(flat, "Owner")
		s.Destination = getString(flat, "Destination")
		s.Expiration = getUint32(flat, "Expiration")
	case "NFTokenCancelOffer":
		s.NFTokenOffers = getStringSlice(flat, "NFTokenOffers")
	case "NFTokenAcceptOffer":
		s.BuyOffer = getString(flat, "NFTokenBuyOffer")
		s.SellOffer = getString(flat, "NFTokenSellOffer")
		s.BrokerFee = decodeAmount(flat["NFTokenBrokerFee"])
	case "NFTokenBurn":
		s.NFTokenID = getString(flat, "NFTokenID")
		s.Owner = getString(flat, "Owner")
	case "OfferCreate":
		s.TakerGets = decodeAmount(flat["TakerGets"])
		s.TakerPays = decodeAmount(flat["TakerPays"])
		s.OfferSequence = getUint32(flat, "OfferSequence")
		s.Expiration = getUint32(flat, "Expiration")
	case "OfferCancel":
		s.OfferSequence = getUint32(flat, "OfferSequence")
	}
	return s
}

// Fields renders the summary as log fields
func (s *Summary) Fields() []zap.Field {
	fields := []zap.Field{
		zap.String("tx_type", s.TransactionType),
		zap.String("account", s.Account),
		zap.String("fee", s.Fee),
		zap.Uint32("sequence", s.Sequence),
		zap.Uint32("last_ledger_sequence", s.LastLedgerSequence),
	}
	if s.Hash != "" {
		fields = append(fields, zap.String("hash", s.Hash))
	}
	if s.TicketSequence != 0 {
		fields = append(fields, zap.Uint32("ticket_sequence", s.TicketSequence))
	}
	if s.Destination != "" {
		fields = append(fields, zap.String("destination", s.Destination))
	}
	if s.Amount != nil {
		fields = append(fields, zap.Stringer("amount", s.Amount))
	}
	if s.NFTokenID != "" {
		fields = append(fields, zap.String("nft_id", s.NFTokenID))
	}
	return fields
}

func decodeAmount(v interface{}) *amount.Amount {
	switch amt := v.(type) {
	case string:
		a := amount.NewDrops(amt)
		return &a
	case map[string]interface{}:
		a := amount.NewIssued(getString(amt, "currency"), getString(amt, "issuer"), getString(amt, "value"))
		return &a
	}
	return nil
}

func decodeMemos(memosRaw []interface{}) []payload.Memo {
	if len(memosRaw) == 0 {
		return nil
	}

	result := make([]payload.Memo, 0, len(memosRaw))
	for _, memoRaw := range memosRaw {
		memoMap, ok := memoRaw.(map[string]interface{})
		if !ok {
			continue
		}
		memo, ok := memoMap["Memo"].(map[string]interface{})
		if !ok {
			continue
		}
		result = append(result, payload.Memo{Memo: payload.MemoFields{
			MemoData:   getString(memo, "MemoData"),
			MemoFormat: getString(memo, "MemoFormat"),
			MemoType:   getString(memo, "MemoType"),
		}})
	}
	return result
}

// Helper functions for extracting values from decoded JSON

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func getUint32(m map[string]interface{}, key string) uint32 {
	switch v := m[key].(type) {
	case float64:
		return uint32(v)
	case int:
		return uint32(v)
	case int64:
		return uint32(v)
	case uint8:
		return uint32(v)
	case uint16:
		return uint32(v)
	case uint32:
		return v
	case uint64:
		return uint32(v)
	case json.Number:
		if n, err := strconv.ParseUint(v.String(), 10, 32); err == nil {
			return uint32(n)
		}
	}
	return 0
}

func getSlice(m map[string]interface{}, key string) []interface{} {
	if arr, ok := m[key].([]interface{}); ok {
		return arr
	}
	return nil
}

func getStringSlice(m map[string]interface{}, key string) []string {
	switch arr := m[key].(type) {
	case []string:
		return arr
	case []interface{}:
		result := make([]string, 0, len(arr))
		for _, v := range arr {
			if s, ok := v.(string); ok {
				result = append(result, s)
			}
		}
		return result
	}
	return nil
}
