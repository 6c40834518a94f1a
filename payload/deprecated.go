package payload

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/xrpl-commons/dapp-wallet/amount"
	"github.com/xrpl-commons/dapp-wallet/apperr"
)

// Normalize converts a legacy request into its current counterpart so both
// generations share one validation and build path. Current requests are
// returned unchanged.
func Normalize(req Request) (Request, error) {
	switch r := req.(type) {
	case *SendPaymentDeprecated:
		return adaptPayment(r)
	case *SetTrustlineDeprecated:
		return adaptTrustline(r), nil
	case *SignMessageDeprecated:
		m := SignMessage(*r)
		return &m, nil
	case *GetNetworkDeprecated:
		m := GetNetwork(*r)
		return &m, nil
	case *GetAddressDeprecated:
		m := GetAddress(*r)
		return &m, nil
	case *GetPublicKeyDeprecated:
		m := GetPublicKey(*r)
		return &m, nil
	case *GetNFTDeprecated:
		m := GetNFT(*r)
		return &m, nil
	}
	return req, nil
}

func adaptPayment(r *SendPaymentDeprecated) (*SendPayment, error) {
	out := &SendPayment{Destination: r.Destination}

	switch {
	case r.Currency == "" || strings.EqualFold(r.Currency, "XRP"):
		if r.Issuer != "" {
			return nil, apperr.Validation("issuer", "must be omitted for XRP payments")
		}
		drops, err := amount.XRPToDrops(r.Amount)
		if err != nil {
			return nil, apperr.Validation("amount", "%v", err)
		}
		out.Amount = amount.NewDrops(drops)
	default:
		out.Amount = amount.NewIssued(r.Currency, r.Issuer, r.Amount)
	}

	if r.DestinationTag != "" {
		tag, err := strconv.ParseUint(r.DestinationTag, 10, 32)
		if err != nil {
			return nil, apperr.Validation("destinationTag", "must be an unsigned 32-bit integer")
		}
		t := uint32(tag)
		out.DestinationTag = &t
	}

	if r.Memo != "" {
		out.Memos = []Memo{{Memo: MemoFields{MemoData: strings.ToUpper(hex.EncodeToString([]byte(r.Memo)))}}}
	}
	return out, nil
}

func adaptTrustline(r *SetTrustlineDeprecated) *SetTrustline {
	return &SetTrustline{
		Base: Base{Fee: r.Fee},
		LimitAmount: amount.IssuedCurrencyAmount{
			Currency: r.Currency,
			Issuer:   r.Issuer,
			Value:    r.Value,
		},
	}
}
