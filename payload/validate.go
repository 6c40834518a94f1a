package payload

import (
	"encoding/hex"
	"fmt"
	"strings"

	addresscodec "github.com/Peersyst/xrpl-go/address-codec"
	"github.com/xrpl-commons/dapp-wallet/amount"
	"github.com/xrpl-commons/dapp-wallet/apperr"
)

const (
	MaxTransferFee   = 50000
	MaxURIBytes      = 256
	MaxDomainBytes   = 256
	MinTickSize      = 3
	MaxTickSize      = 15
	MinTransferRate  = 1_000_000_000
	MaxTransferRate  = 2_000_000_000
	messageKeyLength = 33
)

// ValidationContext carries what validation needs to know about the sender
type ValidationContext struct {
	// Account is the classic address of the active wallet, empty when none is loaded
	Account string
}

// Prepare runs the legacy adapter and validates the resulting request. The
// returned request is always of a current protocol generation.
func Prepare(req Request, vctx ValidationContext) (Request, error) {
	modern, err := Normalize(req)
	if err != nil {
		return nil, err
	}
	if err := Validate(modern, vctx); err != nil {
		return nil, err
	}
	return modern, nil
}

// Validate checks the schema and cross-field rules of a request. Failures are
// *apperr.Error values of kind ValidationError naming the offending field.
func Validate(req Request, vctx ValidationContext) error {
	switch r := req.(type) {
	case *SendPayment:
		return validateSendPayment(r, vctx)
	case *SetTrustline:
		return validateSetTrustline(r, vctx)
	case *MintNFT:
		return validateMintNFT(r, vctx)
	case *CreateNFTOffer:
		return validateCreateNFTOffer(r, vctx)
	case *CancelNFTOffer:
		return validateCancelNFTOffer(r)
	case *AcceptNFTOffer:
		return validateAcceptNFTOffer(r)
	case *BurnNFT:
		return validateBurnNFT(r)
	case *SetAccount:
		return validateSetAccount(r)
	case *CreateOffer:
		return validateCreateOffer(r)
	case *CancelOffer:
		return validateCancelOffer(r)
	case *SubmitTransaction:
		return validateSubmitTransaction(r, vctx)
	case *SignMessage:
		if r.Message == "" {
			return apperr.Validation("message", "is required")
		}
		return nil
	case *Website:
		if r.URL == "" {
			return apperr.Validation("url", "is required")
		}
		return nil
	case *SendPaymentDeprecated, *SetTrustlineDeprecated, *SignMessageDeprecated,
		*GetNetworkDeprecated, *GetAddressDeprecated, *GetPublicKeyDeprecated, *GetNFTDeprecated:
		modern, err := Normalize(r)
		if err != nil {
			return err
		}
		return Validate(modern, vctx)
	case *GetNetwork, *GetAddress, *GetPublicKey, *GetNFT, *GetTransactions, *IsInstalled:
		return nil
	case nil:
		return apperr.Newf(apperr.KindBadRequest, "empty request")
	}
	return apperr.Newf(apperr.KindBadRequest, "unsupported request %T", req)
}

func validateBase(b *Base) error {
	if b.Sequence != nil && b.TicketSequence != nil {
		return apperr.Validation("ticketSequence", "cannot be combined with sequence")
	}
	if b.TicketSequence != nil && b.AccountTxnID != "" {
		return apperr.Validation("accountTxnID", "cannot be combined with ticketSequence")
	}
	if b.Fee != "" {
		if err := amount.NewDrops(b.Fee).Validate(); err != nil {
			return apperr.Validation("fee", "%v", err)
		}
	}
	if b.AccountTxnID != "" && !isHash256(b.AccountTxnID) {
		return apperr.Validation("accountTxnID", "must be a 256-bit hex hash")
	}
	for i, m := range b.Memos {
		fields := []struct{ name, value string }{
			{"memoData", m.Memo.MemoData},
			{"memoFormat", m.Memo.MemoFormat},
			{"memoType", m.Memo.MemoType},
		}
		for _, f := range fields {
			if f.value != "" && !isHexBytes(f.value) {
				return apperr.Validation(fmt.Sprintf("memos[%d].memo.%s", i, f.name), "must be hex encoded")
			}
		}
	}
	for i, s := range b.Signers {
		switch {
		case !isAddress(s.Signer.Account):
			return apperr.Validation(fmt.Sprintf("signers[%d].signer.account", i), "is not a valid address")
		case s.Signer.TxnSignature == "" || !isHexBytes(s.Signer.TxnSignature):
			return apperr.Validation(fmt.Sprintf("signers[%d].signer.txnSignature", i), "must be hex encoded")
		case s.Signer.SigningPubKey == "" || !isHexBytes(s.Signer.SigningPubKey):
			return apperr.Validation(fmt.Sprintf("signers[%d].signer.signingPubKey", i), "must be hex encoded")
		}
	}
	if b.SigningPubKey != "" && !isHexBytes(b.SigningPubKey) {
		return apperr.Validation("signingPubKey", "must be hex encoded")
	}
	if b.TxnSignature != "" && !isHexBytes(b.TxnSignature) {
		return apperr.Validation("txnSignature", "must be hex encoded")
	}
	return nil
}

func validateSendPayment(r *SendPayment, vctx ValidationContext) error {
	if err := validateBase(&r.Base); err != nil {
		return err
	}
	if err := validateAmount("amount", r.Amount, false); err != nil {
		return err
	}
	if err := validateAddress("destination", r.Destination, true); err != nil {
		return err
	}
	if r.Amount.IsNative() && vctx.Account != "" && r.Destination == vctx.Account {
		return apperr.Validation("destination", "must differ from the sending account")
	}
	return validateFlags(r.Flags, "Payment")
}

func validateSetTrustline(r *SetTrustline, vctx ValidationContext) error {
	if err := validateBase(&r.Base); err != nil {
		return err
	}
	if err := r.LimitAmount.Validate(); err != nil {
		return apperr.Validation("limitAmount", "%v", err)
	}
	if err := validateAddress("limitAmount.issuer", r.LimitAmount.Issuer, true); err != nil {
		return err
	}
	if vctx.Account != "" && r.LimitAmount.Issuer == vctx.Account {
		return apperr.Validation("limitAmount.issuer", "cannot open a trustline to the sending account")
	}
	return validateFlags(r.Flags, "TrustSet")
}

func validateMintNFT(r *MintNFT, vctx ValidationContext) error {
	if err := validateBase(&r.Base); err != nil {
		return err
	}
	if err := validateFlags(r.Flags, "NFTokenMint"); err != nil {
		return err
	}
	if r.TransferFee != nil {
		if *r.TransferFee > MaxTransferFee {
			return apperr.Validation("transferFee", "must be between 0 and %d", MaxTransferFee)
		}
		if !r.Flags.Has("NFTokenMint", TfTransferable) {
			return apperr.Validation("transferFee", "requires the tfTransferable flag")
		}
	}
	if err := validateAddress("issuer", r.Issuer, false); err != nil {
		return err
	}
	if r.Issuer != "" && r.Issuer == vctx.Account {
		return apperr.Validation("issuer", "must only be set when minting on behalf of another account")
	}
	if r.URI != "" {
		if !isHexBytes(r.URI) {
			return apperr.Validation("URI", "must be hex encoded")
		}
		if len(r.URI)/2 > MaxURIBytes {
			return apperr.Validation("URI", "must not exceed %d bytes", MaxURIBytes)
		}
	}
	return nil
}

func validateCreateNFTOffer(r *CreateNFTOffer, vctx ValidationContext) error {
	if err := validateBase(&r.Base); err != nil {
		return err
	}
	if !isHash256(r.NFTokenID) {
		return apperr.Validation("NFTokenID", "must be a 256-bit hex identifier")
	}
	if err := validateFlags(r.Flags, "NFTokenCreateOffer"); err != nil {
		return err
	}

	sell := r.Flags.Has("NFTokenCreateOffer", TfSellNFToken)
	// a zero XRP sell offer gives the token away
	if err := validateAmount("amount", r.Amount, sell && r.Amount.IsNative()); err != nil {
		return err
	}

	if sell {
		if r.Owner != "" {
			return apperr.Validation("owner", "must be omitted for a sell offer")
		}
	} else {
		if err := validateAddress("owner", r.Owner, true); err != nil {
			return err
		}
		if vctx.Account != "" && r.Owner == vctx.Account {
			return apperr.Validation("owner", "must differ from the sending account")
		}
	}

	if err := validateAddress("destination", r.Destination, false); err != nil {
		return err
	}
	if r.Destination != "" && r.Destination == vctx.Account {
		return apperr.Validation("destination", "must differ from the sending account")
	}
	if r.Expiration != nil && *r.Expiration == 0 {
		return apperr.Validation("expiration", "must be greater than zero")
	}
	return nil
}

func validateCancelNFTOffer(r *CancelNFTOffer) error {
	if err := validateBase(&r.Base); err != nil {
		return err
	}
	if len(r.NFTokenOffers) == 0 {
		return apperr.Validation("NFTokenOffers", "must contain at least one offer")
	}
	seen := make(map[string]struct{}, len(r.NFTokenOffers))
	for i, id := range r.NFTokenOffers {
		if !isHash256(id) {
			return apperr.Validation(fmt.Sprintf("NFTokenOffers[%d]", i), "must be a 256-bit hex identifier")
		}
		key := strings.ToUpper(id)
		if _, dup := seen[key]; dup {
			return apperr.Validation("NFTokenOffers", "contains duplicate offer %s", id)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func validateAcceptNFTOffer(r *AcceptNFTOffer) error {
	if err := validateBase(&r.Base); err != nil {
		return err
	}
	if r.NFTokenBuyOffer == "" && r.NFTokenSellOffer == "" {
		return apperr.Validation("NFTokenSellOffer", "a buy or a sell offer is required")
	}
	if r.NFTokenBuyOffer != "" && !isHash256(r.NFTokenBuyOffer) {
		return apperr.Validation("NFTokenBuyOffer", "must be a 256-bit hex identifier")
	}
	if r.NFTokenSellOffer != "" && !isHash256(r.NFTokenSellOffer) {
		return apperr.Validation("NFTokenSellOffer", "must be a 256-bit hex identifier")
	}
	if r.NFTokenBrokerFee != nil {
		if r.NFTokenBuyOffer == "" || r.NFTokenSellOffer == "" {
			return apperr.Validation("NFTokenBrokerFee", "is only allowed when both offers are given")
		}
		if err := validateAmount("NFTokenBrokerFee", *r.NFTokenBrokerFee, false); err != nil {
			return err
		}
	}
	return nil
}

func validateBurnNFT(r *BurnNFT) error {
	if err := validateBase(&r.Base); err != nil {
		return err
	}
	if !isHash256(r.NFTokenID) {
		return apperr.Validation("NFTokenID", "must be a 256-bit hex identifier")
	}
	return validateAddress("owner", r.Owner, false)
}

func validateSetAccount(r *SetAccount) error {
	if err := validateBase(&r.Base); err != nil {
		return err
	}
	if err := validateFlags(r.Flags, "AccountSet"); err != nil {
		return err
	}
	if r.TickSize != nil && *r.TickSize != 0 && (*r.TickSize < MinTickSize || *r.TickSize > MaxTickSize) {
		return apperr.Validation("tickSize", "must be 0 or between %d and %d", MinTickSize, MaxTickSize)
	}
	if r.TransferRate != nil && *r.TransferRate != 0 && (*r.TransferRate < MinTransferRate || *r.TransferRate > MaxTransferRate) {
		return apperr.Validation("transferRate", "must be 0 or between %d and %d", MinTransferRate, MaxTransferRate)
	}
	if r.Domain != "" {
		if !isHexBytes(r.Domain) {
			return apperr.Validation("domain", "must be hex encoded")
		}
		if len(r.Domain)/2 > MaxDomainBytes {
			return apperr.Validation("domain", "must not exceed %d bytes", MaxDomainBytes)
		}
	}
	if r.EmailHash != "" && (len(r.EmailHash) != 32 || !isHexBytes(r.EmailHash)) {
		return apperr.Validation("emailHash", "must be a 128-bit hex value")
	}
	if r.MessageKey != "" {
		key, err := hex.DecodeString(r.MessageKey)
		if err != nil || len(key) != messageKeyLength {
			return apperr.Validation("messageKey", "must be a %d byte hex public key", messageKeyLength)
		}
		if key[0] != 0x02 && key[0] != 0x03 && key[0] != 0xED {
			return apperr.Validation("messageKey", "must be a secp256k1 or Ed25519 public key")
		}
	}
	if err := validateAddress("NFTokenMinter", r.NFTokenMinter, false); err != nil {
		return err
	}
	if r.SetFlag != nil && r.ClearFlag != nil && *r.SetFlag == *r.ClearFlag {
		return apperr.Validation("clearFlag", "cannot clear the flag being set")
	}
	return nil
}

func validateCreateOffer(r *CreateOffer) error {
	if err := validateBase(&r.Base); err != nil {
		return err
	}
	if err := validateFlags(r.Flags, "OfferCreate"); err != nil {
		return err
	}
	if err := validateAmount("takerGets", r.TakerGets, false); err != nil {
		return err
	}
	if err := validateAmount("takerPays", r.TakerPays, false); err != nil {
		return err
	}
	if r.TakerGets.IsNative() && r.TakerPays.IsNative() {
		return apperr.Validation("takerPays", "an offer cannot exchange XRP for XRP")
	}
	if r.Expiration != nil && *r.Expiration == 0 {
		return apperr.Validation("expiration", "must be greater than zero")
	}
	if r.OfferSequence != nil && *r.OfferSequence == 0 {
		return apperr.Validation("offerSequence", "must be greater than zero")
	}
	return nil
}

func validateCancelOffer(r *CancelOffer) error {
	if err := validateBase(&r.Base); err != nil {
		return err
	}
	if r.OfferSequence == 0 {
		return apperr.Validation("offerSequence", "is required")
	}
	return nil
}

func validateSubmitTransaction(r *SubmitTransaction, vctx ValidationContext) error {
	if len(r.Transaction) == 0 {
		return apperr.Validation("transaction", "is required")
	}
	if t, _ := r.Transaction["TransactionType"].(string); t == "" {
		return apperr.Validation("transaction.TransactionType", "is required")
	}
	if account, ok := r.Transaction["Account"]; ok {
		if s, _ := account.(string); s == "" || (vctx.Account != "" && s != vctx.Account) {
			return apperr.Validation("transaction.Account", "must be the wallet address")
		}
	}
	return nil
}

func validateAmount(field string, a amount.Amount, allowZero bool) error {
	if a.IsEmpty() {
		return apperr.Validation(field, "is required")
	}
	if err := a.Validate(); err != nil {
		return apperr.Validation(field, "%v", err)
	}
	if !a.IsNative() {
		if err := validateAddress(field+".issuer", a.Issued.Issuer, true); err != nil {
			return err
		}
	}
	if !allowZero && a.IsZero() {
		return apperr.Validation(field, "must be greater than zero")
	}
	return nil
}

func validateFlags(f *Flags, transactionType string) error {
	if _, err := f.Resolve(transactionType); err != nil {
		return apperr.Validation("flags", "%v", err)
	}
	return nil
}

func validateAddress(field, addr string, required bool) error {
	if addr == "" {
		if required {
			return apperr.Validation(field, "is required")
		}
		return nil
	}
	if !isAddress(addr) {
		return apperr.Validation(field, "%q is not a valid classic address", addr)
	}
	return nil
}

func isAddress(addr string) bool {
	return addresscodec.IsValidClassicAddress(addr)
}

func isHash256(s string) bool {
	return len(s) == 64 && isHexBytes(s)
}

func isHexBytes(s string) bool {
	if len(s)%2 != 0 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
