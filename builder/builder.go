// Package builder maps validated protocol requests onto ledger transactions
// in the flat JSON form accepted by the signer and the binary codec.
package builder

import (
	"fmt"
	"strings"

	xrpltx "github.com/Peersyst/xrpl-go/xrpl/transaction"
	"github.com/xrpl-commons/dapp-wallet/amount"
	"github.com/xrpl-commons/dapp-wallet/payload"
)

// Transaction types built by the wallet
const (
	TypePayment            = "Payment"
	TypeTrustSet           = "TrustSet"
	TypeNFTokenMint        = "NFTokenMint"
	TypeNFTokenCreateOffer = "NFTokenCreateOffer"
	TypeNFTokenCancelOffer = "NFTokenCancelOffer"
	TypeNFTokenAcceptOffer = "NFTokenAcceptOffer"
	TypeNFTokenBurn        = "NFTokenBurn"
	TypeAccountSet         = "AccountSet"
	TypeOfferCreate        = "OfferCreate"
	TypeOfferCancel        = "OfferCancel"
)

// Build maps a request of the current protocol generation to a ledger
// transaction. Autofilled fields (Account, Sequence, Fee, LastLedgerSequence,
// SigningPubKey) are left to the caller unless the request sets them.
func Build(req payload.Request) (xrpltx.FlatTransaction, error) {
	switch r := req.(type) {
	case *payload.SendPayment:
		return buildPayment(r)
	case *payload.SetTrustline:
		return buildTrustSet(r)
	case *payload.MintNFT:
		return buildNFTokenMint(r)
	case *payload.CreateNFTOffer:
		return buildNFTokenCreateOffer(r)
	case *payload.CancelNFTOffer:
		tx := newTx(TypeNFTokenCancelOffer, &r.Base)
		tx["NFTokenOffers"] = append([]string(nil), r.NFTokenOffers...)
		return tx, nil
	case *payload.AcceptNFTOffer:
		tx := newTx(TypeNFTokenAcceptOffer, &r.Base)
		setString(tx, "NFTokenBuyOffer", r.NFTokenBuyOffer)
		setString(tx, "NFTokenSellOffer", r.NFTokenSellOffer)
		if r.NFTokenBrokerFee != nil {
			tx["NFTokenBrokerFee"] = r.NFTokenBrokerFee.Flatten()
		}
		return tx, nil
	case *payload.BurnNFT:
		tx := newTx(TypeNFTokenBurn, &r.Base)
		tx["NFTokenID"] = r.NFTokenID
		setString(tx, "Owner", r.Owner)
		return tx, nil
	case *payload.SetAccount:
		return buildAccountSet(r)
	case *payload.CreateOffer:
		return buildOfferCreate(r)
	case *payload.CancelOffer:
		tx := newTx(TypeOfferCancel, &r.Base)
		tx["OfferSequence"] = r.OfferSequence
		return tx, nil
	case *payload.SubmitTransaction:
		tx := make(xrpltx.FlatTransaction, len(r.Transaction))
		for k, v := range r.Transaction {
			tx[k] = v
		}
		return tx, nil
	case *payload.SendPaymentDeprecated, *payload.SetTrustlineDeprecated:
		modern, err := payload.Normalize(r)
		if err != nil {
			return nil, err
		}
		return Build(modern)
	}
	return nil, fmt.Errorf("request %T does not build a transaction", req)
}

func buildPayment(r *payload.SendPayment) (xrpltx.FlatTransaction, error) {
	tx := newTx(TypePayment, &r.Base)
	tx["Amount"] = r.Amount.Flatten()
	tx["Destination"] = r.Destination
	setUint32(tx, "DestinationTag", r.DestinationTag)
	return tx, setFlags(tx, r.Flags, TypePayment)
}

func buildTrustSet(r *payload.SetTrustline) (xrpltx.FlatTransaction, error) {
	tx := newTx(TypeTrustSet, &r.Base)
	tx["LimitAmount"] = amount.Amount{Issued: &r.LimitAmount}.Flatten()
	return tx, setFlags(tx, r.Flags, TypeTrustSet)
}

func buildNFTokenMint(r *payload.MintNFT) (xrpltx.FlatTransaction, error) {
	tx := newTx(TypeNFTokenMint, &r.Base)
	tx["NFTokenTaxon"] = r.NFTokenTaxon
	setString(tx, "Issuer", r.Issuer)
	if r.TransferFee != nil {
		tx["TransferFee"] = uint16(*r.TransferFee)
	}
	setString(tx, "URI", strings.ToUpper(r.URI))
	return tx, setFlags(tx, r.Flags, TypeNFTokenMint)
}

func buildNFTokenCreateOffer(r *payload.CreateNFTOffer) (xrpltx.FlatTransaction, error) {
	tx := newTx(TypeNFTokenCreateOffer, &r.Base)
	tx["NFTokenID"] = r.NFTokenID
	tx["Amount"] = r.Amount.Flatten()
	setString(tx, "Owner", r.Owner)
	setString(tx, "Destination", r.Destination)
	setUint32(tx, "Expiration", r.Expiration)
	return tx, setFlags(tx, r.Flags, TypeNFTokenCreateOffer)
}

func buildAccountSet(r *payload.SetAccount) (xrpltx.FlatTransaction, error) {
	tx := newTx(TypeAccountSet, &r.Base)
	setUint32(tx, "ClearFlag", r.ClearFlag)
	setUint32(tx, "SetFlag", r.SetFlag)
	setString(tx, "Domain", strings.ToUpper(r.Domain))
	setString(tx, "EmailHash", strings.ToUpper(r.EmailHash))
	setString(tx, "MessageKey", strings.ToUpper(r.MessageKey))
	setString(tx, "NFTokenMinter", r.NFTokenMinter)
	if r.TickSize != nil {
		tx["TickSize"] = uint8(*r.TickSize)
	}
	setUint32(tx, "TransferRate", r.TransferRate)
	return tx, setFlags(tx, r.Flags, TypeAccountSet)
}

func buildOfferCreate(r *payload.CreateOffer) (xrpltx.FlatTransaction, error) {
	tx := newTx(TypeOfferCreate, &r.Base)
	tx["TakerGets"] = r.TakerGets.Flatten()
	tx["TakerPays"] = r.TakerPays.Flatten()
	setUint32(tx, "Expiration", r.Expiration)
	setUint32(tx, "OfferSequence", r.OfferSequence)
	return tx, setFlags(tx, r.Flags, TypeOfferCreate)
}

// newTx maps the shared transaction fields
func newTx(transactionType string, b *payload.Base) xrpltx.FlatTransaction {
	tx := xrpltx.FlatTransaction{
		"TransactionType": transactionType,
	}
	setString(tx, "Fee", b.Fee)
	setUint32(tx, "Sequence", b.Sequence)
	setUint32(tx, "TicketSequence", b.TicketSequence)
	setUint32(tx, "LastLedgerSequence", b.LastLedgerSequence)
	setString(tx, "AccountTxnID", b.AccountTxnID)
	setUint32(tx, "SourceTag", b.SourceTag)
	setString(tx, "SigningPubKey", b.SigningPubKey)
	setString(tx, "TxnSignature", b.TxnSignature)

	if len(b.Memos) > 0 {
		memos := make([]interface{}, 0, len(b.Memos))
		for _, m := range b.Memos {
			memo := map[string]interface{}{}
			setString(memo, "MemoData", strings.ToUpper(m.Memo.MemoData))
			setString(memo, "MemoFormat", strings.ToUpper(m.Memo.MemoFormat))
			setString(memo, "MemoType", strings.ToUpper(m.Memo.MemoType))
			memos = append(memos, map[string]interface{}{"Memo": memo})
		}
		tx["Memos"] = memos
	}

	if len(b.Signers) > 0 {
		signers := make([]interface{}, 0, len(b.Signers))
		for _, s := range b.Signers {
			signers = append(signers, map[string]interface{}{
				"Signer": map[string]interface{}{
					"Account":       s.Signer.Account,
					"TxnSignature":  s.Signer.TxnSignature,
					"SigningPubKey": s.Signer.SigningPubKey,
				},
			})
		}
		tx["Signers"] = signers
	}
	return tx
}

func setFlags(tx xrpltx.FlatTransaction, f *payload.Flags, transactionType string) error {
	if f == nil {
		return nil
	}
	v, err := f.Resolve(transactionType)
	if err != nil {
		return err
	}
	tx["Flags"] = v
	return nil
}

func setString(m map[string]interface{}, key, v string) {
	if v != "" {
		m[key] = v
	}
}

func setUint32(m map[string]interface{}, key string, v *uint32) {
	if v != nil {
		m[key] = *v
	}
}
