// Package payload implements the dApp protocol: request and response payloads
// of both protocol generations, their validation and the legacy adapter.
package payload

import (
	"github.com/xrpl-commons/dapp-wallet/amount"
	"github.com/xrpl-commons/dapp-wallet/types"
)

// Request is one of the protocol request variants. The set is closed.
type Request interface {
	Kind() Kind
	request()
}

// Memo wraps an arbitrary hex-encoded payload attached to a transaction
type Memo struct {
	Memo MemoFields `json:"memo"`
}

type MemoFields struct {
	MemoData   string `json:"memoData,omitempty"`
	MemoFormat string `json:"memoFormat,omitempty"`
	MemoType   string `json:"memoType,omitempty"`
}

// Signer is one multi-signature entry
type Signer struct {
	Signer SignerFields `json:"signer"`
}

type SignerFields struct {
	Account       string `json:"account"`
	TxnSignature  string `json:"txnSignature"`
	SigningPubKey string `json:"signingPubKey"`
}

// Base holds the fields shared by every transaction-shaped request
type Base struct {
	// Fee in drops
	Fee                string   `json:"fee,omitempty"`
	Sequence           *uint32  `json:"sequence,omitempty"`
	TicketSequence     *uint32  `json:"ticketSequence,omitempty"`
	LastLedgerSequence *uint32  `json:"lastLedgerSequence,omitempty"`
	AccountTxnID       string   `json:"accountTxnID,omitempty"`
	Memos              []Memo   `json:"memos,omitempty"`
	Signers            []Signer `json:"signers,omitempty"`
	SourceTag          *uint32  `json:"sourceTag,omitempty"`
	SigningPubKey      string   `json:"signingPubKey,omitempty"`
	TxnSignature       string   `json:"txnSignature,omitempty"`
}

// Common returns the shared transaction fields
func (b *Base) Common() *Base { return b }

// Transaction is implemented by every request that is built into a ledger transaction
type Transaction interface {
	Request
	Common() *Base
}

type SendPayment struct {
	Base
	Amount         amount.Amount `json:"amount"`
	Destination    string        `json:"destination"`
	DestinationTag *uint32       `json:"destinationTag,omitempty"`
	Flags          *Flags        `json:"flags,omitempty"`
}

// SendPaymentDeprecated is the legacy payment shape. Amount is in XRP when
// Currency is empty, in units of the issued currency otherwise.
type SendPaymentDeprecated struct {
	Amount         string `json:"amount"`
	Destination    string `json:"destination"`
	Currency       string `json:"currency,omitempty"`
	Issuer         string `json:"issuer,omitempty"`
	DestinationTag string `json:"destinationTag,omitempty"`
	Memo           string `json:"memo,omitempty"`
}

type SetTrustline struct {
	Base
	LimitAmount amount.IssuedCurrencyAmount `json:"limitAmount"`
	Flags       *Flags                      `json:"flags,omitempty"`
}

// SetTrustlineDeprecated is the legacy trustline shape with flat fields
type SetTrustlineDeprecated struct {
	Currency string `json:"currency"`
	Fee      string `json:"fee,omitempty"`
	Issuer   string `json:"issuer"`
	Value    string `json:"value"`
}

type MintNFT struct {
	Base
	Flags        *Flags  `json:"flags,omitempty"`
	Issuer       string  `json:"issuer,omitempty"`
	NFTokenTaxon uint32  `json:"NFTokenTaxon"`
	TransferFee  *uint32 `json:"transferFee,omitempty"`
	// URI is hex encoded
	URI string `json:"URI,omitempty"`
}

type CreateNFTOffer struct {
	Base
	Amount      amount.Amount `json:"amount"`
	Destination string        `json:"destination,omitempty"`
	Expiration  *uint32       `json:"expiration,omitempty"`
	Flags       *Flags        `json:"flags,omitempty"`
	NFTokenID   string        `json:"NFTokenID"`
	Owner       string        `json:"owner,omitempty"`
}

type CancelNFTOffer struct {
	Base
	NFTokenOffers []string `json:"NFTokenOffers"`
}

type AcceptNFTOffer struct {
	Base
	NFTokenBrokerFee *amount.Amount `json:"NFTokenBrokerFee,omitempty"`
	NFTokenBuyOffer  string         `json:"NFTokenBuyOffer,omitempty"`
	NFTokenSellOffer string         `json:"NFTokenSellOffer,omitempty"`
}

type BurnNFT struct {
	Base
	NFTokenID string `json:"NFTokenID"`
	Owner     string `json:"owner,omitempty"`
}

type SetAccount struct {
	Base
	ClearFlag *uint32 `json:"clearFlag,omitempty"`
	// Domain is the hex encoded lower case ASCII domain
	Domain        string  `json:"domain,omitempty"`
	EmailHash     string  `json:"emailHash,omitempty"`
	Flags         *Flags  `json:"flags,omitempty"`
	MessageKey    string  `json:"messageKey,omitempty"`
	NFTokenMinter string  `json:"NFTokenMinter,omitempty"`
	SetFlag       *uint32 `json:"setFlag,omitempty"`
	TickSize      *uint32 `json:"tickSize,omitempty"`
	TransferRate  *uint32 `json:"transferRate,omitempty"`
}

type CreateOffer struct {
	Base
	Expiration    *uint32       `json:"expiration,omitempty"`
	Flags         *Flags        `json:"flags,omitempty"`
	OfferSequence *uint32       `json:"offerSequence,omitempty"`
	TakerGets     amount.Amount `json:"takerGets"`
	TakerPays     amount.Amount `json:"takerPays"`
}

type CancelOffer struct {
	Base
	OfferSequence uint32 `json:"offerSequence"`
}

// SubmitTransaction carries a transaction built by the dApp in ledger JSON form
type SubmitTransaction struct {
	Transaction map[string]any `json:"transaction"`
}

type SignMessage struct {
	Favicon string `json:"favicon,omitempty"`
	Message string `json:"message"`
	Title   string `json:"title,omitempty"`
	URL     string `json:"url,omitempty"`
}

type SignMessageDeprecated SignMessage

type GetNetwork struct {
	ID *int `json:"id,omitempty"`
}

type GetNetworkDeprecated GetNetwork

type GetAddress struct {
	ID *int `json:"id,omitempty"`
}

type GetAddressDeprecated GetAddress

type GetPublicKey struct {
	ID *int `json:"id,omitempty"`
}

type GetPublicKeyDeprecated GetPublicKey

type GetNFT struct {
	Limit  uint32       `json:"limit,omitempty"`
	Marker types.Marker `json:"marker,omitempty"`
}

type GetNFTDeprecated GetNFT

type GetTransactions struct {
	Limit  uint32       `json:"limit,omitempty"`
	Marker types.Marker `json:"marker,omitempty"`
}

type IsInstalled struct{}

// Website announces the page a dApp runs on. It is not a transaction.
type Website struct {
	Favicon string `json:"favicon,omitempty"`
	Title   string `json:"title"`
	URL     string `json:"url"`
}

func (*SendPayment) Kind() Kind            { return KindSendPayment }
func (*SendPaymentDeprecated) Kind() Kind  { return KindSendPaymentDeprecated }
func (*SetTrustline) Kind() Kind           { return KindSetTrustline }
func (*SetTrustlineDeprecated) Kind() Kind { return KindSetTrustlineDeprecated }
func (*MintNFT) Kind() Kind                { return KindMintNFT }
func (*CreateNFTOffer) Kind() Kind         { return KindCreateNFTOffer }
func (*CancelNFTOffer) Kind() Kind         { return KindCancelNFTOffer }
func (*AcceptNFTOffer) Kind() Kind         { return KindAcceptNFTOffer }
func (*BurnNFT) Kind() Kind                { return KindBurnNFT }
func (*SetAccount) Kind() Kind             { return KindSetAccount }
func (*CreateOffer) Kind() Kind            { return KindCreateOffer }
func (*CancelOffer) Kind() Kind            { return KindCancelOffer }
func (*SubmitTransaction) Kind() Kind      { return KindSubmitTransaction }
func (*SignMessage) Kind() Kind            { return KindSignMessage }
func (*SignMessageDeprecated) Kind() Kind  { return KindSignMessageDeprecated }
func (*GetNetwork) Kind() Kind             { return KindGetNetwork }
func (*GetNetworkDeprecated) Kind() Kind   { return KindGetNetworkDeprecated }
func (*GetAddress) Kind() Kind             { return KindGetAddress }
func (*GetAddressDeprecated) Kind() Kind   { return KindGetAddressDeprecated }
func (*GetPublicKey) Kind() Kind           { return KindGetPublicKey }
func (*GetPublicKeyDeprecated) Kind() Kind { return KindGetPublicKeyDeprecated }
func (*GetNFT) Kind() Kind                 { return KindGetNFT }
func (*GetNFTDeprecated) Kind() Kind       { return KindGetNFTDeprecated }
func (*GetTransactions) Kind() Kind        { return KindGetTransactions }
func (*IsInstalled) Kind() Kind            { return KindIsInstalled }
func (*Website) Kind() Kind                { return KindWebsite }

func (*SendPayment) request()            {}
func (*SendPaymentDeprecated) request()  {}
func (*SetTrustline) request()           {}
func (*SetTrustlineDeprecated) request() {}
func (*MintNFT) request()                {}
func (*CreateNFTOffer) request()         {}
func (*CancelNFTOffer) request()         {}
func (*AcceptNFTOffer) request()         {}
func (*BurnNFT) request()                {}
func (*SetAccount) request()             {}
func (*CreateOffer) request()            {}
func (*CancelOffer) request()            {}
func (*SubmitTransaction) request()      {}
func (*SignMessage) request()            {}
func (*SignMessageDeprecated) request()  {}
func (*GetNetwork) request()             {}
func (*GetNetworkDeprecated) request()   {}
func (*GetAddress) request()             {}
func (*GetAddressDeprecated) request()   {}
func (*GetPublicKey) request()           {}
func (*GetPublicKeyDeprecated) request() {}
func (*GetNFT) request()                 {}
func (*GetNFTDeprecated) request()       {}
func (*GetTransactions) request()        {}
func (*IsInstalled) request()            {}
func (*Website) request()                {}
