package payload

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/xrpl-commons/dapp-wallet/apperr"
	"github.com/xrpl-commons/dapp-wallet/types"
)

// ResponseType tells a dApp whether the request was fulfilled
type ResponseType string

const (
	TypeResponse ResponseType = "response"
	TypeReject   ResponseType = "reject"
)

// HashResult is returned by every request that submits a transaction
type HashResult struct {
	Hash string `json:"hash"`
}

type MintNFTResult struct {
	Hash      string `json:"hash"`
	NFTokenID string `json:"NFTokenID"`
}

type NetworkResult struct {
	Network   types.Network `json:"network"`
	Websocket string        `json:"websocket"`
}

type AddressResult struct {
	Address  string `json:"address"`
	XAddress string `json:"xAddress,omitempty"`
}

type PublicKeyResult struct {
	Address   string `json:"address"`
	PublicKey string `json:"publicKey"`
}

type NFTListResult struct {
	AccountNFTs []types.AccountNFT `json:"account_nfts"`
	Marker      types.Marker       `json:"marker,omitempty"`
}

type TransactionsResult struct {
	Transactions []types.AccountTxEntry `json:"transactions"`
	Marker       types.Marker           `json:"marker,omitempty"`
}

type SignMessageResult struct {
	SignedMessage string `json:"signedMessage"`
}

type IsInstalledResult struct {
	IsInstalled bool `json:"isInstalled"`
}

type WebsiteResult struct {
	URL string `json:"url"`
}

// ErrorInfo explains a rejection. Sequence and LastLedgerSequence are set when
// a transaction was submitted, so the dApp can decide whether to resubmit.
type ErrorInfo struct {
	Kind               apperr.Kind        `json:"kind"`
	Message            string             `json:"message"`
	Status             int                `json:"status"`
	Disposition        apperr.Disposition `json:"disposition"`
	Field              string             `json:"field,omitempty"`
	Code               string             `json:"code,omitempty"`
	Sequence           *uint32            `json:"sequence,omitempty"`
	LastLedgerSequence *uint32            `json:"lastLedgerSequence,omitempty"`
}

// NewErrorInfo describes err in the local error vocabulary
func NewErrorInfo(err error) *ErrorInfo {
	e := apperr.Translate(err)
	if e == nil {
		e = apperr.New(apperr.KindUnknown)
	}
	return &ErrorInfo{
		Kind:        e.Kind,
		Message:     e.Message,
		Status:      e.Status(),
		Disposition: e.Kind.Disposition(),
		Field:       e.Field,
		Code:        e.Code,
	}
}

// Shape describes the response variant paired with a request kind
type Shape struct {
	Kind Kind
	// Deprecated shapes flatten the result to top-level nullable fields
	Deprecated bool
	resultType reflect.Type
	flatten    func(result any) map[string]any
}

// ResultType returns the Go type of the result carried by the response
func (s Shape) ResultType() reflect.Type {
	return s.resultType
}

func modern(kind Kind, zero any) Shape {
	return Shape{Kind: kind, resultType: reflect.TypeOf(zero)}
}

func legacy(kind Kind, zero any, flatten func(result any) map[string]any) Shape {
	return Shape{Kind: kind, Deprecated: true, resultType: reflect.TypeOf(zero), flatten: flatten}
}

func flattenHash(result any) map[string]any {
	var hash any
	if r, ok := result.(*HashResult); ok && r != nil {
		hash = r.Hash
	}
	return map[string]any{"hash": hash}
}

var shapes = map[Kind]Shape{
	KindSendPayment:            modern(KindSendPayment, &HashResult{}),
	KindSendPaymentDeprecated:  legacy(KindSendPaymentDeprecated, &HashResult{}, flattenHash),
	KindSetTrustline:           modern(KindSetTrustline, &HashResult{}),
	KindSetTrustlineDeprecated: legacy(KindSetTrustlineDeprecated, &HashResult{}, flattenHash),
	KindMintNFT:                modern(KindMintNFT, &MintNFTResult{}),
	KindCreateNFTOffer:         modern(KindCreateNFTOffer, &HashResult{}),
	KindCancelNFTOffer:         modern(KindCancelNFTOffer, &HashResult{}),
	KindAcceptNFTOffer:         modern(KindAcceptNFTOffer, &HashResult{}),
	KindBurnNFT:                modern(KindBurnNFT, &HashResult{}),
	KindSetAccount:             modern(KindSetAccount, &HashResult{}),
	KindCreateOffer:            modern(KindCreateOffer, &HashResult{}),
	KindCancelOffer:            modern(KindCancelOffer, &HashResult{}),
	KindSubmitTransaction:      modern(KindSubmitTransaction, &HashResult{}),
	KindSignMessage:            modern(KindSignMessage, &SignMessageResult{}),
	KindSignMessageDeprecated: legacy(KindSignMessageDeprecated, &SignMessageResult{}, func(result any) map[string]any {
		var signed any
		if r, ok := result.(*SignMessageResult); ok && r != nil {
			signed = r.SignedMessage
		}
		return map[string]any{"signedMessage": signed}
	}),
	KindGetNetwork: modern(KindGetNetwork, &NetworkResult{}),
	KindGetNetworkDeprecated: legacy(KindGetNetworkDeprecated, &NetworkResult{}, func(result any) map[string]any {
		var network any
		if r, ok := result.(*NetworkResult); ok && r != nil {
			network = r.Network
		}
		return map[string]any{"network": network}
	}),
	KindGetAddress: modern(KindGetAddress, &AddressResult{}),
	KindGetAddressDeprecated: legacy(KindGetAddressDeprecated, &AddressResult{}, func(result any) map[string]any {
		var address any
		if r, ok := result.(*AddressResult); ok && r != nil {
			address = r.Address
		}
		return map[string]any{"publicAddress": address}
	}),
	KindGetPublicKey: modern(KindGetPublicKey, &PublicKeyResult{}),
	KindGetPublicKeyDeprecated: legacy(KindGetPublicKeyDeprecated, &PublicKeyResult{}, func(result any) map[string]any {
		var address, publicKey any
		if r, ok := result.(*PublicKeyResult); ok && r != nil {
			address, publicKey = r.Address, r.PublicKey
		}
		return map[string]any{"address": address, "publicKey": publicKey}
	}),
	KindGetNFT: modern(KindGetNFT, &NFTListResult{}),
	KindGetNFTDeprecated: legacy(KindGetNFTDeprecated, &NFTListResult{}, func(result any) map[string]any {
		var nfts any
		if r, ok := result.(*NFTListResult); ok && r != nil {
			nfts = r.AccountNFTs
		}
		return map[string]any{"nfts": nfts}
	}),
	KindGetTransactions: modern(KindGetTransactions, &TransactionsResult{}),
	KindIsInstalled:     modern(KindIsInstalled, &IsInstalledResult{}),
	KindWebsite:         modern(KindWebsite, &WebsiteResult{}),
}

// ShapeOf returns the response shape paired with a request kind
func ShapeOf(kind Kind) (Shape, bool) {
	s, ok := shapes[kind]
	return s, ok
}

// Response is the outcome of one request, rendered in the shape of the
// request's protocol generation
type Response struct {
	Kind   Kind
	Type   ResponseType
	Result any
	Error  *ErrorInfo
}

// NewResponse builds a fulfilled response. The result must be of the type the
// kind's shape declares.
func NewResponse(kind Kind, result any) (*Response, error) {
	shape, ok := shapes[kind]
	if !ok {
		return nil, fmt.Errorf("no response shape for kind %q", kind)
	}
	if reflect.TypeOf(result) != shape.resultType {
		return nil, fmt.Errorf("kind %q responds with %s, got %T", kind, shape.resultType, result)
	}
	return &Response{Kind: kind, Type: TypeResponse, Result: result}, nil
}

// NewReject builds a rejection carrying the translated error
func NewReject(kind Kind, info *ErrorInfo) *Response {
	return &Response{Kind: kind, Type: TypeReject, Error: info}
}

func (r *Response) MarshalJSON() ([]byte, error) {
	shape, ok := shapes[r.Kind]
	if !ok {
		return nil, fmt.Errorf("no response shape for kind %q", r.Kind)
	}

	if shape.Deprecated {
		var result any
		if r.Type == TypeResponse {
			result = r.Result
		}
		flat := shape.flatten(result)
		if r.Error != nil {
			flat["error"] = r.Error
		}
		return json.Marshal(flat)
	}

	if r.Kind == KindIsInstalled && r.Type == TypeResponse {
		return json.Marshal(struct {
			Result any `json:"result"`
		}{r.Result})
	}

	out := struct {
		Type   ResponseType `json:"type"`
		Result any          `json:"result,omitempty"`
		Error  *ErrorInfo   `json:"error,omitempty"`
	}{Type: r.Type, Error: r.Error}
	if r.Type == TypeResponse {
		out.Result = r.Result
	}
	return json.Marshal(out)
}
