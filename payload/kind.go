package payload

// Kind is the wire name of a dApp protocol message
type Kind string

const (
	KindSendPayment            Kind = "REQUEST_SEND_PAYMENT/V3"
	KindSendPaymentDeprecated  Kind = "REQUEST_PAYMENT"
	KindSetTrustline           Kind = "REQUEST_SET_TRUSTLINE/V3"
	KindSetTrustlineDeprecated Kind = "REQUEST_TRUSTLINE"
	KindMintNFT                Kind = "REQUEST_MINT_NFT/V3"
	KindCreateNFTOffer         Kind = "REQUEST_CREATE_NFT_OFFER/V3"
	KindCancelNFTOffer         Kind = "REQUEST_CANCEL_NFT_OFFER/V3"
	KindAcceptNFTOffer         Kind = "REQUEST_ACCEPT_NFT_OFFER/V3"
	KindBurnNFT                Kind = "REQUEST_BURN_NFT/V3"
	KindSetAccount             Kind = "REQUEST_SET_ACCOUNT/V3"
	KindCreateOffer            Kind = "REQUEST_CREATE_OFFER/V3"
	KindCancelOffer            Kind = "REQUEST_CANCEL_OFFER/V3"
	KindSubmitTransaction      Kind = "REQUEST_SUBMIT_TRANSACTION/V3"
	KindSignMessage            Kind = "REQUEST_SIGN_MESSAGE/V3"
	KindSignMessageDeprecated  Kind = "REQUEST_SIGN_MESSAGE"
	KindGetNetwork             Kind = "REQUEST_GET_NETWORK/V3"
	KindGetNetworkDeprecated   Kind = "REQUEST_NETWORK"
	KindGetAddress             Kind = "REQUEST_GET_ADDRESS/V3"
	KindGetAddressDeprecated   Kind = "REQUEST_ADDRESS"
	KindGetPublicKey           Kind = "REQUEST_GET_PUBLIC_KEY/V3"
	KindGetPublicKeyDeprecated Kind = "REQUEST_PUBLIC_KEY"
	KindGetNFT                 Kind = "REQUEST_GET_NFT/V3"
	KindGetNFTDeprecated       Kind = "REQUEST_NFT"
	KindGetTransactions        Kind = "REQUEST_GET_TRANSACTIONS/V3"
	KindIsInstalled            Kind = "REQUEST_IS_INSTALLED"
	KindWebsite                Kind = "WEBSITE"
)

// Kinds lists every request kind in a stable order
func Kinds() []Kind {
	return []Kind{
		KindSendPayment, KindSendPaymentDeprecated,
		KindSetTrustline, KindSetTrustlineDeprecated,
		KindMintNFT, KindCreateNFTOffer, KindCancelNFTOffer, KindAcceptNFTOffer, KindBurnNFT,
		KindSetAccount, KindCreateOffer, KindCancelOffer, KindSubmitTransaction,
		KindSignMessage, KindSignMessageDeprecated,
		KindGetNetwork, KindGetNetworkDeprecated,
		KindGetAddress, KindGetAddressDeprecated,
		KindGetPublicKey, KindGetPublicKeyDeprecated,
		KindGetNFT, KindGetNFTDeprecated,
		KindGetTransactions, KindIsInstalled, KindWebsite,
	}
}

// New returns an empty request of the given kind, ready to be decoded into
func New(kind Kind) (Request, bool) {
	switch kind {
	case KindSendPayment:
		return &SendPayment{}, true
	case KindSendPaymentDeprecated:
		return &SendPaymentDeprecated{}, true
	case KindSetTrustline:
		return &SetTrustline{}, true
	case KindSetTrustlineDeprecated:
		return &SetTrustlineDeprecated{}, true
	case KindMintNFT:
		return &MintNFT{}, true
	case KindCreateNFTOffer:
		return &CreateNFTOffer{}, true
	case KindCancelNFTOffer:
		return &CancelNFTOffer{}, true
	case KindAcceptNFTOffer:
		return &AcceptNFTOffer{}, true
	case KindBurnNFT:
		return &BurnNFT{}, true
	case KindSetAccount:
		return &SetAccount{}, true
	case KindCreateOffer:
		return &CreateOffer{}, true
	case KindCancelOffer:
		return &CancelOffer{}, true
	case KindSubmitTransaction:
		return &SubmitTransaction{}, true
	case KindSignMessage:
		return &SignMessage{}, true
	case KindSignMessageDeprecated:
		return &SignMessageDeprecated{}, true
	case KindGetNetwork:
		return &GetNetwork{}, true
	case KindGetNetworkDeprecated:
		return &GetNetworkDeprecated{}, true
	case KindGetAddress:
		return &GetAddress{}, true
	case KindGetAddressDeprecated:
		return &GetAddressDeprecated{}, true
	case KindGetPublicKey:
		return &GetPublicKey{}, true
	case KindGetPublicKeyDeprecated:
		return &GetPublicKeyDeprecated{}, true
	case KindGetNFT:
		return &GetNFT{}, true
	case KindGetNFTDeprecated:
		return &GetNFTDeprecated{}, true
	case KindGetTransactions:
		return &GetTransactions{}, true
	case KindIsInstalled:
		return &IsInstalled{}, true
	case KindWebsite:
		return &Website{}, true
	}
	return nil, false
}

// IsDeprecated reports whether the kind belongs to the legacy protocol generation
func (k Kind) IsDeprecated() bool {
	s, ok := shapes[k]
	return ok && s.Deprecated
}

// Signs reports whether requests of this kind need the wallet's private key
func (k Kind) Signs() bool {
	switch k {
	case KindGetNetwork, KindGetNetworkDeprecated,
		KindGetAddress, KindGetAddressDeprecated,
		KindGetPublicKey, KindGetPublicKeyDeprecated,
		KindGetNFT, KindGetNFTDeprecated, KindGetTransactions,
		KindIsInstalled, KindWebsite:
		return false
	}
	return true
}

// Submits reports whether requests of this kind end in a ledger submission
func (k Kind) Submits() bool {
	return k.Signs() && k != KindSignMessage && k != KindSignMessageDeprecated
}
