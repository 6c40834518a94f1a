package types

// AccountInfoRequest holds the account_info parameters
type AccountInfoRequest struct {
	Account     string `json:"account"`
	LedgerIndex string `json:"ledger_index,omitempty"`
	Strict      bool   `json:"strict,omitempty"`
}

type AccountInfoResult struct {
	AccountData        AccountRoot `json:"account_data"`
	LedgerCurrentIndex uint32      `json:"ledger_current_index,omitempty"`
	LedgerIndex        uint32      `json:"ledger_index,omitempty"`
	Validated          bool        `json:"validated"`
}

// AccountRoot is the AccountRoot ledger entry as returned by account_info
type AccountRoot struct {
	Account           string `json:"Account"`
	Balance           string `json:"Balance"`
	Flags             uint32 `json:"Flags"`
	OwnerCount        uint32 `json:"OwnerCount"`
	Sequence          uint32 `json:"Sequence"`
	PreviousTxnID     string `json:"PreviousTxnID,omitempty"`
	PreviousTxnLgrSeq uint32 `json:"PreviousTxnLgrSeq,omitempty"`
	AccountTxnID      string `json:"AccountTxnID,omitempty"`
	Domain            string `json:"Domain,omitempty"`
	EmailHash         string `json:"EmailHash,omitempty"`
	MessageKey        string `json:"MessageKey,omitempty"`
	TickSize          uint8  `json:"TickSize,omitempty"`
	TransferRate      uint32 `json:"TransferRate,omitempty"`
	NFTokenMinter     string `json:"NFTokenMinter,omitempty"`
	MintedNFTokens    uint32 `json:"MintedNFTokens,omitempty"`
	BurnedNFTokens    uint32 `json:"BurnedNFTokens,omitempty"`
	Index             string `json:"index,omitempty"`
}

// AccountNFTsRequest holds the account_nfts parameters
type AccountNFTsRequest struct {
	Account     string `json:"account"`
	LedgerIndex string `json:"ledger_index,omitempty"`
	Limit       uint32 `json:"limit,omitempty"`
	Marker      Marker `json:"marker,omitempty"`
}

type AccountNFTsResult struct {
	Account     string       `json:"account"`
	AccountNFTs []AccountNFT `json:"account_nfts"`
	Marker      Marker       `json:"marker,omitempty"`
	Limit       uint32       `json:"limit,omitempty"`
	Validated   bool         `json:"validated"`
}

// AccountNFT is one NFToken held by an account
type AccountNFT struct {
	Flags        uint32 `json:"Flags"`
	Issuer       string `json:"Issuer"`
	NFTokenID    string `json:"NFTokenID"`
	NFTokenTaxon uint32 `json:"NFTokenTaxon"`
	URI          string `json:"URI,omitempty"`
	NFTSerial    uint32 `json:"nft_serial"`
	TransferFee  uint16 `json:"TransferFee,omitempty"`
}

// NFTOffersRequest holds the nft_sell_offers / nft_buy_offers parameters
type NFTOffersRequest struct {
	NFTID       string `json:"nft_id"`
	LedgerIndex string `json:"ledger_index,omitempty"`
	Limit       uint32 `json:"limit,omitempty"`
	Marker      Marker `json:"marker,omitempty"`
}

type NFTOffersResult struct {
	NFTID  string     `json:"nft_id"`
	Offers []NFTOffer `json:"offers"`
	Marker Marker     `json:"marker,omitempty"`
}

// NFTOffer is a standing NFTokenOffer. Amount is drops or an issued amount object.
type NFTOffer struct {
	Amount        any    `json:"amount"`
	Flags         uint32 `json:"flags"`
	NFTOfferIndex string `json:"nft_offer_index"`
	Owner         string `json:"owner"`
	Destination   string `json:"destination,omitempty"`
	Expiration    uint32 `json:"expiration,omitempty"`
}

// AccountTxRequest holds the account_tx parameters
type AccountTxRequest struct {
	Account        string `json:"account"`
	LedgerIndexMin int64  `json:"ledger_index_min"`
	LedgerIndexMax int64  `json:"ledger_index_max"`
	Limit          uint32 `json:"limit,omitempty"`
	Marker         Marker `json:"marker,omitempty"`
	Forward        bool   `json:"forward,omitempty"`
}

type AccountTxResult struct {
	Account      string           `json:"account"`
	Transactions []AccountTxEntry `json:"transactions"`
	Marker       Marker           `json:"marker,omitempty"`
	Limit        uint32           `json:"limit,omitempty"`
	Validated    bool             `json:"validated"`
}

type AccountTxEntry struct {
	Meta      any            `json:"meta,omitempty"`
	Tx        map[string]any `json:"tx,omitempty"`
	TxJSON    map[string]any `json:"tx_json,omitempty"`
	Hash      string         `json:"hash,omitempty"`
	Validated bool           `json:"validated"`
}
