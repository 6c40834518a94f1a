package accountsync

import (
	"encoding/json"

	"github.com/xrpl-commons/dapp-wallet/types"
)

// Concerns are refreshed independently, each with its own generation counter
const (
	ConcernAccount = "account"
	ConcernNFTs    = "nfts"
	ConcernOffers  = "offers"
)

type AccountAddress struct {
	Address  string `json:"address"`
	XAddress string `json:"xAddress,omitempty"`
}

// AccountState is the reconciled view of the session's account. Balance is in
// XRP, derived from the drops balance of AccountData when the state is read.
type AccountState struct {
	AccountExists   bool               `json:"accountExists"`
	Balance         string             `json:"balance,omitempty"`
	AccountData     *types.AccountRoot `json:"accountData,omitempty"`
	AccountReserves json.Number        `json:"accountReserves,omitempty"`
	AccountAddress  *AccountAddress    `json:"accountAddress,omitempty"`
}

// OfferState is the sell-offer view of one NFT. IsOwner comes from the last
// fetched NFT collection of the account. Followed is set once offers of the
// NFT were requested.
type OfferState struct {
	NFTID      string           `json:"nftId"`
	SellOffers []types.NFTOffer `json:"sellOffers"`
	IsOwner    bool             `json:"isOwner"`
	Followed   bool             `json:"-"`
}

// generation versions the fetches of one concern. A result is applied only
// when it is newer than the last applied one.
type generation struct {
	requested uint64
	applied   uint64
}

// next numbers a new fetch
func (g *generation) next() uint64 {
	g.requested++
	return g.requested
}

// apply records gen as applied unless a newer result already was
func (g *generation) apply(gen uint64) bool {
	if gen <= g.applied {
		return false
	}
	g.applied = gen
	return true
}

// reset discards every fetch started so far
func (g *generation) reset() {
	g.applied = g.requested
}

type offerEntry struct {
	gen        generation
	sellOffers []types.NFTOffer
}
