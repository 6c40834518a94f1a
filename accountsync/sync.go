// Package accountsync keeps the balance, reserves, NFT collection and NFT
// sell offers of the session's account in step with the ledger. It only reads
// from the ledger and never blocks its callers: refreshes run in the
// background and a result is dropped when a newer one for the same concern
// was applied first.
package accountsync

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xrpl-commons/dapp-wallet/amount"
	"github.com/xrpl-commons/dapp-wallet/metrics"
	"github.com/xrpl-commons/dapp-wallet/session"
	"github.com/xrpl-commons/dapp-wallet/types"
	"github.com/xrpl-commons/dapp-wallet/wallet"
	"go.uber.org/zap"
)

// Ledger is the set of queries the synchronizer issues
type Ledger interface {
	AccountInfo(ctx context.Context, req *types.AccountInfoRequest) (*types.AccountInfoResult, error)
	ServerInfo(ctx context.Context) (*types.ServerInfoResult, error)
	AllAccountNFTs(ctx context.Context, account string) ([]types.AccountNFT, error)
	NFTSellOffers(ctx context.Context, req *types.NFTOffersRequest) (*types.NFTOffersResult, error)
}

// Connection reports ledger connectivity. The channel receives the current
// state first.
type Connection interface {
	Subscribe() (<-chan bool, func())
}

// Session is the owner of the active wallet
type Session interface {
	Wallet() (wallet.Signer, error)
	Network() types.Network
	Subscribe() (<-chan session.Change, func())
}

type Config struct {
	// FetchTimeout bounds each background query
	FetchTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{FetchTimeout: 20 * time.Second}
}

type Synchronizer struct {
	ledger  Ledger
	conn    Connection
	session Session
	cfg     Config
	metrics *metrics.Metrics
	logger  *zap.Logger

	mu sync.Mutex
	// ctx is set while Run is active; fetches only start when it is
	ctx       context.Context
	connected bool
	signer    wallet.Signer

	accountGen    generation
	accountExists bool
	accountData   *types.AccountRoot
	reserves      *decimal.Decimal
	address       *AccountAddress

	nftsGen generation
	nfts    []types.AccountNFT

	offers map[string]*offerEntry

	inflight sync.WaitGroup
}

func New(ledger Ledger, conn Connection, sess Session, cfg Config, m *metrics.Metrics, logger *zap.Logger) *Synchronizer {
	return &Synchronizer{
		ledger:  ledger,
		conn:    conn,
		session: sess,
		cfg:     cfg,
		metrics: m,
		logger:  logger,
		offers:  make(map[string]*offerEntry),
	}
}

// Run follows connectivity and wallet changes until ctx is done, then waits
// for the fetches in flight.
func (s *Synchronizer) Run(ctx context.Context) error {
	connCh, unsubscribeConn := s.conn.Subscribe()
	defer unsubscribeConn()
	walletCh, unsubscribeWallet := s.session.Subscribe()
	defer unsubscribeWallet()

	s.mu.Lock()
	s.ctx = ctx
	s.resetLocked()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.ctx = nil
		s.connected = false
		s.mu.Unlock()
		s.inflight.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case connected, ok := <-connCh:
			if !ok {
				connCh = nil
				continue
			}
			s.setConnected(connected)

		case change, ok := <-walletCh:
			if !ok {
				walletCh = nil
				continue
			}
			s.logger.Info("wallet changed, resetting account state",
				zap.String("address", change.Address),
				zap.Uint64("wallet_generation", change.Generation))
			s.mu.Lock()
			s.resetLocked()
			s.startAllLocked()
			s.mu.Unlock()
		}
	}
}

// Wait blocks until the fetches started so far have resolved
func (s *Synchronizer) Wait() {
	s.inflight.Wait()
}

func (s *Synchronizer) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// RefreshAccount refetches the account and reserves. It reports whether a
// fetch was started, which needs a connection and a wallet.
func (s *Synchronizer) RefreshAccount() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startAccountLocked()
}

// RefreshNFTs refetches the NFT collection of the account
func (s *Synchronizer) RefreshNFTs() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startNFTsLocked()
}

// RefreshOffers refetches the sell offers of nftID. The NFT is followed from
// then on and refetched on reconnect.
func (s *Synchronizer) RefreshOffers(nftID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.offers[nftID]
	if !ok {
		entry = &offerEntry{}
		s.offers[nftID] = entry
	}
	return s.startOffersLocked(nftID, entry)
}

// Account returns a copy of the account state
func (s *Synchronizer) Account() AccountState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := AccountState{AccountExists: s.accountExists}
	if s.address != nil {
		address := *s.address
		state.AccountAddress = &address
	}
	if s.accountData != nil {
		data := *s.accountData
		state.AccountData = &data
		balance, err := amount.DropsToXRP(data.Balance)
		if err != nil {
			s.logger.Warn("unreadable account balance", zap.String("balance", data.Balance), zap.Error(err))
		} else {
			state.Balance = balance
		}
	}
	if s.reserves != nil {
		state.AccountReserves = json.Number(s.reserves.String())
	}
	return state
}

// NFTs returns the last fetched NFT collection
func (s *Synchronizer) NFTs() []types.AccountNFT {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.AccountNFT(nil), s.nfts...)
}

// Offers returns the sell offers of nftID and whether the account holds it
func (s *Synchronizer) Offers(nftID string) OfferState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := OfferState{NFTID: nftID, SellOffers: []types.NFTOffer{}, IsOwner: s.ownsLocked(nftID)}
	if entry, ok := s.offers[nftID]; ok {
		state.Followed = true
		state.SellOffers = append(state.SellOffers, entry.sellOffers...)
	}
	return state
}

func (s *Synchronizer) ownsLocked(nftID string) bool {
	for _, nft := range s.nfts {
		if strings.EqualFold(nft.NFTokenID, nftID) {
			return true
		}
	}
	return false
}

func (s *Synchronizer) setConnected(connected bool) {
	s.metrics.SetLedgerConnected(connected)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected == connected {
		return
	}
	s.connected = connected

	if !connected {
		s.logger.Info("ledger disconnected, keeping last known account state")
		return
	}
	s.logger.Info("ledger connected, refreshing account state")
	s.startAllLocked()
}

// resetLocked loads the current wallet and empties every view. Fetches in
// flight for the previous wallet are discarded.
func (s *Synchronizer) resetLocked() {
	s.signer = nil
	if signer, err := s.session.Wallet(); err == nil {
		s.signer = signer
	}

	s.accountGen.reset()
	s.accountExists = false
	s.accountData = nil
	s.reserves = nil
	s.address = nil
	if s.signer != nil {
		s.address = s.accountAddress(s.signer)
	}

	s.nftsGen.reset()
	s.nfts = nil

	for _, entry := range s.offers {
		entry.gen.reset()
		entry.sellOffers = nil
	}
}

func (s *Synchronizer) accountAddress(signer wallet.Signer) *AccountAddress {
	address := &AccountAddress{Address: signer.Address()}
	x, ok := signer.(interface {
		XAddress(tag *uint32, testnet bool) (string, error)
	})
	if !ok {
		return address
	}
	xAddress, err := x.XAddress(nil, s.session.Network().IsTest())
	if err != nil {
		s.logger.Warn("cannot encode x-address", zap.String("address", address.Address), zap.Error(err))
		return address
	}
	address.XAddress = xAddress
	return address
}

func (s *Synchronizer) readyLocked() bool {
	return s.ctx != nil && s.connected && s.signer != nil
}

func (s *Synchronizer) startAllLocked() {
	s.startAccountLocked()
	s.startNFTsLocked()
	for nftID, entry := range s.offers {
		s.startOffersLocked(nftID, entry)
	}
}

func (s *Synchronizer) startAccountLocked() bool {
	if !s.readyLocked() {
		return false
	}
	gen, address := s.accountGen.next(), s.signer.Address()
	s.spawn(func(ctx context.Context) { s.fetchAccount(ctx, gen, address) })
	return true
}

func (s *Synchronizer) startNFTsLocked() bool {
	if !s.readyLocked() {
		return false
	}
	gen, address := s.nftsGen.next(), s.signer.Address()
	s.spawn(func(ctx context.Context) { s.fetchNFTs(ctx, gen, address) })
	return true
}

func (s *Synchronizer) startOffersLocked(nftID string, entry *offerEntry) bool {
	if !s.readyLocked() {
		return false
	}
	gen := entry.gen.next()
	s.spawn(func(ctx context.Context) { s.fetchOffers(ctx, gen, nftID, entry) })
	return true
}

func (s *Synchronizer) spawn(fetch func(ctx context.Context)) {
	parent := s.ctx
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(parent, s.cfg.FetchTimeout)
		defer cancel()
		fetch(ctx)
	}()
}
