// Package session owns the active wallet of a running wallet host. The
// dispatcher and the account synchronizer receive the session explicitly.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/xrpl-commons/dapp-wallet/apperr"
	"github.com/xrpl-commons/dapp-wallet/types"
	"github.com/xrpl-commons/dapp-wallet/wallet"
	"go.uber.org/zap"
)

// Change is sent to subscribers whenever the active wallet changes
type Change struct {
	// Address is empty when the session was locked
	Address    string
	Generation uint64
}

// Session holds the unlocked wallet and the network it talks to
type Session struct {
	logger  *zap.Logger
	network types.Network

	mu          sync.RWMutex
	signer      wallet.Signer
	generation  uint64
	subscribers map[chan Change]struct{}
}

func New(network types.Network, logger *zap.Logger) *Session {
	return &Session{
		logger:      logger,
		network:     network,
		subscribers: make(map[chan Change]struct{}),
	}
}

// Network returns the network the session is bound to
func (s *Session) Network() types.Network {
	return s.network
}

// Unlock derives the wallet from the mnemonic held by store
func (s *Session) Unlock(store Store) error {
	mnemonic, err := store.Load()
	if errors.Is(err, ErrNoWallet) || errors.Is(err, ErrBadPassword) {
		return apperr.Wrap(apperr.KindWalletUnavailable, err, err.Error())
	}
	if err != nil {
		return fmt.Errorf("loading wallet: %w", err)
	}

	w, err := wallet.FromMnemonic(mnemonic)
	if err != nil {
		return err
	}
	s.SetWallet(w)
	return nil
}

// SetWallet replaces the active wallet. A nil signer locks the session.
func (s *Session) SetWallet(signer wallet.Signer) {
	s.mu.Lock()
	s.signer = signer
	s.generation++
	change := Change{Generation: s.generation}
	if signer != nil {
		change.Address = signer.Address()
	}
	for ch := range s.subscribers {
		notify(ch, change)
	}
	s.mu.Unlock()

	s.logger.Info("session wallet changed",
		zap.String("address", change.Address),
		zap.Uint64("generation", change.Generation),
	)
}

// Lock forgets the active wallet
func (s *Session) Lock() {
	s.SetWallet(nil)
}

// Wallet returns the active signer or a WalletUnavailable error
func (s *Session) Wallet() (wallet.Signer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.signer == nil {
		return nil, apperr.New(apperr.KindWalletUnavailable)
	}
	return s.signer, nil
}

// Address returns the active address, or "" when locked
func (s *Session) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.signer == nil {
		return ""
	}
	return s.signer.Address()
}

// Subscribe returns a channel that receives the latest wallet change. Slow
// readers only see the most recent change. The returned func unsubscribes.
func (s *Session) Subscribe() (<-chan Change, func()) {
	ch := make(chan Change, 1)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
	}
}

func notify(ch chan Change, change Change) {
	for {
		select {
		case ch <- change:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
