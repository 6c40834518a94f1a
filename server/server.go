// Package server exposes the wallet to dApps and to the wallet UI: the dApp
// protocol over a WebSocket, the synchronized account views, the content
// catalog, health and metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xrpl-commons/dapp-wallet/accountsync"
	"github.com/xrpl-commons/dapp-wallet/catalog"
	"github.com/xrpl-commons/dapp-wallet/payload"
	"github.com/xrpl-commons/dapp-wallet/types"
	"go.uber.org/zap"
)

// Dispatcher answers dApp protocol messages
type Dispatcher interface {
	DispatchRaw(ctx context.Context, kind payload.Kind, raw json.RawMessage) *payload.Response
}

// AccountView is the synchronized state of the session's account
type AccountView interface {
	Account() accountsync.AccountState
	NFTs() []types.AccountNFT
	Offers(nftID string) accountsync.OfferState
	RefreshAccount() bool
	RefreshNFTs() bool
	RefreshOffers(nftID string) bool
}

// Health reports whether the ledger connection is up
type Health interface {
	IsConnected() bool
}

type Config struct {
	ListenAddr   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// MaxInFlight bounds the pending dApp requests of one socket
	MaxInFlight int
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:   "127.0.0.1:8731",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		MaxInFlight:  16,
	}
}

type Server struct {
	cfg        Config
	dispatcher Dispatcher
	account    AccountView
	catalog    catalog.Catalog
	health     Health
	gatherer   prometheus.Gatherer
	logger     *zap.Logger

	// baseCtx outlives dApp sockets so a submission finishes when its socket closes
	baseCtx context.Context
}

// New creates a server. cat may be nil, in which case the catalog routes
// answer NotFound.
func New(cfg Config, dispatcher Dispatcher, account AccountView, cat catalog.Catalog, health Health, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 1
	}
	return &Server{
		cfg:        cfg,
		dispatcher: dispatcher,
		account:    account,
		catalog:    cat,
		health:     health,
		gatherer:   gatherer,
		logger:     logger,
		baseCtx:    context.Background(),
	}
}

// Handler returns the routes of the server
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.recoveryMiddleware)
	r.Use(s.loggingMiddleware)

	r.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)

	r.HandleFunc("/account", s.getAccount).Methods(http.MethodGet)
	r.HandleFunc("/account/refresh", s.refreshAccount).Methods(http.MethodPost)
	r.HandleFunc("/nfts", s.getNFTs).Methods(http.MethodGet)
	r.HandleFunc("/nfts/refresh", s.refreshNFTs).Methods(http.MethodPost)
	r.HandleFunc("/nfts/{nftId}/offers", s.getOffers).Methods(http.MethodGet)
	r.HandleFunc("/nfts/{nftId}/offers/refresh", s.refreshOffers).Methods(http.MethodPost)

	r.HandleFunc("/catalog/offers", s.getCatalogOffers).Methods(http.MethodGet)
	r.HandleFunc("/catalog/offers/{nftId}", s.getCatalogOffer).Methods(http.MethodGet)

	r.HandleFunc("/healthz", s.getHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return r
}

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	s.baseCtx = ctx

	httpServer := &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("wallet host listening", zap.String("listen_addr", s.cfg.ListenAddr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving on %s: %w", s.cfg.ListenAddr, err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down wallet host")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
