// Package dispatcher turns dApp requests into responses: it validates them,
// builds and signs the ledger transaction, submits it and waits for the
// outcome. At most one transaction per wallet is in flight.
package dispatcher

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/xrpl-commons/dapp-wallet/apperr"
	"github.com/xrpl-commons/dapp-wallet/builder"
	"github.com/xrpl-commons/dapp-wallet/metrics"
	"github.com/xrpl-commons/dapp-wallet/payload"
	"github.com/xrpl-commons/dapp-wallet/rpc"
	"github.com/xrpl-commons/dapp-wallet/types"
	"github.com/xrpl-commons/dapp-wallet/wallet"
	"go.uber.org/zap"
)

// WalletSource gives access to the active wallet of the session
type WalletSource interface {
	Wallet() (wallet.Signer, error)
	Network() types.Network
}

// Ledger is the read side of the ledger connection
type Ledger interface {
	AccountInfo(ctx context.Context, req *types.AccountInfoRequest) (*types.AccountInfoResult, error)
	AccountNFTs(ctx context.Context, req *types.AccountNFTsRequest) (*types.AccountNFTsResult, error)
	AccountTx(ctx context.Context, req *types.AccountTxRequest) (*types.AccountTxResult, error)
	Fee(ctx context.Context) (*types.FeeResult, error)
	LedgerCurrent(ctx context.Context) (uint32, error)
}

// Submitter sends a signed blob once and waits for its final outcome
type Submitter interface {
	SubmitAndWait(ctx context.Context, txBlob string, lastLedgerSequence uint32) (*rpc.Outcome, error)
}

type xAddresser interface {
	XAddress(tag *uint32, testnet bool) (string, error)
}

type Dispatcher struct {
	wallets   WalletSource
	ledger    Ledger
	submitter Submitter
	cfg       Config
	metrics   *metrics.Metrics

	mu    sync.Mutex
	locks map[string]chan struct{}

	logger *zap.Logger
}

func New(wallets WalletSource, ledger Ledger, submitter Submitter, cfg Config, m *metrics.Metrics, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		wallets:   wallets,
		ledger:    ledger,
		submitter: submitter,
		cfg:       cfg,
		metrics:   m,
		locks:     make(map[string]chan struct{}),
		logger:    logger,
	}
}

// DispatchRaw decodes a wire message of the given kind and dispatches it
func (d *Dispatcher) DispatchRaw(ctx context.Context, kind payload.Kind, raw json.RawMessage) *payload.Response {
	req, err := payload.Decode(kind, raw)
	if err != nil {
		d.metrics.ObserveRequest(string(kind), string(StateRejected), 0)
		return payload.NewReject(kind, payload.NewErrorInfo(err))
	}
	return d.Dispatch(ctx, req)
}

// Dispatch handles one request. It never returns nil: failures become a
// reject response in the shape of the request's protocol generation.
func (d *Dispatcher) Dispatch(ctx context.Context, req payload.Request) *payload.Response {
	if req == nil {
		return payload.NewReject("", payload.NewErrorInfo(apperr.Newf(apperr.KindBadRequest, "empty request")))
	}

	startTime := time.Now()
	kind := req.Kind()
	r := newRun(kind, d.logger)

	result, err := d.handle(ctx, r, req)
	if err == nil {
		var resp *payload.Response
		if resp, err = payload.NewResponse(kind, result); err == nil {
			r.transition(StateConfirmed)
			d.metrics.ObserveRequest(string(kind), string(StateConfirmed), time.Since(startTime))
			r.logger.Info("request confirmed", zap.Duration("duration", time.Since(startTime)))
			return resp
		}
		r.logger.Error("result does not match the response shape", zap.Error(err))
	}

	info := payload.NewErrorInfo(err)
	info.Sequence = r.sequence
	info.LastLedgerSequence = r.lastLedgerSequence

	r.transition(StateRejected)
	d.metrics.ObserveRequest(string(kind), string(StateRejected), time.Since(startTime))
	r.logger.Info("request rejected",
		zap.String("error_kind", string(info.Kind)),
		zap.String("field", info.Field),
		zap.String("code", info.Code),
		zap.Error(err))
	return payload.NewReject(kind, info)
}

func (d *Dispatcher) handle(ctx context.Context, r *run, req payload.Request) (any, error) {
	signer, walletErr := d.wallets.Wallet()

	vctx := payload.ValidationContext{}
	if walletErr == nil {
		vctx.Account = signer.Address()
	}
	modern, err := payload.Prepare(req, vctx)
	if err != nil {
		return nil, err
	}
	r.transition(StateValidated)

	// requests answered without a wallet
	switch q := modern.(type) {
	case *payload.IsInstalled:
		return &payload.IsInstalledResult{IsInstalled: true}, nil
	case *payload.Website:
		r.logger.Info("dApp website announced", zap.String("url", q.URL), zap.String("title", q.Title))
		return &payload.WebsiteResult{URL: q.URL}, nil
	case *payload.GetNetwork:
		return &payload.NetworkResult{Network: d.wallets.Network(), Websocket: d.cfg.Endpoint}, nil
	}

	if walletErr != nil {
		return nil, walletErr
	}

	switch q := modern.(type) {
	case *payload.GetAddress:
		return d.address(signer)
	case *payload.GetPublicKey:
		return &payload.PublicKeyResult{Address: signer.Address(), PublicKey: signer.PublicKey()}, nil
	case *payload.GetNFT:
		res, err := d.ledger.AccountNFTs(ctx, &types.AccountNFTsRequest{
			Account:     signer.Address(),
			LedgerIndex: "validated",
			Limit:       q.Limit,
			Marker:      q.Marker,
		})
		if err != nil {
			return nil, err
		}
		return &payload.NFTListResult{AccountNFTs: res.AccountNFTs, Marker: res.Marker}, nil
	case *payload.GetTransactions:
		res, err := d.ledger.AccountTx(ctx, &types.AccountTxRequest{
			Account:        signer.Address(),
			LedgerIndexMin: -1,
			LedgerIndexMax: -1,
			Limit:          q.Limit,
			Marker:         q.Marker,
		})
		if err != nil {
			return nil, err
		}
		return &payload.TransactionsResult{Transactions: res.Transactions, Marker: res.Marker}, nil
	case *payload.SignMessage:
		signed, err := signer.SignMessage(q.Message)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindWalletUnavailable, err, "The wallet could not sign the message.")
		}
		r.transition(StateSigned)
		return &payload.SignMessageResult{SignedMessage: signed}, nil
	}

	return d.submit(ctx, r, signer, modern)
}

func (d *Dispatcher) address(signer wallet.Signer) (*payload.AddressResult, error) {
	res := &payload.AddressResult{Address: signer.Address()}
	if x, ok := signer.(xAddresser); ok {
		xAddress, err := x.XAddress(nil, d.wallets.Network().IsTest())
		if err != nil {
			return nil, err
		}
		res.XAddress = xAddress
	}
	return res, nil
}

func (d *Dispatcher) submit(ctx context.Context, r *run, signer wallet.Signer, req payload.Request) (any, error) {
	tx, err := builder.Build(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBadRequest, err, err.Error())
	}
	r.transition(StateBuilt)

	release, err := d.acquire(ctx, signer.Address())
	if err != nil {
		return nil, err
	}
	defer release()

	if err := d.autofill(ctx, r, tx, signer); err != nil {
		return nil, err
	}

	blob, hash, err := signer.Sign(tx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindWalletUnavailable, err, "The wallet could not sign the transaction.")
	}
	r.transition(StateSigned)

	submitCtx, cancel := context.WithTimeout(ctx, d.cfg.SubmitTimeout)
	defer cancel()

	r.transition(StateSubmitted)
	r.logger.Debug("submitting transaction", zap.String("hash", hash))

	var lastLedgerSequence uint32
	if r.lastLedgerSequence != nil {
		lastLedgerSequence = *r.lastLedgerSequence
	}
	outcome, err := d.submitter.SubmitAndWait(submitCtx, blob, lastLedgerSequence)
	if err != nil {
		return nil, err
	}

	if _, ok := req.(*payload.MintNFT); ok {
		res := &payload.MintNFTResult{Hash: outcome.Hash}
		if outcome.Meta != nil {
			res.NFTokenID = outcome.Meta.NFTokenID
		}
		if res.NFTokenID == "" {
			r.logger.Warn("validated mint carries no nftoken_id", zap.String("hash", outcome.Hash))
		}
		return res, nil
	}
	return &payload.HashResult{Hash: outcome.Hash}, nil
}

// acquire takes the submission slot of an address. The returned func frees it.
func (d *Dispatcher) acquire(ctx context.Context, address string) (func(), error) {
	d.mu.Lock()
	slot, ok := d.locks[address]
	if !ok {
		slot = make(chan struct{}, 1)
		d.locks[address] = slot
	}
	d.mu.Unlock()

	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-ctx.Done():
		return nil, apperr.Wrap(apperr.KindTimeout, ctx.Err(), "Another transaction of this wallet is still pending.")
	}
}
