package rpc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xrpl-commons/dapp-wallet/apperr"
	"github.com/xrpl-commons/dapp-wallet/decoder"
	"github.com/xrpl-commons/dapp-wallet/types"
	"github.com/xrpl-commons/dapp-wallet/utils"
	"go.uber.org/zap"
)

// EngineError is a transaction the ledger refused or applied with a failure
// result. Its remote code is the engine result (temMALFORMED, tecNO_DST, ...).
type EngineError struct {
	Hash    string
	Result  string
	Message string
}

func (e *EngineError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("transaction %s failed with %s: %s", e.Hash, e.Result, e.Message)
	}
	return fmt.Sprintf("transaction %s failed with %s", e.Hash, e.Result)
}

func (e *EngineError) RemoteCode() string {
	return e.Result
}

// Outcome is a transaction found in a validated ledger with a success result
type Outcome struct {
	Hash        string
	LedgerIndex uint32
	Meta        *types.TxMeta
}

// Waiter submits signed transactions and polls until they are validated
type Waiter struct {
	client       *Client
	pollInterval time.Duration

	logger *zap.Logger
}

// NewWaiter creates a waiter polling every pollInterval
func NewWaiter(client *Client, pollInterval time.Duration, logger *zap.Logger) *Waiter {
	return &Waiter{
		client:       client,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// SubmitAndWait submits txBlob once and waits for its validation. The wait
// ends with a Timeout error once the open ledger passes lastLedgerSequence
// without the transaction, or when ctx is done. The blob is never resent.
func (w *Waiter) SubmitAndWait(ctx context.Context, txBlob string, lastLedgerSequence uint32) (*Outcome, error) {
	hash, err := decoder.TransactionHash(txBlob)
	if err != nil {
		return nil, err
	}

	submitted, err := w.client.Submit(ctx, txBlob)
	if err != nil {
		return nil, fmt.Errorf("submitting %s: %w", hash, err)
	}
	if echoed := submitted.Hash(); echoed != "" && !strings.EqualFold(echoed, hash) {
		w.logger.Warn("submitted hash differs from computed hash",
			zap.String("computed", hash),
			zap.String("echoed", echoed))
	}

	w.logger.Debug("transaction submitted",
		zap.String("hash", hash),
		zap.String("engine_result", submitted.EngineResult))

	if utils.IsFinalPreliminaryResult(submitted.EngineResult) {
		return nil, &EngineError{Hash: hash, Result: submitted.EngineResult, Message: submitted.EngineResultMessage}
	}

	// Poll until the transaction is validated or can no longer be
	sleepDuration := time.Duration(0)
	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %s: %w", hash, ctx.Err())
		case <-time.After(sleepDuration):
		}
		sleepDuration = w.pollInterval

		tx, err := w.client.Tx(ctx, hash)
		switch {
		case err == nil && tx.Validated:
			return w.outcome(hash, tx)
		case err == nil:
		case retryablePollError(err):
			w.logger.Debug("transaction not validated yet", zap.String("hash", hash), zap.Error(err))
		default:
			return nil, fmt.Errorf("looking up %s: %w", hash, err)
		}

		current, err := w.client.LedgerCurrent(ctx)
		if err != nil {
			if retryablePollError(err) {
				continue
			}
			return nil, fmt.Errorf("fetching current ledger: %w", err)
		}
		if lastLedgerSequence != 0 && current > lastLedgerSequence {
			return nil, apperr.Newf(apperr.KindTimeout,
				"Transaction %s was not validated by ledger %d.", hash, lastLedgerSequence)
		}
	}
}

func (w *Waiter) outcome(hash string, tx *types.TxResult) (*Outcome, error) {
	result := ""
	if tx.Meta != nil {
		result = tx.Meta.TransactionResult
	}

	w.logger.Info("transaction validated",
		zap.String("hash", hash),
		zap.Uint32("ledger_index", tx.LedgerIndex),
		zap.String("result", result))

	if !utils.IsSuccessResult(result) {
		return nil, &EngineError{Hash: hash, Result: result}
	}
	return &Outcome{Hash: hash, LedgerIndex: tx.LedgerIndex, Meta: tx.Meta}, nil
}

// retryablePollError reports errors that only mean "not there yet"
func retryablePollError(err error) bool {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound, apperr.KindTransport:
		return true
	}
	return false
}
