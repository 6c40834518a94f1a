package dispatcher

import (
	"context"
	"math/big"

	xrpltx "github.com/Peersyst/xrpl-go/xrpl/transaction"
	"github.com/shopspring/decimal"
	"github.com/xrpl-commons/dapp-wallet/amount"
	"github.com/xrpl-commons/dapp-wallet/apperr"
	"github.com/xrpl-commons/dapp-wallet/decoder"
	"github.com/xrpl-commons/dapp-wallet/types"
	"github.com/xrpl-commons/dapp-wallet/wallet"
	"go.uber.org/zap"
)

// autofill completes the fields the ledger needs and the dApp left out. Fields
// the request set are kept as they are.
func (d *Dispatcher) autofill(ctx context.Context, r *run, tx xrpltx.FlatTransaction, signer wallet.Signer) error {
	if !has(tx, "Account") {
		tx["Account"] = signer.Address()
	}
	if !has(tx, "SigningPubKey") {
		tx["SigningPubKey"] = signer.PublicKey()
	}

	if !has(tx, "Sequence") {
		if has(tx, "TicketSequence") {
			tx["Sequence"] = uint32(0)
		} else {
			info, err := d.ledger.AccountInfo(ctx, &types.AccountInfoRequest{
				Account:     signer.Address(),
				LedgerIndex: "current",
			})
			if err != nil {
				return err
			}
			tx["Sequence"] = info.AccountData.Sequence
		}
	}

	if !has(tx, "Fee") {
		fee, err := d.fee(ctx, r)
		if err != nil {
			return err
		}
		tx["Fee"] = fee
	}

	if !has(tx, "LastLedgerSequence") {
		current, err := d.ledger.LedgerCurrent(ctx)
		if err != nil {
			return err
		}
		tx["LastLedgerSequence"] = current + d.cfg.LedgerOffset
	}

	summary := decoder.Summarize(tx)
	sequence, lastLedgerSequence := summary.Sequence, summary.LastLedgerSequence
	if summary.TicketSequence != 0 {
		sequence = summary.TicketSequence
	}
	r.sequence = &sequence
	r.lastLedgerSequence = &lastLedgerSequence

	r.logger.Debug("transaction autofilled", summary.Fields()...)
	return nil
}

// fee returns the open ledger fee in drops, capped at MaxFeeDrops
func (d *Dispatcher) fee(ctx context.Context, r *run) (string, error) {
	res, err := d.ledger.Fee(ctx)
	if err != nil {
		return "", err
	}

	fee, err := amount.ParseDrops(res.Drops.OpenLedgerFee)
	if err != nil || fee.IsZero() {
		if fee, err = amount.ParseDrops(res.Drops.BaseFee); err != nil {
			return "", apperr.Wrap(apperr.KindTransport, err, "The ledger returned an unreadable fee.")
		}
	}

	maxFee := decimal.NewFromBigInt(new(big.Int).SetUint64(d.cfg.MaxFeeDrops), 0)
	if fee.GreaterThan(maxFee) {
		r.logger.Warn("open ledger fee above the cap",
			zap.String("open_ledger_fee", fee.String()),
			zap.Uint64("max_fee_drops", d.cfg.MaxFeeDrops))
		fee = maxFee
	}
	return fee.String(), nil
}

func has(tx xrpltx.FlatTransaction, field string) bool {
	v, ok := tx[field]
	return ok && v != nil && v != ""
}
