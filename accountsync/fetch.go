package accountsync

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xrpl-commons/dapp-wallet/apperr"
	"github.com/xrpl-commons/dapp-wallet/metrics"
	"github.com/xrpl-commons/dapp-wallet/types"
	"go.uber.org/zap"
)

func (s *Synchronizer) fetchAccount(ctx context.Context, gen uint64, address string) {
	info, err := s.ledger.AccountInfo(ctx, &types.AccountInfoRequest{Account: address, LedgerIndex: "validated"})

	var reserves *decimal.Decimal
	if err == nil {
		reserves = s.fetchReserves(ctx, info.AccountData.OwnerCount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.accountGen.apply(gen) {
		s.superseded(ConcernAccount, gen)
		return
	}

	if err != nil {
		switch kind := apperr.KindOf(err); {
		case keepsLastKnown(kind):
			s.failed(ConcernAccount, gen, err)
			return
		case kind == apperr.KindNotFound:
			s.logger.Info("account not found on ledger", zap.String("address", address))
			s.metrics.ObserveSyncFetch(ConcernAccount, metrics.SyncApplied)
		default:
			s.cleared(ConcernAccount, gen, err)
		}
		s.accountExists = false
		s.accountData = nil
		s.reserves = nil
		return
	}

	s.accountExists = true
	s.accountData = &info.AccountData
	if reserves != nil {
		s.reserves = reserves
	}
	s.metrics.ObserveSyncFetch(ConcernAccount, metrics.SyncApplied)
	s.logger.Debug("account state applied",
		zap.String("address", address),
		zap.Uint64("generation", gen),
		zap.String("balance_drops", info.AccountData.Balance),
		zap.Uint32("owner_count", info.AccountData.OwnerCount))
}

// fetchReserves returns nil when server_info fails, leaving the last known
// reserves in place
func (s *Synchronizer) fetchReserves(ctx context.Context, ownerCount uint32) *decimal.Decimal {
	res, err := s.ledger.ServerInfo(ctx)
	if err == nil {
		var reserves decimal.Decimal
		if reserves, err = AccountReserves(res, ownerCount); err == nil {
			return &reserves
		}
	}
	s.logger.Warn("cannot compute account reserves", zap.Error(err))
	return nil
}

// AccountReserves is the XRP an account must keep: the base reserve plus one
// owner reserve per owned ledger object
func AccountReserves(info *types.ServerInfoResult, ownerCount uint32) (decimal.Decimal, error) {
	validated := info.Info.ValidatedLedger
	if validated == nil {
		return decimal.Zero, fmt.Errorf("server has no validated ledger")
	}
	base, err := decimal.NewFromString(validated.ReserveBaseXRP.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing reserve_base_xrp %q: %w", validated.ReserveBaseXRP, err)
	}
	inc, err := decimal.NewFromString(validated.ReserveIncXRP.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing reserve_inc_xrp %q: %w", validated.ReserveIncXRP, err)
	}
	return base.Add(inc.Mul(decimal.NewFromInt(int64(ownerCount)))), nil
}

func (s *Synchronizer) fetchNFTs(ctx context.Context, gen uint64, address string) {
	nfts, err := s.ledger.AllAccountNFTs(ctx, address)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.nftsGen.apply(gen) {
		s.superseded(ConcernNFTs, gen)
		return
	}
	if err != nil {
		switch kind := apperr.KindOf(err); {
		case keepsLastKnown(kind):
			s.failed(ConcernNFTs, gen, err)
			return
		case kind != apperr.KindNotFound:
			s.cleared(ConcernNFTs, gen, err)
			s.nfts = nil
			return
		}
		nfts = nil
	}

	s.nfts = nfts
	s.metrics.ObserveSyncFetch(ConcernNFTs, metrics.SyncApplied)
	s.logger.Debug("nft collection applied", zap.String("address", address), zap.Uint64("generation", gen), zap.Int("nft_count", len(nfts)))
}

func (s *Synchronizer) fetchOffers(ctx context.Context, gen uint64, nftID string, entry *offerEntry) {
	res, err := s.ledger.NFTSellOffers(ctx, &types.NFTOffersRequest{NFTID: nftID, LedgerIndex: "validated"})

	s.mu.Lock()
	defer s.mu.Unlock()

	if !entry.gen.apply(gen) {
		s.superseded(ConcernOffers, gen)
		return
	}

	// an NFT without offers is reported as objectNotFound
	offers := []types.NFTOffer{}
	if err != nil {
		switch kind := apperr.KindOf(err); {
		case keepsLastKnown(kind):
			s.failed(ConcernOffers, gen, err, zap.String("nft_id", nftID))
			return
		case kind != apperr.KindNotFound:
			s.cleared(ConcernOffers, gen, err, zap.String("nft_id", nftID))
			entry.sellOffers = offers
			return
		}
	} else if res.Offers != nil {
		offers = res.Offers
	}

	entry.sellOffers = offers
	s.metrics.ObserveSyncFetch(ConcernOffers, metrics.SyncApplied)
	s.logger.Debug("sell offers applied", zap.String("nft_id", nftID), zap.Uint64("generation", gen), zap.Int("offer_count", len(offers)))
}

func (s *Synchronizer) superseded(concern string, gen uint64) {
	s.metrics.ObserveSyncFetch(concern, metrics.SyncSuperseded)
	s.logger.Debug("dropping superseded result",
		zap.String("concern", concern),
		zap.Uint64("generation", gen),
		zap.Error(apperr.ErrSuperseded))
}

// keepsLastKnown reports whether a failed fetch leaves the previous state in
// place. Only a lost or slow connection does; the ledger answering with an
// error clears the concern.
func keepsLastKnown(kind apperr.Kind) bool {
	return kind == apperr.KindTransport || kind == apperr.KindTimeout
}

// failed keeps the last known state of the concern
func (s *Synchronizer) failed(concern string, gen uint64, err error, fields ...zap.Field) {
	e := apperr.Translate(err)
	s.metrics.ObserveSyncFetch(concern, metrics.SyncFailed)
	s.logger.Warn("account sync fetch failed, keeping last known state", append(fields,
		zap.String("concern", concern),
		zap.Uint64("generation", gen),
		zap.String("error_kind", string(e.Kind)),
		zap.Error(err))...)
}

// cleared logs a failure that reset the concern to its empty state
func (s *Synchronizer) cleared(concern string, gen uint64, err error, fields ...zap.Field) {
	e := apperr.Translate(err)
	s.metrics.ObserveSyncFetch(concern, metrics.SyncFailed)
	s.logger.Warn("account sync fetch failed, clearing state", append(fields,
		zap.String("concern", concern),
		zap.Uint64("generation", gen),
		zap.String("error_kind", string(e.Kind)),
		zap.Error(err))...)
}
