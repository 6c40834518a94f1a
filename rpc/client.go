package rpc

import (
	"context"
	"fmt"
	"time"

	"github.com/xrpl-commons/dapp-wallet/types"
	"go.uber.org/zap"
)

// maxNFTPages bounds AllAccountNFTs on accounts with very large collections
const maxNFTPages = 50

// Client issues typed rippled commands over a Conn
type Client struct {
	conn   Conn
	logger *zap.Logger
}

// NewClient creates a new XRPL RPC client on top of conn
func NewClient(conn Conn, logger *zap.Logger) *Client {
	return &Client{
		conn:   conn,
		logger: logger,
	}
}

// Conn returns the underlying connection
func (c *Client) Conn() Conn {
	return c.conn
}

func (c *Client) request(ctx context.Context, command string, params any, result any) error {
	startTime := time.Now()
	err := c.conn.Request(ctx, command, params, result)
	c.logger.Debug("request completed",
		zap.String("command", command),
		zap.Duration("duration", time.Since(startTime)),
		zap.Error(err))
	return err
}

// AccountInfo returns the AccountRoot of an account. Unfunded accounts fail
// with the actNotFound remote code.
func (c *Client) AccountInfo(ctx context.Context, req *types.AccountInfoRequest) (*types.AccountInfoResult, error) {
	var result types.AccountInfoResult
	if err := c.request(ctx, "account_info", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AccountNFTs returns one page of the NFTs owned by an account
func (c *Client) AccountNFTs(ctx context.Context, req *types.AccountNFTsRequest) (*types.AccountNFTsResult, error) {
	var result types.AccountNFTsResult
	if err := c.request(ctx, "account_nfts", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AllAccountNFTs follows the pagination marker until the collection is complete
func (c *Client) AllAccountNFTs(ctx context.Context, account string) ([]types.AccountNFT, error) {
	req := &types.AccountNFTsRequest{Account: account, LedgerIndex: "validated"}

	var nfts []types.AccountNFT
	for page := 0; page < maxNFTPages; page++ {
		result, err := c.AccountNFTs(ctx, req)
		if err != nil {
			return nil, err
		}
		nfts = append(nfts, result.AccountNFTs...)
		if result.Marker == nil {
			return nfts, nil
		}
		req.Marker = result.Marker
	}

	c.logger.Warn("account NFT listing truncated", zap.String("account", account), zap.Int("nft_count", len(nfts)))
	return nfts, nil
}

// NFTSellOffers lists the sell offers of an NFT. NFTs without offers fail
// with the objectNotFound remote code.
func (c *Client) NFTSellOffers(ctx context.Context, req *types.NFTOffersRequest) (*types.NFTOffersResult, error) {
	var result types.NFTOffersResult
	if err := c.request(ctx, "nft_sell_offers", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AccountTx returns one page of the transaction history of an account
func (c *Client) AccountTx(ctx context.Context, req *types.AccountTxRequest) (*types.AccountTxResult, error) {
	var result types.AccountTxResult
	if err := c.request(ctx, "account_tx", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Submit sends a signed blob and returns the preliminary result
func (c *Client) Submit(ctx context.Context, txBlob string) (*types.SubmitResult, error) {
	var result types.SubmitResult
	if err := c.request(ctx, "submit", &types.SubmitRequest{TxBlob: txBlob}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Tx looks a transaction up by hash
func (c *Client) Tx(ctx context.Context, hash string) (*types.TxResult, error) {
	var result types.TxResult
	if err := c.request(ctx, "tx", types.NewTxRequest(hash, false), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Fee returns the current transaction cost
func (c *Client) Fee(ctx context.Context) (*types.FeeResult, error) {
	var result types.FeeResult
	if err := c.request(ctx, "fee", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// LedgerCurrent returns the index of the open ledger
func (c *Client) LedgerCurrent(ctx context.Context) (uint32, error) {
	var result types.LedgerCurrentResult
	if err := c.request(ctx, "ledger_current", nil, &result); err != nil {
		return 0, err
	}
	if result.LedgerCurrentIndex == 0 {
		return 0, fmt.Errorf("ledger_current returned no index")
	}
	return result.LedgerCurrentIndex, nil
}

// ServerInfo returns server information including the reserve settings
func (c *Client) ServerInfo(ctx context.Context) (*types.ServerInfoResult, error) {
	var result types.ServerInfoResult
	if err := c.request(ctx, "server_info", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
