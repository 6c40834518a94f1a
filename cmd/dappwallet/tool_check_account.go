package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/streamingfast/cli/sflags"
	"github.com/xrpl-commons/dapp-wallet/accountsync"
	"github.com/xrpl-commons/dapp-wallet/amount"
	"github.com/xrpl-commons/dapp-wallet/apperr"
	"github.com/xrpl-commons/dapp-wallet/rpc"
	"github.com/xrpl-commons/dapp-wallet/types"
	"github.com/xrpl-commons/dapp-wallet/utils"
	"go.uber.org/zap"
)

func NewToolCheckAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tool-check-account <address>",
		Short: "Check connectivity and show the state of an XRPL account",
		Long: `Connects to an XRPL JSON-RPC endpoint and prints the account state the
wallet host would serve: balance, reserves, NFTs and optionally their sell offers.

Examples:
  dappwallet tool-check-account rPEPPER7kfTD9w2To4CQk6UCfuHM9c6GDY

  # Use mainnet and list sell offers
  dappwallet tool-check-account rPEPPER7kfTD9w2To4CQk6UCfuHM9c6GDY --endpoint https://s1.ripple.com:51234/ --show-offers
`,
		Args: cobra.ExactArgs(1),
		RunE: runToolCheckAccount,
	}

	cmd.Flags().String("endpoint", "https://s.altnet.rippletest.net:51234/", "XRPL JSON-RPC endpoint URL")
	cmd.Flags().Int("max-nfts", 10, "Maximum number of NFTs to display")
	cmd.Flags().Bool("show-offers", false, "Fetch and display the sell offers of each displayed NFT")

	return cmd
}

func runToolCheckAccount(cmd *cobra.Command, args []string) error {
	address := args[0]
	endpoint := sflags.MustGetString(cmd, "endpoint")
	maxNFTs := sflags.MustGetInt(cmd, "max-nfts")
	showOffers := sflags.MustGetBool(cmd, "show-offers")

	logger, _ := zap.NewDevelopment()

	fmt.Printf("Connecting to XRPL endpoint: %s\n\n", endpoint)

	conn, err := rpc.NewHTTPConn(endpoint, logger)
	if err != nil {
		return fmt.Errorf("failed to create connection: %w", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := conn.Connect(ctx); err != nil {
		return err
	}
	client := rpc.NewClient(conn, logger)

	info, err := client.AccountInfo(ctx, &types.AccountInfoRequest{Account: address, LedgerIndex: "validated"})
	if apperr.KindOf(err) == apperr.KindNotFound {
		fmt.Printf("Account %s is not activated\n", address)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get account info: %w", err)
	}
	account := info.AccountData

	balance, err := amount.DropsToXRP(account.Balance)
	if err != nil {
		return fmt.Errorf("invalid balance: %w", err)
	}

	fmt.Printf("=== Account %s ===\n", account.Account)
	fmt.Printf("Balance:      %s XRP\n", balance)
	fmt.Printf("Sequence:     %d\n", account.Sequence)
	fmt.Printf("Owner Count:  %d\n", account.OwnerCount)
	fmt.Printf("Flags:        %d\n", account.Flags)
	fmt.Printf("Ledger Index: %d\n", info.LedgerIndex)

	serverInfo, err := client.ServerInfo(ctx)
	if err != nil {
		fmt.Printf("Reserves:     unavailable (%v)\n", err)
	} else if reserves, err := accountsync.AccountReserves(serverInfo, account.OwnerCount); err != nil {
		fmt.Printf("Reserves:     unavailable (%v)\n", err)
	} else {
		fmt.Printf("Reserves:     %s XRP\n", reserves.String())
	}

	nfts, err := client.AllAccountNFTs(ctx, address)
	if err != nil {
		return fmt.Errorf("failed to get account NFTs: %w", err)
	}
	fmt.Printf("\n=== NFTs (%d) ===\n", len(nfts))

	for i, nft := range nfts {
		if i >= maxNFTs {
			fmt.Printf("\n... and %d more NFTs\n", len(nfts)-i)
			break
		}

		fmt.Printf("\n--- NFT %d ---\n", i)
		fmt.Printf("ID:     %s\n", nft.NFTokenID)
		fmt.Printf("Issuer: %s\n", nft.Issuer)
		fmt.Printf("Taxon:  %d\n", nft.NFTokenTaxon)
		fmt.Printf("Serial: %d\n", nft.NFTSerial)
		if nft.URI != "" {
			fmt.Printf("URI:    %s\n", nft.URI)
		}

		if !showOffers {
			continue
		}
		offers, err := client.NFTSellOffers(ctx, &types.NFTOffersRequest{NFTID: nft.NFTokenID, LedgerIndex: "validated"})
		if apperr.KindOf(err) == apperr.KindNotFound {
			fmt.Printf("Sell offers: none\n")
			continue
		}
		if err != nil {
			fmt.Printf("Sell offers: failed (%v)\n", err)
			continue
		}
		for _, offer := range offers.Offers {
			fmt.Printf("Sell offer %s by %s: %v\n", offer.NFTOfferIndex, offer.Owner, offer.Amount)
			if offer.Expiration != 0 {
				fmt.Printf("  expires %s\n", utils.XRPLEpochToTime(uint64(offer.Expiration)).Format(time.RFC3339))
			}
		}
	}

	fmt.Printf("\nCheck completed successfully!\n")
	return nil
}
