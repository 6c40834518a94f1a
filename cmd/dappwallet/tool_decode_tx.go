package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/streamingfast/cli/sflags"
	"github.com/xrpl-commons/dapp-wallet/decoder"
	"github.com/xrpl-commons/dapp-wallet/utils"
	"go.uber.org/zap"
)

func NewToolDecodeTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tool-decode-tx <tx-blob-hex | @file>",
		Short: "Decode and display a signed XRPL transaction blob",
		Long: `Decodes a signed transaction blob, as submitted by the wallet host, and
displays its fields in a human-readable format. The blob can be read from a
file by prefixing its path with @.

Examples:
  dappwallet tool-decode-tx 12000022800000002400000001...
  dappwallet tool-decode-tx @signed.hex --meta 201C00000000F8E5110061...
`,
		Args: cobra.ExactArgs(1),
		RunE: runToolDecodeTx,
	}

	cmd.Flags().String("meta", "", "Transaction metadata blob (hex) to decode along with the transaction")
	cmd.Flags().Bool("show-raw", false, "Show every decoded field as JSON")

	return cmd
}

func runToolDecodeTx(cmd *cobra.Command, args []string) error {
	blob := args[0]
	if path, ok := strings.CutPrefix(blob, "@"); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading blob file: %w", err)
		}
		blob = string(data)
	}
	blob = strings.TrimSpace(blob)
	metaBlob := sflags.MustGetString(cmd, "meta")
	showRaw := sflags.MustGetBool(cmd, "show-raw")

	dec := decoder.NewDecoder(zap.NewNop())

	summary, err := dec.DecodeSigned(blob)
	if err != nil {
		return err
	}

	fmt.Printf("=== Transaction ===\n")
	fmt.Printf("Hash:        %s\n", summary.Hash)
	fmt.Printf("Type:        %s\n", summary.TransactionType)
	fmt.Printf("Account:     %s\n", summary.Account)
	fmt.Printf("Fee:         %s drops\n", summary.Fee)
	if summary.TicketSequence != 0 {
		fmt.Printf("Ticket:      %d\n", summary.TicketSequence)
	} else {
		fmt.Printf("Sequence:    %d\n", summary.Sequence)
	}
	fmt.Printf("Last Ledger: %d\n", summary.LastLedgerSequence)
	fmt.Printf("Flags:       %d\n", summary.Flags)
	fmt.Printf("Signed:      %v\n", summary.Signed)

	if summary.Destination != "" {
		fmt.Printf("Destination: %s\n", summary.Destination)
	}
	if summary.Amount != nil {
		fmt.Printf("Amount:      %s\n", summary.Amount)
	}
	if summary.LimitAmount != nil {
		fmt.Printf("Limit:       %s\n", summary.LimitAmount)
	}
	if summary.NFTokenID != "" {
		fmt.Printf("NFToken:     %s\n", summary.NFTokenID)
	}
	if summary.Expiration != 0 {
		expired := ""
		if summary.Expiration <= uint32(utils.TimeToXRPLEpoch(time.Now())) {
			expired = " (expired)"
		}
		fmt.Printf("Expiration:  %s%s\n", utils.XRPLEpochToTime(uint64(summary.Expiration)).Format(time.RFC3339), expired)
	}
	for i, memo := range summary.Memos {
		fmt.Printf("Memo %d:      %s\n", i, memo.Memo.MemoData)
	}

	if showRaw {
		flat, err := dec.DecodeTransactionFromHex(blob)
		if err != nil {
			return err
		}
		raw, err := json.MarshalIndent(flat, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding decoded fields: %w", err)
		}
		fmt.Printf("\n=== Fields ===\n%s\n", raw)
	}

	if metaBlob != "" {
		meta, err := dec.DecodeMetadataFromHex(metaBlob)
		if err != nil {
			return err
		}
		fmt.Printf("\n=== Metadata ===\n")
		fmt.Printf("Result: %s\n", dec.GetTransactionResult(metaBlob))
		if affectedNodes, ok := meta["AffectedNodes"].([]interface{}); ok {
			fmt.Printf("Affected Nodes: %d\n", len(affectedNodes))
		}
		if nftID, ok := meta["nftoken_id"].(string); ok {
			fmt.Printf("NFToken ID: %s\n", nftID)
		}
	}

	return nil
}
