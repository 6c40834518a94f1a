package main

import (
	"github.com/spf13/cobra"
	"github.com/streamingfast/cli"
	. "github.com/streamingfast/cli"
	"github.com/streamingfast/logging"
	"go.uber.org/zap"
)

// Injected at build time
var version = "<missing>"

var logger, _ = logging.PackageLogger("dappwallet", "github.com/xrpl-commons/dapp-wallet")

func main() {
	logging.InstantiateLoggers(logging.WithDefaultLevel(zap.InfoLevel))

	Run(
		"dappwallet",
		"XRPL wallet host serving dApp requests",
		Description(`
			dappwallet holds an XRPL wallet and answers dApp requests over a local
			WebSocket ('dappwallet serve'). Requests are validated, built into
			transactions, autofilled, signed with the unlocked wallet and submitted
			until validated. The account, its NFTs and their sell offers are kept in
			sync with the ledger and exposed over HTTP next to an optional catalog
			of NFT offers.

			Every flag can also be given as an environment variable prefixed with
			DAPPWALLET_. The Notion catalog token is read from DAPPWALLET_NOTION_TOKEN.

			XRPL Endpoints:
			  Mainnet: wss://s1.ripple.com or https://s1.ripple.com:51234/
			  Testnet: wss://s.altnet.rippletest.net:51233
			  Devnet:  wss://s.devnet.rippletest.net:51233
		`),

		ConfigureVersion(version),
		ConfigureViper("DAPPWALLET"),

		CobraCmd(NewServeCmd(logger)),

		CobraCmd(NewToolNewWalletCmd()),
		CobraCmd(NewToolCheckAccountCmd()),
		CobraCmd(NewToolDecodeTxCmd()),

		OnCommandErrorLogAndExit(logger),
	)
}

func CobraCmd(cmd *cobra.Command) cli.CommandOption {
	return cli.CommandOptionFunc(func(parent *cobra.Command) {
		parent.AddCommand(cmd)
	})
}
