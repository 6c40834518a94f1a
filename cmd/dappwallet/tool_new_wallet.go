package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/streamingfast/cli/sflags"
	"github.com/xrpl-commons/dapp-wallet/session"
	"github.com/xrpl-commons/dapp-wallet/types"
	"github.com/xrpl-commons/dapp-wallet/wallet"
)

func NewToolNewWalletCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tool-new-wallet",
		Short: "Create or import a wallet and store it in an encrypted keystore",
		Long: `Generates a 24 word recovery phrase, asks for one of its words to make sure
it was written down, then stores it in the keystore used by 'dappwallet serve'.
An existing phrase can be imported with --import, it is then read from stdin.

Examples:
  # Create a wallet
  dappwallet tool-new-wallet --keystore-path ~/.dappwallet/keystore.json --keystore-password secret

  # Import a wallet
  echo "$PHRASE" | dappwallet tool-new-wallet --import --keystore-path ./keystore.json --keystore-password secret
`,
		RunE: runToolNewWallet,
	}

	cmd.Flags().String("keystore-path", "", "Path of the keystore to write")
	cmd.Flags().String("keystore-password", "", "Password of the keystore")
	cmd.Flags().Bool("import", false, "Read an existing recovery phrase from stdin instead of generating one")
	cmd.Flags().String("network", string(types.Testnet), "Network used to render the X-address")

	return cmd
}

func runToolNewWallet(cmd *cobra.Command, args []string) error {
	keystorePath := sflags.MustGetString(cmd, "keystore-path")
	password := sflags.MustGetString(cmd, "keystore-password")
	if keystorePath == "" || password == "" {
		return fmt.Errorf("--keystore-path and --keystore-password are required")
	}
	network, err := types.ParseNetwork(sflags.MustGetString(cmd, "network"))
	if err != nil {
		return err
	}

	in := bufio.NewReader(os.Stdin)

	var w *wallet.Wallet
	var mnemonic string
	if sflags.MustGetBool(cmd, "import") {
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading recovery phrase: %w", err)
		}
		mnemonic = strings.TrimSpace(line)
		if err := wallet.ValidateMnemonic(mnemonic); err != nil {
			return err
		}
		if w, err = wallet.FromMnemonic(mnemonic); err != nil {
			return err
		}
	} else {
		if mnemonic, err = wallet.NewMnemonic(); err != nil {
			return err
		}

		fmt.Println("Write down your recovery phrase:")
		fmt.Println()
		for i, word := range wallet.Words(mnemonic) {
			fmt.Printf("  %2d. %s\n", i+1, word)
		}
		fmt.Println()

		challenge, err := wallet.NewChallenge(mnemonic)
		if err != nil {
			return err
		}
		fmt.Printf("Enter word #%d: ", challenge.Position())
		word, err := in.ReadString('\n')
		if err != nil && word == "" {
			return fmt.Errorf("reading challenge word: %w", err)
		}
		if w, err = challenge.Verify(strings.TrimSpace(word)); err != nil {
			return err
		}
	}

	if err := session.NewFileStore(keystorePath, password).Save(mnemonic); err != nil {
		return fmt.Errorf("saving keystore: %w", err)
	}

	fmt.Printf("\n=== Wallet ===\n")
	fmt.Printf("Address:    %s\n", w.Address())
	if xAddress, err := w.XAddress(nil, network.IsTest()); err == nil {
		fmt.Printf("X-Address:  %s\n", xAddress)
	}
	fmt.Printf("Public Key: %s\n", w.PublicKey())
	fmt.Printf("Keystore:   %s\n", keystorePath)
	return nil
}
