// Package wallet derives the signing identity of a session from its recovery
// phrase. It holds no network state.
package wallet

import (
	"encoding/hex"
	"fmt"

	addresscodec "github.com/Peersyst/xrpl-go/address-codec"
	"github.com/Peersyst/xrpl-go/keypairs"
	xrpltx "github.com/Peersyst/xrpl-go/xrpl/transaction"
	xrplwallet "github.com/Peersyst/xrpl-go/xrpl/wallet"
)

// Signer is the signing capability the dispatcher needs from a wallet
type Signer interface {
	Address() string
	PublicKey() string
	Sign(tx xrpltx.FlatTransaction) (txBlob string, hash string, err error)
	SignMessage(message string) (string, error)
}

// Wallet is a keypair derived from a mnemonic
type Wallet struct {
	address    string
	publicKey  string
	privateKey string
	sign       func(tx map[string]interface{}) (string, string, error)
}

var _ Signer = (*Wallet)(nil)

// FromMnemonic derives the wallet on the ledger's BIP44 path
// (m/44'/144'/0'/0/0). The same mnemonic always yields the same address.
func FromMnemonic(mnemonic string) (*Wallet, error) {
	if err := ValidateMnemonic(mnemonic); err != nil {
		return nil, err
	}

	w, err := xrplwallet.FromMnemonic(normalizeMnemonic(mnemonic))
	if err != nil {
		return nil, fmt.Errorf("deriving wallet: %w", err)
	}

	return &Wallet{
		address:    w.ClassicAddress.String(),
		publicKey:  w.PublicKey,
		privateKey: w.PrivateKey,
		sign:       w.Sign,
	}, nil
}

// Address returns the classic address
func (w *Wallet) Address() string {
	return w.address
}

// PublicKey returns the hex encoded public key
func (w *Wallet) PublicKey() string {
	return w.publicKey
}

// XAddress encodes the classic address with an optional destination tag.
// Test networks use the T prefix.
func (w *Wallet) XAddress(tag *uint32, testnet bool) (string, error) {
	var t uint32
	if tag != nil {
		t = *tag
	}
	x, err := addresscodec.ClassicAddressToXAddress(w.address, t, tag != nil, testnet)
	if err != nil {
		return "", fmt.Errorf("encoding x-address: %w", err)
	}
	return x, nil
}

// Sign signs a fully autofilled transaction and returns the blob and its hash
func (w *Wallet) Sign(tx xrpltx.FlatTransaction) (string, string, error) {
	blob, hash, err := w.sign(tx)
	if err != nil {
		return "", "", fmt.Errorf("signing %v: %w", tx["TransactionType"], err)
	}
	return blob, hash, nil
}

// SignMessage signs an arbitrary UTF-8 message and returns the hex signature
func (w *Wallet) SignMessage(message string) (string, error) {
	sig, err := keypairs.Sign(hex.EncodeToString([]byte(message)), w.privateKey)
	if err != nil {
		return "", fmt.Errorf("signing message: %w", err)
	}
	return sig, nil
}
