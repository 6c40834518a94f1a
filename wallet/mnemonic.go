package wallet

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/tyler-smith/go-bip39"
	"github.com/xrpl-commons/dapp-wallet/apperr"
)

// MnemonicWords is the length of generated recovery phrases
const MnemonicWords = 24

// NewMnemonic generates a fresh 24 word recovery phrase
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", fmt.Errorf("generating entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("encoding mnemonic: %w", err)
	}
	return mnemonic, nil
}

// Words splits a mnemonic into its ordered words
func Words(mnemonic string) []string {
	return strings.Fields(mnemonic)
}

// ValidateMnemonic checks the word count, the words against the wordlist and
// the checksum
func ValidateMnemonic(mnemonic string) error {
	if n := len(Words(mnemonic)); n != MnemonicWords {
		return apperr.Validation("mnemonic", "must have %d words, got %d", MnemonicWords, n)
	}
	if !bip39.IsMnemonicValid(normalizeMnemonic(mnemonic)) {
		return apperr.Validation("mnemonic", "is not a valid recovery phrase")
	}
	return nil
}

// Challenge asks the user to repeat one word of a mnemonic they recorded
type Challenge struct {
	// Index is zero based
	Index int

	mnemonic string
	words    []string
}

// NewChallenge picks a random word index of mnemonic
func NewChallenge(mnemonic string) (*Challenge, error) {
	if err := ValidateMnemonic(mnemonic); err != nil {
		return nil, err
	}
	words := Words(mnemonic)

	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(words))))
	if err != nil {
		return nil, fmt.Errorf("picking challenge index: %w", err)
	}
	return newChallengeAt(mnemonic, int(n.Int64())), nil
}

func newChallengeAt(mnemonic string, index int) *Challenge {
	return &Challenge{
		Index:    index,
		mnemonic: normalizeMnemonic(mnemonic),
		words:    Words(mnemonic),
	}
}

// Position is the one based word number shown to the user
func (c *Challenge) Position() int {
	return c.Index + 1
}

// Verify accepts exactly the word at the challenge index and derives the
// wallet from the full mnemonic
func (c *Challenge) Verify(word string) (*Wallet, error) {
	if word != c.words[c.Index] {
		return nil, apperr.Validation("word", "does not match word #%d", c.Position())
	}
	return FromMnemonic(c.mnemonic)
}

func normalizeMnemonic(mnemonic string) string {
	return strings.Join(Words(mnemonic), " ")
}
