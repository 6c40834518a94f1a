package wallet

import (
	"strings"
	"testing"

	addresscodec "github.com/Peersyst/xrpl-go/address-codec"
	"github.com/stretchr/testify/require"
	"github.com/tyler-smith/go-bip39"
	"github.com/xrpl-commons/dapp-wallet/apperr"
	"github.com/xrpl-commons/dapp-wallet/decoder"
)

func newTestMnemonic(t *testing.T) string {
	t.Helper()
	m, err := NewMnemonic()
	require.NoError(t, err)
	return m
}

func TestNewMnemonic(t *testing.T) {
	m := newTestMnemonic(t)
	require.Len(t, Words(m), MnemonicWords)
	require.NoError(t, ValidateMnemonic(m))

	other := newTestMnemonic(t)
	require.NotEqual(t, m, other)
}

func TestValidateMnemonic(t *testing.T) {
	err := ValidateMnemonic("not a mnemonic at all")
	require.ErrorIs(t, err, apperr.ErrValidation)

	// valid words, bad checksum
	err = ValidateMnemonic(strings.TrimSpace(strings.Repeat("abandon ", 24)))
	require.ErrorIs(t, err, apperr.ErrValidation)

	// valid 12 word phrase
	twelve := strings.Repeat("abandon ", 11) + "about"
	require.True(t, bip39.IsMnemonicValid(twelve))
	err = ValidateMnemonic(twelve)
	require.ErrorIs(t, err, apperr.ErrValidation)
	require.ErrorContains(t, err, "24 words")
}

func TestFromMnemonicIsDeterministic(t *testing.T) {
	m := newTestMnemonic(t)

	w1, err := FromMnemonic(m)
	require.NoError(t, err)
	w2, err := FromMnemonic("  " + strings.ReplaceAll(m, " ", "   ") + "\n")
	require.NoError(t, err)

	require.Equal(t, w1.Address(), w2.Address())
	require.Equal(t, w1.PublicKey(), w2.PublicKey())
	require.True(t, addresscodec.IsValidClassicAddress(w1.Address()))
}

func TestChallenge(t *testing.T) {
	m := newTestMnemonic(t)
	words := Words(m)
	direct, err := FromMnemonic(m)
	require.NoError(t, err)

	for _, index := range []int{0, 11, MnemonicWords - 1} {
		c := newChallengeAt(m, index)
		require.Equal(t, index+1, c.Position())

		for i, w := range words {
			if w == words[index] {
				continue
			}
			_, err := c.Verify(w)
			require.ErrorIs(t, err, apperr.ErrValidation, "word %d", i)
		}

		_, err := c.Verify(strings.ToUpper(words[index]))
		require.Error(t, err)
		_, err = c.Verify(words[index] + " ")
		require.Error(t, err)

		w, err := c.Verify(words[index])
		require.NoError(t, err)
		require.Equal(t, direct.Address(), w.Address())
	}
}

func TestNewChallengeIndexInRange(t *testing.T) {
	m := newTestMnemonic(t)
	for i := 0; i < 50; i++ {
		c, err := NewChallenge(m)
		require.NoError(t, err)
		require.GreaterOrEqual(t, c.Index, 0)
		require.Less(t, c.Index, MnemonicWords)
	}

	_, err := NewChallenge("abandon")
	require.Error(t, err)
}

func TestXAddress(t *testing.T) {
	w, err := FromMnemonic(newTestMnemonic(t))
	require.NoError(t, err)

	mainnet, err := w.XAddress(nil, false)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(mainnet, "X"))

	tag := uint32(42)
	testnet, err := w.XAddress(&tag, true)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(testnet, "T"))
}

func TestSign(t *testing.T) {
	w, err := FromMnemonic(newTestMnemonic(t))
	require.NoError(t, err)

	blob, hash, err := w.Sign(map[string]interface{}{
		"TransactionType":    "Payment",
		"Account":            w.Address(),
		"Destination":        "rPT1Sjq2YGrBMTttX4GZHjKu9dyfzbpAYe",
		"Amount":             "1000",
		"Fee":                "12",
		"Sequence":           uint32(1),
		"LastLedgerSequence": uint32(100),
		"SigningPubKey":      w.PublicKey(),
	})
	require.NoError(t, err)
	require.NotEmpty(t, blob)

	computed, err := decoder.TransactionHash(blob)
	require.NoError(t, err)
	require.True(t, strings.EqualFold(computed, hash))
}
