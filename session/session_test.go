package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xrpl-commons/dapp-wallet/apperr"
	"github.com/xrpl-commons/dapp-wallet/types"
	"github.com/xrpl-commons/dapp-wallet/wallet"
	"go.uber.org/zap/zaptest"
)

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "wallet.json")
	store := NewFileStore(path, "correct horse")

	_, err := store.Load()
	require.ErrorIs(t, err, ErrNoWallet)

	require.NoError(t, store.Save("abandon ability able"))
	got, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "abandon ability able", got)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "abandon")

	_, err = NewFileStore(path, "wrong").Load()
	require.ErrorIs(t, err, ErrBadPassword)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	_, err = store.Load()
	require.ErrorIs(t, err, ErrNoWallet)
}

func TestFileStoreCorrupt(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value any
	}{
		{"short nonce", "nonce", "AAAA"},
		{"no threads", "kdf_threads", 0},
		{"no rounds", "kdf_time", 0},
		{"no memory", "kdf_memory_kb", 0},
		{"huge memory", "kdf_memory_kb", 1 << 30},
		{"empty salt", "salt", ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "wallet.json")
			store := NewFileStore(path, "correct horse")
			require.NoError(t, store.Save("abandon ability able"))

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			var env map[string]any
			require.NoError(t, json.Unmarshal(raw, &env))
			env[test.field] = test.value
			raw, err = json.Marshal(env)
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(path, raw, 0o600))

			require.NotPanics(t, func() {
				_, err = store.Load()
			})
			require.ErrorContains(t, err, "parsing keystore")
		})
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Load()
	require.ErrorIs(t, err, ErrNoWallet)

	require.NoError(t, store.Save("words"))
	got, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "words", got)
}

func TestSessionUnlockAndNotify(t *testing.T) {
	s := New(types.Testnet, zaptest.NewLogger(t))
	changes, unsubscribe := s.Subscribe()
	defer unsubscribe()

	_, err := s.Wallet()
	require.ErrorIs(t, err, apperr.ErrWalletUnavailable)

	err = s.Unlock(NewMemoryStore())
	require.ErrorIs(t, err, apperr.ErrWalletUnavailable)

	mnemonic, err := wallet.NewMnemonic()
	require.NoError(t, err)
	store := NewMemoryStore()
	require.NoError(t, store.Save(mnemonic))
	require.NoError(t, s.Unlock(store))

	w, err := s.Wallet()
	require.NoError(t, err)
	require.Equal(t, w.Address(), s.Address())

	change := <-changes
	require.Equal(t, w.Address(), change.Address)
	require.Equal(t, uint64(1), change.Generation)

	s.Lock()
	s.Lock()
	change = <-changes
	require.Empty(t, change.Address)
	require.Equal(t, uint64(3), change.Generation)
	require.Empty(t, s.Address())
}
