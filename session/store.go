package session

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

var (
	// ErrNoWallet is returned by Load when nothing was stored
	ErrNoWallet = errors.New("no wallet stored")
	// ErrBadPassword is returned when the keystore cannot be opened
	ErrBadPassword = errors.New("keystore password is invalid")
)

// Store persists the recovery phrase of the active wallet
type Store interface {
	Load() (string, error)
	Save(mnemonic string) error
	Clear() error
}

// MemoryStore keeps the mnemonic in process memory
type MemoryStore struct {
	mu       sync.Mutex
	mnemonic string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mnemonic == "" {
		return "", ErrNoWallet
	}
	return s.mnemonic, nil
}

func (s *MemoryStore) Save(mnemonic string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mnemonic = mnemonic
	return nil
}

func (s *MemoryStore) Clear() error {
	return s.Save("")
}

const (
	keystoreVersion = 1
	keystoreKDF     = "argon2id"
	argonTime       = uint32(2)
	argonMemoryKB   = uint32(64 * 1024)
	argonThreads    = uint8(1)
	saltSize        = 16

	maxArgonTime     = uint32(16)
	maxArgonMemoryKB = uint32(1024 * 1024)
)

type envelope struct {
	Version     uint32 `json:"version"`
	KDF         string `json:"kdf"`
	KDFTime     uint32 `json:"kdf_time"`
	KDFMemoryKB uint32 `json:"kdf_memory_kb"`
	KDFThreads  uint8  `json:"kdf_threads"`
	Salt        []byte `json:"salt"`
	Nonce       []byte `json:"nonce"`
	Ciphertext  []byte `json:"ciphertext"`
}

// check rejects parameters argon2 or the cipher would panic on
func (e *envelope) check() error {
	switch {
	case e.KDFTime < 1 || e.KDFTime > maxArgonTime:
		return fmt.Errorf("kdf_time %d out of range [1, %d]", e.KDFTime, maxArgonTime)
	case e.KDFThreads < 1:
		return fmt.Errorf("kdf_threads must be at least 1")
	case e.KDFMemoryKB < 8*uint32(e.KDFThreads) || e.KDFMemoryKB > maxArgonMemoryKB:
		return fmt.Errorf("kdf_memory_kb %d out of range [%d, %d]", e.KDFMemoryKB, 8*uint32(e.KDFThreads), maxArgonMemoryKB)
	case len(e.Salt) < 8:
		return fmt.Errorf("salt too short (%d bytes)", len(e.Salt))
	case len(e.Nonce) != chacha20poly1305.NonceSizeX:
		return fmt.Errorf("nonce must be %d bytes, got %d", chacha20poly1305.NonceSizeX, len(e.Nonce))
	}
	return nil
}

// FileStore keeps the mnemonic in a password protected JSON keystore
type FileStore struct {
	path     string
	password []byte

	mu sync.Mutex
}

func NewFileStore(path, password string) *FileStore {
	return &FileStore{path: path, password: []byte(password)}
}

func (s *FileStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoWallet
	}
	if err != nil {
		return "", fmt.Errorf("reading keystore: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", fmt.Errorf("parsing keystore: %w", err)
	}
	if env.Version != keystoreVersion || env.KDF != keystoreKDF {
		return "", fmt.Errorf("unsupported keystore version %d (%s)", env.Version, env.KDF)
	}
	if err := env.check(); err != nil {
		return "", fmt.Errorf("parsing keystore: %w", err)
	}

	key := argon2.IDKey(s.password, env.Salt, env.KDFTime, env.KDFMemoryKB, env.KDFThreads, chacha20poly1305.KeySize)
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", err
	}
	plaintext, err := aead.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return "", ErrBadPassword
	}
	return string(plaintext), nil
}

func (s *FileStore) Save(mnemonic string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return err
	}
	key := argon2.IDKey(s.password, salt, argonTime, argonMemoryKB, argonThreads, chacha20poly1305.KeySize)
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return err
	}

	raw, err := json.MarshalIndent(envelope{
		Version:     keystoreVersion,
		KDF:         keystoreKDF,
		KDFTime:     argonTime,
		KDFMemoryKB: argonMemoryKB,
		KDFThreads:  argonThreads,
		Salt:        salt,
		Nonce:       nonce,
		Ciphertext:  aead.Seal(nil, nonce, []byte(mnemonic), nil),
	}, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating keystore directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("writing keystore: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing keystore: %w", err)
	}
	return nil
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
