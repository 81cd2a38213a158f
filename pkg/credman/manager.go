// Package credman resolves the key that seals session records.
package credman

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/warpdl/warpsess/pkg/credman/encryption"
	"github.com/warpdl/warpsess/pkg/credman/keyring"
)

// RecordKeyEnv holds a hex encoded 32 byte key that overrides every store.
const RecordKeyEnv = "WARPSESS_RECORD_KEY"

// KeyStore is a place a sealing key can be kept.
type KeyStore interface {
	GetKey() ([]byte, error)
	SetKey() ([]byte, error)
}

// Manager hands out the record sealing key, trying the environment first
// and then each store in order. When no store has a key, the first store
// that can create one does.
type Manager struct {
	stores []KeyStore
	getenv func(string) string
}

// NewManager uses the system keyring, falling back to a key file inside
// configDir.
func NewManager(configDir string) *Manager {
	return NewManagerWithStores(keyring.NewKeyring(), keyring.NewFileKeyStore(configDir))
}

func NewManagerWithStores(stores ...KeyStore) *Manager {
	return &Manager{stores: stores, getenv: os.Getenv}
}

// RecordKey returns the sealing key, creating and storing one if needed.
func (m *Manager) RecordKey() ([]byte, error) {
	if v := m.getenv(RecordKeyEnv); v != "" {
		key, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid hex: %w", RecordKeyEnv, err)
		}
		if len(key) != encryption.KeySize {
			return nil, fmt.Errorf("%s: %w", RecordKeyEnv, encryption.ErrInvalidKey)
		}
		return key, nil
	}
	for _, s := range m.stores {
		if key, err := s.GetKey(); err == nil && len(key) == encryption.KeySize {
			return key, nil
		}
	}
	var errs []error
	for _, s := range m.stores {
		key, err := s.SetKey()
		if err == nil {
			return key, nil
		}
		errs = append(errs, err)
	}
	return nil, fmt.Errorf("no usable key store: %w", errors.Join(errs...))
}

// Sealer returns a record sealer keyed with RecordKey.
func (m *Manager) Sealer() (*encryption.Sealer, error) {
	key, err := m.RecordKey()
	if err != nil {
		return nil, err
	}
	return encryption.NewSealer(key)
}
