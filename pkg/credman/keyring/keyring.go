// Package keyring stores the record sealing key and login passwords in the
// operating system keyring, with a file fallback for the key on systems
// without one.
package keyring

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keySize = 32

// Keyring keeps the sealing key under AppName/KeyField.
type Keyring struct {
	AppName  string
	KeyField string
}

var (
	keyringSet    = keyring.Set
	keyringGet    = keyring.Get
	keyringDelete = keyring.Delete
	randRead      = rand.Read
)

func NewKeyring() *Keyring {
	return &Keyring{
		AppName:  "warpsess",
		KeyField: "record-key",
	}
}

// SetKey generates a new key, stores it hex encoded and returns it.
func (k *Keyring) SetKey() ([]byte, error) {
	key := make([]byte, keySize)
	if _, err := randRead(key); err != nil {
		return nil, err
	}
	if err := keyringSet(k.AppName, k.KeyField, hex.EncodeToString(key)); err != nil {
		return nil, err
	}
	return key, nil
}

func (k *Keyring) GetKey() ([]byte, error) {
	s, err := keyringGet(k.AppName, k.KeyField)
	if err != nil {
		return nil, err
	}
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid key format: %w", err)
	}
	if len(key) != keySize {
		return nil, fmt.Errorf("invalid key length %d", len(key))
	}
	return key, nil
}

func (k *Keyring) DeleteKey() error {
	return keyringDelete(k.AppName, k.KeyField)
}

// Secrets keeps login passwords, one entry per page and user.
type Secrets struct {
	AppName string
}

func NewSecrets() *Secrets {
	return &Secrets{AppName: "warpsess"}
}

func (s *Secrets) service(page string) string {
	return s.AppName + "/" + page
}

func (s *Secrets) Get(page, user string) (string, error) {
	return keyringGet(s.service(page), user)
}

func (s *Secrets) Set(page, user, password string) error {
	return keyringSet(s.service(page), user, password)
}

func (s *Secrets) Delete(page, user string) error {
	return keyringDelete(s.service(page), user)
}

// IsNotFound reports whether err means the keyring has no such entry.
func IsNotFound(err error) bool {
	return errors.Is(err, keyring.ErrNotFound)
}
