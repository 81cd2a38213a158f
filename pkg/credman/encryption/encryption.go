// Package encryption seals session records with AES-256-GCM. Every record
// gets its own subkey derived from the master key with HKDF-SHA256 and a
// random salt, so one master key can seal any number of records without
// nonce reuse concerns.
package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	sealPrefix = "wse1"
	saltSize   = 16
	KeySize    = 32
	hkdfInfo   = "warpsess session record"
)

var (
	ErrInvalidKey = errors.New("encryption key must be 32 bytes")
	ErrMalformed  = errors.New("sealed data is malformed")
)

var randRead = rand.Read

// Sealer encrypts and decrypts opaque blobs under a master key.
type Sealer struct {
	key []byte
}

func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidKey, len(key))
	}
	return &Sealer{key: append([]byte(nil), key...)}, nil
}

// Seal returns prefix | salt | nonce | ciphertext.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := randRead(salt); err != nil {
		return nil, err
	}
	gcm, err := s.aead(salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := randRead(nonce); err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(sealPrefix)+saltSize+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, sealPrefix...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, []byte(sealPrefix)), nil
}

// Open reverses Seal. Tampered data and a wrong key both fail.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < len(sealPrefix)+saltSize || string(sealed[:len(sealPrefix)]) != sealPrefix {
		return nil, ErrMalformed
	}
	rest := sealed[len(sealPrefix):]
	salt, rest := rest[:saltSize], rest[saltSize:]
	gcm, err := s.aead(salt)
	if err != nil {
		return nil, err
	}
	if len(rest) < gcm.NonceSize() {
		return nil, ErrMalformed
	}
	nonce, data := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]
	return gcm.Open(nil, nonce, data, []byte(sealPrefix))
}

func (s *Sealer) aead(salt []byte) (cipher.AEAD, error) {
	sub, err := deriveKey(s.key, salt)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(sub)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func deriveKey(master, salt []byte) ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, salt, []byte(hkdfInfo)), key); err != nil {
		return nil, err
	}
	return key, nil
}
