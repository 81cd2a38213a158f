package keyring

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	keyFileName = "record.key"
	keyFileMode = 0600
)

// FileKeyStore keeps the sealing key hex encoded in <dir>/record.key for
// systems without a usable keyring.
type FileKeyStore struct {
	fs  afero.Fs
	dir string
}

var fileRandRead = rand.Read

func NewFileKeyStore(configDir string) *FileKeyStore {
	return NewFileKeyStoreFs(afero.NewOsFs(), configDir)
}

func NewFileKeyStoreFs(fs afero.Fs, configDir string) *FileKeyStore {
	return &FileKeyStore{fs: fs, dir: configDir}
}

func (f *FileKeyStore) keyPath() string {
	return filepath.Join(f.dir, keyFileName)
}

// SetKey generates a new key and replaces the key file with it. The file is
// written to a temporary name first and renamed into place.
func (f *FileKeyStore) SetKey() ([]byte, error) {
	if err := f.fs.MkdirAll(f.dir, 0755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	key := make([]byte, keySize)
	if _, err := fileRandRead(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	tmp, err := afero.TempFile(f.fs, f.dir, ".record.key.tmp.*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(hex.EncodeToString(key)); err != nil {
		tmp.Close()
		f.fs.Remove(tmpPath)
		return nil, fmt.Errorf("write key: %w", err)
	}
	if err := tmp.Close(); err != nil {
		f.fs.Remove(tmpPath)
		return nil, fmt.Errorf("close temp file: %w", err)
	}
	if err := f.fs.Chmod(tmpPath, keyFileMode); err != nil {
		f.fs.Remove(tmpPath)
		return nil, fmt.Errorf("set permissions: %w", err)
	}
	if err := f.fs.Rename(tmpPath, f.keyPath()); err != nil {
		f.fs.Remove(tmpPath)
		return nil, fmt.Errorf("rename key file: %w", err)
	}
	return key, nil
}

// GetKey reads the key file. A missing file yields an fs.ErrNotExist error.
func (f *FileKeyStore) GetKey() ([]byte, error) {
	data, err := afero.ReadFile(f.fs, f.keyPath())
	if err != nil {
		return nil, err
	}
	key, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("invalid key format: %w", err)
	}
	if len(key) != keySize {
		return nil, fmt.Errorf("invalid key length: expected %d, got %d", keySize, len(key))
	}
	return key, nil
}

func (f *FileKeyStore) DeleteKey() error {
	return f.fs.Remove(f.keyPath())
}
