package sessman

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// Sealer encrypts a record before it is written and decrypts it after it is
// read.
type Sealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

type StoreOpts struct {
	// Fs defaults to the OS filesystem.
	Fs afero.Fs
	// Sealer, when set, encrypts every record.
	Sealer Sealer
	// Now defaults to time.Now.
	Now func() time.Time
}

// SessionStore persists sessions as records, one file per slot.
type SessionStore struct {
	fs     afero.Fs
	sealer Sealer
	now    func() time.Time
}

func NewSessionStore(opts *StoreOpts) *SessionStore {
	if opts == nil {
		opts = &StoreOpts{}
	}
	st := &SessionStore{
		fs:     opts.Fs,
		sealer: opts.Sealer,
		now:    opts.Now,
	}
	if st.fs == nil {
		st.fs = afero.NewOsFs()
	}
	if st.now == nil {
		st.now = time.Now
	}
	return st
}

// SlotPath returns the record path for a session folder,
// "<folder>/<base(folder)>.dat".
func SlotPath(folder string) string {
	folder = filepath.Clean(folder)
	return filepath.Join(folder, filepath.Base(folder)+RECORD_EXT)
}

// Fs returns the filesystem records are stored on.
func (st *SessionStore) Fs() afero.Fs { return st.fs }

// Save overwrites the record at slotPath with s, creating its directory
// when missing.
func (st *SessionStore) Save(s *Session, slotPath string) error {
	if s == nil {
		return fmt.Errorf("%w: no session", ErrPersistence)
	}
	data, err := encodeRecord(s.record())
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrPersistence, err)
	}
	if st.sealer != nil {
		data, err = st.sealer.Seal(data)
		if err != nil {
			return fmt.Errorf("%w: seal: %v", ErrPersistence, err)
		}
	}
	if err := st.fs.MkdirAll(filepath.Dir(slotPath), 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := afero.WriteFile(st.fs, slotPath, data, 0600); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// Load reads the record at slotPath into a new Session.
func (st *SessionStore) Load(slotPath string) (*Session, error) {
	return st.LoadWith(slotPath, nil)
}

// LoadWith is Load with tmpl supplying the request plumbing (timeout,
// query parameters) that records do not carry.
func (st *SessionStore) LoadWith(slotPath string, tmpl *SessionOpts) (*Session, error) {
	data, err := afero.ReadFile(st.fs, slotPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, slotPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if st.sealer != nil {
		data, err = st.sealer.Open(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
		}
	}
	rec, err := decodeRecord(data)
	if err != nil {
		return nil, err
	}
	s, err := sessionFromRecord(rec, tmpl)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return s, nil
}

// AgeOf returns how long ago the record at slotPath was last written.
func (st *SessionStore) AgeOf(slotPath string) (time.Duration, error) {
	fi, err := st.fs.Stat(slotPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", ErrNotFound, slotPath)
		}
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return st.now().Sub(fi.ModTime()), nil
}

// Evict deletes the record at slotPath. A missing record is not an error.
func (st *SessionStore) Evict(slotPath string) error {
	err := st.fs.Remove(slotPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
