package sessman

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/warpdl/warpsess/pkg/credman/types"
)

const RECORD_VERSION = 1

// SessionRecord is the on-disk form of a Session. Its age is the
// modification time of the file holding it.
type SessionRecord struct {
	Version   int
	Cookies   []types.Cookie
	Proxies   map[string]string
	UserAgent string
	Headers   Headers
	BaseURL   string
	TrustEnv  bool
}

func encodeRecord(rec *SessionRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeRecord(b []byte) (*SessionRecord, error) {
	var rec SessionRecord
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if rec.Version != RECORD_VERSION {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptRecord, rec.Version)
	}
	return &rec, nil
}
