package credman

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"
)

type fakeStore struct {
	key     []byte
	getErr  error
	setErr  error
	setKeys int
}

func (f *fakeStore) GetKey() ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.key, nil
}

func (f *fakeStore) SetKey() ([]byte, error) {
	if f.setErr != nil {
		return nil, f.setErr
	}
	f.setKeys++
	f.key = bytes.Repeat([]byte{byte(f.setKeys)}, 32)
	return f.key, nil
}

func noEnv(string) string { return "" }

func TestRecordKeyFromEnv(t *testing.T) {
	want := bytes.Repeat([]byte{0xab}, 32)
	store := &fakeStore{getErr: errors.New("unused")}
	m := NewManagerWithStores(store)
	m.getenv = func(k string) string {
		if k == RecordKeyEnv {
			return hex.EncodeToString(want)
		}
		return ""
	}
	got, err := m.RecordKey()
	if err != nil {
		t.Fatalf("RecordKey: %v", err)
	}
	if !bytes.Equal(got, want) || store.setKeys != 0 {
		t.Fatalf("env key not used: %x", got)
	}
}

func TestRecordKeyInvalidEnv(t *testing.T) {
	m := NewManagerWithStores()
	for _, v := range []string{"zz", "aabb"} {
		m.getenv = func(string) string { return v }
		if _, err := m.RecordKey(); err == nil {
			t.Fatalf("%q: expected an error", v)
		}
	}
}

func TestRecordKeyExistingStore(t *testing.T) {
	first := &fakeStore{getErr: errors.New("no keyring")}
	second := &fakeStore{key: bytes.Repeat([]byte{0x07}, 32)}
	m := NewManagerWithStores(first, second)
	m.getenv = noEnv
	got, err := m.RecordKey()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, second.key) || first.setKeys != 0 {
		t.Fatal("existing key of the fallback store not used")
	}
}

func TestRecordKeyCreatesInFirstWorkingStore(t *testing.T) {
	first := &fakeStore{getErr: errors.New("no keyring"), setErr: errors.New("no keyring")}
	second := &fakeStore{getErr: errors.New("no file")}
	m := NewManagerWithStores(first, second)
	m.getenv = noEnv
	got, err := m.RecordKey()
	if err != nil {
		t.Fatal(err)
	}
	if second.setKeys != 1 || !bytes.Equal(got, second.key) {
		t.Fatal("key not created in the fallback store")
	}
}

func TestRecordKeyNoStore(t *testing.T) {
	m := NewManagerWithStores(&fakeStore{getErr: errors.New("a"), setErr: errors.New("b")})
	m.getenv = noEnv
	if _, err := m.RecordKey(); err == nil {
		t.Fatal("expected an error")
	}
}

func TestManagerSealer(t *testing.T) {
	m := NewManagerWithStores(&fakeStore{key: bytes.Repeat([]byte{0x09}, 32)})
	m.getenv = noEnv
	s, err := m.Sealer()
	if err != nil {
		t.Fatal(err)
	}
	sealed, err := s.Seal([]byte("record"))
	if err != nil {
		t.Fatal(err)
	}
	plain, err := s.Open(sealed)
	if err != nil || string(plain) != "record" {
		t.Fatalf("Open = %q, %v", plain, err)
	}
}
