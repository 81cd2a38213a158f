package keyring

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"
)

// memBackend replaces the system keyring with a map keyed by
// "service|user" for the duration of the test.
func memBackend(t *testing.T) map[string]string {
	t.Helper()
	origSet, origGet, origDelete := keyringSet, keyringGet, keyringDelete
	t.Cleanup(func() {
		keyringSet, keyringGet, keyringDelete = origSet, origGet, origDelete
	})
	store := map[string]string{}
	keyringSet = func(service, user, value string) error {
		store[service+"|"+user] = value
		return nil
	}
	keyringGet = func(service, user string) (string, error) {
		v, ok := store[service+"|"+user]
		if !ok {
			return "", keyring.ErrNotFound
		}
		return v, nil
	}
	keyringDelete = func(service, user string) error {
		if _, ok := store[service+"|"+user]; !ok {
			return keyring.ErrNotFound
		}
		delete(store, service+"|"+user)
		return nil
	}
	return store
}

func fixedRand(t *testing.T, b byte) {
	t.Helper()
	orig := randRead
	t.Cleanup(func() { randRead = orig })
	randRead = func(p []byte) (int, error) {
		for i := range p {
			p[i] = b
		}
		return len(p), nil
	}
}

func TestKeyring_RecordKeyLifecycle(t *testing.T) {
	store := memBackend(t)
	fixedRand(t, 0x2a)
	kr := NewKeyring()

	key, err := kr.SetKey()
	if err != nil {
		t.Fatalf("SetKey: %v", err)
	}
	if !bytes.Equal(key, bytes.Repeat([]byte{0x2a}, keySize)) {
		t.Fatalf("unexpected key %x", key)
	}
	if got := store["warpsess|record-key"]; got != hex.EncodeToString(key) {
		t.Fatalf("key not stored hex encoded: %q", got)
	}

	got, err := kr.GetKey()
	if err != nil {
		t.Fatalf("GetKey: %v", err)
	}
	if !bytes.Equal(got, key) {
		t.Fatalf("GetKey = %x, want %x", got, key)
	}

	if err := kr.DeleteKey(); err != nil {
		t.Fatalf("DeleteKey: %v", err)
	}
	if _, err := kr.GetKey(); !IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestKeyring_SetKeyErrors(t *testing.T) {
	memBackend(t)
	orig := randRead
	t.Cleanup(func() { randRead = orig })

	randRead = func([]byte) (int, error) { return 0, errors.New("rand fail") }
	if _, err := NewKeyring().SetKey(); err == nil {
		t.Fatal("expected the rand error")
	}

	fixedRand(t, 1)
	keyringSet = func(string, string, string) error { return errors.New("locked") }
	if _, err := NewKeyring().SetKey(); err == nil || err.Error() != "locked" {
		t.Fatalf("expected the keyring error, got %v", err)
	}
}

func TestKeyring_GetKeyRejectsBadValues(t *testing.T) {
	store := memBackend(t)
	kr := NewKeyring()
	for name, value := range map[string]string{
		"not hex":   "not-valid-hex!",
		"too short": "aabbccdd",
	} {
		store["warpsess|record-key"] = value
		if _, err := kr.GetKey(); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
	delete(store, "warpsess|record-key")
	if _, err := kr.GetKey(); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSecrets(t *testing.T) {
	store := memBackend(t)
	s := NewSecrets()

	if err := s.Set("example", "alice", "pw"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok := store["warpsess/example|alice"]; !ok {
		t.Fatalf("unexpected keyring layout: %v", store)
	}
	got, err := s.Get("example", "alice")
	if err != nil || got != "pw" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if _, err := s.Get("other", "alice"); !IsNotFound(err) {
		t.Fatalf("expected not found for another page, got %v", err)
	}
	if err := s.Delete("example", "alice"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get("example", "alice"); !IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestSecrets_SeparateFromRecordKey(t *testing.T) {
	store := memBackend(t)
	fixedRand(t, 3)
	if _, err := NewKeyring().SetKey(); err != nil {
		t.Fatal(err)
	}
	if err := NewSecrets().Set("record-key", "alice", "pw"); err != nil {
		t.Fatal(err)
	}
	for k := range store {
		if strings.HasPrefix(k, "warpsess|") && k != "warpsess|record-key" {
			t.Fatalf("password stored in the key service: %q", k)
		}
	}
	if len(store) != 2 {
		t.Fatalf("expected 2 entries, got %v", store)
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(keyring.ErrNotFound) {
		t.Fatal("ErrNotFound not recognised")
	}
	if IsNotFound(errors.New("other")) || IsNotFound(nil) {
		t.Fatal("unexpected match")
	}
}
