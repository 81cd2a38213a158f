package encryption

import (
	"bytes"
	"errors"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	s, err := NewSealer(bytes.Repeat([]byte{0x11}, 32))
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}
	sealed, err := s.Seal([]byte("hello"))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if bytes.Contains(sealed, []byte("hello")) {
		t.Fatal("plaintext visible in sealed data")
	}
	plain, err := s.Open(sealed)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if string(plain) != "hello" {
		t.Fatalf("expected 'hello', got %q", plain)
	}
}

func TestSealUsesFreshSalt(t *testing.T) {
	s, _ := NewSealer(bytes.Repeat([]byte{0x22}, 32))
	a, _ := s.Seal([]byte("same"))
	b, _ := s.Seal([]byte("same"))
	if bytes.Equal(a, b) {
		t.Fatal("two seals of the same plaintext are identical")
	}
}

func TestNewSealerInvalidKey(t *testing.T) {
	if _, err := NewSealer([]byte{0x01}); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestOpenWrongKey(t *testing.T) {
	a, _ := NewSealer(bytes.Repeat([]byte{0x01}, 32))
	b, _ := NewSealer(bytes.Repeat([]byte{0x02}, 32))
	sealed, _ := a.Seal([]byte("secret"))
	if _, err := b.Open(sealed); err == nil {
		t.Fatal("opened with the wrong key")
	}
}

func TestOpenTampered(t *testing.T) {
	s, _ := NewSealer(bytes.Repeat([]byte{0x03}, 32))
	sealed, _ := s.Seal([]byte("secret"))
	sealed[len(sealed)-1] ^= 0xff
	if _, err := s.Open(sealed); err == nil {
		t.Fatal("opened tampered data")
	}
}

func TestOpenMalformed(t *testing.T) {
	s, _ := NewSealer(bytes.Repeat([]byte{0x04}, 32))
	for _, in := range [][]byte{nil, []byte("wse1"), []byte("gob data that is not sealed")} {
		if _, err := s.Open(in); !errors.Is(err, ErrMalformed) {
			t.Fatalf("Open(%q): expected ErrMalformed, got %v", in, err)
		}
	}
}

func TestSealRandFailure(t *testing.T) {
	orig := randRead
	defer func() { randRead = orig }()
	randRead = func([]byte) (int, error) { return 0, errors.New("no entropy") }
	s, _ := NewSealer(bytes.Repeat([]byte{0x05}, 32))
	if _, err := s.Seal([]byte("x")); err == nil {
		t.Fatal("expected rand error")
	}
}
