package cookies

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/warpdl/warpsess/pkg/sessman"
)

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
		want Format
	}{
		{"firefox", firefoxDB(t, t.TempDir()), FormatFirefox},
		{"chrome", chromeDB(t, t.TempDir()), FormatChrome},
		{"netscape", writeFile(t, dir, "a.txt", "# Netscape HTTP Cookie File\n"), FormatNetscape},
		{"curl", writeFile(t, dir, "b.txt", "# HTTP Cookie File\r\n"), FormatNetscape},
	}
	for _, tt := range tests {
		got, err := Detect(tt.path)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if got != tt.want {
			t.Fatalf("%s: got %s want %s", tt.name, got, tt.want)
		}
	}
}

func TestDetect_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Detect(writeFile(t, dir, "empty", "")); !errors.Is(err, ErrEmptyStore) {
		t.Fatalf("empty: got %v", err)
	}
	if _, err := Detect(writeFile(t, dir, "json", `{"cookies": []}`)); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("json: got %v", err)
	}
	if _, err := Detect(dir); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("directory: got %v", err)
	}
	if _, err := Detect(dir + "/missing"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing: got %v", err)
	}
}

func TestImport_NetscapeReportsSkipped(t *testing.T) {
	future := time.Now().Add(time.Hour).Unix()
	p := writeFile(t, t.TempDir(), "cookies.txt",
		fmt.Sprintf("# Netscape HTTP Cookie File\n.example.com\tTRUE\t/\tFALSE\t%d\tsid\t1\ngarbage\n", future))
	cs, src, err := Import(p, "example.com")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(cs) != 1 || src.Skipped != 1 || src.Format != FormatNetscape {
		t.Fatalf("got %d cookies, source %+v", len(cs), src)
	}
}

type recordingSetter struct {
	calls map[string][]*http.Cookie
	err   error
}

func (r *recordingSetter) SetCookies(rawURL string, cs []*http.Cookie) error {
	if r.err != nil {
		return r.err
	}
	if r.calls == nil {
		r.calls = make(map[string][]*http.Cookie)
	}
	r.calls[rawURL] = append(r.calls[rawURL], cs...)
	return nil
}

func TestSeed_GroupsByOrigin(t *testing.T) {
	future := time.Now().Add(time.Hour)
	p := firefoxDB(t, t.TempDir(),
		row{"sid", "abc", ".example.com", "/", future, 1, 1},
		row{"pref", "dark", "www.example.com", "/", future, 0, 0},
		row{"cart", "3", "www.example.com", "/", future, 0, 0},
	)
	rec := &recordingSetter{}
	n, err := Seed(rec, p, "http://www.example.com/login")
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 cookies seeded, got %d", n)
	}
	if got := rec.calls["https://example.com/"]; len(got) != 1 || got[0].Domain != "example.com" {
		t.Fatalf("secure domain cookie set from wrong origin: %v", rec.calls)
	}
	if got := rec.calls["http://www.example.com/"]; len(got) != 2 || got[0].Domain != "" {
		t.Fatalf("host-only cookies set from wrong origin: %v", rec.calls)
	}
}

func TestSeed_Errors(t *testing.T) {
	p := firefoxDB(t, t.TempDir(), row{"sid", "abc", ".example.com", "/", time.Now().Add(time.Hour), 0, 0})
	if _, err := Seed(&recordingSetter{}, p, "not a url"); err == nil {
		t.Fatal("expected an error for a target without host")
	}
	boom := errors.New("boom")
	if _, err := Seed(&recordingSetter{err: boom}, p, "https://example.com/"); !errors.Is(err, boom) {
		t.Fatalf("expected setter error, got %v", err)
	}
}

func TestSeed_IntoSession(t *testing.T) {
	future := time.Now().Add(time.Hour)
	p := chromeDB(t, t.TempDir(),
		row{"sid", "abc", ".example.com", "/", future, 0, 1},
		row{"admin", "1", ".example.com", "/admin", future, 0, 0},
	)
	s, err := sessman.NewSession(nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Seed(s, p, "https://files.example.com/"); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	sent, err := s.Cookies("https://files.example.com/report.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if len(sent) != 1 || sent[0].Name != "sid" || sent[0].Value != "abc" {
		t.Fatalf("unexpected cookies for the target: %v", sent)
	}
	if s.Jar().Len() != 2 {
		t.Fatalf("expected both cookies recorded, got %d", s.Jar().Len())
	}
}
