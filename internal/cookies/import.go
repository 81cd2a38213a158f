package cookies

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

var (
	ErrUnsupported = errors.New("unsupported cookie store")
	ErrEmptyStore  = errors.New("cookie store is empty")
)

// now is swapped in tests.
var now = time.Now

// Detect inspects the file at path and reports its cookie store format.
func Detect(path string) (Format, error) {
	f, err := openStore(path)
	if err != nil {
		return FormatUnknown, err
	}
	defer f.Close()
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return FormatUnknown, fmt.Errorf("cookies: read %s: %w", path, err)
	}
	head = head[:n]
	if bytes.HasPrefix(head, []byte(sqliteMagic)) {
		sc, err := detectSchema(path)
		if err != nil {
			return FormatUnknown, err
		}
		return sc.format, nil
	}
	first := head
	if i := bytes.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	first = bytes.TrimRight(first, "\r")
	for _, h := range netscapeHeaders {
		if string(first) == h {
			return FormatNetscape, nil
		}
	}
	return FormatUnknown, fmt.Errorf("%w: %s", ErrUnsupported, path)
}

// Import reads the unexpired cookies stored for host, its parent domains and
// its subdomains out of the cookie store at path.
func Import(path, host string) ([]Cookie, *Source, error) {
	format, err := Detect(path)
	if err != nil {
		return nil, nil, err
	}
	src := &Source{Path: path, Format: format}
	t := now()

	if format == FormatNetscape {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("cookies: open %s: %w", path, err)
		}
		defer f.Close()
		cs, skipped, err := parseNetscape(f, host, t)
		if err != nil {
			return nil, nil, err
		}
		src.Skipped = skipped
		return cs, src, nil
	}

	sc, err := detectSchema(path)
	if err != nil {
		return nil, nil, err
	}
	copied, cleanup, err := snapshot(path)
	if err != nil {
		return nil, nil, err
	}
	defer cleanup()
	cs, err := sc.read(copied, host, t)
	if err != nil {
		return nil, nil, err
	}
	return cs, src, nil
}

// CookieSetter receives cookies on behalf of an URL. *sessman.Session
// satisfies it.
type CookieSetter interface {
	SetCookies(rawURL string, cookies []*http.Cookie) error
}

// Seed imports the cookies of targetURL's host from the store at sourcePath
// into s and returns how many were handed over.
func Seed(s CookieSetter, sourcePath, targetURL string) (int, error) {
	u, err := url.Parse(targetURL)
	if err != nil || u.Hostname() == "" {
		return 0, fmt.Errorf("cookies: bad target url %q", targetURL)
	}
	cs, _, err := Import(sourcePath, u.Hostname())
	if err != nil {
		return 0, err
	}
	// the jar scopes cookies by the URL they are set for, so each cookie is
	// set from its own origin
	groups := make(map[string][]*http.Cookie)
	var order []string
	for _, c := range cs {
		origin := originOf(c, u.Scheme)
		if _, ok := groups[origin]; !ok {
			order = append(order, origin)
		}
		groups[origin] = append(groups[origin], c.HTTP())
	}
	for _, origin := range order {
		if err := s.SetCookies(origin, groups[origin]); err != nil {
			return 0, err
		}
	}
	return len(cs), nil
}

func originOf(c Cookie, scheme string) string {
	if c.Secure || scheme == "" {
		scheme = "https"
	}
	p := c.Path
	if p == "" {
		p = "/"
	}
	return (&url.URL{Scheme: scheme, Host: c.Host(), Path: p}).String()
}

func openStore(path string) (*os.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cookies: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrUnsupported, path)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyStore, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cookies: %w", err)
	}
	return f, nil
}
