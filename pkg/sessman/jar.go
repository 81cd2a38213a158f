package sessman

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/warpdl/warpsess/pkg/credman/types"
	"golang.org/x/net/publicsuffix"
)

// Jar is an http.CookieJar that remembers what it was given so the cookies
// can be written to a session record. Matching and domain rules are left to
// net/http/cookiejar with the public suffix list.
type Jar struct {
	jar *cookiejar.Jar
	now func() time.Time

	mu      sync.Mutex
	entries map[string]types.Cookie
}

// NewJar returns an empty jar.
func NewJar() *Jar {
	// cookiejar.New never fails.
	j, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return &Jar{
		jar:     j,
		now:     time.Now,
		entries: make(map[string]types.Cookie),
	}
}

// SetCookies implements http.CookieJar.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.jar.SetCookies(u, cookies)
	now := j.now()
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, c := range cookies {
		key := entryKey(u, c)
		if c.MaxAge < 0 || (!c.Expires.IsZero() && !c.Expires.After(now)) {
			delete(j.entries, key)
			continue
		}
		j.entries[key] = types.NewCookie(u, c, now)
	}
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	return j.jar.Cookies(u)
}

// Export returns every unexpired cookie the jar has accepted, in a stable
// order.
func (j *Jar) Export() []types.Cookie {
	now := j.now()
	j.mu.Lock()
	defer j.mu.Unlock()
	keys := make([]string, 0, len(j.entries))
	for k := range j.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]types.Cookie, 0, len(keys))
	for _, k := range keys {
		c := j.entries[k]
		if c.Expired(now) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Import replays previously exported cookies. Expired cookies and cookies
// with an unparsable origin are skipped.
func (j *Jar) Import(cookies []types.Cookie) {
	now := j.now()
	for _, c := range cookies {
		if c.Expired(now) {
			continue
		}
		u, err := url.Parse(c.URL)
		if err != nil || u.Host == "" {
			continue
		}
		j.SetCookies(u, []*http.Cookie{c.HTTP()})
	}
}

// Len returns the number of cookies tracked for export.
func (j *Jar) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

func entryKey(u *url.URL, c *http.Cookie) string {
	domain := strings.TrimPrefix(strings.ToLower(c.Domain), ".")
	if domain == "" {
		domain = strings.ToLower(u.Hostname())
	}
	p := c.Path
	if p == "" || p[0] != '/' {
		p = defaultPath(u.Path)
	}
	return domain + ";" + p + ";" + c.Name
}

// defaultPath is the cookie default-path of RFC 6265 section 5.1.4.
func defaultPath(p string) string {
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return "/"
	}
	return p[:i]
}
