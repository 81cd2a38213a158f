package cookies

import (
	"net/http"
	"strings"
	"time"
)

// Format identifies the layout of a cookie store.
type Format int

const (
	FormatUnknown Format = iota
	FormatFirefox
	FormatChrome
	FormatNetscape
)

func (f Format) String() string {
	switch f {
	case FormatFirefox:
		return "firefox"
	case FormatChrome:
		return "chrome"
	case FormatNetscape:
		return "netscape"
	}
	return "unknown"
}

// Cookie is one cookie read from a store. Value is SENSITIVE.
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Expiry   time.Time // zero for session cookies
	Secure   bool
	HttpOnly bool
}

// HostOnly reports whether the cookie lacks a leading-dot domain and so
// applies to its exact host only.
func (c Cookie) HostOnly() bool {
	return !strings.HasPrefix(c.Domain, ".")
}

// Host is the cookie's domain without the leading dot.
func (c Cookie) Host() string {
	return strings.TrimPrefix(c.Domain, ".")
}

// HTTP converts the cookie for a jar. Host-only cookies carry no Domain
// attribute so the jar keeps them bound to the exact host.
func (c Cookie) HTTP() *http.Cookie {
	hc := &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Expires:  c.Expiry,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
	}
	if !c.HostOnly() {
		hc.Domain = c.Host()
	}
	return hc
}

// Source describes a cookie store that was read.
type Source struct {
	Path   string
	Format Format
	// Skipped counts entries that could not be parsed.
	Skipped int
}

// matchesHost reports whether a cookie stored for domain belongs to host:
// the same host, a parent domain of host, or a subdomain of host.
func matchesHost(domain, host string) bool {
	d := strings.ToLower(strings.TrimPrefix(domain, "."))
	host = strings.ToLower(host)
	if d == "" || host == "" {
		return false
	}
	return d == host || strings.HasSuffix(host, "."+d) || strings.HasSuffix(d, "."+host)
}
