// Package types defines the data structures persisted for a session's
// credentials.
package types

import (
	"net/http"
	"net/url"
	"time"
)

// Cookie is the durable form of an http.Cookie held by a session jar. Unlike
// http.Cookie it remembers the URL the cookie was received from so the jar
// can replay it with the same domain and path rules, and it stores expiry
// only as an absolute timestamp.
type Cookie struct {
	// URL is the request URL the cookie was set for.
	URL string
	// Name is the cookie's unique identifier within its domain and path.
	Name string
	// Value is the cookie's content. SENSITIVE, never log it.
	Value string
	// Domain is the Domain attribute as received, empty for host-only cookies.
	Domain string
	// Path is the Path attribute as received.
	Path string
	// Expires is the absolute expiry; the zero value marks a session cookie.
	Expires time.Time
	Secure   bool
	HttpOnly bool
	SameSite http.SameSite
}

// NewCookie converts c, received from u at now, into its durable form.
// A positive MaxAge is folded into Expires.
func NewCookie(u *url.URL, c *http.Cookie, now time.Time) Cookie {
	exp := c.Expires
	if c.MaxAge > 0 {
		exp = now.Add(time.Duration(c.MaxAge) * time.Second)
	}
	return Cookie{
		URL:      u.String(),
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Expires:  exp,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
		SameSite: c.SameSite,
	}
}

// Expired reports whether the cookie has a fixed expiry that lies before now.
func (c Cookie) Expired(now time.Time) bool {
	return !c.Expires.IsZero() && !c.Expires.After(now)
}

// HTTP returns the cookie as an http.Cookie suitable for a jar.
func (c Cookie) HTTP() *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Expires:  c.Expires,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
		SameSite: c.SameSite,
	}
}
