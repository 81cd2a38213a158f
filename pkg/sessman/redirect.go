package sessman

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrTooManyRedirects      = errors.New("redirect loop detected")
	ErrCrossProtocolRedirect = errors.New("cross-protocol redirect not supported")
)

// safeHeaders survive a redirect to another host. Cookies are not listed
// here because the jar re-evaluates them for every hop.
var safeHeaders = map[string]bool{
	"User-Agent":      true,
	"Accept":          true,
	"Accept-Language": true,
	"Accept-Encoding": true,
	"Referer":         true,
}

// redirectPolicy caps the number of hops, refuses to leave http(s) and drops
// caller supplied headers once the redirect chain reaches another host.
// maxRedirects must be positive; net/http passes at least one prior request.
func redirectPolicy(maxRedirects int) func(*http.Request, []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("%w: exceeded %d hops (last URL: %s)",
				ErrTooManyRedirects, maxRedirects, via[len(via)-1].URL)
		}
		prev := via[len(via)-1]
		if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
			return fmt.Errorf("%w: %s -> %s",
				ErrCrossProtocolRedirect, prev.URL.Scheme, req.URL.Scheme)
		}
		if prev.URL.Host != req.URL.Host {
			for key := range req.Header {
				if !safeHeaders[http.CanonicalHeaderKey(key)] {
					req.Header.Del(key)
				}
			}
		}
		return nil
	}
}
