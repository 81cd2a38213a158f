package sessman

import "net/http"

const (
	USER_AGENT_KEY = "User-Agent"
	REFERER_KEY    = "Referer"
)

// Headers is an ordered list of headers a Session sends with every request.
type Headers []Header

// Header is a single sticky request header.
type Header struct {
	Key   string
	Value string
}

// Get returns the index of the header with the given key.
func (h Headers) Get(key string) (index int, have bool) {
	key = http.CanonicalHeaderKey(key)
	for i, x := range h {
		if x.Key == key {
			return i, true
		}
	}
	return 0, false
}

// Value returns the value stored for key, or "" when absent.
func (h Headers) Value(key string) string {
	if i, ok := h.Get(key); ok {
		return h[i].Value
	}
	return ""
}

// Update replaces the value of key, appending it when not yet present.
func (h *Headers) Update(key, value string) {
	key = http.CanonicalHeaderKey(key)
	if i, ok := h.Get(key); ok {
		(*h)[i].Value = value
		return
	}
	*h = append(*h, Header{key, value})
}

// Del removes key from the list.
func (h *Headers) Del(key string) {
	if i, ok := h.Get(key); ok {
		*h = append((*h)[:i], (*h)[i+1:]...)
	}
}

// Apply writes every header into header unless header already has a value
// for that key.
func (h Headers) Apply(header http.Header) {
	for _, x := range h {
		if header.Get(x.Key) == "" {
			header.Set(x.Key, x.Value)
		}
	}
}

func (h Headers) clone() Headers {
	if h == nil {
		return nil
	}
	return append(Headers(nil), h...)
}
