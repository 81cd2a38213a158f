package sessman

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Requester is anything that can fetch a URL with an established session.
type Requester interface {
	Get(rawURL string) (*http.Response, error)
	Head(rawURL string) (*http.Response, error)
}

// SessionOpts configures a new Session. Proxies and UserAgent are the
// identity of the session, everything else is request plumbing.
type SessionOpts struct {
	Proxies   ProxyConfig
	UserAgent string
	// Headers are sent with every request, Referer included.
	Headers Headers
	// BaseURL is prepended to request URLs that start with "/".
	BaseURL string
	// AuthParams are merged into the query string of every request.
	AuthParams url.Values
	// Timeout bounds every request; zero means no timeout.
	Timeout time.Duration
	// MaxRedirects defaults to DEF_MAX_REDIRECTS.
	MaxRedirects int
}

// Session is a long-lived HTTP client identity: a cookie jar, the proxy
// configuration it was created for, a user agent and sticky headers. The
// process environment is never consulted for proxies.
type Session struct {
	client     *http.Client
	jar        *Jar
	proxies    ProxyConfig
	userAgent  string
	headers    Headers
	baseURL    string
	authParams url.Values
}

// NewSession returns a session with an empty jar.
func NewSession(opts *SessionOpts) (*Session, error) {
	if opts == nil {
		opts = &SessionOpts{}
	}
	proxies := opts.Proxies.Clone()
	transport, err := newTransport(proxies)
	if err != nil {
		return nil, err
	}
	maxRedirects := opts.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = DEF_MAX_REDIRECTS
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DEF_USER_AGENT
	}
	jar := NewJar()
	s := &Session{
		client: &http.Client{
			Transport:     transport,
			Jar:           jar,
			Timeout:       opts.Timeout,
			CheckRedirect: redirectPolicy(maxRedirects),
		},
		jar:        jar,
		proxies:    proxies,
		userAgent:  ua,
		headers:    opts.Headers.clone(),
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		authParams: opts.AuthParams,
	}
	return s, nil
}

// TrustEnv is always false: proxies come only from the session config.
func (s *Session) TrustEnv() bool { return false }

func (s *Session) Proxies() ProxyConfig { return s.proxies.Clone() }

func (s *Session) UserAgent() string { return s.userAgent }

func (s *Session) Jar() *Jar { return s.jar }

// SetHeader makes key a sticky header sent with every following request.
// An empty value removes it.
func (s *Session) SetHeader(key, value string) {
	if value == "" {
		s.headers.Del(key)
		return
	}
	s.headers.Update(key, value)
}

// Header returns the sticky value stored for key.
func (s *Session) Header(key string) string {
	return s.headers.Value(key)
}

// Cookies returns the cookies the session would send to rawURL.
func (s *Session) Cookies(rawURL string) ([]*http.Cookie, error) {
	u, err := s.parseURL(rawURL)
	if err != nil {
		return nil, err
	}
	return s.jar.Cookies(u), nil
}

// SetCookies stores cookies as if rawURL had set them.
func (s *Session) SetCookies(rawURL string, cookies []*http.Cookie) error {
	u, err := s.parseURL(rawURL)
	if err != nil {
		return err
	}
	s.jar.SetCookies(u, cookies)
	return nil
}

func (s *Session) Get(rawURL string) (*http.Response, error) {
	return s.request(http.MethodGet, rawURL, nil, "")
}

func (s *Session) Head(rawURL string) (*http.Response, error) {
	return s.request(http.MethodHead, rawURL, nil, "")
}

// Post sends data form-encoded.
func (s *Session) Post(rawURL string, data url.Values) (*http.Response, error) {
	return s.request(http.MethodPost, rawURL,
		strings.NewReader(data.Encode()), "application/x-www-form-urlencoded")
}

// Do sends req with the session's user agent, sticky headers and
// query parameters applied. Headers already set on req win.
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	s.headers.Apply(req.Header)
	if req.Header.Get(USER_AGENT_KEY) == "" {
		req.Header.Set(USER_AGENT_KEY, s.userAgent)
	}
	if len(s.authParams) > 0 {
		q := req.URL.Query()
		for k, vs := range s.authParams {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		req.URL.RawQuery = q.Encode()
	}
	return s.client.Do(req)
}

func (s *Session) request(method, rawURL string, body io.Reader, contentType string) (*http.Response, error) {
	u, err := s.parseURL(rawURL)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(method, u.String(), body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return s.Do(req)
}

func (s *Session) parseURL(rawURL string) (*url.URL, error) {
	if s.baseURL != "" && strings.HasPrefix(rawURL, "/") {
		rawURL = s.baseURL + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("url %q is not absolute", rawURL)
	}
	return u, nil
}

func (s *Session) record() *SessionRecord {
	return &SessionRecord{
		Version:   RECORD_VERSION,
		Cookies:   s.jar.Export(),
		Proxies:   map[string]string(s.proxies.Clone()),
		UserAgent: s.userAgent,
		Headers:   s.headers.clone(),
		BaseURL:   s.baseURL,
		TrustEnv:  false,
	}
}

// sessionFromRecord rebuilds a Session from rec. tmpl supplies the request
// plumbing that is not persisted.
func sessionFromRecord(rec *SessionRecord, tmpl *SessionOpts) (*Session, error) {
	opts := SessionOpts{}
	if tmpl != nil {
		opts = *tmpl
	}
	opts.Proxies = ProxyConfig(rec.Proxies)
	opts.UserAgent = rec.UserAgent
	opts.Headers = rec.Headers
	if opts.BaseURL == "" {
		opts.BaseURL = rec.BaseURL
	}
	s, err := NewSession(&opts)
	if err != nil {
		return nil, err
	}
	s.jar.Import(rec.Cookies)
	return s, nil
}
