package sessman

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/warpdl/warpsess/pkg/logger"
)

// LoginState is the position of a LoginController in its state machine.
type LoginState int

const (
	StateCheckingCache LoginState = iota
	StateAuthenticating
	StateReady
	// StateNoSession is terminal: every login attempt failed.
	StateNoSession
)

func (s LoginState) String() string {
	switch s {
	case StateCheckingCache:
		return "checking-cache"
	case StateAuthenticating:
		return "authenticating"
	case StateReady:
		return "ready"
	case StateNoSession:
		return "no-session"
	}
	return fmt.Sprintf("LoginState(%d)", int(s))
}

type LoginOpts struct {
	// PageName labels logs and names nothing on disk.
	PageName string
	LoginURL string
	// LoginTestURL defaults to LoginURL.
	LoginTestURL string
	// LoginTestString must appear (case-insensitively) on the test page for
	// a session to count as logged in. Empty never matches.
	LoginTestString string
	Username        string
	Password        string
	// Folder holds the session record.
	Folder string
	// SessionTimeoutMinutes is the maximum record age; 0 never expires.
	SessionTimeoutMinutes int
	// MaxLoginTries defaults to DEF_MAX_LOGIN_TRIES.
	MaxLoginTries int
	// LoginCooldown is the pause between failed attempts. Zero selects
	// DEF_LOGIN_COOLDOWN, a negative value disables it.
	LoginCooldown time.Duration
	ProxyURLs     []string
	UserAgent     string
	// ForceLogin skips the validity check of a reused session.
	ForceLogin bool
	Form       FormCollaborator
	// Store defaults to an OS filesystem store.
	Store   *SessionStore
	Session *SessionOpts
	// Seed is applied to freshly created sessions before the first attempt.
	Seed   func(*Session) error
	Logger logger.Logger
}

// LoginAttempt describes one pass through the login loop.
type LoginAttempt struct {
	Number  int
	Success bool
	// Form is the submission that was posted, nil when the attempt failed
	// before posting.
	Form       *LoginForm
	StatusCode int
	// Snapshot is DescribeResponse of the login POST.
	Snapshot string
	Err      error
}

// LoginResult is the outcome of LoginController.Run.
type LoginResult struct {
	State LoginState
	// Reused is set when the stored session was loaded instead of created.
	Reused   bool
	Attempts []LoginAttempt
}

// Ready reports whether a logged in session is available.
func (r *LoginResult) Ready() bool { return r.State == StateReady }

// Err returns ErrLoginExhausted when no session could be established.
func (r *LoginResult) Err() error {
	if r.State == StateNoSession {
		return fmt.Errorf("%w after %d attempts", ErrLoginExhausted, len(r.Attempts))
	}
	return nil
}

// LoginController establishes an authenticated session, reusing the stored
// one when it still passes the login test.
type LoginController struct {
	label      string
	loginURL   string
	testURL    string
	testString string
	username   string
	password   string
	maxTries   int
	cooldown   time.Duration
	force      bool
	form       FormCollaborator
	seed       func(*Session) error
	writer     *SessionWriter
	l          logger.Logger
	sleep      func(time.Duration)

	state   LoginState
	session *Session
}

func NewLoginController(opts *LoginOpts) (*LoginController, error) {
	if opts == nil || opts.LoginURL == "" {
		return nil, errors.New("login url is required")
	}
	if opts.Form == nil {
		return nil, ErrNoFormCollaborator
	}
	proxies, err := ParseProxyURLs(opts.ProxyURLs)
	if err != nil {
		return nil, err
	}
	l := opts.Logger
	if l == nil {
		l = logger.NewNopLogger()
	}
	label := opts.PageName
	if label == "" {
		label = opts.LoginURL
	}
	writer, err := NewSessionWriter(opts.Store, &WriterOpts{
		Folder:         opts.Folder,
		Label:          label,
		TimeoutMinutes: opts.SessionTimeoutMinutes,
		Proxies:        proxies,
		UserAgent:      opts.UserAgent,
		Session:        opts.Session,
		Logger:         l,
	})
	if err != nil {
		return nil, err
	}
	c := &LoginController{
		label:      label,
		loginURL:   opts.LoginURL,
		testURL:    opts.LoginTestURL,
		testString: opts.LoginTestString,
		username:   opts.Username,
		password:   opts.Password,
		maxTries:   opts.MaxLoginTries,
		cooldown:   opts.LoginCooldown,
		force:      opts.ForceLogin,
		form:       opts.Form,
		seed:       opts.Seed,
		writer:     writer,
		l:          l,
		sleep:      sleep,
	}
	if c.testURL == "" {
		c.testURL = c.loginURL
	}
	if c.maxTries <= 0 {
		c.maxTries = DEF_MAX_LOGIN_TRIES
	}
	if c.cooldown == 0 {
		c.cooldown = DEF_LOGIN_COOLDOWN
	}
	return c, nil
}

// State returns the current state.
func (c *LoginController) State() LoginState { return c.state }

// Session returns the live session, nil unless the last Run ended Ready.
func (c *LoginController) Session() *Session { return c.session }

// SlotPath returns the path of the session record.
func (c *LoginController) SlotPath() string { return c.writer.SlotPath() }

// Run drives the state machine to StateReady or StateNoSession. The
// returned error is non-nil only when the record could not be read or
// written; exhaustion is reported through LoginResult.Err.
func (c *LoginController) Run() (*LoginResult, error) {
	res := &LoginResult{}
	c.state = StateCheckingCache
	for {
		var err error
		switch c.state {
		case StateCheckingCache:
			err = c.checkCache(res)
		case StateAuthenticating:
			err = c.authenticate(res)
		default:
			res.State = c.state
			return res, nil
		}
		if err != nil {
			res.State = c.state
			return res, err
		}
	}
}

func (c *LoginController) transition(to LoginState) {
	c.state = to
}

func (c *LoginController) checkCache(res *LoginResult) error {
	s, reused, err := c.writer.LoadOrCreate(true)
	if err != nil {
		c.session = nil
		c.transition(StateNoSession)
		return err
	}
	c.session = s
	res.Reused = reused
	if reused && !c.force {
		if c.TestLogin() {
			c.l.Info("%s: stored session is still logged in", c.label)
			c.transition(StateReady)
			return nil
		}
		c.l.Info("%s: stored session is no longer logged in", c.label)
	}
	if !reused && c.seed != nil {
		if err := c.seed(s); err != nil {
			c.l.Warning("%s: seeding session: %v", c.label, err)
		} else if c.TestLogin() {
			c.l.Info("%s: seeded session is logged in", c.label)
			c.transition(StateReady)
			return c.writer.Save()
		}
	}
	c.l.Info("%s: performing new login", c.label)
	c.transition(StateAuthenticating)
	return nil
}

func (c *LoginController) authenticate(res *LoginResult) error {
	// posted is the most recent attempt that got as far as filling the form.
	var last, posted LoginAttempt
	for i := 1; i <= c.maxTries; i++ {
		if i > 1 && c.cooldown > 0 {
			c.sleep(c.cooldown)
		}
		last = c.attempt(i)
		res.Attempts = append(res.Attempts, last)
		if last.Form != nil {
			posted = last
		}
		if last.Success {
			break
		}
		c.l.Warning("%s: login attempt %d/%d failed", c.label, i, c.maxTries)
	}
	if !last.Success {
		c.l.Error("%s: login failed after %d attempts, last submission: %s",
			c.label, c.maxTries, c.describeForm(posted.Form))
		if posted.Snapshot != "" {
			c.l.Error("%s: last login response:\n%s", c.label, posted.Snapshot)
		}
		c.session = nil
		c.writer.Discard()
		c.transition(StateNoSession)
		return nil
	}
	c.l.Info("%s: login successful", c.label)
	c.transition(StateReady)
	return c.writer.Save()
}

func (c *LoginController) attempt(n int) LoginAttempt {
	att := LoginAttempt{Number: n}
	resp, err := c.session.Get(c.loginURL)
	if err != nil {
		att.Err = fmt.Errorf("get login page: %w", err)
		return att
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		att.Err = fmt.Errorf("read login page: %w", err)
		return att
	}
	desc, err := c.form.ExtractFormData(c.loginURL, string(body), FormSelector(c.loginURL))
	if err != nil {
		att.Err = fmt.Errorf("extract login form: %w", err)
		return att
	}
	form, err := c.form.PrepareLogin(desc, c.username, c.password)
	if err != nil {
		att.Err = fmt.Errorf("prepare login: %w", err)
		return att
	}
	att.Form = form
	c.session.SetHeader(REFERER_KEY, c.loginURL)
	resp, err = c.session.Post(form.PostURL, form.LoginData)
	if err != nil {
		att.Err = fmt.Errorf("post login form: %w", err)
		return att
	}
	att.StatusCode = resp.StatusCode
	att.Snapshot = DescribeResponse(resp)
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	c.sleep(LOGIN_SETTLE_DELAY)
	att.Success = c.TestLogin()
	return att
}

// TestLogin fetches the test page once and reports whether the test string
// appears on it.
func (c *LoginController) TestLogin() bool {
	if c.testString == "" || c.session == nil {
		return false
	}
	resp, err := c.session.Get(c.testURL)
	if err != nil {
		c.l.Warning("%s: login test request failed: %v", c.label, err)
		return false
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(body)), strings.ToLower(c.testString))
}

// describeForm renders a submission for logs with the password masked.
func (c *LoginController) describeForm(form *LoginForm) string {
	if form == nil {
		return "none"
	}
	masked := LoginForm{PostURL: form.PostURL, LoginData: url.Values{}}
	for k, vs := range form.LoginData {
		for _, v := range vs {
			if c.password != "" && v == c.password {
				v = "********"
			}
			masked.LoginData.Add(k, v)
		}
	}
	b, err := json.MarshalIndent(masked, "", "  ")
	if err != nil {
		return form.PostURL
	}
	return string(b)
}
