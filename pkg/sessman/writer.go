package sessman

import (
	"errors"
	"fmt"
	"time"

	"github.com/warpdl/warpsess/pkg/logger"
)

type WriterOpts struct {
	// Folder holds the record, see SlotPath.
	Folder string
	// Label prefixes log lines, usually the page name.
	Label string
	// TimeoutMinutes is the maximum record age; 0 means records never expire.
	TimeoutMinutes int
	Proxies        ProxyConfig
	UserAgent      string
	// Session carries request plumbing for every session the writer builds.
	Session *SessionOpts
	Logger  logger.Logger
}

// SessionWriter decides between reusing the stored session of a folder and
// starting a fresh one.
type SessionWriter struct {
	store          *SessionStore
	slot           string
	label          string
	timeoutMinutes int
	proxies        ProxyConfig
	userAgent      string
	tmpl           SessionOpts
	l              logger.Logger

	session *Session
}

func NewSessionWriter(store *SessionStore, opts *WriterOpts) (*SessionWriter, error) {
	if opts == nil || opts.Folder == "" {
		return nil, errors.New("session folder is required")
	}
	if store == nil {
		store = NewSessionStore(nil)
	}
	w := &SessionWriter{
		store:          store,
		slot:           SlotPath(opts.Folder),
		label:          opts.Label,
		timeoutMinutes: opts.TimeoutMinutes,
		proxies:        opts.Proxies.Clone(),
		userAgent:      opts.UserAgent,
		l:              opts.Logger,
	}
	if opts.Session != nil {
		w.tmpl = *opts.Session
	}
	if w.label == "" {
		w.label = opts.Folder
	}
	if w.userAgent == "" {
		w.userAgent = DEF_USER_AGENT
	}
	if w.l == nil {
		w.l = logger.NewNopLogger()
	}
	return w, nil
}

// SlotPath returns the record path managed by the writer.
func (w *SessionWriter) SlotPath() string { return w.slot }

// Session returns the live session, nil before LoadOrCreate or after Discard.
func (w *SessionWriter) Session() *Session { return w.session }

// LoadOrCreate makes a session live. It reuses the stored one when the
// record is younger than the timeout and was created for the same proxies,
// otherwise it builds a fresh session. A fresh session is saved right away
// unless needLogin is set, in which case saving waits for a successful
// login. The record is never deleted here.
func (w *SessionWriter) LoadOrCreate(needLogin bool) (s *Session, reused bool, err error) {
	s, err = w.loadExisting()
	if err != nil {
		return nil, false, err
	}
	if s != nil {
		w.session = s
		w.l.Info("%s: session loaded", w.label)
		return s, true, nil
	}
	w.l.Info("%s: creating new session", w.label)
	opts := w.tmpl
	opts.Proxies = w.proxies
	opts.UserAgent = w.userAgent
	s, err = NewSession(&opts)
	if err != nil {
		return nil, false, err
	}
	w.session = s
	if !needLogin {
		if err = w.Save(); err != nil {
			return nil, false, err
		}
	}
	return s, false, nil
}

// loadExisting returns the stored session when it is still usable and
// nil when a fresh one is needed.
func (w *SessionWriter) loadExisting() (*Session, error) {
	age, err := w.store.AgeOf(w.slot)
	if errors.Is(err, ErrNotFound) {
		w.l.Info("%s: no stored session", w.label)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	w.l.Info("%s: stored session found, age %s", w.label, FormatAge(age))
	if w.expired(age) {
		w.l.Info("%s: stored session is too old (timeout %s)",
			w.label, FormatAge(time.Duration(w.timeoutMinutes)*time.Minute))
		return nil, nil
	}
	s, err := w.store.LoadWith(w.slot, &w.tmpl)
	switch {
	case errors.Is(err, ErrCorruptRecord), errors.Is(err, ErrNotFound):
		w.l.Warning("%s: ignoring stored session: %v", w.label, err)
		return nil, nil
	case err != nil:
		return nil, err
	}
	if !s.Proxies().Equal(w.proxies) {
		w.l.Info("%s: stored session uses other proxies (%s), requested %s",
			w.label, s.Proxies(), w.proxies)
		return nil, nil
	}
	return s, nil
}

func (w *SessionWriter) expired(age time.Duration) bool {
	return w.timeoutMinutes > 0 && age >= time.Duration(w.timeoutMinutes)*time.Minute
}

// Save persists the live session.
func (w *SessionWriter) Save() error {
	if w.session == nil {
		return fmt.Errorf("%w: no live session", ErrPersistence)
	}
	if err := w.store.Save(w.session, w.slot); err != nil {
		w.l.Error("%s: saving session: %v", w.label, err)
		return err
	}
	return nil
}

// Discard drops the live session. The record on disk is left alone.
func (w *SessionWriter) Discard() {
	w.session = nil
}
