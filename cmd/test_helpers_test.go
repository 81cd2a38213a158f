package cmd

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/warpdl/warpsess/common"
	"github.com/warpdl/warpsess/pkg/logger"
	"github.com/zalando/go-keyring"
)

const fileBody = "quarterly numbers, members only"

// captureOutput captures stdout and stderr during function execution.
func captureOutput(f func()) (stdout, stderr string) {
	oldStdout := os.Stdout
	oldStderr := os.Stderr

	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	var bufOut, bufErr bytes.Buffer
	done := make(chan struct{}, 2)
	go func() { io.Copy(&bufOut, rOut); done <- struct{}{} }()
	go func() { io.Copy(&bufErr, rErr); done <- struct{}{} }()

	f()

	wOut.Close()
	wErr.Close()
	<-done
	<-done
	os.Stdout = oldStdout
	os.Stderr = oldStderr
	rOut.Close()
	rErr.Close()

	return bufOut.String(), bufErr.String()
}

func assertContains(t *testing.T, output, expected string) {
	t.Helper()
	if !strings.Contains(output, expected) {
		t.Errorf("expected output to contain %q, got:\n%s", expected, output)
	}
}

// memSecrets is an in-memory passwordStore.
type memSecrets struct {
	m map[string]string
}

func (s *memSecrets) Get(page, user string) (string, error) {
	pw, ok := s.m[page+"/"+user]
	if !ok {
		return "", keyring.ErrNotFound
	}
	return pw, nil
}

func (s *memSecrets) Set(page, user, password string) error {
	s.m[page+"/"+user] = password
	return nil
}

// setupCmd points the config directory at a temporary folder and swaps the
// logger, keyring and progress output for test doubles.
func setupCmd(t *testing.T) (*memSecrets, *logger.MockLogger) {
	t.Helper()
	t.Setenv(common.ConfigDirEnv, t.TempDir())
	t.Setenv(common.SessionDirEnv, "")
	t.Setenv(common.PasswordEnv, "")

	ml := logger.NewMockLogger()
	ms := &memSecrets{m: map[string]string{}}

	oldLogger, oldSecrets, oldOutput := newLogger, secrets, progressOutput
	newLogger = func() logger.Logger { return ml }
	secrets = ms
	progressOutput = io.Discard
	t.Cleanup(func() {
		newLogger, secrets, progressOutput = oldLogger, oldSecrets, oldOutput
	})
	return ms, ml
}

// memberSite serves a login form, a members page and a members-only file.
type memberSite struct {
	srv   *httptest.Server
	posts atomic.Int32
}

func newMemberSite(t *testing.T) *memberSite {
	t.Helper()
	site := &memberSite{}
	authed := func(r *http.Request) bool {
		c, err := r.Cookie("auth")
		return err == nil && c.Value == "ok"
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			site.posts.Add(1)
			r.ParseForm()
			if r.PostForm.Get("user") == "alice" && r.PostForm.Get("pass") == "secret" {
				http.SetCookie(w, &http.Cookie{Name: "auth", Value: "ok", Path: "/"})
			}
			fmt.Fprint(w, "posted")
			return
		}
		fmt.Fprintf(w, `<html><body><form action="http://%s/login" method="post">
<input name="user" type="text"><input name="pass" type="password">
<input type="submit" value="Sign in"></form></body></html>`, r.Host)
	})
	mux.HandleFunc("/account", func(w http.ResponseWriter, r *http.Request) {
		if authed(r) {
			fmt.Fprint(w, "<h1>Welcome back, Alice</h1>")
			return
		}
		fmt.Fprint(w, "Please sign in")
	})
	mux.HandleFunc("/files/report.bin", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Length", fmt.Sprint(len(fileBody)))
		if r.Method == http.MethodHead {
			return
		}
		io.WriteString(w, fileBody)
	})
	site.srv = httptest.NewServer(mux)
	t.Cleanup(site.srv.Close)
	return site
}

// loginArgs are the session flags that log in to site as alice.
func (s *memberSite) loginArgs(extra ...string) []string {
	args := []string{
		"--login-url", s.srv.URL + "/login",
		"--test-url", s.srv.URL + "/account",
		"--test-string", "welcome back",
		"--user", "alice",
		"--cooldown", "0",
	}
	return append(args, extra...)
}

// run executes the app with args and returns its stdout and error.
func run(args ...string) (string, error) {
	var err error
	out, _ := captureOutput(func() {
		err = Execute(append([]string{"warpsess"}, args...), BuildArgs{
			Version:   "1.2.3",
			BuildType: "test",
			Date:      "2026-01-01",
			Commit:    "abc123",
		})
	})
	return out, err
}
