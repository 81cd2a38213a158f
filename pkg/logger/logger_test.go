package logger

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestOpenFile(t *testing.T) {
	t.Setenv(LogLevelEnv, "")
	path := filepath.Join(t.TempDir(), "logs", "warpsess.log")

	fl, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	fl.Info("%s: session saved", "site")
	fl.Error("%s: login failed after %d attempts", "site", 3)
	if err := fl.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := fl.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	// a reopened file is appended to
	fl, err = OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	fl.Warning("again")
	fl.Close()

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var msgs, levels []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec map[string]any
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			t.Fatalf("line is not JSON: %q", sc.Text())
		}
		msgs = append(msgs, rec["msg"].(string))
		levels = append(levels, rec["level"].(string))
	}
	want := []string{"site: session saved", "site: login failed after 3 attempts", "again"}
	if len(msgs) != len(want) {
		t.Fatalf("got %d records, want %d: %v", len(msgs), len(want), msgs)
	}
	for i := range want {
		if msgs[i] != want[i] {
			t.Errorf("record %d: %q, want %q", i, msgs[i], want[i])
		}
	}
	if levels[1] != "ERROR" || levels[2] != "WARN" {
		t.Errorf("levels: %v", levels)
	}
}

func TestOpenFile_BadPath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenFile(filepath.Join(blocker, "warpsess.log")); err == nil {
		t.Fatal("expected an error when the parent is a file")
	}
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Info("a %d", 1)
	l.Warning("b")
	l.Error("c")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestMockLogger(t *testing.T) {
	m := NewMockLogger()
	m.Info("loaded %s", "site")
	m.Warning("attempt %d/%d failed", 1, 3)
	m.Error("gave up")
	m.Close()

	if len(m.InfoCalls) != 1 || m.InfoCalls[0] != "loaded site" {
		t.Errorf("InfoCalls: %v", m.InfoCalls)
	}
	if len(m.WarningCalls) != 1 || m.WarningCalls[0] != "attempt 1/3 failed" {
		t.Errorf("WarningCalls: %v", m.WarningCalls)
	}
	if len(m.ErrorCalls) != 1 || m.ErrorCalls[0] != "gave up" {
		t.Errorf("ErrorCalls: %v", m.ErrorCalls)
	}
	if !m.CloseCalled {
		t.Error("CloseCalled not set")
	}
}

func TestMockLogger_Concurrent(t *testing.T) {
	m := NewMockLogger()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.Info("chunk %d", i)
		}(i)
	}
	wg.Wait()
	if len(m.InfoCalls) != 20 {
		t.Fatalf("expected 20 messages, got %d", len(m.InfoCalls))
	}
}

type failingCloser struct {
	*MockLogger
	err error
}

func (f failingCloser) Close() error {
	f.MockLogger.Close()
	return f.err
}

func TestMultiLogger(t *testing.T) {
	a, b := NewMockLogger(), NewMockLogger()
	m := NewMultiLogger(a, nil, b)
	m.Info("i")
	m.Warning("w %s", "x")
	m.Error("e")

	for name, l := range map[string]*MockLogger{"a": a, "b": b} {
		if len(l.InfoCalls) != 1 || len(l.WarningCalls) != 1 || len(l.ErrorCalls) != 1 {
			t.Errorf("%s: messages not fanned out: %+v", name, l)
		}
		if l.WarningCalls[0] != "w x" {
			t.Errorf("%s: warning %q", name, l.WarningCalls[0])
		}
	}
}

func TestMultiLogger_CloseReturnsFirstError(t *testing.T) {
	first := errors.New("first")
	a := failingCloser{NewMockLogger(), first}
	b := failingCloser{NewMockLogger(), errors.New("second")}
	c := NewMockLogger()

	if err := NewMultiLogger(a, b, c).Close(); err != first {
		t.Fatalf("Close() = %v, want %v", err, first)
	}
	if !a.CloseCalled || !b.CloseCalled || !c.CloseCalled {
		t.Fatal("every backend must be closed")
	}
}
