package cookies

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

type row struct {
	name, value, host, path string
	expiry                  time.Time
	secure, httpOnly        int
}

func exec(t *testing.T, db *sql.DB, q string, args ...any) {
	t.Helper()
	if _, err := db.Exec(q, args...); err != nil {
		t.Fatalf("exec %q: %v", q, err)
	}
}

func firefoxDB(t *testing.T, dir string, rows ...row) string {
	t.Helper()
	p := filepath.Join(dir, "cookies.sqlite")
	db, err := sql.Open("sqlite", p)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()
	exec(t, db, `CREATE TABLE moz_cookies (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT NOT NULL, value TEXT NOT NULL, host TEXT NOT NULL,
        path TEXT NOT NULL DEFAULT '/', expiry INTEGER NOT NULL DEFAULT 0,
        isSecure INTEGER NOT NULL DEFAULT 0, isHttpOnly INTEGER NOT NULL DEFAULT 0)`)
	for _, r := range rows {
		exec(t, db, `INSERT INTO moz_cookies (name, value, host, path, expiry, isSecure, isHttpOnly)
			VALUES (?, ?, ?, ?, ?, ?, ?)`, r.name, r.value, r.host, r.path, r.expiry.Unix(), r.secure, r.httpOnly)
	}
	return p
}

func chromeDB(t *testing.T, dir string, rows ...row) string {
	t.Helper()
	p := filepath.Join(dir, "Cookies")
	db, err := sql.Open("sqlite", p)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()
	exec(t, db, `CREATE TABLE cookies (
        creation_utc INTEGER NOT NULL, host_key TEXT NOT NULL, name TEXT NOT NULL,
        value TEXT NOT NULL, encrypted_value BLOB NOT NULL DEFAULT x'',
        path TEXT NOT NULL DEFAULT '/', expires_utc INTEGER NOT NULL DEFAULT 0,
        is_secure INTEGER NOT NULL DEFAULT 0, is_httponly INTEGER NOT NULL DEFAULT 0)`)
	for _, r := range rows {
		var exp int64
		if !r.expiry.IsZero() {
			exp = timeToChrome(r.expiry)
		}
		exec(t, db, `INSERT INTO cookies (creation_utc, host_key, name, value, encrypted_value, path, expires_utc, is_secure, is_httponly)
			VALUES (0, ?, ?, ?, x'01', ?, ?, ?, ?)`, r.host, r.name, r.value, r.path, exp, r.secure, r.httpOnly)
	}
	return p
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func names(cs []Cookie) map[string]Cookie {
	m := make(map[string]Cookie, len(cs))
	for _, c := range cs {
		m[c.Name] = c
	}
	return m
}

func openForTest(t *testing.T, p string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", p)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}
