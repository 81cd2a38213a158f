package cookies

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// sqliteMagic opens every SQLite database file.
const sqliteMagic = "SQLite format 3\x00"

// chromeEpochOffset is the number of seconds between 1601-01-01 and the Unix
// epoch. Chrome stores expiry as microseconds since the former.
const chromeEpochOffset int64 = 11_644_473_600

func chromeToTime(usec int64) time.Time {
	if usec == 0 {
		return time.Time{}
	}
	return time.Unix(usec/1_000_000-chromeEpochOffset, 0)
}

func timeToChrome(t time.Time) int64 {
	return (t.Unix() + chromeEpochOffset) * 1_000_000
}

// schema is the per-browser shape of a cookie table.
type schema struct {
	format Format
	table  string
	query  string
	// expiry converts the stored expiry column.
	expiry func(int64) time.Time
	// cutoff converts now into the stored expiry unit.
	cutoff func(time.Time) int64
}

var schemas = []schema{
	{
		format: FormatFirefox,
		table:  "moz_cookies",
		query: `SELECT name, value, host, path, expiry, isSecure, isHttpOnly
			FROM moz_cookies WHERE expiry > ? ORDER BY path DESC, name ASC`,
		expiry: func(v int64) time.Time { return time.Unix(v, 0) },
		cutoff: func(t time.Time) int64 { return t.Unix() },
	},
	{
		format: FormatChrome,
		table:  "cookies",
		// encrypted values are left out; an empty value means the plaintext is
		// unavailable without the OS key store.
		query: `SELECT name, value, host_key, path, expires_utc, is_secure, is_httponly
			FROM cookies WHERE value != '' AND (expires_utc = 0 OR expires_utc > ?)
			ORDER BY path DESC, name ASC`,
		expiry: chromeToTime,
		cutoff: timeToChrome,
	},
}

func openReadOnly(path string) (*sql.DB, error) {
	return sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro&immutable=1", path))
}

// detectSchema reports which browser table the database holds.
func detectSchema(path string) (*schema, error) {
	db, err := openReadOnly(path)
	if err != nil {
		return nil, fmt.Errorf("cookies: open %s: %w", path, err)
	}
	defer db.Close()
	for i := range schemas {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, schemas[i].table).Scan(&name)
		if err == nil {
			return &schemas[i], nil
		}
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("cookies: inspect %s: %w", path, err)
		}
	}
	return nil, fmt.Errorf("%w: no browser cookie table in %s", ErrUnsupported, path)
}

// read returns the unexpired cookies of db at path that belong to host.
func (sc *schema) read(path, host string, now time.Time) ([]Cookie, error) {
	db, err := openReadOnly(path)
	if err != nil {
		return nil, fmt.Errorf("cookies: open %s database: %w", sc.format, err)
	}
	defer db.Close()

	rows, err := db.Query(sc.query, sc.cutoff(now))
	if err != nil {
		return nil, fmt.Errorf("cookies: query %s database: %w", sc.format, err)
	}
	defer rows.Close()

	var out []Cookie
	for rows.Next() {
		var (
			c              Cookie
			expiry         int64
			secure, httpOn int
		)
		if err := rows.Scan(&c.Name, &c.Value, &c.Domain, &c.Path, &expiry, &secure, &httpOn); err != nil {
			return nil, fmt.Errorf("cookies: scan %s row: %w", sc.format, err)
		}
		if !matchesHost(c.Domain, host) {
			continue
		}
		c.Expiry = sc.expiry(expiry)
		c.Secure = secure != 0
		c.HttpOnly = httpOn != 0
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cookies: iterate %s rows: %w", sc.format, err)
	}
	return out, nil
}
