package cookies

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const httpOnlyPrefix = "#HttpOnly_"

// netscapeHeaders are the first lines accepted as a cookies.txt signature.
var netscapeHeaders = []string{"# Netscape HTTP Cookie File", "# HTTP Cookie File"}

// parseNetscape reads a cookies.txt stream and returns the unexpired cookies
// for host together with the number of malformed lines skipped.
func parseNetscape(r io.Reader, host string, now time.Time) ([]Cookie, int, error) {
	var (
		out     []Cookie
		skipped int
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		c, ok, err := parseNetscapeLine(line)
		if err != nil {
			skipped++
			continue
		}
		if !ok || !matchesHost(c.Domain, host) {
			continue
		}
		if !c.Expiry.IsZero() && c.Expiry.Before(now) {
			continue
		}
		out = append(out, c)
	}
	if err := sc.Err(); err != nil {
		return nil, skipped, fmt.Errorf("cookies: read netscape file: %w", err)
	}
	return out, skipped, nil
}

// parseNetscapeLine decodes one tab separated entry:
// domain, include-subdomains, path, secure, expiry, name, value.
// ok is false for blank and comment lines.
func parseNetscapeLine(line string) (c Cookie, ok bool, err error) {
	if line == "" {
		return c, false, nil
	}
	if strings.HasPrefix(line, httpOnlyPrefix) {
		c.HttpOnly = true
		line = line[len(httpOnlyPrefix):]
	} else if strings.HasPrefix(line, "#") {
		return c, false, nil
	}
	f := strings.Split(line, "\t")
	if len(f) != 7 {
		return c, false, fmt.Errorf("want 7 fields, got %d", len(f))
	}
	exp, err := strconv.ParseInt(f[4], 10, 64)
	if err != nil {
		return c, false, fmt.Errorf("bad expiry: %w", err)
	}
	c.Domain = f[0]
	// a TRUE subdomain flag is the dotted domain form
	if strings.EqualFold(f[1], "TRUE") && !strings.HasPrefix(c.Domain, ".") {
		c.Domain = "." + c.Domain
	}
	c.Path = f[2]
	c.Secure = strings.EqualFold(f[3], "TRUE")
	if exp > 0 {
		c.Expiry = time.Unix(exp, 0)
	}
	c.Name = f[5]
	c.Value = f[6]
	return c, true, nil
}
