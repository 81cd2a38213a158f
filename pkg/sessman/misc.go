package sessman

import (
	"fmt"
	"mime"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"
)

// Size unit constants for byte conversions.
const (
	B  int64 = 1
	KB       = 1024 * B
	MB       = 1024 * KB
	GB       = 1024 * MB
)

const (
	DEF_USER_AGENT          = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:65.0) Gecko/20100101 Firefox/65.0"
	DEF_MAX_LOGIN_TRIES     = 3
	DEF_LOGIN_COOLDOWN      = 50 * time.Millisecond
	DEF_STREAM_THRESHOLD_MB = 50
	DEF_MAX_REDIRECTS       = 10

	// LOGIN_SETTLE_DELAY is the pause between posting the login form and
	// probing whether the session is authenticated.
	LOGIN_SETTLE_DELAY = 100 * time.Millisecond
	STREAM_CHUNK_SIZE  = 64 * KB

	RECORD_EXT = ".dat"
)

// sleep is swapped in tests to observe cooldowns without waiting.
var sleep = time.Sleep

// FormatAge renders a duration the way record ages are shown in logs,
// "H:MMh" or "Nd H:MMh" once it exceeds a day.
func FormatAge(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	mins := int64(d / time.Minute)
	days := mins / (24 * 60)
	hours := (mins / 60) % 24
	mins %= 60
	if days > 0 {
		return fmt.Sprintf("%dd %d:%02dh", days, hours, mins)
	}
	return fmt.Sprintf("%d:%02dh", hours, mins)
}

var dispositionFileName = regexp.MustCompile(`filename="?([^";]+)"?`)

// resolveFileName picks the name a download is stored under: the
// Content-Disposition filename when present, else the last segment of
// the URL path.
func resolveFileName(rawURL, disposition string) string {
	var fn string
	if disposition != "" {
		if _, p, err := mime.ParseMediaType(disposition); err == nil {
			fn = p["filename"]
		} else if m := dispositionFileName.FindStringSubmatch(disposition); m != nil {
			fn = strings.TrimSpace(m[1])
		}
	}
	if fn == "" {
		if u, err := url.Parse(rawURL); err == nil {
			fn = path.Base(u.Path)
		} else {
			fn = rawURL[strings.LastIndex(rawURL, "/")+1:]
		}
		if fn == "/" || fn == "." {
			fn = ""
		}
	}
	return SanitizeFilename(fn)
}

var reservedNames = []string{
	"CON", "PRN", "AUX", "NUL",
	"COM1", "COM2", "COM3", "COM4", "COM5", "COM6", "COM7", "COM8", "COM9",
	"LPT1", "LPT2", "LPT3", "LPT4", "LPT5", "LPT6", "LPT7", "LPT8", "LPT9",
}

// SanitizeFilename replaces characters that are invalid on Windows or Unix
// filesystems and falls back to "download" when nothing usable remains.
func SanitizeFilename(name string) string {
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r < 32:
			return -1
		case strings.ContainsRune(`<>:"/\|?*`, r):
			return '_'
		}
		return r
	}, name)

	base, ext := name, ""
	if idx := strings.LastIndex(name, "."); idx > 0 {
		base, ext = name[:idx], name[idx:]
	}
	for _, r := range reservedNames {
		if strings.EqualFold(base, r) {
			base = "_" + base
			break
		}
	}
	name = strings.Trim(base+ext, " .")
	if name == "" {
		name = "download"
	}
	return name
}
