package cmd

const (
	// DEF_TIMEOUT_MINUTES keeps a session for ten weeks.
	DEF_TIMEOUT_MINUTES = 100800
	DEF_COOLDOWN_MS     = 50
)

const DESCRIPTION = `
warpsess keeps logged in HTTP sessions for the websites you download from.
It signs in once, stores the cookies, proxy and user agent of the session
and reuses them until they expire or stop working, logging in again only
when it has to.
`

const (
	LoginDescription = `The login command makes sure a logged in session exists
for a page. A stored session is reused when the test page still shows the
test string, otherwise the login form is filled in and posted again.

Example:
        warpsess login example --login-url https://example.com/login \
                --test-url https://example.com/account --test-string "Sign out" \
                --user alice

`
	DownloadDescription = `The download command logs in (or reuses the stored
session) and fetches a file with it. Large files are streamed to disk,
small ones are written in one go.

Example:
        warpsess download example https://example.com/files/report.pdf \
                --login-url https://example.com/login --test-string "Sign out" \
                --user alice

`
	SessionInfoDescription = `The session info command shows where the session
of a page is stored and how old it is.

Example:
        warpsess session info example

`
	SessionEvictDescription = `The session evict command deletes the stored
session of a page, forcing a new login next time.

Example:
        warpsess session evict example

`
	CheckDescription = `The check command reports whether a url answers with
a success status, through the given proxies.

Example:
        warpsess check https://example.com --proxy socks5://127.0.0.1:1080

`
)
