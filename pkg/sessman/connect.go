package sessman

import (
	"io"
)

// IsServerConnection reports whether testURL answers with a 2xx status
// through s. It is used to check a proxy before logging in.
func IsServerConnection(s Requester, testURL string) bool {
	resp, err := s.Get(testURL)
	if err != nil {
		return false
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}
