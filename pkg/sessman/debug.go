package sessman

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// DescribeResponse renders the status line plus the response and request
// headers of resp for diagnostics. Cookie values are masked.
func DescribeResponse(resp *http.Response) string {
	if resp == nil {
		return "no response"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "status: %s\n", resp.Status)
	sb.WriteString("response headers:\n")
	writeHeaders(&sb, resp.Header)
	if resp.Request != nil {
		fmt.Fprintf(&sb, "request: %s %s\n", resp.Request.Method, resp.Request.URL.Redacted())
		sb.WriteString("request headers:\n")
		writeHeaders(&sb, resp.Request.Header)
	}
	return sb.String()
}

func writeHeaders(sb *strings.Builder, h http.Header) {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := strings.Join(h[k], ", ")
		if k == "Cookie" || k == "Set-Cookie" {
			v = "<masked>"
		}
		fmt.Fprintf(sb, "  %s: %s\n", k, v)
	}
}
