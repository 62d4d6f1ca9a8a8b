package util

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the peer address of the request with the port stripped.
// Forwarded headers are not trusted; rate-limit keys must not be spoofable.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
