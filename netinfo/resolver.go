package netinfo

import (
	"net"
	"net/http"
	"os"
	"strings"
)

// ClientIP determines the client address for a request. The default is the
// transport-layer peer address; a X-Forwarded-For header overrides it with
// the first comma-separated token, which is the original-client position in
// a forwarding chain. The header is trusted unconditionally, so any
// upstream proxy (or the client itself) can spoof it.
func ClientIP(req *http.Request) string {
	if forwarded := req.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}

	return host
}

// ServerInfo describes the host this process runs on. Resolution failures
// fall back to loopback so the payload is always populated.
func ServerInfo() Server {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	ip := "127.0.0.1"

	addrs, err := net.LookupIP(hostname)
	if err == nil {
		for _, addr := range addrs {
			if v4 := addr.To4(); v4 != nil {
				ip = v4.String()
				break
			}
		}
	}

	return Server{
		Hostname:  hostname,
		IP:        ip,
		IsPrivate: IsPrivate(ip),
	}
}
